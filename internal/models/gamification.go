package models

import "time"

// ── Reward Pipeline ───────────────────────────────────────

// Payout is the result of the bonus stack for one completion. Gold and XP
// carry the same value; BossDamage may be doubled by the daily weakness.
type Payout struct {
	Gold       int      `json:"gold"`
	XP         int      `json:"xp"`
	BossDamage int      `json:"boss_damage"`
	Weakness   string   `json:"weakness"`
	Weather    string   `json:"weather"`
	Tags       []string `json:"tags"`
}

// FloorEvent is the mini-event rolled on the floor a completion lands on.
type FloorEvent struct {
	Kind string `json:"kind"`
	Gold int    `json:"gold"`
}

// SurpriseBox is the rare extra drop: gold, xp or a draw ticket.
type SurpriseBox struct {
	Kind   string `json:"kind"`
	Amount int    `json:"amount"`
}

type LevelChange struct {
	Before      int `json:"before"`
	After       int `json:"after"`
	CurrentXP   int `json:"current_xp"`
	NextLevelXP int `json:"next_level_xp"`
}

type TaskCompleteResponse struct {
	Task             string       `json:"task"`
	Category         string       `json:"category"`
	Payout           Payout       `json:"payout"`
	FloorEvent       FloorEvent   `json:"floor_event"`
	Surprise         *SurpriseBox `json:"surprise,omitempty"`
	GoldDelta        int          `json:"gold_delta"`
	Gold             int          `json:"gold"`
	Level            LevelChange  `json:"level"`
	Floor            int          `json:"floor"`
	RebirthAvailable bool         `json:"rebirth_available"`
	Boss             BossStatus   `json:"boss"`
	CompletionsToday int          `json:"completions_today"`
}

// ── Read Model ────────────────────────────────────────────

type BossStatus struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Weakness   string `json:"weakness"`
	Week       string `json:"week"`
	HP         int    `json:"hp"`
	Damage     int    `json:"damage"`
	Remaining  int    `json:"remaining"`
	RewardGold int    `json:"reward_gold"`
	RewardXP   int    `json:"reward_xp"`
	Defeated   bool   `json:"defeated"`
	Claimed    bool   `json:"claimed"`
}

type QuestStatus struct {
	Name     string `json:"name"`
	Target   int    `json:"target"`
	Progress int    `json:"progress"`
	Reward   int    `json:"reward"`
	Complete bool   `json:"complete"`
	Claimed  bool   `json:"claimed"`
}

type MissionStatus struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	Period   string `json:"period"`
	Target   int    `json:"target"`
	Progress int    `json:"progress"`
	Reward   int    `json:"reward"`
	Complete bool   `json:"complete"`
	Claimed  bool   `json:"claimed"`
}

type AchievementStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Reward      int    `json:"reward"`
}

type StateResponse struct {
	Player              PlayerState         `json:"player"`
	Streak              int                 `json:"streak"`
	CompletionsToday    int                 `json:"completions_today"`
	CompletionsWeek     int                 `json:"completions_week"`
	CompletionsMonth    int                 `json:"completions_month"`
	TodayWeakness       string              `json:"today_weakness"`
	Boss                BossStatus          `json:"boss"`
	DailyQuest          QuestStatus         `json:"daily_quest"`
	WeeklyQuest         QuestStatus         `json:"weekly_quest"`
	Seasonal            *QuestStatus        `json:"seasonal,omitempty"`
	Missions            []MissionStatus     `json:"missions"`
	PendingAchievements []AchievementStatus `json:"pending_achievements"`
	Titles              []string            `json:"titles"`
	LoginBonus          int                 `json:"login_bonus"`
	LoginClaimed        bool                `json:"login_claimed"`
	RebirthAvailable    bool                `json:"rebirth_available"`
	FreeDrawAvailable   bool                `json:"free_draw_available"`
	RestDayAvailable    bool                `json:"rest_day_available"`
	Inventory           []OwnedMonster      `json:"inventory"`
}

// ── Claims & Purchases ────────────────────────────────────

type ClaimResponse struct {
	Claim  string       `json:"claim"`
	Period string       `json:"period"`
	Gold   int          `json:"gold"`
	XP     int          `json:"xp,omitempty"`
	IDs    []string     `json:"ids,omitempty"`
	Level  *LevelChange `json:"level,omitempty"`
	Streak int          `json:"streak,omitempty"`
	Wallet int          `json:"wallet"`
}

type DrawResult struct {
	MonsterKey string `json:"monster_key"`
	Name       string `json:"name"`
	Rarity     string `json:"rarity"`
	Outcome    string `json:"outcome"`
	Level      int    `json:"level"`
	Currency   int    `json:"currency"`
}

type DrawResponse struct {
	Mode           string       `json:"mode"`
	Cost           int          `json:"cost"`
	Results        []DrawResult `json:"results"`
	CurrencyGained int          `json:"currency_gained"`
	Gold           int          `json:"gold"`
	Tickets        int          `json:"tickets"`
}

type RebirthResponse struct {
	RebirthCount int    `json:"rebirth_count"`
	Title        string `json:"title"`
	Floor        int    `json:"floor"`
}

type PurchaseResponse struct {
	Item   string `json:"item"`
	Cost   int    `json:"cost"`
	Gold   int    `json:"gold"`
	Detail string `json:"detail,omitempty"`
}

type SessionResponse struct {
	Activity string     `json:"activity"`
	Started  *time.Time `json:"started,omitempty"`
	Minutes  int        `json:"minutes,omitempty"`
	Gold     int        `json:"gold,omitempty"`
	Wallet   int        `json:"wallet"`
}

type HistoryResponse struct {
	Records []HistoryRecord `json:"records"`
}

// ── Requests ──────────────────────────────────────────────

type ChangeJobRequest struct {
	Job string `json:"job"`
}

type EquipPetRequest struct {
	Monster string `json:"monster"`
}
