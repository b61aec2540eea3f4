package models

import (
	"slices"
	"strings"
	"time"
)

// ── Player Record ─────────────────────────────────────────

// PlayerState is the in-memory snapshot of one player's persisted record.
type PlayerState struct {
	PlayerID string `json:"player_id"`

	Gold        int `json:"gold"`
	CurrentXP   int `json:"current_xp"`
	NextLevelXP int `json:"next_level_xp"`
	Level       int `json:"level"`

	DungeonFloor int    `json:"dungeon_floor"`
	RebirthCount int    `json:"rebirth_count"`
	Title        string `json:"title"`
	JobClass     string `json:"job_class"`
	EquippedPet  string `json:"equipped_pet,omitempty"`

	WeeklyBossDamage int    `json:"weekly_boss_damage"`
	BossWeek         string `json:"boss_week"`

	LoginStreak int        `json:"login_streak"`
	LastLogin   ClaimGuard `json:"last_login"`

	DailyClaim      ClaimGuard `json:"daily_claimed"`
	WeeklyClaim     ClaimGuard `json:"weekly_claimed"`
	SeasonalClaim   ClaimGuard `json:"seasonal_claimed"`
	BossClaim       ClaimGuard `json:"boss_claimed"`
	WeeklyTicket    ClaimGuard `json:"last_weekly_ticket"`
	MonthlySRTicket ClaimGuard `json:"last_monthly_sr_ticket"`
	FreeGacha       ClaimGuard `json:"last_free_gacha"`
	Pomodoro        ClaimGuard `json:"last_pomodoro"`
	RestWeek        ClaimGuard `json:"last_rest_week"`

	StreakProtectDate string `json:"streak_protect_date,omitempty"`

	Achievements    IDSet `json:"achievements"`
	UnlockedTitles  IDSet `json:"unlocked_titles"`
	ClaimedMissions IDSet `json:"claimed_missions"`

	GachaTickets int `json:"gacha_tickets"`

	FocusStart  *time.Time `json:"focus_start,omitempty"`
	FocusLog    string     `json:"focus_log,omitempty"`
	OutingStart *time.Time `json:"outing_start,omitempty"`
}

// ClaimGuard is a write-once-per-period sentinel. It holds the id of the
// last period whose reward was claimed.
type ClaimGuard string

// ClaimedFor reports whether the reward for period has already been taken.
func (g ClaimGuard) ClaimedFor(period string) bool {
	return period != "" && string(g) == period
}

// IDSet is a sorted, duplicate-free set of ids persisted as a
// comma-delimited string.
type IDSet []string

// ParseIDSet decodes a delimited string. Blank entries are dropped.
func ParseIDSet(s string) IDSet {
	var out IDSet
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (s IDSet) Has(id string) bool {
	_, found := slices.BinarySearch(s, id)
	return found
}

// With returns a new set containing s plus ids.
func (s IDSet) With(ids ...string) IDSet {
	out := make(IDSet, 0, len(s)+len(ids))
	out = append(out, s...)
	out = append(out, ids...)
	slices.Sort(out)
	return slices.Compact(out)
}

func (s IDSet) String() string {
	return strings.Join(s, ",")
}

// ── Inventory ─────────────────────────────────────────────

type OwnedMonster struct {
	PlayerID   string    `json:"player_id"`
	MonsterKey string    `json:"monster_key"`
	Rarity     string    `json:"rarity"`
	Level      int       `json:"level"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// ── History ───────────────────────────────────────────────

const (
	HistoryTask = "task"
	HistoryItem = "item"
	HistoryDraw = "draw"
)

// HistoryRecord is one append-only row of task or draw history.
type HistoryRecord struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Amount    int       `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// IsCompletion reports whether the record counts toward streaks, missions
// and quests. Stamina potions count too.
func (h HistoryRecord) IsCompletion() bool {
	return h.Kind == HistoryTask || h.Kind == HistoryItem
}
