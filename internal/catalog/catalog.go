// Package catalog holds the static game tables: tasks, jobs, monsters,
// weekly bosses, achievements, missions, loot tables and the bonus rules
// the reward pipeline applies.
//
// The tables are YAML. A default set is embedded in the binary; an operator
// may point CATALOG_PATH at a replacement file. Every load is validated and
// a malformed table is rejected with ErrValidation.
package catalog

import (
	"time"
)

type Category string

const (
	Physical Category = "physical"
	Magic    Category = "magic"
	Holy     Category = "holy"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
)

type Rarity string

const (
	RarityN   Rarity = "N"
	RarityR   Rarity = "R"
	RaritySR  Rarity = "SR"
	RaritySSR Rarity = "SSR"
	RarityUR  Rarity = "UR"
)

type SkillKind string

const (
	SkillGoldUp     SkillKind = "gold_up"
	SkillXPUp       SkillKind = "xp_up"
	SkillChestUp    SkillKind = "chest_up"
	SkillBossKiller SkillKind = "boss_killer"
)

// AffinityAllRandom marks the gambler job: every completion flips a coin.
const AffinityAllRandom = "all_random"

type Task struct {
	Key         string     `yaml:"key" json:"key"`
	Name        string     `yaml:"name" json:"name"`
	Reward      int        `yaml:"reward" json:"reward"`
	Category    Category   `yaml:"category" json:"category"`
	Difficulty  Difficulty `yaml:"difficulty" json:"difficulty"`
	Description string     `yaml:"description" json:"description,omitempty"`
}

type Job struct {
	Key      string `yaml:"key" json:"key"`
	Name     string `yaml:"name" json:"name"`
	Affinity string `yaml:"affinity" json:"affinity,omitempty"`
}

type Monster struct {
	Key    string    `yaml:"key" json:"key"`
	Name   string    `yaml:"name" json:"name"`
	Rarity Rarity    `yaml:"rarity" json:"rarity"`
	Skill  SkillKind `yaml:"skill" json:"skill"`
	Value  float64   `yaml:"value" json:"value"`
}

type Boss struct {
	Key        string   `yaml:"key" json:"key"`
	Name       string   `yaml:"name" json:"name"`
	Weakness   Category `yaml:"weakness" json:"weakness"`
	HP         int      `yaml:"hp" json:"hp"`
	RewardGold int      `yaml:"reward_gold" json:"reward_gold"`
	RewardXP   int      `yaml:"reward_xp" json:"reward_xp"`
}

// Metric names an aggregate a rule threshold is compared against.
type Metric string

const (
	MetricTasks      Metric = "tasks"
	MetricFloor      Metric = "floor"
	MetricRebirths   Metric = "rebirths"
	MetricLevel      Metric = "level"
	MetricStreak     Metric = "streak"
	MetricURs        Metric = "ur_owned"
	MetricMonthTasks Metric = "month_tasks"
)

type Achievement struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Metric      Metric `yaml:"metric" json:"metric"`
	Threshold   int    `yaml:"threshold" json:"threshold"`
	Reward      int    `yaml:"reward" json:"reward"`
}

type Scope string

const (
	ScopeDaily  Scope = "daily"
	ScopeWeekly Scope = "weekly"
)

type Mission struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Scope  Scope  `yaml:"scope" json:"scope"`
	Target int    `yaml:"target" json:"target"`
	Reward int    `yaml:"reward" json:"reward"`
}

// Quest is a period-wide completion goal with a single guarded payout.
type Quest struct {
	Target int `yaml:"target" json:"target"`
	Reward int `yaml:"reward" json:"reward"`
}

type SeasonalMission struct {
	Month  int    `yaml:"month" json:"month"`
	Name   string `yaml:"name" json:"name"`
	Task   string `yaml:"task" json:"task"`
	Target int    `yaml:"target" json:"target"`
	Reward int    `yaml:"reward" json:"reward"`
}

type Title struct {
	ID        string  `yaml:"id" json:"id"`
	Name      string  `yaml:"name" json:"name"`
	Metric    Metric  `yaml:"metric" json:"metric"`
	Threshold int     `yaml:"threshold" json:"threshold"`
	Bonus     float64 `yaml:"bonus" json:"bonus"`
}

type Tier struct {
	Rarity Rarity `yaml:"rarity" json:"rarity"`
	Weight int    `yaml:"weight" json:"weight"`
}

// DrawTable is a weighted rarity table. Weights must sum to Total.
type DrawTable struct {
	Total int    `yaml:"total" json:"total"`
	Tiers []Tier `yaml:"tiers" json:"tiers"`
}

// Rarities lists the table's tiers in declaration order.
func (t DrawTable) Rarities() []Rarity {
	out := make([]Rarity, len(t.Tiers))
	for i, tier := range t.Tiers {
		out[i] = tier.Rarity
	}
	return out
}

// Sum adds up the tier weights.
func (t DrawTable) Sum() int {
	sum := 0
	for _, tier := range t.Tiers {
		sum += tier.Weight
	}
	return sum
}

type FloorEvent struct {
	Kind   string `yaml:"kind" json:"kind"`
	Weight int    `yaml:"weight" json:"weight"`
	Min    int    `yaml:"min" json:"min"`
	Max    int    `yaml:"max" json:"max"`
}

type SurpriseReward struct {
	Kind   string `yaml:"kind" json:"kind"`
	Amount int    `yaml:"amount" json:"amount"`
}

const (
	SurpriseGold   = "gold"
	SurpriseXP     = "xp"
	SurpriseTicket = "ticket"
)

type WeatherRule struct {
	Kind       string     `yaml:"kind" json:"kind"`
	Categories []Category `yaml:"categories" json:"categories"`
}

// Bonuses is the rule set applied by the reward pipeline, in order.
type Bonuses struct {
	DifficultyMultipliers map[Difficulty]float64 `yaml:"difficulty_multipliers"`
	JobAffinity           float64                `yaml:"job_affinity"`
	JackpotChance         float64                `yaml:"jackpot_chance"`
	JackpotMultiplier     float64                `yaml:"jackpot_multiplier"`
	BustMultiplier        float64                `yaml:"bust_multiplier"`
	CompanionBase         float64                `yaml:"companion_base"`
	CompanionPerLevel     float64                `yaml:"companion_per_level"`
	FirstOfDay            float64                `yaml:"first_of_day"`
	SequentialFlat        map[int]int            `yaml:"sequential_flat"`
	RebirthStep           float64                `yaml:"rebirth_step"`
	WeekendEvent          float64                `yaml:"weekend_event"`
	Weekday               map[string]float64     `yaml:"weekday"`
	Weather               []WeatherRule          `yaml:"weather"`
	WeatherBonus          float64                `yaml:"weather_bonus"`
	WeaknessRotation      []Category             `yaml:"weakness_rotation"`
	WeaknessMultiplier    int                    `yaml:"weakness_multiplier"`
}

// WeekdayMultiplier returns the bonus for t's weekday, or 1.
func (b Bonuses) WeekdayMultiplier(t time.Time) float64 {
	if m, ok := b.Weekday[t.Weekday().String()]; ok {
		return m
	}
	return 1
}

type Prices struct {
	JobChange      int `yaml:"job_change"`
	SingleDraw     int `yaml:"single_draw"`
	TenDraw        int `yaml:"ten_draw"`
	WeeklyTicket   int `yaml:"weekly_ticket"`
	MonthlySR      int `yaml:"monthly_sr"`
	StaminaPotion  int `yaml:"stamina_potion"`
	BossScroll     int `yaml:"boss_scroll"`
	FloorSkip      int `yaml:"floor_skip"`
	StreakProtect  int `yaml:"streak_protect"`
	BossScrollDmg  int `yaml:"boss_scroll_damage"`
	FloorSkipCount int `yaml:"floor_skip_floors"`
	StaminaCap     int `yaml:"stamina_cap"`
	Pomodoro       int `yaml:"pomodoro_reward"`
	OutingPerHour  int `yaml:"outing_per_hour"`
	OutingCap      int `yaml:"outing_cap"`
	FocusLogCap    int `yaml:"focus_log_cap"`
}

type Catalog struct {
	MaxFloor          int               `yaml:"max_floor"`
	MaxMonsterLevel   int               `yaml:"max_monster_level"`
	BatchSize         int               `yaml:"batch_size"`
	Tasks             []Task            `yaml:"tasks"`
	Jobs              []Job             `yaml:"jobs"`
	Monsters          []Monster         `yaml:"monsters"`
	Bosses            []Boss            `yaml:"bosses"`
	Achievements      []Achievement     `yaml:"achievements"`
	Titles            []Title           `yaml:"titles"`
	RebirthTitles     []string          `yaml:"rebirth_titles"`
	Missions          []Mission         `yaml:"missions"`
	DailyQuest        Quest             `yaml:"daily_quest"`
	WeeklyQuest       Quest             `yaml:"weekly_quest"`
	Seasonal          []SeasonalMission `yaml:"seasonal"`
	LoginBonus        map[int]int       `yaml:"login_bonus"`
	StandardDraw      DrawTable         `yaml:"standard_draw"`
	GuaranteedDraw    DrawTable         `yaml:"guaranteed_draw"`
	DuplicateCurrency map[Rarity]int    `yaml:"duplicate_currency"`
	FloorEvents       []FloorEvent      `yaml:"floor_events"`
	SurpriseChance    float64           `yaml:"surprise_chance"`
	SurpriseRewards   []SurpriseReward  `yaml:"surprise_rewards"`
	Bonuses           Bonuses           `yaml:"bonuses"`
	Prices            Prices            `yaml:"prices"`
}

func (c *Catalog) Task(key string) (Task, bool) {
	for _, t := range c.Tasks {
		if t.Key == key {
			return t, true
		}
	}
	return Task{}, false
}

func (c *Catalog) Job(key string) (Job, bool) {
	for _, j := range c.Jobs {
		if j.Key == key {
			return j, true
		}
	}
	return Job{}, false
}

func (c *Catalog) Monster(key string) (Monster, bool) {
	for _, m := range c.Monsters {
		if m.Key == key {
			return m, true
		}
	}
	return Monster{}, false
}

// MonstersOf returns the catalog entries of one rarity, in catalog order.
func (c *Catalog) MonstersOf(r Rarity) []Monster {
	var out []Monster
	for _, m := range c.Monsters {
		if m.Rarity == r {
			out = append(out, m)
		}
	}
	return out
}

// SeasonalFor returns the mission running in the given month, if any.
func (c *Catalog) SeasonalFor(month time.Month) (SeasonalMission, bool) {
	for _, s := range c.Seasonal {
		if s.Month == int(month) {
			return s, true
		}
	}
	return SeasonalMission{}, false
}

// RebirthTitle returns the title earned at the n-th rebirth. Counts past
// the end of the table get a generated label.
func (c *Catalog) RebirthTitle(n int) string {
	if n <= 0 {
		return ""
	}
	if n < len(c.RebirthTitles) {
		return c.RebirthTitles[n]
	}
	return rebirthFallback(n)
}
