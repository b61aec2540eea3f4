package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrValidation reports a malformed static table. It is a programmer or
// operator error and should surface at startup, never mid-request.
var ErrValidation = errors.New("catalog validation failed")

//go:embed default.yaml
var defaultYAML []byte

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrValidation, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var (
	knownCategories = map[Category]bool{Physical: true, Magic: true, Holy: true}
	knownRarities   = map[Rarity]bool{RarityN: true, RarityR: true, RaritySR: true, RaritySSR: true, RarityUR: true}
	knownSkills     = map[SkillKind]bool{SkillGoldUp: true, SkillXPUp: true, SkillChestUp: true, SkillBossKiller: true}
	knownMetrics    = map[Metric]bool{
		MetricTasks: true, MetricFloor: true, MetricRebirths: true, MetricLevel: true,
		MetricStreak: true, MetricURs: true, MetricMonthTasks: true,
	}
)

// Validate checks cross-table consistency and the draw-table totals.
func (c *Catalog) Validate() error {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if c.MaxFloor < 1 {
		add("max_floor must be >= 1, got %d", c.MaxFloor)
	}
	if c.MaxMonsterLevel < 1 {
		add("max_monster_level must be >= 1, got %d", c.MaxMonsterLevel)
	}
	if c.BatchSize < 1 {
		add("batch_size must be >= 1, got %d", c.BatchSize)
	}

	seenTasks := map[string]bool{}
	for _, t := range c.Tasks {
		if t.Key == "" || seenTasks[t.Key] {
			add("task key %q empty or duplicated", t.Key)
		}
		seenTasks[t.Key] = true
		if t.Reward <= 0 {
			add("task %s: reward must be positive", t.Key)
		}
		if !knownCategories[t.Category] {
			add("task %s: unknown category %q", t.Key, t.Category)
		}
		if _, ok := c.Bonuses.DifficultyMultipliers[t.Difficulty]; !ok {
			add("task %s: difficulty %q has no multiplier", t.Key, t.Difficulty)
		}
	}
	if len(c.Tasks) == 0 {
		add("no tasks defined")
	}

	for _, j := range c.Jobs {
		if j.Affinity != "" && j.Affinity != AffinityAllRandom && !knownCategories[Category(j.Affinity)] {
			add("job %s: unknown affinity %q", j.Key, j.Affinity)
		}
	}

	seenMonsters := map[string]bool{}
	for _, m := range c.Monsters {
		if m.Key == "" || seenMonsters[m.Key] {
			add("monster key %q empty or duplicated", m.Key)
		}
		seenMonsters[m.Key] = true
		if !knownRarities[m.Rarity] {
			add("monster %s: unknown rarity %q", m.Key, m.Rarity)
		}
		if !knownSkills[m.Skill] {
			add("monster %s: unknown skill %q", m.Key, m.Skill)
		}
	}
	if len(c.Monsters) == 0 {
		add("no monsters defined")
	}

	if len(c.Bosses) == 0 {
		add("no weekly bosses defined")
	}
	for _, b := range c.Bosses {
		if b.HP <= 0 {
			add("boss %s: hp must be positive", b.Key)
		}
		if !knownCategories[b.Weakness] {
			add("boss %s: unknown weakness %q", b.Key, b.Weakness)
		}
	}

	for _, a := range c.Achievements {
		if !knownMetrics[a.Metric] {
			add("achievement %s: unknown metric %q", a.ID, a.Metric)
		}
	}
	for _, t := range c.Titles {
		if !knownMetrics[t.Metric] {
			add("title %s: unknown metric %q", t.ID, t.Metric)
		}
	}
	for _, m := range c.Missions {
		if m.Scope != ScopeDaily && m.Scope != ScopeWeekly {
			add("mission %s: unknown scope %q", m.ID, m.Scope)
		}
	}
	for _, s := range c.Seasonal {
		if s.Month < 1 || s.Month > 12 {
			add("seasonal mission %s: month %d out of range", s.Name, s.Month)
		}
		if !seenTasks[s.Task] {
			add("seasonal mission %s: unknown task %q", s.Name, s.Task)
		}
	}

	validateDrawTable("standard_draw", c.StandardDraw, c.DuplicateCurrency, add)
	validateDrawTable("guaranteed_draw", c.GuaranteedDraw, c.DuplicateCurrency, add)

	eventWeight := 0
	for _, e := range c.FloorEvents {
		if e.Weight < 0 || e.Min > e.Max {
			add("floor event %s: bad weight or range", e.Kind)
		}
		eventWeight += e.Weight
	}
	if len(c.FloorEvents) > 0 && eventWeight == 0 {
		add("floor events have zero total weight")
	}

	if c.SurpriseChance < 0 || c.SurpriseChance > 1 {
		add("surprise_chance %v outside [0,1]", c.SurpriseChance)
	}
	if c.SurpriseChance > 0 && len(c.SurpriseRewards) == 0 {
		add("surprise_chance set without surprise_rewards")
	}

	if len(c.Bonuses.WeaknessRotation) == 0 {
		add("weakness_rotation is empty")
	}
	for _, cat := range c.Bonuses.WeaknessRotation {
		if !knownCategories[cat] {
			add("weakness_rotation: unknown category %q", cat)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, "; "))
	}
	return nil
}

func validateDrawTable(name string, t DrawTable, rates map[Rarity]int, add func(string, ...any)) {
	if len(t.Tiers) == 0 {
		add("%s: no tiers", name)
		return
	}
	if sum := t.Sum(); sum != t.Total {
		add("%s: weights sum to %d, declared total %d", name, sum, t.Total)
	}
	for _, tier := range t.Tiers {
		if !knownRarities[tier.Rarity] {
			add("%s: unknown rarity %q", name, tier.Rarity)
		}
		if tier.Weight < 0 {
			add("%s: negative weight for %s", name, tier.Rarity)
		}
		if _, ok := rates[tier.Rarity]; !ok {
			add("%s: rarity %s has no duplicate_currency rate", name, tier.Rarity)
		}
	}
}

func rebirthFallback(n int) string {
	return fmt.Sprintf("Wanderer of the %d Cycles", n)
}
