package gamification

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/lifequest/backend/internal/catalog"
	"github.com/lifequest/backend/internal/models"
	"github.com/lifequest/backend/internal/random"
)

// Companion is the equipped monster together with its owned level.
type Companion struct {
	Monster catalog.Monster
	Level   int
}

// RewardInput is everything the bonus stack reads for one completion.
type RewardInput struct {
	Task      catalog.Task
	Player    models.PlayerState
	Companion *Companion
	// TodayCount is the number of completions already recorded today.
	TodayCount int
	Now        time.Time
}

// RewardCalculator runs the fixed-order bonus stack. It performs no I/O.
type RewardCalculator struct {
	cat *catalog.Catalog
	rng random.Source
}

func NewRewardCalculator(cat *catalog.Catalog, rng random.Source) *RewardCalculator {
	if rng == nil {
		rng = random.Default()
	}
	return &RewardCalculator{cat: cat, rng: rng}
}

// stage multiplies v by m, truncates, and floors the result at 1.
func stage(v int, m float64) int {
	return max(1, int(math.Floor(float64(v)*m+1e-9)))
}

// Calculate applies the eleven bonus steps in order.
func (c *RewardCalculator) Calculate(in RewardInput) models.Payout {
	b := c.cat.Bonuses
	var tags []string
	tag := func(format string, args ...any) { tags = append(tags, fmt.Sprintf(format, args...)) }

	// 1. difficulty
	diff, ok := b.DifficultyMultipliers[in.Task.Difficulty]
	if !ok {
		diff = 1
	}
	v := max(1, int(math.Round(float64(in.Task.Reward)*diff)))
	tag("base %d (%s x%.2g)", v, in.Task.Difficulty, diff)

	// 2. job affinity
	if job, ok := c.cat.Job(in.Player.JobClass); ok && job.Affinity != "" {
		switch {
		case job.Affinity == catalog.AffinityAllRandom:
			if random.Chance(c.rng, b.JackpotChance) {
				v = stage(v, b.JackpotMultiplier)
				tag("jackpot x%.2g", b.JackpotMultiplier)
			} else {
				v = stage(v, b.BustMultiplier)
				tag("bust x%.2g", b.BustMultiplier)
			}
		case job.Affinity == string(in.Task.Category):
			v = stage(v, b.JobAffinity)
			tag("%s affinity x%.2g", job.Name, b.JobAffinity)
		}
	}

	// 3. companion
	if cp := in.Companion; cp != nil && (cp.Monster.Skill == catalog.SkillGoldUp || cp.Monster.Skill == catalog.SkillXPUp) {
		m := (1 + b.CompanionBase) * (1 + b.CompanionPerLevel*float64(max(1, cp.Level)-1))
		v = stage(v, m)
		tag("%s Lv%d x%.3g", cp.Monster.Name, cp.Level, m)
	}

	// 4. first of the day
	if in.TodayCount == 0 {
		v = stage(v, b.FirstOfDay)
		tag("first today x%.2g", b.FirstOfDay)
	}

	// 5. sequential flat bonus
	if flat := b.SequentialFlat[in.TodayCount]; flat > 0 {
		v += flat
		tag("completion #%d +%d", in.TodayCount+1, flat)
	}

	// 6. rebirth
	if n := in.Player.RebirthCount; n > 0 {
		m := 1 + b.RebirthStep*float64(n)
		v = stage(v, m)
		tag("rebirth %d x%.2g", n, m)
	}

	// 7. titles, in catalog order
	for _, t := range c.cat.Titles {
		if in.Player.UnlockedTitles.Has(t.ID) {
			v = stage(v, t.Bonus)
			tag("%s x%.3g", t.Name, t.Bonus)
		}
	}

	// 8. event
	if IsWeekend(in.Now) && b.WeekendEvent > 0 {
		v = stage(v, b.WeekendEvent)
		tag("weekend x%.2g", b.WeekendEvent)
	}

	// 9. weekday
	if m := b.WeekdayMultiplier(in.Now); m != 1 {
		v = stage(v, m)
		tag("%s x%.3g", in.Now.Weekday(), m)
	}

	// 10. weather
	var weather string
	if len(b.Weather) > 0 {
		rule := b.Weather[random.IntN(c.rng, len(b.Weather))]
		weather = rule.Kind
		if slices.Contains(rule.Categories, in.Task.Category) {
			v = stage(v, b.WeatherBonus)
			tag("%s weather x%.3g", rule.Kind, b.WeatherBonus)
		}
	}

	// 11. boss weakness
	weakness := c.TodayWeakness(in.Now)
	damage := v
	if weakness == in.Task.Category {
		damage = v * b.WeaknessMultiplier
		tag("weakness %s x%d damage", weakness, b.WeaknessMultiplier)
	}
	if cp := in.Companion; cp != nil && cp.Monster.Skill == catalog.SkillBossKiller {
		damage = stage(damage, cp.Monster.Value)
		tag("%s boss damage x%.2g", cp.Monster.Name, cp.Monster.Value)
	}

	return models.Payout{
		Gold:       v,
		XP:         v,
		BossDamage: damage,
		Weakness:   string(weakness),
		Weather:    weather,
		Tags:       tags,
	}
}

// TodayWeakness is the category that deals extra boss damage on t's
// weekday. It rotates every day, independent of the active boss.
func (c *RewardCalculator) TodayWeakness(t time.Time) catalog.Category {
	rot := c.cat.Bonuses.WeaknessRotation
	if len(rot) == 0 {
		return ""
	}
	return rot[weekdayIndex(t)%len(rot)]
}

// RollFloorEvent rolls the mini-event. chest multiplies treasure gold and
// is 1 without a chest_up companion.
func (c *RewardCalculator) RollFloorEvent(chest float64) models.FloorEvent {
	events := c.cat.FloorEvents
	weights := make([]int, len(events))
	for i, e := range events {
		weights[i] = e.Weight
	}
	i := random.Weighted(c.rng, weights)
	if i < 0 {
		return models.FloorEvent{Kind: "nothing"}
	}
	e := events[i]
	gold := random.Between(c.rng, e.Min, e.Max)
	if gold > 0 && chest > 1 {
		gold = int(math.Floor(float64(gold)*chest + 1e-9))
	}
	return models.FloorEvent{Kind: e.Kind, Gold: gold}
}

// RollSurprise returns a surprise box, or nil when none drops.
func (c *RewardCalculator) RollSurprise() *models.SurpriseBox {
	rewards := c.cat.SurpriseRewards
	if len(rewards) == 0 || !random.Chance(c.rng, c.cat.SurpriseChance) {
		return nil
	}
	r := rewards[random.IntN(c.rng, len(rewards))]
	return &models.SurpriseBox{Kind: r.Kind, Amount: r.Amount}
}
