package gamification

import (
	"time"

	"github.com/lifequest/backend/internal/catalog"
	"github.com/lifequest/backend/internal/models"
)

// WeeklyBoss selects the boss for t's ISO week: week number mod list length.
func WeeklyBoss(cat *catalog.Catalog, t time.Time) catalog.Boss {
	if len(cat.Bosses) == 0 {
		return catalog.Boss{}
	}
	_, w := t.ISOWeek()
	return cat.Bosses[w%len(cat.Bosses)]
}

// WeekDamage returns the damage dealt in week. A counter recorded for any
// other week reads as zero.
func WeekDamage(s models.PlayerState, week string) int {
	if s.BossWeek != week {
		return 0
	}
	return s.WeeklyBossDamage
}

// NeedsWeekReset reports whether the stored counter belongs to another
// week and must be zeroed before use.
func NeedsWeekReset(s models.PlayerState, week string) bool {
	return s.BossWeek != week
}

// BossStatusAt summarizes the boss fight for t.
func BossStatusAt(cat *catalog.Catalog, s models.PlayerState, t time.Time) models.BossStatus {
	boss := WeeklyBoss(cat, t)
	week := WeekID(t)
	dmg := WeekDamage(s, week)
	remaining := max(0, boss.HP-dmg)
	return models.BossStatus{
		Key:        boss.Key,
		Name:       boss.Name,
		Weakness:   string(boss.Weakness),
		Week:       week,
		HP:         boss.HP,
		Damage:     dmg,
		Remaining:  remaining,
		RewardGold: boss.RewardGold,
		RewardXP:   boss.RewardXP,
		Defeated:   boss.HP > 0 && boss.HP-dmg <= 0,
		Claimed:    s.BossClaim.ClaimedFor(week),
	}
}
