package gamification

import (
	"github.com/lifequest/backend/internal/catalog"
	"github.com/lifequest/backend/internal/models"
)

// Metrics are the aggregates achievement and title thresholds compare
// against.
type Metrics struct {
	Tasks      int
	Floor      int
	Rebirths   int
	Level      int
	Streak     int
	URsOwned   int
	MonthTasks int
}

func (m Metrics) Value(metric catalog.Metric) int {
	switch metric {
	case catalog.MetricTasks:
		return m.Tasks
	case catalog.MetricFloor:
		return m.Floor
	case catalog.MetricRebirths:
		return m.Rebirths
	case catalog.MetricLevel:
		return m.Level
	case catalog.MetricStreak:
		return m.Streak
	case catalog.MetricURs:
		return m.URsOwned
	case catalog.MetricMonthTasks:
		return m.MonthTasks
	}
	return 0
}

// PendingAchievements returns the achievements the player qualifies for
// whose ids are not yet recorded. The caller records the ids before paying.
func PendingAchievements(cat *catalog.Catalog, m Metrics, unlocked models.IDSet) []catalog.Achievement {
	var out []catalog.Achievement
	for _, a := range cat.Achievements {
		if unlocked.Has(a.ID) {
			continue
		}
		if m.Value(a.Metric) >= a.Threshold {
			out = append(out, a)
		}
	}
	return out
}

// NewTitles returns titles that became available. Titles are never
// re-locked, so only thresholds crossed for the first time are listed.
func NewTitles(cat *catalog.Catalog, m Metrics, unlocked models.IDSet) []catalog.Title {
	var out []catalog.Title
	for _, t := range cat.Titles {
		if !unlocked.Has(t.ID) && m.Value(t.Metric) >= t.Threshold {
			out = append(out, t)
		}
	}
	return out
}
