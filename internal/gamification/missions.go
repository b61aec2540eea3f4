package gamification

import (
	"time"

	"github.com/lifequest/backend/internal/catalog"
	"github.com/lifequest/backend/internal/models"
)

// MissionKey is the id recorded in claimed_missions: "daily_1@2026-10-17".
func MissionKey(id, period string) string {
	return id + "@" + period
}

// MissionPeriod returns the period a mission of scope currently runs in.
func MissionPeriod(scope catalog.Scope, now time.Time) string {
	if scope == catalog.ScopeWeekly {
		return WeekID(now)
	}
	return DayID(now)
}

// LiveMissionKeys drops claimed keys whose period has ended or whose
// mission is no longer in the catalog.
func LiveMissionKeys(cat *catalog.Catalog, claimed models.IDSet, now time.Time) models.IDSet {
	out := models.IDSet{}
	for _, m := range cat.Missions {
		if key := MissionKey(m.ID, MissionPeriod(m.Scope, now)); claimed.Has(key) {
			out = append(out, key)
		}
	}
	return out.With()
}

// Missions reports progress on every mission for the current periods.
func Missions(cat *catalog.Catalog, a Activity, claimed models.IDSet, now time.Time) []models.MissionStatus {
	out := make([]models.MissionStatus, 0, len(cat.Missions))
	for _, m := range cat.Missions {
		progress := a.Today
		if m.Scope == catalog.ScopeWeekly {
			progress = a.Week
		}
		period := MissionPeriod(m.Scope, now)
		out = append(out, models.MissionStatus{
			ID:       m.ID,
			Name:     m.Name,
			Scope:    string(m.Scope),
			Period:   period,
			Target:   m.Target,
			Progress: progress,
			Reward:   m.Reward,
			Complete: progress >= m.Target,
			Claimed:  claimed.Has(MissionKey(m.ID, period)),
		})
	}
	return out
}

func questStatus(name string, q catalog.Quest, progress int, claimed bool) models.QuestStatus {
	return models.QuestStatus{
		Name:     name,
		Target:   q.Target,
		Progress: progress,
		Reward:   q.Reward,
		Complete: progress >= q.Target,
		Claimed:  claimed,
	}
}

// SeasonalStatus reports the mission running this month, or nil.
func SeasonalStatus(cat *catalog.Catalog, a Activity, s models.PlayerState, now time.Time) *models.QuestStatus {
	sm, ok := cat.SeasonalFor(now.Month())
	if !ok {
		return nil
	}
	q := questStatus(sm.Name, catalog.Quest{Target: sm.Target, Reward: sm.Reward}, a.MonthTasks[sm.Task], s.SeasonalClaim.ClaimedFor(MonthID(now)))
	return &q
}

// LoginBonus returns the gold paid on day n of a login streak.
func LoginBonus(cat *catalog.Catalog, n int) int {
	return cat.LoginBonus[n]
}
