package gamification

import (
	"time"

	"github.com/lifequest/backend/internal/models"
)

// Activity aggregates completion history relative to one instant.
type Activity struct {
	ByDay      map[string]int
	Total      int
	Today      int
	Week       int
	Month      int
	MonthTasks map[string]int
}

// Summarize counts the completions in recs. Days are taken in now's
// location. Draw records are ignored.
func Summarize(recs []models.HistoryRecord, now time.Time) Activity {
	a := Activity{ByDay: make(map[string]int), MonthTasks: make(map[string]int)}
	loc := now.Location()
	today, week, month := DayID(now), WeekID(now), MonthID(now)
	for _, rec := range recs {
		if !rec.IsCompletion() {
			continue
		}
		t := rec.CreatedAt.In(loc)
		a.Total++
		a.ByDay[DayID(t)]++
		if DayID(t) == today {
			a.Today++
		}
		if WeekID(t) == week {
			a.Week++
		}
		if MonthID(t) == month {
			a.Month++
			if rec.Kind == models.HistoryTask {
				a.MonthTasks[rec.Name]++
			}
		}
	}
	return a
}

// Streak walks back from today counting days with at least one completion.
// An empty today still counts when protectDate is today's date.
func Streak(a Activity, now time.Time, protectDate string) int {
	today := DayID(now)
	d := StartOfDay(now)
	n := 0
	for {
		id := DayID(d)
		if a.ByDay[id] == 0 && !(id == today && protectDate == today) {
			return n
		}
		n++
		d = d.AddDate(0, 0, -1)
	}
}

// LoginStreak returns the consecutive-login count after logging in today.
// A gap of more than one day restarts at 1.
func LoginStreak(prev int, lastLogin string, now time.Time) int {
	yesterday := DayID(StartOfDay(now).AddDate(0, 0, -1))
	switch lastLogin {
	case DayID(now):
		return max(1, prev)
	case yesterday:
		return prev + 1
	default:
		return 1
	}
}
