package gamification

import (
	"testing"
	"time"

	"github.com/lifequest/backend/internal/models"
)

func task(at time.Time, name string) models.HistoryRecord {
	return models.HistoryRecord{Kind: models.HistoryTask, Name: name, CreatedAt: at}
}

func TestSummarize(t *testing.T) {
	now := tuesday
	recs := []models.HistoryRecord{
		task(now, "walk"),
		task(now.Add(-time.Hour), "code"),
		{Kind: models.HistoryItem, Name: "stamina_potion", CreatedAt: now},
		{Kind: models.HistoryDraw, Name: "slime", CreatedAt: now},
		task(now.AddDate(0, 0, -1), "walk"), // Monday, same ISO week
		task(now.AddDate(0, 0, -3), "walk"), // Saturday, previous week
		task(now.AddDate(0, -1, 0), "walk"), // September
	}

	a := Summarize(recs, now)
	if a.Total != 6 {
		t.Errorf("Total = %d, want 6", a.Total)
	}
	if a.Today != 3 {
		t.Errorf("Today = %d, want 3", a.Today)
	}
	if a.Week != 4 {
		t.Errorf("Week = %d, want 4", a.Week)
	}
	if a.Month != 5 {
		t.Errorf("Month = %d, want 5", a.Month)
	}
	if a.MonthTasks["walk"] != 3 || a.MonthTasks["code"] != 1 || a.MonthTasks["stamina_potion"] != 0 {
		t.Errorf("MonthTasks = %v", a.MonthTasks)
	}
}

func TestSummarizeUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	now := time.Date(2026, 10, 20, 8, 0, 0, 0, tokyo)
	// 23:30 UTC on the 19th is already the 20th in Tokyo.
	recs := []models.HistoryRecord{task(time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC), "walk")}
	if a := Summarize(recs, now); a.Today != 1 {
		t.Errorf("Today = %d, want 1", a.Today)
	}
}

func TestStreak(t *testing.T) {
	now := tuesday
	day := func(n int) time.Time { return now.AddDate(0, 0, -n) }
	today := DayID(now)

	tests := []struct {
		name    string
		days    []int
		protect string
		want    int
	}{
		{"four consecutive days", []int{0, 1, 2, 3}, "", 4},
		{"gap yesterday", []int{0, 2, 3}, "", 1},
		{"nothing today", []int{1, 2, 3}, "", 0},
		{"protected today", []int{1, 2}, today, 3},
		{"protected other day", []int{1, 2}, DayID(day(1)), 0},
		{"empty", nil, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recs []models.HistoryRecord
			for _, n := range tt.days {
				recs = append(recs, task(day(n), "walk"))
			}
			if got := Streak(Summarize(recs, now), now, tt.protect); got != tt.want {
				t.Errorf("Streak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoginStreak(t *testing.T) {
	now := tuesday
	tests := []struct {
		name      string
		prev      int
		lastLogin string
		want      int
	}{
		{"first login", 0, "", 1},
		{"consecutive", 3, "2026-10-19", 4},
		{"same day", 4, "2026-10-20", 4},
		{"gap restarts", 6, "2026-10-17", 1},
	}
	for _, tt := range tests {
		if got := LoginStreak(tt.prev, tt.lastLogin, now); got != tt.want {
			t.Errorf("%s: LoginStreak(%d, %q) = %d, want %d", tt.name, tt.prev, tt.lastLogin, got, tt.want)
		}
	}
}
