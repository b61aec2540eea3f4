package gamification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lifequest/backend/internal/catalog"
	"github.com/lifequest/backend/internal/models"
	"github.com/lifequest/backend/internal/store"
)

const testPlayer = "u001"

// script replays a fixed cycle of rolls.
type script struct {
	rolls []float64
	i     int
}

func (s *script) Float64() float64 {
	v := s.rolls[s.i%len(s.rolls)]
	s.i++
	return v
}

func rolls(v ...float64) *script { return &script{rolls: v} }

// quiet rolls a completion with cloudy weather, no floor event and no
// surprise box.
func quiet() *script { return rolls(0.9, 0.5, 0.9) }

type clock struct{ t time.Time }

func (c *clock) now() time.Time           { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// Tuesday 2026-10-20, ISO week 43. Weakness of the day is magic.
var tuesday = time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	return cat
}

type fixture struct {
	svc   *Service
	db    *store.MemoryStore
	clock *clock
}

func newFixture(t *testing.T, now time.Time, src *script) *fixture {
	t.Helper()
	db := store.NewMemoryStore()
	if err := db.EnsurePlayer(context.Background(), testPlayer); err != nil {
		t.Fatalf("EnsurePlayer: %v", err)
	}
	// Start inside the current boss week so begin writes nothing.
	db.SetRaw(testPlayer, store.FieldBossWeek, WeekID(now))
	c := &clock{t: now}
	svc := NewService(db, testCatalog(t), WithRandom(src), WithClock(c.now), WithLocation(time.UTC))
	return &fixture{svc: svc, db: db, clock: c}
}

func (f *fixture) set(field store.Field, value string) {
	f.db.SetRaw(testPlayer, field, value)
}

func (f *fixture) raw(field store.Field) string {
	return f.db.Raw(testPlayer, field)
}

// completions appends n walk records at the given time.
func (f *fixture) completions(t *testing.T, at time.Time, n int) {
	t.Helper()
	f.tasks(t, at, "walk", n)
}

func (f *fixture) tasks(t *testing.T, at time.Time, name string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := f.db.AppendHistory(context.Background(), models.HistoryRecord{
			ID:        fmt.Sprintf("%s-%s-%d", name, at.Format(time.RFC3339), i),
			PlayerID:  testPlayer,
			Kind:      models.HistoryTask,
			Name:      name,
			Amount:    27,
			Status:    "Completed",
			CreatedAt: at,
		})
		if err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}
}

// writesSince returns the fields written after the first n writes.
func (f *fixture) writesSince(n int) []store.Field {
	return f.db.Writes()[n:]
}
