package store

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/lifequest/backend/internal/database"
	"github.com/lifequest/backend/internal/models"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db, "sqlite"); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewSQLStore(db, "sqlite")
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: "postgres"}
	got := pg.q(`UPDATE players SET gold = ? WHERE player_id = ?`)
	want := `UPDATE players SET gold = $1 WHERE player_id = $2`
	if got != want {
		t.Errorf("q() = %q, want %q", got, want)
	}
	lite := &SQLStore{dialect: "sqlite"}
	if got := lite.q(`a = ?`); got != `a = ?` {
		t.Errorf("sqlite q() = %q, want unchanged", got)
	}
}

func TestSQLStorePlayerRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	if _, _, err := s.ReadPlayer(ctx, "u001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReadPlayer before ensure: err = %v, want ErrNotFound", err)
	}
	if err := s.EnsurePlayer(ctx, "u001"); err != nil {
		t.Fatal(err)
	}
	if err := s.EnsurePlayer(ctx, "u001"); err != nil {
		t.Fatalf("second EnsurePlayer: %v", err)
	}

	st, h, err := s.ReadPlayer(ctx, "u001")
	if err != nil {
		t.Fatal(err)
	}
	if st.Level != 1 || st.NextLevelXP != 100 || st.DungeonFloor != 1 {
		t.Errorf("fresh player = %+v", st)
	}

	start := time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)
	writes := map[Field]string{
		FieldGold:         "480",
		FieldDailyClaimed: "2026-10-17",
		FieldAchievements: models.IDSet{"first_task", "task_10"}.String(),
		FieldFocusStart:   EncodeTime(&start),
	}
	for f, v := range writes {
		if err := s.WriteField(ctx, h, f, v); err != nil {
			t.Fatalf("WriteField(%s): %v", f, err)
		}
	}

	st, _, err = s.ReadPlayer(ctx, "u001")
	if err != nil {
		t.Fatal(err)
	}
	if st.Gold != 480 {
		t.Errorf("Gold = %d, want 480", st.Gold)
	}
	if !st.DailyClaim.ClaimedFor("2026-10-17") {
		t.Errorf("DailyClaim = %q", st.DailyClaim)
	}
	if !st.Achievements.Has("task_10") {
		t.Errorf("Achievements = %v", st.Achievements)
	}
	if st.FocusStart == nil || !st.FocusStart.Equal(start) {
		t.Errorf("FocusStart = %v, want %v", st.FocusStart, start)
	}
}

func TestSQLStoreWriteFieldErrors(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	if err := s.WriteField(ctx, RowHandle{PlayerID: "u001"}, Field("gold; DROP TABLE players"), "1"); !errors.Is(err, ErrSchema) {
		t.Errorf("unknown field err = %v, want ErrSchema", err)
	}
	if err := s.WriteField(ctx, RowHandle{PlayerID: "nobody"}, FieldGold, "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing row err = %v, want ErrNotFound", err)
	}
}

func TestSQLStoreSchemaError(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	if err := s.EnsurePlayer(ctx, "u001"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(`UPDATE players SET level = 'seven' WHERE player_id = 'u001'`); err != nil {
		t.Fatal(err)
	}
	_, _, err := s.ReadPlayer(ctx, "u001")
	var se *SchemaError
	if !errors.As(err, &se) || se.Field != FieldLevel {
		t.Errorf("err = %v, want SchemaError on level", err)
	}
}

func TestSQLStoreHistory(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	base := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)

	recs := []models.HistoryRecord{
		{ID: "h1", PlayerID: "u001", Kind: models.HistoryTask, Name: "Walk", Category: "physical", Amount: 20, Status: "Completed", CreatedAt: base},
		{ID: "h2", PlayerID: "u001", Kind: models.HistoryDraw, Name: "Slime", Amount: 1, Status: "Completed", CreatedAt: base.Add(time.Hour)},
		{ID: "h3", PlayerID: "u001", Kind: models.HistoryItem, Name: "Stamina Potion", Status: "Completed", CreatedAt: base.AddDate(0, 0, 1)},
		{ID: "h4", PlayerID: "u002", Kind: models.HistoryTask, Name: "Code", Status: "Completed", CreatedAt: base},
	}
	for _, r := range recs {
		if err := s.AppendHistory(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := Collect(s.ReadHistory(ctx, HistoryFilter{PlayerID: "u001"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}
	if all[0].ID != "h1" || !all[0].CreatedAt.Equal(base) || all[0].Amount != 20 {
		t.Errorf("first record = %+v", all[0])
	}

	day, err := Collect(s.ReadHistory(ctx, HistoryFilter{
		PlayerID: "u001",
		Kinds:    []string{models.HistoryTask, models.HistoryItem},
		Since:    base,
		Until:    base.AddDate(0, 0, 1),
	}))
	if err != nil {
		t.Fatal(err)
	}
	if len(day) != 1 || day[0].ID != "h1" {
		t.Errorf("day window = %+v, want only h1", day)
	}

	limits := []struct {
		filter HistoryFilter
		want   []string
	}{
		{HistoryFilter{PlayerID: "u001", Limit: 2}, []string{"h2", "h3"}},
		{HistoryFilter{PlayerID: "u001", Kinds: []string{models.HistoryTask, models.HistoryItem}, Limit: 1}, []string{"h3"}},
		{HistoryFilter{PlayerID: "u001", Kinds: []string{models.HistoryTask}, Limit: 5}, []string{"h1"}},
	}
	for _, tt := range limits {
		got, err := Collect(s.ReadHistory(ctx, tt.filter))
		if err != nil {
			t.Fatal(err)
		}
		var ids []string
		for _, r := range got {
			ids = append(ids, r.ID)
		}
		if !slices.Equal(ids, tt.want) {
			t.Errorf("ReadHistory(%+v) = %v, want %v", tt.filter, ids, tt.want)
		}
	}

	// The sequence re-reads the store on every range.
	seq := s.ReadHistory(ctx, HistoryFilter{PlayerID: "u002"})
	first, _ := Collect(seq)
	if err := s.AppendHistory(ctx, models.HistoryRecord{ID: "h5", PlayerID: "u002", Kind: models.HistoryTask, Name: "Clean", CreatedAt: base.Add(time.Minute)}); err != nil {
		t.Fatal(err)
	}
	second, _ := Collect(seq)
	if len(first) != 1 || len(second) != 2 {
		t.Errorf("restart: first=%d second=%d, want 1 and 2", len(first), len(second))
	}
}

func TestSQLStoreInventory(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	om := models.OwnedMonster{PlayerID: "u001", MonsterKey: "dragon", Rarity: "SSR", Level: 1, AcquiredAt: now}
	if err := s.PutMonster(ctx, om); err != nil {
		t.Fatal(err)
	}
	om.Level = 3
	om.AcquiredAt = now.Add(time.Hour)
	if err := s.PutMonster(ctx, om); err != nil {
		t.Fatal(err)
	}
	if err := s.PutMonster(ctx, models.OwnedMonster{PlayerID: "u001", MonsterKey: "bat", Rarity: "N", Level: 1, AcquiredAt: now}); err != nil {
		t.Fatal(err)
	}

	inv, err := s.ReadInventory(ctx, "u001")
	if err != nil {
		t.Fatal(err)
	}
	if len(inv) != 2 {
		t.Fatalf("inventory size = %d, want 2", len(inv))
	}
	if inv[1].MonsterKey != "dragon" || inv[1].Level != 3 {
		t.Errorf("dragon = %+v, want level 3", inv[1])
	}
	if !inv[1].AcquiredAt.Equal(now) {
		t.Errorf("AcquiredAt = %v, want first acquisition %v", inv[1].AcquiredAt, now)
	}
}
