package gamification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/lifequest/backend/internal/models"
	"github.com/lifequest/backend/internal/store"
)

// Store is the engine's view of persistence: typed reads over the adapter
// plus an ordered writer for each logical operation.
type Store struct {
	db store.Adapter
}

func NewStore(db store.Adapter) *Store {
	return &Store{db: db}
}

// ── Reads ───────────────────────────────────────────────

func (s *Store) Player(ctx context.Context, playerID string) (models.PlayerState, store.RowHandle, error) {
	st, h, err := s.db.ReadPlayer(ctx, playerID)
	if err != nil {
		return models.PlayerState{}, store.RowHandle{}, fmt.Errorf("load player: %w", err)
	}
	return st, h, nil
}

// Completions returns every task and item record for the player.
func (s *Store) Completions(ctx context.Context, playerID string) ([]models.HistoryRecord, error) {
	recs, err := store.Collect(s.db.ReadHistory(ctx, store.HistoryFilter{
		PlayerID: playerID,
		Kinds:    []string{models.HistoryTask, models.HistoryItem},
	}))
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return recs, nil
}

func (s *Store) History(ctx context.Context, f store.HistoryFilter) ([]models.HistoryRecord, error) {
	recs, err := store.Collect(s.db.ReadHistory(ctx, f))
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return recs, nil
}

func (s *Store) Inventory(ctx context.Context, playerID string) ([]models.OwnedMonster, error) {
	inv, err := s.db.ReadInventory(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	return inv, nil
}

// ── Ordered writes ──────────────────────────────────────

// writer sequences the single-field writes of one operation. Once a guard
// is written every later failure reports GuardCommitted so an operator can
// reconcile the missing payout by hand. Nothing is retried.
type writer struct {
	db      store.Adapter
	h       store.RowHandle
	op      string
	guarded bool
}

func (s *Store) writer(h store.RowHandle, op string) *writer {
	return &writer{db: s.db, h: h, op: op}
}

func (w *writer) fail(f store.Field, err error) error {
	log.Printf("[gamification] %s for %s: write %s failed (guard committed=%v): %v", w.op, w.h.PlayerID, f, w.guarded, err)
	return &store.WriteError{Op: w.op, Field: f, GuardCommitted: w.guarded, Err: err}
}

func (w *writer) set(ctx context.Context, f store.Field, value string) error {
	if err := w.db.WriteField(ctx, w.h, f, value); err != nil {
		return w.fail(f, err)
	}
	return nil
}

func (w *writer) setInt(ctx context.Context, f store.Field, n int) error {
	return w.set(ctx, f, store.EncodeInt(n))
}

// guard writes a claim sentinel. It must precede the payout it protects.
func (w *writer) guard(ctx context.Context, f store.Field, value string) error {
	if err := w.set(ctx, f, value); err != nil {
		return err
	}
	w.guarded = true
	return nil
}

func (w *writer) level(ctx context.Context, before, after LevelState) error {
	if after.CurrentXP != before.CurrentXP {
		if err := w.setInt(ctx, store.FieldCurrentXP, after.CurrentXP); err != nil {
			return err
		}
	}
	if after.Level != before.Level {
		if err := w.setInt(ctx, store.FieldLevel, after.Level); err != nil {
			return err
		}
	}
	if after.NextLevelXP != before.NextLevelXP {
		if err := w.setInt(ctx, store.FieldNextLevelXP, after.NextLevelXP); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) history(ctx context.Context, kind, name, category string, amount int, status string, at time.Time) error {
	rec := models.HistoryRecord{
		ID:        uuid.NewString(),
		PlayerID:  w.h.PlayerID,
		Kind:      kind,
		Name:      name,
		Category:  category,
		Amount:    amount,
		Status:    status,
		CreatedAt: at,
	}
	if err := w.db.AppendHistory(ctx, rec); err != nil {
		return w.fail("task_history", err)
	}
	return nil
}

func (w *writer) monster(ctx context.Context, om models.OwnedMonster) error {
	if err := w.db.PutMonster(ctx, om); err != nil {
		return w.fail("inventory", err)
	}
	return nil
}
