// Package store is the only code allowed to touch the durable player
// store. It exposes a narrow, non-transactional contract: single-field
// writes, append-only history, and defensive decoding of text columns.
package store

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/lifequest/backend/internal/models"
)

// Adapter is the persistence contract the engine reads and writes through.
// No method offers multi-field atomicity; callers sequence WriteField calls
// themselves.
type Adapter interface {
	EnsurePlayer(ctx context.Context, playerID string) error
	ReadPlayer(ctx context.Context, playerID string) (models.PlayerState, RowHandle, error)
	WriteField(ctx context.Context, h RowHandle, f Field, value string) error
	AppendHistory(ctx context.Context, rec models.HistoryRecord) error
	// ReadHistory is lazy and restartable: each range re-reads the store.
	ReadHistory(ctx context.Context, filter HistoryFilter) iter.Seq2[models.HistoryRecord, error]
	ReadInventory(ctx context.Context, playerID string) ([]models.OwnedMonster, error)
	PutMonster(ctx context.Context, m models.OwnedMonster) error
}

// RowHandle addresses the record returned by ReadPlayer.
type RowHandle struct {
	PlayerID string
}

// HistoryFilter narrows a history read. Zero values match everything.
type HistoryFilter struct {
	PlayerID string
	Kinds    []string
	Since    time.Time
	Until    time.Time
	// Limit keeps only the newest matches. Results stay in chronological
	// order either way.
	Limit int
}

// Match reports whether rec passes the filter, ignoring Limit.
func (f HistoryFilter) Match(rec models.HistoryRecord) bool {
	if f.PlayerID != "" && rec.PlayerID != f.PlayerID {
		return false
	}
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, rec.Kind) {
		return false
	}
	if !f.Since.IsZero() && rec.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !rec.CreatedAt.Before(f.Until) {
		return false
	}
	return true
}

// Collect drains a history sequence into a slice.
func Collect(seq iter.Seq2[models.HistoryRecord, error]) ([]models.HistoryRecord, error) {
	var out []models.HistoryRecord
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// filtered yields the records of recs that pass f. A positive Limit keeps
// the newest Limit matches, still oldest first.
func filtered(recs []models.HistoryRecord, f HistoryFilter) iter.Seq2[models.HistoryRecord, error] {
	return func(yield func(models.HistoryRecord, error) bool) {
		var out []models.HistoryRecord
		for _, rec := range recs {
			if f.Match(rec) {
				out = append(out, rec)
			}
		}
		if f.Limit > 0 && len(out) > f.Limit {
			out = out[len(out)-f.Limit:]
		}
		for _, rec := range out {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func failed(err error) iter.Seq2[models.HistoryRecord, error] {
	return func(yield func(models.HistoryRecord, error) bool) {
		yield(models.HistoryRecord{}, err)
	}
}
