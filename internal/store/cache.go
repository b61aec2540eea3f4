package store

import (
	"context"
	"iter"
	"sync"

	"github.com/lifequest/backend/internal/models"
)

// CachedAdapter serves history reads from memory after the first full scan
// of a player's history. Any write for that player drops the cached copy so
// the next streak or mission computation re-reads the store.
type CachedAdapter struct {
	Adapter

	mu      sync.Mutex
	history map[string][]models.HistoryRecord
}

func NewCachedAdapter(inner Adapter) *CachedAdapter {
	return &CachedAdapter{Adapter: inner, history: make(map[string][]models.HistoryRecord)}
}

// Invalidate forces the next history read for playerID to hit the store.
func (c *CachedAdapter) Invalidate(playerID string) {
	c.mu.Lock()
	delete(c.history, playerID)
	c.mu.Unlock()
}

func (c *CachedAdapter) WriteField(ctx context.Context, h RowHandle, f Field, value string) error {
	defer c.Invalidate(h.PlayerID)
	return c.Adapter.WriteField(ctx, h, f, value)
}

func (c *CachedAdapter) AppendHistory(ctx context.Context, rec models.HistoryRecord) error {
	defer c.Invalidate(rec.PlayerID)
	return c.Adapter.AppendHistory(ctx, rec)
}

func (c *CachedAdapter) ReadHistory(ctx context.Context, filter HistoryFilter) iter.Seq2[models.HistoryRecord, error] {
	if filter.PlayerID == "" {
		return c.Adapter.ReadHistory(ctx, filter)
	}
	recs, err := c.load(ctx, filter.PlayerID)
	if err != nil {
		return failed(err)
	}
	return filtered(recs, filter)
}

func (c *CachedAdapter) load(ctx context.Context, playerID string) ([]models.HistoryRecord, error) {
	c.mu.Lock()
	recs, ok := c.history[playerID]
	c.mu.Unlock()
	if ok {
		return recs, nil
	}
	recs, err := Collect(c.Adapter.ReadHistory(ctx, HistoryFilter{PlayerID: playerID}))
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.history[playerID] = recs
	c.mu.Unlock()
	return recs, nil
}
