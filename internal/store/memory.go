package store

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/lifequest/backend/internal/models"
)

// MemoryStore keeps records as raw column text, like the SQL tables, so
// decoding goes through the same schema path. Used for ephemeral runs and
// tests.
type MemoryStore struct {
	mu        sync.Mutex
	players   map[string]map[Field]string
	history   []models.HistoryRecord
	inventory map[string]map[string]models.OwnedMonster
	failures  map[Field]error
	writes    []Field
	reads     int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:   make(map[string]map[Field]string),
		inventory: make(map[string]map[string]models.OwnedMonster),
		failures:  make(map[Field]error),
	}
}

func (m *MemoryStore) EnsurePlayer(ctx context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[playerID]; ok {
		return nil
	}
	row := make(map[Field]string, len(Schema))
	for _, spec := range Schema {
		row[spec.Field] = spec.Default
	}
	m.players[playerID] = row
	return nil
}

func (m *MemoryStore) ReadPlayer(ctx context.Context, playerID string) (models.PlayerState, RowHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.players[playerID]
	if !ok {
		return models.PlayerState{}, RowHandle{}, fmt.Errorf("read player %s: %w", playerID, ErrNotFound)
	}
	present := make(map[Field]bool, len(row))
	for f := range row {
		present[f] = true
	}
	s, err := DecodePlayer(playerID, row, present)
	if err != nil {
		return models.PlayerState{}, RowHandle{}, fmt.Errorf("read player %s: %w", playerID, err)
	}
	return s, RowHandle{PlayerID: playerID}, nil
}

func (m *MemoryStore) WriteField(ctx context.Context, h RowHandle, f Field, value string) error {
	if !Known(f) {
		return fmt.Errorf("write %s: %w", f, &SchemaError{Field: f, Reason: "unknown field"})
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures[f]; err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	row, ok := m.players[h.PlayerID]
	if !ok {
		return fmt.Errorf("write %s: %w", f, ErrNotFound)
	}
	row[f] = value
	m.writes = append(m.writes, f)
	return nil
}

func (m *MemoryStore) AppendHistory(ctx context.Context, rec models.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, rec)
	return nil
}

func (m *MemoryStore) ReadHistory(ctx context.Context, filter HistoryFilter) iter.Seq2[models.HistoryRecord, error] {
	return func(yield func(models.HistoryRecord, error) bool) {
		m.mu.Lock()
		m.reads++
		snapshot := slices.Clone(m.history)
		m.mu.Unlock()
		slices.SortStableFunc(snapshot, func(a, b models.HistoryRecord) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
		for rec, err := range filtered(snapshot, filter) {
			if !yield(rec, err) {
				return
			}
		}
	}
}

func (m *MemoryStore) ReadInventory(ctx context.Context, playerID string) ([]models.OwnedMonster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.OwnedMonster
	for _, om := range m.inventory[playerID] {
		out = append(out, om)
	}
	slices.SortFunc(out, func(a, b models.OwnedMonster) int {
		if a.MonsterKey < b.MonsterKey {
			return -1
		}
		if a.MonsterKey > b.MonsterKey {
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *MemoryStore) PutMonster(ctx context.Context, om models.OwnedMonster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inventory[om.PlayerID] == nil {
		m.inventory[om.PlayerID] = make(map[string]models.OwnedMonster)
	}
	m.inventory[om.PlayerID][om.MonsterKey] = om
	return nil
}

// FailField makes every later write to f fail with err. A nil err clears it.
func (m *MemoryStore) FailField(f Field, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, f)
		return
	}
	m.failures[f] = err
}

// SetRaw overwrites a column's stored text directly.
func (m *MemoryStore) SetRaw(playerID string, f Field, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.players[playerID]; ok {
		row[f] = value
	}
}

// DropColumn removes a column from a player's row.
func (m *MemoryStore) DropColumn(playerID string, f Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.players[playerID], f)
}

// Raw returns a column's stored text.
func (m *MemoryStore) Raw(playerID string, f Field) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[playerID][f]
}

// HistoryReads counts full history scans, for cache tests.
func (m *MemoryStore) HistoryReads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Writes returns the fields written so far, in order.
func (m *MemoryStore) Writes() []Field {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.writes)
}
