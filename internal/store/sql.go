package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/lifequest/backend/internal/models"
)

// timeLayout is fixed-width so TEXT timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLStore implements Adapter over database/sql. Queries are written with
// `?` placeholders and rebound to `$n` for Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// NewSQLStore wraps db. dialect is "postgres" or "sqlite".
func NewSQLStore(db *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) q(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) EnsurePlayer(ctx context.Context, playerID string) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO players (player_id) VALUES (?) ON CONFLICT (player_id) DO NOTHING`),
		playerID,
	)
	if err != nil {
		return fmt.Errorf("ensure player %s: %w", playerID, err)
	}
	return nil
}

func (s *SQLStore) ReadPlayer(ctx context.Context, playerID string) (models.PlayerState, RowHandle, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT * FROM players WHERE player_id = ?`), playerID)
	if err != nil {
		return models.PlayerState{}, RowHandle{}, fmt.Errorf("read player %s: %w", playerID, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return models.PlayerState{}, RowHandle{}, fmt.Errorf("read player columns: %w", err)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return models.PlayerState{}, RowHandle{}, fmt.Errorf("read player %s: %w", playerID, err)
		}
		return models.PlayerState{}, RowHandle{}, fmt.Errorf("read player %s: %w", playerID, ErrNotFound)
	}

	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return models.PlayerState{}, RowHandle{}, fmt.Errorf("scan player %s: %w", playerID, err)
	}

	raw := make(map[Field]string, len(cols))
	present := make(map[Field]bool, len(cols))
	for i, c := range cols {
		f := Field(strings.ToLower(c))
		present[f] = true
		raw[f] = vals[i].String
	}
	st, err := DecodePlayer(playerID, raw, present)
	if err != nil {
		return models.PlayerState{}, RowHandle{}, fmt.Errorf("read player %s: %w", playerID, err)
	}
	return st, RowHandle{PlayerID: playerID}, nil
}

func (s *SQLStore) WriteField(ctx context.Context, h RowHandle, f Field, value string) error {
	// The column name is interpolated, so only schema fields are accepted.
	if !Known(f) {
		return fmt.Errorf("write %s: %w", f, &SchemaError{Field: f, Reason: "unknown field"})
	}
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE players SET `+string(f)+` = ? WHERE player_id = ?`),
		value, h.PlayerID,
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("write %s: %w", f, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) AppendHistory(ctx context.Context, rec models.HistoryRecord) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO task_history (id, player_id, kind, name, category, amount, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, rec.PlayerID, rec.Kind, rec.Name, rec.Category, rec.Amount, rec.Status,
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *SQLStore) ReadHistory(ctx context.Context, filter HistoryFilter) iter.Seq2[models.HistoryRecord, error] {
	return func(yield func(models.HistoryRecord, error) bool) {
		query := `SELECT id, player_id, kind, name, category, amount, status, created_at
		 FROM task_history WHERE 1 = 1`
		var args []any
		if filter.PlayerID != "" {
			query += ` AND player_id = ?`
			args = append(args, filter.PlayerID)
		}
		if !filter.Since.IsZero() {
			query += ` AND created_at >= ?`
			args = append(args, filter.Since.UTC().Format(timeLayout))
		}
		if !filter.Until.IsZero() {
			query += ` AND created_at < ?`
			args = append(args, filter.Until.UTC().Format(timeLayout))
		}
		if len(filter.Kinds) > 0 {
			query += ` AND kind IN (?` + strings.Repeat(`, ?`, len(filter.Kinds)-1) + `)`
			for _, k := range filter.Kinds {
				args = append(args, k)
			}
		}
		// A limited read walks backwards from the newest row and stops once
		// it has enough matches.
		if filter.Limit > 0 {
			query += ` ORDER BY created_at DESC, id DESC`
		} else {
			query += ` ORDER BY created_at, id`
		}

		rows, err := s.db.QueryContext(ctx, s.q(query), args...)
		if err != nil {
			yield(models.HistoryRecord{}, fmt.Errorf("read history: %w", err))
			return
		}
		defer rows.Close()

		var newest []models.HistoryRecord
		for rows.Next() {
			var rec models.HistoryRecord
			var created string
			if err := rows.Scan(&rec.ID, &rec.PlayerID, &rec.Kind, &rec.Name, &rec.Category,
				&rec.Amount, &rec.Status, &created); err != nil {
				yield(models.HistoryRecord{}, fmt.Errorf("scan history: %w", err))
				return
			}
			t, err := time.Parse(timeLayout, created)
			if err != nil {
				// Rows written by hand may use plain RFC3339.
				if t, err = time.Parse(time.RFC3339, created); err != nil {
					continue
				}
			}
			rec.CreatedAt = t
			if !filter.Match(rec) {
				continue
			}
			if filter.Limit > 0 {
				newest = append(newest, rec)
				if len(newest) == filter.Limit {
					break
				}
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.HistoryRecord{}, fmt.Errorf("read history: %w", err))
			return
		}
		slices.Reverse(newest)
		for _, rec := range newest {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func (s *SQLStore) ReadInventory(ctx context.Context, playerID string) ([]models.OwnedMonster, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT player_id, monster_key, rarity, level, acquired_at
		 FROM inventory WHERE player_id = ? ORDER BY monster_key`),
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	defer rows.Close()

	var out []models.OwnedMonster
	for rows.Next() {
		var om models.OwnedMonster
		var level, acquired string
		if err := rows.Scan(&om.PlayerID, &om.MonsterKey, &om.Rarity, &level, &acquired); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		om.Level = ToInt(level, 1)
		if t, err := time.Parse(timeLayout, acquired); err == nil {
			om.AcquiredAt = t
		}
		out = append(out, om)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutMonster(ctx context.Context, om models.OwnedMonster) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO inventory (player_id, monster_key, rarity, level, acquired_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (player_id, monster_key) DO UPDATE SET level = excluded.level`),
		om.PlayerID, om.MonsterKey, om.Rarity, EncodeInt(om.Level), om.AcquiredAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("put monster %s: %w", om.MonsterKey, err)
	}
	return nil
}
