package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *HistoryRepo) Insert(ctx context.Context, e HistoryEntry) (int64, error) {
	return r.insert(ctx, r.db, e)
}

func (r *HistoryRepo) insert(ctx context.Context, db execer, e HistoryEntry) (int64, error) {
	var source *string
	if e.SourceID != "" {
		source = &e.SourceID
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO action_history (action, source_id, occurred_at, xp_gained, level_after, amount)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Action, source, e.OccurredAt.UTC(), e.XPGained, e.LevelAfter, e.Amount)
	if err != nil {
		return 0, fmt.Errorf("history insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history last insert id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first.
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, action, source_id, occurred_at, xp_gained, level_after, amount
		FROM action_history
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history recent: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var source sql.NullString
		if err := rows.Scan(&e.ID, &e.Action, &source, &e.OccurredAt, &e.XPGained, &e.LevelAfter, &e.Amount); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		e.SourceID = source.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	return out, nil
}

// CountSince counts how often action was awarded at or after since.
func (r *HistoryRepo) CountSince(ctx context.Context, action string, since time.Time) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM action_history
		WHERE action = ? AND occurred_at >= ?
	`, action, since.UTC())
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("history count: %w", err)
	}
	return n, nil
}

// Totals groups all history by action, most frequent first.
func (r *HistoryRepo) Totals(ctx context.Context) ([]ActionCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT action, COUNT(*), COALESCE(SUM(xp_gained), 0)
		FROM action_history
		GROUP BY action
		ORDER BY COUNT(*) DESC, action
	`)
	if err != nil {
		return nil, fmt.Errorf("history totals: %w", err)
	}
	defer rows.Close()

	var out []ActionCount
	for rows.Next() {
		var c ActionCount
		if err := rows.Scan(&c.Action, &c.Count, &c.XP); err != nil {
			return nil, fmt.Errorf("history totals scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history totals rows: %w", err)
	}
	return out, nil
}

// SumByDay totals XP and amount per UTC day for entries at or after since,
// oldest day first. Days without entries are omitted.
func (r *HistoryRepo) SumByDay(ctx context.Context, since time.Time) ([]DaySum, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT occurred_at, xp_gained, amount
		FROM action_history
		WHERE occurred_at >= ?
		ORDER BY occurred_at, id
	`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("history sum by day: %w", err)
	}
	defer rows.Close()

	var out []DaySum
	for rows.Next() {
		var at time.Time
		var xp int
		var amount float64
		if err := rows.Scan(&at, &xp, &amount); err != nil {
			return nil, fmt.Errorf("history sum scan: %w", err)
		}
		day := at.UTC().Format(store.DateLayout)
		if n := len(out); n == 0 || out[n-1].Day != day {
			out = append(out, DaySum{Day: day})
		}
		out[len(out)-1].XP += xp
		out[len(out)-1].Amount += amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history sum rows: %w", err)
	}
	return out, nil
}
