package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		// The whole lab state is a single JSON document keyed by name.
		`CREATE TABLE IF NOT EXISTS documents (
			key TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		// One row per awarded action, kept beyond the document's bounded event log.
		`CREATE TABLE IF NOT EXISTS action_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			occurred_at DATETIME NOT NULL,
			xp_gained INTEGER NOT NULL DEFAULT 0,
			level_after INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE INDEX IF NOT EXISTS idx_action_history_occurred_at ON action_history(occurred_at);`,
		`CREATE INDEX IF NOT EXISTS idx_action_history_action ON action_history(action, occurred_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first release (ignore if already present).
	alterStmts := []string{
		`ALTER TABLE documents ADD COLUMN version TEXT NOT NULL DEFAULT '1.0';`,
		`ALTER TABLE action_history ADD COLUMN source_id TEXT;`,
		`ALTER TABLE action_history ADD COLUMN amount REAL NOT NULL DEFAULT 0;`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}

	return nil
}
