package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

// DocumentRepo persists the lab document as one JSON blob.
type DocumentRepo struct {
	db      *sql.DB
	log     *slog.Logger
	now     store.Clock
	ids     store.IDSource
	history *HistoryRepo
}

type DocumentOption func(*DocumentRepo)

// WithClock sets the clock used to stamp fresh documents, migrations and
// saves.
func WithClock(c store.Clock) DocumentOption {
	return func(r *DocumentRepo) {
		if c != nil {
			r.now = c
		}
	}
}

// WithIDs sets the id source for the events of a fresh document.
func WithIDs(ids store.IDSource) DocumentOption {
	return func(r *DocumentRepo) {
		if ids != nil {
			r.ids = ids
		}
	}
}

func NewDocumentRepo(db *sql.DB, log *slog.Logger, opts ...DocumentOption) *DocumentRepo {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &DocumentRepo{db: db, log: log, now: time.Now, ids: store.UUIDSource, history: NewHistoryRepo(db)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *DocumentRepo) History() *HistoryRepo { return r.history }

// Load returns the stored document, normalized to the current schema, or a
// fresh default document when nothing has been saved yet.
func (r *DocumentRepo) Load(ctx context.Context) (*store.Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, MainDocumentKey)
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debug("no saved document, starting fresh")
			return store.NewDocument(r.now(), r.ids), nil
		}
		return nil, fmt.Errorf("document get: %w", err)
	}

	var doc store.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("document decode: %w", err)
	}
	for _, step := range store.Normalize(&doc, r.now()) {
		r.log.Info("document migrated", "step", step, "version", doc.Version)
	}
	return &doc, nil
}

// Save writes doc and the given history entries in one transaction.
func (r *DocumentRepo) Save(ctx context.Context, doc *store.Document, entries ...HistoryEntry) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document encode: %w", err)
	}
	now := r.now()
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (key, version, body, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				version = excluded.version,
				body = excluded.body,
				updated_at = excluded.updated_at
		`, MainDocumentKey, doc.Version, string(body), now)
		if err != nil {
			return fmt.Errorf("document upsert: %w", err)
		}
		for _, e := range entries {
			if _, err := r.history.insert(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdatedAt returns when the document was last saved. ok is false when it
// never was.
func (r *DocumentRepo) UpdatedAt(ctx context.Context) (time.Time, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT updated_at FROM documents WHERE key = ?`, MainDocumentKey)
	var t time.Time
	if err := row.Scan(&t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("document updated_at: %w", err)
	}
	return t, true, nil
}
