// Package lab ties the document store, the progression engine and SQLite
// persistence into one unit of work per user intent.
package lab

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mtimit/gamify-product-lab/internal/analytics"
	"github.com/mtimit/gamify-product-lab/internal/engine"
	"github.com/mtimit/gamify-product-lab/internal/storage"
	"github.com/mtimit/gamify-product-lab/internal/store"
)

// ErrInvalidAmount is returned for revenue that is zero or negative.
var ErrInvalidAmount = errors.New("amount must be positive")

// Session holds the loaded document and saves it after every intent.
type Session struct {
	repo   *storage.DocumentRepo
	store  *store.Store
	engine *engine.Engine
	log    *slog.Logger

	clock      store.Clock
	ids        store.IDSource
	seedQuests bool
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(c store.Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithIDs(ids store.IDSource) Option {
	return func(s *Session) { s.ids = ids }
}

// WithoutDefaultQuests skips seeding the starter quests.
func WithoutDefaultQuests() Option {
	return func(s *Session) { s.seedQuests = false }
}

// Open loads the saved document from db, or starts a fresh one.
func Open(ctx context.Context, db *sql.DB, opts ...Option) (*Session, error) {
	s := &Session{
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		seedQuests: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.repo = storage.NewDocumentRepo(db, s.log, storage.WithClock(s.clock), storage.WithIDs(s.ids))
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload discards in-memory state and reads the document again.
func (s *Session) Reload(ctx context.Context) error {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	var opts []store.Option
	if s.clock != nil {
		opts = append(opts, store.WithClock(s.clock))
	}
	if s.ids != nil {
		opts = append(opts, store.WithIDs(s.ids))
	}
	s.store = store.New(doc, opts...)
	s.engine = engine.New(s.store, engine.WithLogger(s.log))

	if s.seedQuests {
		if created := s.engine.InitializeDefaultQuests(); len(created) > 0 {
			s.log.Info("seeded default quests", "count", len(created))
			return s.save(ctx)
		}
	}
	return nil
}

func (s *Session) Store() *store.Store           { return s.store }
func (s *Session) Engine() *engine.Engine        { return s.engine }
func (s *Session) Document() *store.Document     { return s.store.Document() }
func (s *Session) History() *storage.HistoryRepo { return s.repo.History() }

// LastSaved reports when the document was last written. ok is false for a
// database that has never been saved to.
func (s *Session) LastSaved(ctx context.Context) (time.Time, bool, error) {
	return s.repo.UpdatedAt(ctx)
}

// DailyActivity returns XP and revenue per UTC day over the n days ending
// today. Both series come from the action history, so they are not limited
// by the size of the event log.
func (s *Session) DailyActivity(ctx context.Context, n int) (xp, revenue []analytics.DayValue, err error) {
	if n <= 0 {
		return nil, nil, nil
	}
	now := s.store.Now()
	sums, err := s.History().SumByDay(ctx, analytics.ChartStart(now, n))
	if err != nil {
		return nil, nil, err
	}
	xpByDay := make(map[string]float64, len(sums))
	revByDay := make(map[string]float64, len(sums))
	for _, d := range sums {
		xpByDay[d.Day] = float64(d.XP)
		revByDay[d.Day] = d.Amount
	}
	return analytics.DailySeries(xpByDay, now, n), analytics.DailySeries(revByDay, now, n), nil
}

func (s *Session) save(ctx context.Context, entries ...storage.HistoryEntry) error {
	if err := s.repo.Save(ctx, s.store.Document(), entries...); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// award runs the action pipeline and persists the result with a history
// row for the action.
func (s *Session) award(ctx context.Context, a engine.Action, p engine.Payload, sourceID string) (engine.Outcome, error) {
	out := s.engine.AwardXPForAction(a, p)
	entry := storage.HistoryEntry{
		Action:     string(a),
		SourceID:   sourceID,
		OccurredAt: s.store.Now(),
		XPGained:   out.XPGained(),
		LevelAfter: s.store.Profile().Level,
		Amount:     p.Amount,
	}
	if err := s.save(ctx, entry); err != nil {
		return out, err
	}
	if lvl, ok := out.LevelUp(); ok {
		s.log.Info("level reached", "level", lvl, "action", string(a))
	}
	return out, nil
}
