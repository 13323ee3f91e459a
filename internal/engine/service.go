package engine

import (
	"io"
	"log/slog"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

// Engine is the progression state machine over a store's profile and
// quests. It holds no state of its own besides configuration.
type Engine struct {
	store    *store.Store
	log      *slog.Logger
	pipeline []Stage
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithPipeline replaces the stages run by AwardXPForAction.
func WithPipeline(stages []Stage) Option {
	return func(e *Engine) { e.pipeline = stages }
}

func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		pipeline: DefaultPipeline(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Store() *store.Store { return e.store }
