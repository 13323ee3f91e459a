package engine

import (
	"math"
	"time"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

// RegisterActivity updates the day streak and records an activity event.
// Days are UTC calendar days. A repeat on the same day, or a clock that
// went backwards, leaves the streak unchanged.
func (e *Engine) RegisterActivity() {
	p := e.store.Profile()
	today := e.store.Now().UTC().Format(store.DateLayout)

	switch delta, ok := daysBetween(p.LastActivityDate, today); {
	case !ok:
		p.StreakDays = 1
	case delta == 1:
		p.StreakDays++
	case delta > 1:
		if p.StreakDays > 1 {
			e.log.Info("streak reset", "was", p.StreakDays, "gap_days", delta)
		}
		p.StreakDays = 1
	}

	p.LastActivityDate = today
	e.store.LogEvent(store.Event{Type: store.EventActivity, Value: 1, Source: "user_action"})
}

// daysBetween returns the floored number of days from last to today. ok is
// false when last is empty or unparseable.
func daysBetween(last, today string) (int, bool) {
	if last == "" {
		return 0, false
	}
	a, err := time.Parse(store.DateLayout, last)
	if err != nil {
		return 0, false
	}
	b, err := time.Parse(store.DateLayout, today)
	if err != nil {
		return 0, false
	}
	return int(math.Floor(b.Sub(a).Hours() / 24)), true
}
