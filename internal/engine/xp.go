package engine

import (
	"math"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

// XPToNextLevel is the XP a profile must collect at level to reach
// level+1: round(100 * level^1.3).
func XPToNextLevel(level int) int {
	return store.LevelThreshold(level)
}

// GainXP adds amount, scaled by the profile boost, and applies carry-over
// level-ups. A single level_up event carries the final level no matter how
// many levels were crossed. Non-positive amounts are ignored. It returns
// the XP actually added.
func (e *Engine) GainXP(amount int, source string) int {
	if amount <= 0 {
		return 0
	}
	p := e.store.Profile()
	boost := p.XPBoost
	if boost <= 0 {
		boost = 1.0
	}
	effective := int(math.Round(float64(amount) * boost))
	p.XP += effective
	e.store.LogEvent(store.Event{
		Type:     store.EventXPGain,
		Value:    float64(effective),
		Source:   source,
		Metadata: store.XPGainMeta{OriginalAmount: amount, Boost: boost},
	})
	e.log.Debug("xp gained", "amount", effective, "original", amount, "boost", boost, "source", source)

	start := p.Level
	for {
		if p.XPToNextLevel <= 0 {
			p.XPToNextLevel = XPToNextLevel(p.Level)
		}
		if p.XP < p.XPToNextLevel {
			break
		}
		p.XP -= p.XPToNextLevel
		p.Level++
		p.XPToNextLevel = XPToNextLevel(p.Level)
	}
	if p.Level > start {
		e.store.LogEvent(store.Event{Type: store.EventLevelUp, Value: float64(p.Level), Source: "xp_threshold"})
		e.log.Info("level up", "level", p.Level, "from", start)
	}
	return effective
}

// LevelProgress is the fraction of the current level already earned.
func LevelProgress(p *store.Profile) float64 {
	if p.XPToNextLevel <= 0 {
		return 0
	}
	f := float64(p.XP) / float64(p.XPToNextLevel)
	return math.Max(0, math.Min(1, f))
}
