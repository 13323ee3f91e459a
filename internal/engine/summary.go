package engine

import "github.com/mtimit/gamify-product-lab/internal/store"

// Summary is the profile view shown by the status command and dashboard.
type Summary struct {
	Level              int
	XP                 int
	XPToNextLevel      int
	Progress           float64
	StreakDays         int
	LastActivityDate   string
	XPBoost            float64
	TotalRevenue       float64
	EarnedAchievements int
	TotalAchievements  int
	ActiveQuests       []*store.Quest
}

func (e *Engine) ProfileSummary() Summary {
	doc := e.store.Document()
	p := &doc.Profile
	earned, total := AchievementCount(doc)
	return Summary{
		Level:              p.Level,
		XP:                 p.XP,
		XPToNextLevel:      p.XPToNextLevel,
		Progress:           LevelProgress(p),
		StreakDays:         p.StreakDays,
		LastActivityDate:   p.LastActivityDate,
		XPBoost:            p.XPBoost,
		TotalRevenue:       p.TotalRevenue,
		EarnedAchievements: earned,
		TotalAchievements:  total,
		ActiveQuests:       e.store.ActiveQuests(),
	}
}
