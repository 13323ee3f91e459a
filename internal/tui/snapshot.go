package tui

import (
	"context"

	"github.com/mtimit/gamify-product-lab/internal/analytics"
	"github.com/mtimit/gamify-product-lab/internal/engine"
	"github.com/mtimit/gamify-product-lab/internal/lab"
	"github.com/mtimit/gamify-product-lab/internal/store"
)

const (
	chartDays  = 14
	logEntries = 12
)

type questRow struct {
	Title    string
	Progress int
	Target   int
}

type projectRow struct {
	ID      string
	Name    string
	Status  store.ProjectStatus
	Score   float64
	Revenue float64
}

// snapshot is an immutable copy of everything the board renders, taken
// inside a command so View never touches the live document.
type snapshot struct {
	summary  engine.Summary
	quests   []questRow
	projects []projectRow
	events   []store.Event
	xp       []analytics.DayValue
	overall  analytics.Overall
	growth   analytics.GrowthOverall
	channels []analytics.ChannelStats
}

func takeSnapshot(ctx context.Context, s *lab.Session) (snapshot, error) {
	st := s.Store()
	doc := st.Document()
	now := st.Now()

	xp, _, err := s.DailyActivity(ctx, chartDays)
	if err != nil {
		return snapshot{}, err
	}
	snap := snapshot{
		summary:  s.Engine().ProfileSummary(),
		events:   st.RecentEvents(logEntries),
		xp:       xp,
		overall:  analytics.OverallMetrics(doc, now),
		growth:   analytics.OverallGrowthMetrics(doc),
		channels: analytics.AnalyzeByChannel(doc),
	}
	for _, q := range snap.summary.ActiveQuests {
		snap.quests = append(snap.quests, questRow{Title: q.Title, Progress: q.Progress, Target: q.TargetProgress})
	}
	snap.summary.ActiveQuests = nil
	for _, p := range doc.Projects {
		snap.projects = append(snap.projects, projectRow{
			ID:      p.ID,
			Name:    p.Name,
			Status:  p.Status,
			Score:   p.IdeaScore.TotalScore,
			Revenue: p.Metrics.RevenueTotal,
		})
	}
	return snap, nil
}
