package engine

import (
	"github.com/mtimit/gamify-product-lab/internal/analytics"
	"github.com/mtimit/gamify-product-lab/internal/store"
)

// AchievementBonusXP is granted once for every unlocked achievement.
const AchievementBonusXP = 50

// Stats is the snapshot of live aggregates that achievement conditions are
// evaluated against.
type Stats struct {
	TotalRevenue         float64
	Projects             int
	LaunchedProjects     int
	CompletedExperiments int
	ASOTests             int
	PaidTests            int
	TotalInstalls        int
	ViralLoops           int
	ProfitableChannels   int
}

// CollectStats scans doc once. Launched counts status "launched" only.
func CollectStats(doc *store.Document) Stats {
	s := Stats{
		TotalRevenue: doc.Profile.TotalRevenue,
		Projects:     len(doc.Projects),
	}
	for _, p := range doc.Projects {
		if p.Status == store.StatusLaunched {
			s.LaunchedProjects++
		}
	}
	for _, e := range doc.Experiments {
		if e.Status == store.ExperimentCompleted {
			s.CompletedExperiments++
		}
	}
	for _, d := range doc.DistributionExperiments {
		if d.Channel == store.ChannelASO {
			s.ASOTests++
		}
		if d.Type == store.DistributionPaid {
			s.PaidTests++
		}
		if d.Channel == store.ChannelViralLoop {
			s.ViralLoops++
		}
		s.TotalInstalls += d.Metrics.Installs
		if d.Status == store.DistributionCompleted {
			if r := analytics.ROI(d); r != nil && r.Profitable {
				s.ProfitableChannels++
			}
		}
	}
	return s
}

// Value returns the aggregate a condition type is measured by.
func (s Stats) Value(c store.ConditionType) (float64, bool) {
	switch c {
	case store.ConditionRevenueTotal:
		return s.TotalRevenue, true
	case store.ConditionProjectsCount:
		return float64(s.Projects), true
	case store.ConditionProjectLaunched:
		return float64(s.LaunchedProjects), true
	case store.ConditionExperimentsCompleted:
		return float64(s.CompletedExperiments), true
	case store.ConditionASOTestCompleted:
		return float64(s.ASOTests), true
	case store.ConditionAdCreativesTested:
		return float64(s.PaidTests), true
	case store.ConditionTotalInstalls:
		return float64(s.TotalInstalls), true
	case store.ConditionViralLoopLaunched:
		return float64(s.ViralLoops), true
	case store.ConditionProfitableChannel:
		return float64(s.ProfitableChannels), true
	default:
		return 0, false
	}
}

// RecomputeAchievements unlocks every unearned achievement whose condition
// holds. Earned achievements are skipped, so the bonus is paid once.
func (e *Engine) RecomputeAchievements() []*store.Achievement {
	doc := e.store.Document()
	stats := CollectStats(doc)

	var unlocked []*store.Achievement
	for _, a := range doc.Achievements {
		if a.Earned() {
			continue
		}
		v, ok := stats.Value(a.ConditionType)
		if !ok || v < a.ThresholdValue {
			continue
		}
		if _, err := e.store.EarnAchievement(a.ID); err != nil {
			e.log.Warn("earn achievement", "id", a.ID, "err", err)
			continue
		}
		e.store.LogEvent(store.Event{
			Type:     store.EventAchievementUnlocked,
			Value:    1,
			Source:   a.ID,
			Metadata: store.AchievementMeta{Name: a.Name},
		})
		e.log.Info("achievement unlocked", "id", a.ID, "name", a.Name)
		e.GainXP(AchievementBonusXP, "achievement:"+a.ID)
		unlocked = append(unlocked, a)
	}
	return unlocked
}

// AchievementCount returns how many achievements are earned out of all
// defined.
func AchievementCount(doc *store.Document) (earned, total int) {
	for _, a := range doc.Achievements {
		if a.Earned() {
			earned++
		}
	}
	return earned, len(doc.Achievements)
}
