package store

import "time"

// SchemaVersion is the document layout written by this build.
const SchemaVersion = "1.1"

// baseVersion is assumed for documents that carry no version tag.
const baseVersion = "1.0"

type migration struct {
	from, to string
	name     string
	apply    func(doc *Document, now time.Time)
}

// migrations are applied in order, each only when the document is at its
// from version.
var migrations = []migration{
	{from: "1.0", to: "1.1", name: "seed growth achievements", apply: seedGrowthAchievements},
}

// Normalize brings a decoded document up to SchemaVersion and fills every
// missing collection or field with its default, so the engines can assume
// a complete document. It returns the names of the migrations it ran.
// Documents with a version this build does not know are defaulted but not
// migrated.
func Normalize(doc *Document, now time.Time) []string {
	if doc.Version == "" {
		doc.Version = baseVersion
	}

	fillDefaults(doc, now)

	var applied []string
	for _, m := range migrations {
		if doc.Version != m.from {
			continue
		}
		m.apply(doc, now)
		doc.Version = m.to
		applied = append(applied, m.name)
	}
	return applied
}

func fillDefaults(doc *Document, now time.Time) {
	if doc.Projects == nil {
		doc.Projects = []*Project{}
	}
	if doc.Experiments == nil {
		doc.Experiments = []*Experiment{}
	}
	if doc.DistributionExperiments == nil {
		doc.DistributionExperiments = []*DistributionExperiment{}
	}
	if doc.Quests == nil {
		doc.Quests = []*Quest{}
	}
	if doc.Achievements == nil {
		// Growth definitions arrive through the 1.0 -> 1.1 migration.
		if doc.Version == baseVersion {
			doc.Achievements = coreAchievements()
		} else {
			doc.Achievements = DefaultAchievements()
		}
	}
	if doc.EventLog == nil {
		doc.EventLog = []Event{}
	}

	p := &doc.Profile
	if p.ID == "" {
		p.ID = "user-001"
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.XP < 0 {
		p.XP = 0
	}
	if p.XPToNextLevel <= 0 {
		p.XPToNextLevel = LevelThreshold(p.Level)
	}
	if p.XPBoost <= 0 {
		p.XPBoost = 1.0
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}

	for _, proj := range doc.Projects {
		fillProject(proj, now)
	}
	for _, d := range doc.DistributionExperiments {
		fillResults(&d.Results)
	}
	for _, q := range doc.Quests {
		if q.TargetProgress < 1 {
			q.TargetProgress = 1
		}
		if q.Status == "" {
			q.Status = QuestActive
		}
	}
}

func fillProject(p *Project, now time.Time) {
	if p.Status == "" {
		p.Status = StatusIdea
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if len(p.StageHistory) == 0 {
		p.StageHistory = []StageEntry{{Stage: p.Status, EnteredAt: p.CreatedAt}}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Hypotheses == nil {
		p.Hypotheses = []*Hypothesis{}
	}
	if p.Insights.WhatWorked == nil {
		p.Insights.WhatWorked = []string{}
	}
	if p.Insights.WhatDidntWork == nil {
		p.Insights.WhatDidntWork = []string{}
	}
	if p.Insights.KeyLearnings == nil {
		p.Insights.KeyLearnings = []string{}
	}
	if p.Notes == nil {
		p.Notes = []Note{}
	}
	if p.IdeaScore == (IdeaScore{}) {
		p.IdeaScore = defaultIdeaScore()
	}
}

func fillResults(r *DistributionResults) {
	if r.WhatWorked == nil {
		r.WhatWorked = []string{}
	}
	if r.WhatDidntWork == nil {
		r.WhatDidntWork = []string{}
	}
	if r.KeyLearnings == nil {
		r.KeyLearnings = []string{}
	}
	if r.NextSteps == nil {
		r.NextSteps = []string{}
	}
}

func seedGrowthAchievements(doc *Document, _ time.Time) {
	have := make(map[string]bool, len(doc.Achievements))
	for _, a := range doc.Achievements {
		have[a.ID] = true
	}
	for _, a := range growthAchievements() {
		if !have[a.ID] {
			doc.Achievements = append(doc.Achievements, a)
		}
	}
}
