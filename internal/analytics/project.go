// Package analytics derives read-only reports from a document. Nothing in
// this package mutates its input.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

const day = 24 * time.Hour

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

func days(d time.Duration) float64 { return d.Hours() / 24 }

// StageVelocity returns the days spent in every stage the project has left,
// rounded to 0.1. A stage entered twice reports its last stay.
func StageVelocity(p *store.Project) map[store.ProjectStatus]float64 {
	out := make(map[store.ProjectStatus]float64)
	for _, s := range p.StageHistory {
		if s.ExitedAt == nil {
			continue
		}
		out[s.Stage] = round1(days(s.ExitedAt.Sub(s.EnteredAt)))
	}
	return out
}

// MVPTime returns the days from the first idea entry to the first building
// or launched entry. ok is false when either is missing.
func MVPTime(p *store.Project) (float64, bool) {
	var idea, mvp *store.StageEntry
	for i := range p.StageHistory {
		s := &p.StageHistory[i]
		switch s.Stage {
		case store.StatusIdea:
			if idea == nil {
				idea = s
			}
		case store.StatusBuilding, store.StatusLaunched:
			if mvp == nil {
				mvp = s
			}
		}
	}
	if idea == nil || mvp == nil {
		return 0, false
	}
	return round1(days(mvp.EnteredAt.Sub(idea.EnteredAt))), true
}

// ExperimentsPerWeek counts experiments started in the seven days up to now.
func ExperimentsPerWeek(doc *store.Document, now time.Time) int {
	since := now.Add(-7 * day)
	n := 0
	for _, e := range doc.Experiments {
		if !e.StartedAt.Before(since) {
			n++
		}
	}
	return n
}

type RatedIdea struct {
	ID    string  `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Score float64 `json:"score" yaml:"score"`
}

// Overall is the cross-project rollup. Averages are 0 when their sample is
// empty; MVPSampleSize tells the two cases apart.
type Overall struct {
	TotalProjects            int         `json:"totalProjects" yaml:"totalProjects"`
	ActiveProjects           int         `json:"activeProjects" yaml:"activeProjects"`
	LaunchedProjects         int         `json:"launchedProjects" yaml:"launchedProjects"`
	TotalExperiments         int         `json:"totalExperiments" yaml:"totalExperiments"`
	CompletedExperiments     int         `json:"completedExperiments" yaml:"completedExperiments"`
	AvgExperimentsPerProject float64     `json:"avgExperimentsPerProject" yaml:"avgExperimentsPerProject"`
	AvgMVPTime               float64     `json:"avgMVPTime" yaml:"avgMVPTime"`
	MVPSampleSize            int         `json:"mvpSampleSize" yaml:"mvpSampleSize"`
	ExperimentsPerWeek       int         `json:"experimentsPerWeek" yaml:"experimentsPerWeek"`
	TopRatedIdeas            []RatedIdea `json:"topRatedIdeas" yaml:"topRatedIdeas"`
}

// TopIdeasLimit caps Overall.TopRatedIdeas.
const TopIdeasLimit = 5

// OverallMetrics aggregates every project and experiment. Active excludes
// idea and archived projects; launched includes scaling ones. Only projects
// still in the idea stage are ranked as top ideas.
func OverallMetrics(doc *store.Document, now time.Time) Overall {
	o := Overall{
		TotalProjects:      len(doc.Projects),
		TotalExperiments:   len(doc.Experiments),
		ExperimentsPerWeek: ExperimentsPerWeek(doc, now),
		TopRatedIdeas:      []RatedIdea{},
	}

	var mvpSum float64
	var ideas []*store.Project
	for _, p := range doc.Projects {
		switch p.Status {
		case store.StatusIdea:
			ideas = append(ideas, p)
		case store.StatusArchived:
		case store.StatusLaunched, store.StatusScaling:
			o.ActiveProjects++
			o.LaunchedProjects++
		default:
			o.ActiveProjects++
		}
		if d, ok := MVPTime(p); ok {
			mvpSum += d
			o.MVPSampleSize++
		}
	}
	for _, e := range doc.Experiments {
		if e.Status == store.ExperimentCompleted {
			o.CompletedExperiments++
		}
	}
	if o.MVPSampleSize > 0 {
		o.AvgMVPTime = round1(mvpSum / float64(o.MVPSampleSize))
	}
	if o.TotalProjects > 0 {
		o.AvgExperimentsPerProject = round1(float64(o.TotalExperiments) / float64(o.TotalProjects))
	}

	sort.SliceStable(ideas, func(i, j int) bool {
		return ideas[i].IdeaScore.TotalScore > ideas[j].IdeaScore.TotalScore
	})
	for i, p := range ideas {
		if i == TopIdeasLimit {
			break
		}
		o.TopRatedIdeas = append(o.TopRatedIdeas, RatedIdea{ID: p.ID, Name: p.Name, Score: p.IdeaScore.TotalScore})
	}
	return o
}

type ExperimentMap struct {
	Total       int                            `json:"total" yaml:"total"`
	ByStatus    map[store.ExperimentStatus]int `json:"byStatus" yaml:"byStatus"`
	ByType      map[string]int                 `json:"byType" yaml:"byType"`
	SuccessRate float64                        `json:"successRate" yaml:"successRate"`
}

// ExperimentsMap breaks down one project's experiments. It returns nil when
// the project does not exist.
func ExperimentsMap(doc *store.Document, projectID string) *ExperimentMap {
	if findProject(doc, projectID) == nil {
		return nil
	}
	m := &ExperimentMap{
		ByStatus: map[store.ExperimentStatus]int{
			store.ExperimentPlanned:   0,
			store.ExperimentRunning:   0,
			store.ExperimentCompleted: 0,
			store.ExperimentCanceled:  0,
		},
		ByType: map[string]int{},
	}
	for _, e := range doc.Experiments {
		if e.ProjectID != projectID {
			continue
		}
		m.Total++
		m.ByStatus[e.Status]++
		m.ByType[e.Type]++
	}
	if m.Total > 0 {
		m.SuccessRate = round1(float64(m.ByStatus[store.ExperimentCompleted]) / float64(m.Total) * 100)
	}
	return m
}

type ProjectSummary struct {
	ID        string              `json:"id" yaml:"id"`
	Name      string              `json:"name" yaml:"name"`
	Status    store.ProjectStatus `json:"status" yaml:"status"`
	CreatedAt time.Time           `json:"createdAt" yaml:"createdAt"`
	IdeaScore store.IdeaScore     `json:"ideaScore" yaml:"ideaScore"`
}

type Timeline struct {
	StageVelocity map[store.ProjectStatus]float64 `json:"stageVelocity" yaml:"stageVelocity"`
	MVPTime       *float64                        `json:"mvpTime" yaml:"mvpTime"`
	TotalDays     int                             `json:"totalDays" yaml:"totalDays"`
}

type HypothesisCounts struct {
	Total      int `json:"total" yaml:"total"`
	Validated  int `json:"validated" yaml:"validated"`
	Successful int `json:"successful" yaml:"successful"`
	Failed     int `json:"failed" yaml:"failed"`
}

type InsightCounts struct {
	WhatWorked    int `json:"whatWorked" yaml:"whatWorked"`
	WhatDidntWork int `json:"whatDidntWork" yaml:"whatDidntWork"`
	KeyLearnings  int `json:"keyLearnings" yaml:"keyLearnings"`
}

type ProjectReportView struct {
	Project     ProjectSummary       `json:"project" yaml:"project"`
	Timeline    Timeline             `json:"timeline" yaml:"timeline"`
	Hypotheses  HypothesisCounts     `json:"hypotheses" yaml:"hypotheses"`
	Experiments *ExperimentMap       `json:"experiments" yaml:"experiments"`
	Insights    InsightCounts        `json:"insights" yaml:"insights"`
	Metrics     store.ProjectMetrics `json:"metrics" yaml:"metrics"`
}

// ProjectReport bundles everything known about one project, or nil when it
// does not exist.
func ProjectReport(doc *store.Document, projectID string, now time.Time) *ProjectReportView {
	p := findProject(doc, projectID)
	if p == nil {
		return nil
	}
	r := &ProjectReportView{
		Project: ProjectSummary{
			ID:        p.ID,
			Name:      p.Name,
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
			IdeaScore: p.IdeaScore,
		},
		Timeline: Timeline{
			StageVelocity: StageVelocity(p),
			TotalDays:     int(math.Round(days(now.Sub(p.CreatedAt)))),
		},
		Experiments: ExperimentsMap(doc, projectID),
		Insights: InsightCounts{
			WhatWorked:    len(p.Insights.WhatWorked),
			WhatDidntWork: len(p.Insights.WhatDidntWork),
			KeyLearnings:  len(p.Insights.KeyLearnings),
		},
		Metrics: p.Metrics,
	}
	if d, ok := MVPTime(p); ok {
		r.Timeline.MVPTime = &d
	}
	for _, h := range p.Hypotheses {
		r.Hypotheses.Total++
		if h.Validated {
			r.Hypotheses.Validated++
		}
		switch h.Result {
		case store.ResultSuccess:
			r.Hypotheses.Successful++
		case store.ResultFailure:
			r.Hypotheses.Failed++
		}
	}
	return r
}

type ComparisonRow struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Score       float64  `json:"score" yaml:"score"`
	MVPTime     *float64 `json:"mvpTime" yaml:"mvpTime"`
	Experiments int      `json:"experiments" yaml:"experiments"`
	Revenue     float64  `json:"revenue" yaml:"revenue"`
}

// CompareProjects returns one row per known id, in the order given.
// Unknown ids are skipped.
func CompareProjects(doc *store.Document, ids []string) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(ids))
	for _, id := range ids {
		p := findProject(doc, id)
		if p == nil {
			continue
		}
		row := ComparisonRow{ID: p.ID, Name: p.Name, Score: p.IdeaScore.TotalScore, Revenue: p.Metrics.RevenueTotal}
		if d, ok := MVPTime(p); ok {
			row.MVPTime = &d
		}
		for _, e := range doc.Experiments {
			if e.ProjectID == id {
				row.Experiments++
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func findProject(doc *store.Document, id string) *store.Project {
	for _, p := range doc.Projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}
