package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func at(d float64) time.Time {
	return t0.Add(time.Duration(d * float64(day)))
}

func ptr[T any](v T) *T { return &v }

func project(id string, status store.ProjectStatus, history ...store.StageEntry) *store.Project {
	return &store.Project{
		ID:           id,
		Name:         id,
		Status:       status,
		CreatedAt:    t0,
		StageHistory: history,
		IdeaScore:    store.IdeaScore{TotalScore: 5},
	}
}

func closed(stage store.ProjectStatus, from, to float64) store.StageEntry {
	return store.StageEntry{Stage: stage, EnteredAt: at(from), ExitedAt: ptr(at(to))}
}

func open(stage store.ProjectStatus, from float64) store.StageEntry {
	return store.StageEntry{Stage: stage, EnteredAt: at(from)}
}

func TestStageVelocityOnlyClosedStages(t *testing.T) {
	p := project("p-1", store.StatusBuilding,
		closed(store.StatusIdea, 0, 3.5),
		open(store.StatusBuilding, 3.5),
	)
	assert.Equal(t, map[store.ProjectStatus]float64{store.StatusIdea: 3.5}, StageVelocity(p))
}

func TestStageVelocityLastStayWins(t *testing.T) {
	p := project("p-1", store.StatusIdea,
		closed(store.StatusIdea, 0, 1),
		closed(store.StatusValidating, 1, 2),
		closed(store.StatusIdea, 2, 6.04),
		open(store.StatusBuilding, 6.04),
	)
	v := StageVelocity(p)
	assert.Equal(t, 4.0, v[store.StatusIdea])
	assert.Equal(t, 1.0, v[store.StatusValidating])
}

func TestMVPTime(t *testing.T) {
	p := project("p-1", store.StatusBuilding,
		closed(store.StatusIdea, 0, 5),
		open(store.StatusBuilding, 5),
	)
	d, ok := MVPTime(p)
	require.True(t, ok)
	assert.Equal(t, 5.0, d)

	noIdea := project("p-2", store.StatusBuilding, open(store.StatusBuilding, 0))
	_, ok = MVPTime(noIdea)
	assert.False(t, ok)

	noMVP := project("p-3", store.StatusIdea, open(store.StatusIdea, 0))
	_, ok = MVPTime(noMVP)
	assert.False(t, ok)
}

func TestOverallMetrics(t *testing.T) {
	low := project("low", store.StatusIdea, open(store.StatusIdea, 0))
	low.IdeaScore.TotalScore = 3
	high := project("high", store.StatusIdea, open(store.StatusIdea, 0))
	high.IdeaScore.TotalScore = 9
	built := project("built", store.StatusLaunched,
		closed(store.StatusIdea, 0, 2),
		closed(store.StatusBuilding, 2, 4),
		open(store.StatusLaunched, 4),
	)
	built.IdeaScore.TotalScore = 10
	archived := project("old", store.StatusArchived, open(store.StatusArchived, 0))

	now := at(30)
	doc := &store.Document{
		Projects: []*store.Project{low, high, built, archived},
		Experiments: []*store.Experiment{
			{ID: "e-1", ProjectID: "built", Status: store.ExperimentCompleted, StartedAt: at(1)},
			{ID: "e-2", ProjectID: "built", Status: store.ExperimentRunning, StartedAt: at(25)},
		},
	}

	o := OverallMetrics(doc, now)
	assert.Equal(t, 4, o.TotalProjects)
	assert.Equal(t, 1, o.ActiveProjects)
	assert.Equal(t, 1, o.LaunchedProjects)
	assert.Equal(t, 2, o.TotalExperiments)
	assert.Equal(t, 1, o.CompletedExperiments)
	assert.Equal(t, 1, o.ExperimentsPerWeek)
	assert.Equal(t, 2.0, o.AvgMVPTime)
	assert.Equal(t, 1, o.MVPSampleSize)
	assert.Equal(t, 0.5, o.AvgExperimentsPerProject)

	require.Len(t, o.TopRatedIdeas, 2, "only idea-stage projects are ranked")
	assert.Equal(t, "high", o.TopRatedIdeas[0].ID)
	assert.Equal(t, "low", o.TopRatedIdeas[1].ID)
}

func TestOverallMetricsEmpty(t *testing.T) {
	o := OverallMetrics(&store.Document{}, t0)
	assert.Zero(t, o.AvgMVPTime)
	assert.Zero(t, o.MVPSampleSize)
	assert.Empty(t, o.TopRatedIdeas)
}

func TestExperimentsMapAndReport(t *testing.T) {
	p := project("p-1", store.StatusBuilding,
		closed(store.StatusIdea, 0, 5),
		open(store.StatusBuilding, 5),
	)
	p.Hypotheses = []*store.Hypothesis{
		{ID: "h-1", Validated: true, Result: store.ResultSuccess},
		{ID: "h-2", Validated: true, Result: store.ResultFailure},
		{ID: "h-3"},
	}
	p.Insights = store.Insights{WhatWorked: []string{"a", "b"}, WhatDidntWork: []string{}, KeyLearnings: []string{"c"}}
	doc := &store.Document{
		Projects: []*store.Project{p},
		Experiments: []*store.Experiment{
			{ProjectID: "p-1", Type: "landing", Status: store.ExperimentCompleted},
			{ProjectID: "p-1", Type: "landing", Status: store.ExperimentRunning},
			{ProjectID: "p-1", Type: "survey", Status: store.ExperimentCanceled},
			{ProjectID: "p-other", Type: "survey", Status: store.ExperimentCompleted},
		},
	}

	m := ExperimentsMap(doc, "p-1")
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Total)
	assert.Equal(t, 1, m.ByStatus[store.ExperimentCompleted])
	assert.Equal(t, 0, m.ByStatus[store.ExperimentPlanned])
	assert.Equal(t, 2, m.ByType["landing"])
	assert.Equal(t, 33.3, m.SuccessRate)
	assert.Nil(t, ExperimentsMap(doc, "p-missing"))

	r := ProjectReport(doc, "p-1", at(10.4))
	require.NotNil(t, r)
	assert.Equal(t, 10, r.Timeline.TotalDays)
	require.NotNil(t, r.Timeline.MVPTime)
	assert.Equal(t, 5.0, *r.Timeline.MVPTime)
	assert.Equal(t, HypothesisCounts{Total: 3, Validated: 2, Successful: 1, Failed: 1}, r.Hypotheses)
	assert.Equal(t, InsightCounts{WhatWorked: 2, KeyLearnings: 1}, r.Insights)
	assert.Nil(t, ProjectReport(doc, "p-missing", t0))
}

func TestCompareProjectsSkipsUnknown(t *testing.T) {
	a := project("a", store.StatusIdea, open(store.StatusIdea, 0))
	a.Metrics.RevenueTotal = 40
	b := project("b", store.StatusIdea, open(store.StatusIdea, 0))
	doc := &store.Document{
		Projects:    []*store.Project{a, b},
		Experiments: []*store.Experiment{{ProjectID: "b"}, {ProjectID: "b"}},
	}

	rows := CompareProjects(doc, []string{"b", "zzz", "a"})
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].ID)
	assert.Equal(t, 2, rows[0].Experiments)
	assert.Nil(t, rows[0].MVPTime)
	assert.Equal(t, 40.0, rows[1].Revenue)
}

func dist(id string, ch store.Channel, typ store.DistributionType, status store.DistributionStatus, m store.DistributionMetrics) *store.DistributionExperiment {
	return &store.DistributionExperiment{ID: id, Name: id, Channel: ch, Type: typ, Status: status, Metrics: m}
}

func TestROI(t *testing.T) {
	d := dist("d-1", store.ChannelPPC, store.DistributionPaid, store.DistributionCompleted,
		store.DistributionMetrics{Spent: 100, Installs: 50, ARPU: 3})
	r := ROI(d)
	require.NotNil(t, r)
	assert.Equal(t, 150.0, r.Revenue)
	assert.Equal(t, 50.0, r.ROI)
	assert.True(t, r.Profitable)

	d.Metrics.Spent = 0
	assert.Nil(t, ROI(d))

	d.Metrics.Spent = 10
	d.Metrics.Installs = 0
	assert.Nil(t, ROI(d))
}

func growthDoc() *store.Document {
	return &store.Document{DistributionExperiments: []*store.DistributionExperiment{
		dist("tiktok-a", store.ChannelTikTokAds, store.DistributionPaid, store.DistributionCompleted,
			store.DistributionMetrics{Spent: 100, Installs: 50, ARPU: 3, CPI: 2, Impressions: 1000, RetentionR1: 40, RetentionR7: 20, RetentionR30: 10}),
		dist("reddit", store.ChannelReddit, store.DistributionContent, store.DistributionCompleted,
			store.DistributionMetrics{Spent: 200, Installs: 20, ARPU: 2, CPI: 10, RetentionR1: 30, RetentionR7: 10, RetentionR30: 5}),
		dist("tiktok-b", store.ChannelTikTokAds, store.DistributionPaid, store.DistributionRunning,
			store.DistributionMetrics{Impressions: 500}),
		dist("loop", store.ChannelViralLoop, store.DistributionViral, store.DistributionCompleted,
			store.DistributionMetrics{Installs: 300, KFactor: 1.4, ShareRate: 12}),
	}}
}

func TestOverallGrowthMetrics(t *testing.T) {
	g := OverallGrowthMetrics(growthDoc())

	assert.Equal(t, 4, g.TotalExperiments)
	assert.Equal(t, 3, g.CompletedExperiments)
	assert.Equal(t, 1, g.RunningExperiments)
	assert.Equal(t, 370, g.TotalInstalls)
	assert.Equal(t, 300.0, g.TotalSpent)
	assert.Equal(t, 190.0, g.TotalRevenue)
	require.NotNil(t, g.OverallROI)
	assert.Equal(t, -36.67, *g.OverallROI)
	assert.Equal(t, 3, g.SampleSize)
	assert.Equal(t, 4.0, g.AvgCPI)
	assert.Equal(t, 1, g.ProfitableChannels)
}

func TestOverallGrowthMetricsNoSpend(t *testing.T) {
	g := OverallGrowthMetrics(&store.Document{})
	assert.Nil(t, g.OverallROI)
	assert.Zero(t, g.SampleSize)
}

func TestAnalyzeByChannelAndRanking(t *testing.T) {
	doc := growthDoc()
	channels := AnalyzeByChannel(doc)
	require.Len(t, channels, 3)
	assert.Equal(t, store.ChannelViralLoop, channels[0].Channel, "sorted by installs")
	assert.Nil(t, channels[0].ROI, "no spend, no ROI")

	var tiktok ChannelStats
	for _, c := range channels {
		if c.Channel == store.ChannelTikTokAds {
			tiktok = c
		}
	}
	assert.Equal(t, 2, tiktok.Experiments)
	require.NotNil(t, tiktok.ROI)
	assert.Equal(t, 50.0, *tiktok.ROI)
	assert.Equal(t, 20.0, tiktok.AvgRetention)

	best := BestChannels(doc)
	require.Len(t, best, 1)
	assert.Equal(t, store.ChannelTikTokAds, best[0].Channel)

	worst := WorstChannels(doc)
	require.Len(t, worst, 1)
	assert.Equal(t, store.ChannelReddit, worst[0].Channel)
	assert.Equal(t, -80.0, *worst[0].ROI)
}

func TestCompareCreatives(t *testing.T) {
	rows := CompareCreatives(growthDoc())
	require.Len(t, rows, 2)
	assert.Equal(t, "tiktok-a", rows[0].ID)
	assert.True(t, rows[0].Profitable)
	assert.Equal(t, "tiktok-b", rows[1].ID)
	assert.Nil(t, rows[1].ROI)
}

func TestAnalyzeViralMetrics(t *testing.T) {
	v := AnalyzeViralMetrics(growthDoc())
	assert.True(t, v.HasViralLoops)
	assert.True(t, v.IsViral)
	assert.Equal(t, 1.4, v.AvgKFactor)
	assert.Equal(t, 300, v.TotalViralInstalls)

	none := AnalyzeViralMetrics(&store.Document{})
	assert.False(t, none.HasViralLoops)
	assert.False(t, none.IsViral)
}

func TestAnalyzeCohortRetention(t *testing.T) {
	cohorts := AnalyzeCohortRetention(growthDoc())
	require.Len(t, cohorts, 2)
	assert.Equal(t, store.ChannelTikTokAds, cohorts[0].Channel)
	assert.Equal(t, 40.0, cohorts[0].AvgR1)

	assert.Nil(t, AnalyzeCohortRetention(&store.Document{}))
}

func TestDistributionInsightsCompletedOnly(t *testing.T) {
	doc := growthDoc()
	doc.DistributionExperiments[0].Results = store.DistributionResults{WhatWorked: []string{"UGC hook"}}
	doc.DistributionExperiments[2].Results = store.DistributionResults{WhatWorked: []string{"ignored"}}

	in := DistributionInsights(doc)
	require.Len(t, in.WhatWorked, 1)
	assert.Equal(t, InsightItem{Text: "UGC hook", Channel: store.ChannelTikTokAds, ExperimentName: "tiktok-a"}, in.WhatWorked[0])
	assert.Empty(t, in.KeyLearnings)
}

func TestPredictLTV(t *testing.T) {
	ltv, ok := PredictLTV(40, 20, 0, 3)
	require.True(t, ok)
	assert.Equal(t, 3.75, ltv)

	_, ok = PredictLTV(100, 100, 100, 3)
	assert.False(t, ok)
}

func TestDailySeries(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	values := map[string]float64{
		"2025-03-10": 18,
		"2025-03-08": 7,
		"2025-02-08": 99,
	}

	series := DailySeries(values, now, 7)
	require.Len(t, series, 7)
	assert.Equal(t, "2025-03-04", series[0].Day)
	assert.Equal(t, "2025-03-10", series[6].Day)
	assert.Equal(t, 18.0, series[6].Value)
	assert.Equal(t, 7.0, series[4].Value)
	assert.Zero(t, series[5].Value)
	assert.Nil(t, DailySeries(values, now, 0))
}

func TestChartStart(t *testing.T) {
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), ChartStart(now, 7))
}
