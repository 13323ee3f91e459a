package store

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// testClock is a settable clock for store and engine tests.
type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func seqIDs() IDSource {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()
	clk := &testClock{now: t0}
	ids := seqIDs()
	doc := NewDocument(clk.now, ids)
	return New(doc, WithClock(clk.Now), WithIDs(ids)), clk
}

func TestNewDocumentDefaults(t *testing.T) {
	st, _ := newTestStore(t)
	doc := st.Document()

	assert.Equal(t, SchemaVersion, doc.Version)
	assert.Equal(t, 1, doc.Profile.Level)
	assert.Equal(t, 100, doc.Profile.XPToNextLevel)
	assert.Equal(t, 1.0, doc.Profile.XPBoost)
	assert.Len(t, doc.Achievements, 9)
	require.Len(t, doc.EventLog, 1)
	assert.Equal(t, EventSystemInit, doc.EventLog[0].Type)
}

func TestLevelThresholdIncreasing(t *testing.T) {
	assert.Equal(t, 100, LevelThreshold(1))
	assert.Equal(t, 246, LevelThreshold(2))
	prev := 0
	for l := 1; l <= 200; l++ {
		got := LevelThreshold(l)
		require.Greater(t, got, prev, "level %d", l)
		prev = got
	}
}

func TestCreateProjectDefaults(t *testing.T) {
	st, _ := newTestStore(t)
	p := st.CreateProject(ProjectInput{})

	assert.Equal(t, "New Project", p.Name)
	assert.Equal(t, StatusIdea, p.Status)
	assert.Equal(t, 5.0, p.IdeaScore.TotalScore)
	require.Len(t, p.StageHistory, 1)
	assert.Equal(t, StatusIdea, p.StageHistory[0].Stage)
	assert.Nil(t, p.StageHistory[0].ExitedAt)
}

func TestUpdateProjectStatusTracksStages(t *testing.T) {
	st, clk := newTestStore(t)
	p := st.CreateProject(ProjectInput{Name: "Habit app"})

	clk.Advance(84 * time.Hour)
	building := StatusBuilding
	name := "Habit tracker"
	_, err := st.UpdateProject(p.ID, ProjectPatch{Status: &building, Name: &name})
	require.NoError(t, err)

	require.Len(t, p.StageHistory, 2)
	require.NotNil(t, p.StageHistory[0].ExitedAt)
	assert.Equal(t, clk.now, *p.StageHistory[0].ExitedAt)
	assert.Equal(t, StatusBuilding, p.StageHistory[1].Stage)
	assert.Nil(t, p.StageHistory[1].ExitedAt)
	assert.Equal(t, "Habit tracker", p.Name)
	assert.Equal(t, clk.now, p.UpdatedAt)

	// Same status: no new stage entry.
	_, err = st.UpdateProject(p.ID, ProjectPatch{Status: &building})
	require.NoError(t, err)
	assert.Len(t, p.StageHistory, 2)
}

func TestUpdateProjectNotFound(t *testing.T) {
	st, _ := newTestStore(t)
	before := len(st.Document().Projects)

	_, err := st.UpdateProject("p-missing", ProjectPatch{})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = st.UpdateProjectRevenue("p-missing", 10)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, st.Document().Projects, before)
	assert.Zero(t, st.Profile().TotalRevenue)
}

func TestUpdateProjectRevenueAccumulates(t *testing.T) {
	st, _ := newTestStore(t)
	p := st.CreateProject(ProjectInput{Name: "A"})

	_, err := st.UpdateProjectRevenue(p.ID, 120.5)
	require.NoError(t, err)
	_, err = st.UpdateProjectRevenue(p.ID, -20.5)
	require.NoError(t, err)

	assert.Equal(t, 100.0, p.Metrics.RevenueTotal)
	assert.Equal(t, 100.0, p.Metrics.RevenueMonthly)
	assert.Equal(t, 100.0, st.Profile().TotalRevenue)
}

func TestIdeaScoreMaxIsTen(t *testing.T) {
	st, _ := newTestStore(t)
	p := st.CreateProject(ProjectInput{})
	ten := 10
	_, err := st.UpdateIdeaScore(p.ID, IdeaScorePatch{ProblemValue: &ten, Scalability: &ten, DevelopmentTime: &ten})
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.IdeaScore.TotalScore)
}

func TestIdeaScorePartialMergeAndClamp(t *testing.T) {
	st, _ := newTestStore(t)
	p := st.CreateProject(ProjectInput{})
	high, low := 42, -3
	_, err := st.UpdateIdeaScore(p.ID, IdeaScorePatch{ProblemValue: &high, DevelopmentTime: &low})
	require.NoError(t, err)

	assert.Equal(t, 10, p.IdeaScore.ProblemValue)
	assert.Equal(t, 5, p.IdeaScore.Scalability)
	assert.Equal(t, 1, p.IdeaScore.DevelopmentTime)
	assert.Equal(t, 6.0, p.IdeaScore.TotalScore) // 4 + 1.75 + 0.25
}

func TestHypothesesAndInsights(t *testing.T) {
	st, _ := newTestStore(t)
	p := st.CreateProject(ProjectInput{})

	h, err := st.AddHypothesis(p.ID, "users will pay $5")
	require.NoError(t, err)
	assert.False(t, h.Validated)
	assert.Equal(t, ResultUnset, h.Result)

	_, err = st.ValidateHypothesis(p.ID, h.ID, ResultSuccess)
	require.NoError(t, err)
	assert.True(t, h.Validated)
	assert.Equal(t, ResultSuccess, h.Result)
	assert.NotNil(t, h.ValidatedAt)

	_, err = st.ValidateHypothesis(p.ID, "h-missing", ResultFailure)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = st.AddInsight(p.ID, InsightWorked, "landing page")
	require.NoError(t, err)
	_, err = st.AddInsight(p.ID, InsightKeyLearned, "price early")
	require.NoError(t, err)
	_, err = st.AddInsight(p.ID, InsightKind("rumor"), "x")
	require.ErrorIs(t, err, ErrInvalidInsightKind)

	assert.Equal(t, []string{"landing page"}, p.Insights.WhatWorked)
	assert.Empty(t, p.Insights.WhatDidntWork)
	assert.Equal(t, []string{"price early"}, p.Insights.KeyLearnings)
}

func TestAddNote(t *testing.T) {
	st, _ := newTestStore(t)
	p := st.CreateProject(ProjectInput{})
	n, err := st.AddNote(p.ID, "  talked to 3 users  ")
	require.NoError(t, err)
	assert.Equal(t, "talked to 3 users", n.Text)
	assert.Len(t, p.Notes, 1)
}

func TestExperimentEndedAtSetOnce(t *testing.T) {
	st, clk := newTestStore(t)
	e := st.CreateExperiment(ExperimentInput{ProjectID: "p-gone", Type: "landing"})
	assert.Equal(t, ExperimentPlanned, e.Status)
	assert.Nil(t, e.EndedAt)

	clk.Advance(time.Hour)
	done := ExperimentCompleted
	_, err := st.UpdateExperiment(e.ID, ExperimentPatch{Status: &done})
	require.NoError(t, err)
	require.NotNil(t, e.EndedAt)
	first := *e.EndedAt

	clk.Advance(time.Hour)
	_, err = st.UpdateExperiment(e.ID, ExperimentPatch{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, first, *e.EndedAt)

	_, err = st.UpdateExperiment("e-missing", ExperimentPatch{Status: &done})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExperimentsForWeakReference(t *testing.T) {
	st, _ := newTestStore(t)
	st.CreateExperiment(ExperimentInput{ProjectID: "p-1"})
	st.CreateExperiment(ExperimentInput{ProjectID: "p-2"})
	st.CreateExperiment(ExperimentInput{ProjectID: "p-1"})

	assert.Len(t, st.ExperimentsFor("p-1"), 2)
	assert.Empty(t, st.ExperimentsFor("p-9"))
	_, ok := st.Project("p-1")
	assert.False(t, ok)
}

func TestDistributionDerivedMetrics(t *testing.T) {
	st, _ := newTestStore(t)
	spent, installs, impressions, clicks := 100.0, 50, 10000, 200
	d := st.CreateDistributionExperiment(DistributionInput{
		Name:    "TikTok test",
		Channel: ChannelTikTokAds,
		Type:    DistributionPaid,
		Metrics: MetricsPatch{Spent: &spent, Installs: &installs, Impressions: &impressions, Clicks: &clicks},
	})

	assert.InDelta(t, 2.0, d.Metrics.CPI, 1e-9)
	assert.InDelta(t, 10.0, d.Metrics.CPM, 1e-9)
	assert.InDelta(t, 2.0, d.Metrics.CTR, 1e-9)
	assert.InDelta(t, 25.0, d.Metrics.ConversionRate, 1e-9)
	assert.Equal(t, DistributionPlanning, d.Status)
}

func TestDistributionDerivedMetricsLeftWhenUndefined(t *testing.T) {
	st, _ := newTestStore(t)
	spent, installs := 60.0, 30
	d := st.CreateDistributionExperiment(DistributionInput{
		Metrics: MetricsPatch{Spent: &spent, Installs: &installs},
	})
	require.Equal(t, 2.0, d.Metrics.CPI)

	zero := 0
	_, err := st.UpdateDistributionExperiment(d.ID, DistributionPatch{
		Metrics:    MetricsPatch{Installs: &zero},
		AddResults: DistributionResults{WhatWorked: []string{"hook in first second"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2.0, d.Metrics.CPI, "cpi must not be reset when installs drop to zero")
	assert.Zero(t, d.Metrics.CTR)
	assert.Equal(t, []string{"hook in first second"}, d.Results.WhatWorked)

	_, err = st.UpdateDistributionExperiment("d-missing", DistributionPatch{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEventLogRetention(t *testing.T) {
	st, _ := newTestStore(t)
	doc := st.Document()
	// system_init already occupies slot 0.
	for i := 1; i <= MaxEventLog; i++ {
		st.LogEvent(Event{Type: EventActivity, Value: float64(i)})
	}

	require.Len(t, doc.EventLog, MaxEventLog)
	assert.Equal(t, 1.0, doc.EventLog[0].Value, "oldest entry discarded")
	assert.Equal(t, float64(MaxEventLog), doc.EventLog[MaxEventLog-1].Value)
	for i := 1; i < len(doc.EventLog); i++ {
		assert.Less(t, doc.EventLog[i-1].Value, doc.EventLog[i].Value)
	}
}

func TestLogEventStampsAndNotifies(t *testing.T) {
	st, clk := newTestStore(t)
	var seen []EventType
	unsubscribe := st.Subscribe(func(ev Event) { seen = append(seen, ev.Type) })

	ev := st.LogEvent(Event{Type: EventLevelUp, Value: 2})
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, clk.now, ev.Timestamp)
	assert.Equal(t, "unknown", ev.Source)

	unsubscribe()
	st.LogEvent(Event{Type: EventActivity})
	assert.Equal(t, []EventType{EventLevelUp}, seen)

	recent := st.RecentEvents(2)
	require.Len(t, recent, 2)
	assert.Equal(t, EventActivity, recent[0].Type)
}

func TestEventMetadataRoundTrip(t *testing.T) {
	in := Event{
		ID:       "ev-1",
		Type:     EventXPGain,
		Value:    15,
		Source:   "create_project",
		Metadata: XPGainMeta{OriginalAmount: 10, Boost: 1.5},
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"originalAmount":10`)

	var out Event
	require.NoError(t, json.Unmarshal(raw, &out))
	meta, ok := out.XPGain()
	require.True(t, ok)
	assert.Equal(t, 10, meta.OriginalAmount)
	assert.Equal(t, 1.5, meta.Boost)
}

func TestEventUnknownMetadataPreserved(t *testing.T) {
	raw := []byte(`{"id":"ev-9","timestamp":"2025-01-01T00:00:00Z","type":"custom_thing","value":1,"source":"x","metadata":{"a":1}}`)
	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	out, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"metadata":{"a":1}`)
}

func TestQuestTerminalIsFinal(t *testing.T) {
	st, _ := newTestStore(t)
	q := st.CreateQuest(QuestInput{Title: "Ship", TargetProgress: 0})
	assert.Equal(t, 1, q.TargetProgress)
	assert.Equal(t, QuestGeneric, q.Type)

	_, err := st.CompleteQuest(q.ID)
	require.NoError(t, err)
	require.NotNil(t, q.CompletedAt)

	_, err = st.ExpireQuest(q.ID)
	require.ErrorIs(t, err, ErrQuestClosed)
	_, err = st.AdvanceQuest(q.ID)
	require.ErrorIs(t, err, ErrQuestClosed)
	assert.Equal(t, QuestCompleted, q.Status)
	assert.Zero(t, q.Progress)

	_, err = st.FailQuest("q-missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEarnAchievementOnce(t *testing.T) {
	st, _ := newTestStore(t)
	a, err := st.EarnAchievement("first-dollar")
	require.NoError(t, err)
	assert.True(t, a.Earned())
	assert.Equal(t, []string{"first-dollar"}, st.Profile().Achievements)

	_, err = st.EarnAchievement("first-dollar")
	require.ErrorIs(t, err, ErrAlreadyEarned)
	assert.Len(t, st.Profile().Achievements, 1)
}

func TestParseHelpers(t *testing.T) {
	s, err := ParseProjectStatus(" Launched ")
	require.NoError(t, err)
	assert.Equal(t, StatusLaunched, s)
	assert.Equal(t, StatusScaling, StatusLaunched.Next())
	assert.Equal(t, StatusArchived, StatusArchived.Next())

	_, err = ParseProjectStatus("shipped")
	var invalid InvalidValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "project status", invalid.Field)

	k, err := ParseInsightKind("didnt-work")
	require.NoError(t, err)
	assert.Equal(t, InsightDidntWork, k)
}
