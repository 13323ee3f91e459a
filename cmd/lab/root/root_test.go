package root

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtimit/gamify-product-lab/internal/analytics"
	"github.com/mtimit/gamify-product-lab/internal/lab"
	"github.com/mtimit/gamify-product-lab/internal/storage"
	"github.com/mtimit/gamify-product-lab/internal/store"
)

// setup points the CLI at a temp database and an empty config dir.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "lab.db")
	t.Setenv("LAB_DB_PATH", path)
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func loadDoc(t *testing.T, path string) *store.Document {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	s, err := lab.Open(ctx, db)
	require.NoError(t, err)
	return s.Document()
}

func TestProjectLifecycle(t *testing.T) {
	path := setup(t)

	out := mustRun(t, "project", "add", "Budget app", "--problem", "spreadsheets hurt")
	assert.Contains(t, out, "Created")
	assert.Contains(t, out, "+10 XP")

	doc := loadDoc(t, path)
	require.Len(t, doc.Projects, 1)
	id := doc.Projects[0].ID
	assert.Equal(t, "spreadsheets hurt", doc.Projects[0].Problem)

	out = mustRun(t, "project", "status", id, "launched")
	assert.Contains(t, out, "is now launched")
	assert.Contains(t, out, "Achievement unlocked: First Release")
	assert.Contains(t, out, "Quest completed: Path to launch")

	out = mustRun(t, "project", "report", id, "--format", "json")
	var r analytics.ProjectReportView
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, store.StatusLaunched, r.Project.Status)

	out = mustRun(t, "project", "report", id, "-f", "yaml")
	assert.Contains(t, out, "status: launched")

	out = mustRun(t, "project", "report", id)
	assert.Contains(t, out, "Budget app")
	assert.Contains(t, out, "Stage velocity")

	out = mustRun(t, "status")
	assert.Contains(t, out, "Lab Status")
	assert.Contains(t, out, "First Release")

	out = mustRun(t, "history")
	assert.Contains(t, out, "update_project_status")
	assert.Contains(t, out, "(1 in the last 7 days)")
}

func TestRevenueAndNotes(t *testing.T) {
	path := setup(t)
	mustRun(t, "project", "add", "Shop")
	id := loadDoc(t, path).Projects[0].ID

	out := mustRun(t, "project", "revenue", id, "150,5")
	assert.Contains(t, out, "$150.50")
	assert.Contains(t, out, "First Shot")

	_, err := run(t, "project", "revenue", id, "lots")
	assert.Error(t, err)

	_, err = run(t, "project", "revenue", id, "0")
	assert.ErrorIs(t, err, lab.ErrInvalidAmount)

	out = mustRun(t, "project", "note", id, "first customer call")
	assert.Contains(t, out, "+5 XP")

	out = mustRun(t, "metrics", "--days", "3")
	assert.Contains(t, out, "Revenue, 3d:")

	mustRun(t, "project", "insight", id, "worked", "cold email")
	_, err = run(t, "project", "insight", id, "vibes", "nope")
	assert.Error(t, err)

	doc := loadDoc(t, path)
	assert.Equal(t, 150.5, doc.Profile.TotalRevenue)
	assert.Len(t, doc.Projects[0].Notes, 1)
	assert.Len(t, doc.Projects[0].Insights.WhatWorked, 1)
}

func TestUnknownProject(t *testing.T) {
	setup(t)
	_, err := run(t, "project", "status", "p-missing", "building")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = run(t, "project", "report", "p-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBadStatusAndFormat(t *testing.T) {
	setup(t)
	_, err := run(t, "project", "status", "p-1", "shipped")
	var inv store.InvalidValueError
	assert.ErrorAs(t, err, &inv)

	_, err = run(t, "metrics", "--format", "xml")
	assert.Error(t, err)
}

func TestExperimentsAndGrowth(t *testing.T) {
	path := setup(t)
	mustRun(t, "project", "add", "Game")
	pid := loadDoc(t, path).Projects[0].ID

	out := mustRun(t, "exp", "add", pid, "--type", "landing")
	assert.Contains(t, out, "Quest completed: First experiment")
	eid := loadDoc(t, path).Experiments[0].ID

	out = mustRun(t, "exp", "status", eid, "completed")
	assert.Contains(t, out, "+50 XP")

	mustRun(t, "dist", "add", "TikTok spark", "--channel", "tiktok_ads", "--type", "paid", "-p", pid)
	did := loadDoc(t, path).DistributionExperiments[0].ID
	out = mustRun(t, "dist", "update", did, "--spent", "100", "--installs", "50", "--arpu", "3", "--status", "completed", "--worked", "hook in first second")
	assert.Contains(t, out, "ROI")

	out = mustRun(t, "growth", "--format", "json")
	var g growthReport
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Equal(t, 50, g.Overall.TotalInstalls)
	require.Len(t, g.Channels, 1)
	require.NotNil(t, g.Channels[0].ROI)
	assert.InDelta(t, 50.0, *g.Channels[0].ROI, 1e-9)
	require.Len(t, g.Insights.WhatWorked, 1)
	require.NotNil(t, g.PredictedLTV)
	assert.InDelta(t, 3.0, *g.PredictedLTV, 1e-9)

	out = mustRun(t, "growth")
	assert.Contains(t, out, "tiktok_ads")

	mustRun(t, "dist", "update", did, "--channel", "reddit", "--type", "content", "--project", "")
	d := loadDoc(t, path).DistributionExperiments[0]
	assert.Equal(t, store.ChannelReddit, d.Channel)
	assert.Equal(t, store.DistributionContent, d.Type)
	assert.Empty(t, d.ProjectID)

	_, err := run(t, "dist", "update", did, "--type", "billboard")
	var inv store.InvalidValueError
	assert.ErrorAs(t, err, &inv)

	out = mustRun(t, "log", "-n", "5")
	assert.NotEmpty(t, out)
}

func TestQuestsCommand(t *testing.T) {
	path := setup(t)
	out := mustRun(t, "quests")
	assert.Contains(t, out, "Idea generator")

	var qid string
	for _, q := range loadDoc(t, path).Quests {
		if q.Title == "Idea generator" {
			qid = q.ID
		}
	}
	mustRun(t, "quests", "abandon", qid)
	out = mustRun(t, "quests")
	assert.NotContains(t, out, "Idea generator")
	out = mustRun(t, "quests", "--all")
	assert.Contains(t, out, "Idea generator")
}

func TestNoQuestsConfig(t *testing.T) {
	path := setup(t)
	t.Setenv("LAB_NO_QUESTS", "true")
	mustRun(t, "status")
	assert.Empty(t, loadDocRaw(t, path).Quests)
}

// loadDocRaw reads the document without seeding quests.
func loadDocRaw(t *testing.T, path string) *store.Document {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	doc, err := storage.NewDocumentRepo(db, nil).Load(ctx)
	require.NoError(t, err)
	return doc
}
