package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))
}

func TestLoadWithoutRowReturnsFreshDocument(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t), nil)
	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.SchemaVersion, doc.Version)
	assert.Len(t, doc.Achievements, 9)

	_, ok, err := repo.UpdatedAt(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepo(newTestDB(t), nil)

	doc, err := repo.Load(ctx)
	require.NoError(t, err)
	st := store.New(doc)
	p := st.CreateProject(store.ProjectInput{Name: "Budget app"})
	_, err = st.UpdateProjectRevenue(p.ID, 42)
	require.NoError(t, err)
	st.LogEvent(store.Event{Type: store.EventXPGain, Value: 4, Source: "revenue", Metadata: store.XPGainMeta{OriginalAmount: 4, Boost: 1}})

	require.NoError(t, repo.Save(ctx, doc, HistoryEntry{Action: "add_revenue", SourceID: p.ID, OccurredAt: time.Now(), XPGained: 4, LevelAfter: 1}))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Projects, 1)
	assert.Equal(t, "Budget app", loaded.Projects[0].Name)
	assert.Equal(t, 42.0, loaded.Profile.TotalRevenue)

	last := loaded.EventLog[len(loaded.EventLog)-1]
	meta, ok := last.XPGain()
	require.True(t, ok)
	assert.Equal(t, 4, meta.OriginalAmount)

	entries, err := repo.History().Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, p.ID, entries[0].SourceID)

	// Saving again replaces the single row.
	require.NoError(t, repo.Save(ctx, loaded))
	var rows int
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestLoadMigratesLegacyBody(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	_, err := db.ExecContext(ctx, `INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)`,
		MainDocumentKey, `{"gameProfile":{"level":2,"xp":10},"projects":null}`, time.Now())
	require.NoError(t, err)

	doc, err := NewDocumentRepo(db, nil).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.SchemaVersion, doc.Version)
	assert.NotNil(t, doc.Projects)
	assert.Equal(t, 1.0, doc.Profile.XPBoost)
	assert.Equal(t, store.LevelThreshold(2), doc.Profile.XPToNextLevel)
}

func TestLoadRejectsCorruptBody(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	_, err := db.ExecContext(ctx, `INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)`,
		MainDocumentKey, `{not json`, time.Now())
	require.NoError(t, err)

	_, err = NewDocumentRepo(db, nil).Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document decode")
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	boom := errors.New("boom")

	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := NewHistoryRepo(db).insert(ctx, tx, HistoryEntry{Action: "add_note", OccurredAt: time.Now(), LevelAfter: 1}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := NewHistoryRepo(db).CountSince(ctx, "add_note", time.Time{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHistoryTotalsAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepo(newTestDB(t))
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, a := range []string{"create_project", "create_project", "add_note"} {
		_, err := repo.Insert(ctx, HistoryEntry{Action: a, OccurredAt: base.Add(time.Duration(i) * time.Hour), XPGained: 10, LevelAfter: 1})
		require.NoError(t, err)
	}

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, ActionCount{Action: "create_project", Count: 2, XP: 20}, totals[0])

	n, err := repo.CountSince(ctx, "create_project", base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "add_note", recent[0].Action)
}

func TestHistorySumByDay(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepo(newTestDB(t))
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	entries := []HistoryEntry{
		{Action: "create_project", OccurredAt: day1.Add(-48 * time.Hour), XPGained: 99, LevelAfter: 1},
		{Action: "add_revenue", OccurredAt: day1, XPGained: 1, LevelAfter: 1, Amount: 14},
		{Action: "add_revenue", OccurredAt: day1.Add(time.Hour), XPGained: 0, LevelAfter: 1, Amount: 4},
		// 23:30 in UTC-5 is already the next UTC day.
		{Action: "add_note", OccurredAt: time.Date(2025, 3, 10, 23, 30, 0, 0, time.FixedZone("EST", -5*3600)), XPGained: 5, LevelAfter: 1},
		{Action: "add_note", OccurredAt: day2, XPGained: 5, LevelAfter: 1},
	}
	for _, e := range entries {
		_, err := repo.Insert(ctx, e)
		require.NoError(t, err)
	}

	sums, err := repo.SumByDay(ctx, day1.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []DaySum{
		{Day: "2025-03-10", XP: 1, Amount: 18},
		{Day: "2025-03-11", XP: 10},
	}, sums)
}

func TestLoadFreshDocumentUsesInjectedClockAndIDs(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := NewDocumentRepo(newTestDB(t), nil,
		WithClock(func() time.Time { return at }),
		WithIDs(func(prefix string) string { return prefix + "-fixed" }),
	)

	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.EventLog, 1)
	assert.Equal(t, store.EventSystemInit, doc.EventLog[0].Type)
	assert.Equal(t, "ev-fixed", doc.EventLog[0].ID)
	assert.True(t, at.Equal(doc.EventLog[0].Timestamp))
}
