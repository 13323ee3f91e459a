package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/mtimit/gamify-product-lab/internal/lab"
	"github.com/mtimit/gamify-product-lab/internal/storage"
	"github.com/mtimit/gamify-product-lab/internal/store"
	"github.com/mtimit/gamify-product-lab/internal/ui"
)

func newTestBoard(t *testing.T) (boardModel, *lab.Session) {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := lab.Open(ctx, db)
	require.NoError(t, err)
	for _, name := range []string{"Alpha", "Beta"} {
		_, _, err := s.CreateProject(ctx, store.ProjectInput{Name: name})
		require.NoError(t, err)
	}

	m := newBoardModel(ctx, s, ui.NewFormatter(language.AmericanEnglish))
	next, _ := m.Update(m.Init()())
	return next.(boardModel), s
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m boardModel, keys ...string) (boardModel, tea.Cmd) {
	var cmd tea.Cmd
	var next tea.Model = m
	for _, k := range keys {
		next, cmd = next.(boardModel).Update(key(k))
	}
	return next.(boardModel), cmd
}

func TestBoardLoads(t *testing.T) {
	m, s := newTestBoard(t)
	assert.False(t, m.busy)
	assert.Len(t, m.snap.projects, 2)
	assert.Len(t, m.snap.quests, 3)
	require.Len(t, m.snap.xp, chartDays)
	assert.Equal(t, float64(s.Store().Profile().XP), m.snap.xp[chartDays-1].Value)
	assert.Contains(t, m.View(), "Product Lab")
}

func TestBoardTabsWrap(t *testing.T) {
	m, _ := newTestBoard(t)
	m, _ = press(m, "tab", "tab", "tab")
	assert.Equal(t, tabLog, m.tab)
	m, _ = press(m, "tab")
	assert.Equal(t, tabOverview, m.tab)
}

func TestBoardSelectionClamps(t *testing.T) {
	m, _ := newTestBoard(t)
	m, _ = press(m, "j", "j", "j")
	assert.Equal(t, 1, m.selected)
	m, _ = press(m, "k", "k")
	assert.Equal(t, 0, m.selected)
}

func TestBoardAdvanceProject(t *testing.T) {
	m, s := newTestBoard(t)
	m, cmd := press(m, "tab", "a")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	next, _ := m.Update(cmd())
	m = next.(boardModel)
	assert.False(t, m.busy)
	assert.Equal(t, store.StatusValidating, m.snap.projects[0].Status)
	assert.Contains(t, m.lastLog, "Alpha advanced: +20 XP")

	p, ok := s.Store().Project(m.snap.projects[0].ID)
	require.True(t, ok)
	assert.Equal(t, store.StatusValidating, p.Status)
}

func TestBoardAdvanceOnlyOnProjectsTab(t *testing.T) {
	m, _ := newTestBoard(t)
	_, cmd := press(m, "a")
	assert.Nil(t, cmd)
}
