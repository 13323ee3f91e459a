package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mtimit/gamify-product-lab/internal/engine"
	"github.com/mtimit/gamify-product-lab/internal/lab"
	"github.com/mtimit/gamify-product-lab/internal/ui"
)

type tab int

const (
	tabOverview tab = iota
	tabProjects
	tabGrowth
	tabLog
	tabCount
)

var tabNames = [tabCount]string{"Overview", "Projects", "Growth", "Log"}

type boardModel struct {
	ctx context.Context
	s   *lab.Session
	f   ui.Formatter

	width  int
	height int

	tab      tab
	selected int
	snap     snapshot

	lastLog string
	busy    bool
	err     error
}

type loadedMsg struct {
	snap snapshot
	err  error
}

type advancedMsg struct {
	name string
	out  engine.Outcome
	snap snapshot
	err  error
}

func newBoardModel(ctx context.Context, s *lab.Session, f ui.Formatter) boardModel {
	return boardModel{
		ctx:     ctx,
		s:       s,
		f:       f,
		busy:    true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.snapshotCmd()
}

func (m boardModel) snapshotCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := takeSnapshot(m.ctx, m.s)
		return loadedMsg{snap: snap, err: err}
	}
}

func (m boardModel) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.s.Reload(m.ctx); err != nil {
			return loadedMsg{err: err}
		}
		snap, err := takeSnapshot(m.ctx, m.s)
		return loadedMsg{snap: snap, err: err}
	}
}

func (m boardModel) advanceCmd(id, name string) tea.Cmd {
	return func() tea.Msg {
		_, out, err := m.s.AdvanceProject(m.ctx, id)
		snap, serr := takeSnapshot(m.ctx, m.s)
		if err == nil {
			err = serr
		}
		return advancedMsg{name: name, out: out, snap: snap, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.busy = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.snap = msg.snap
		m.clampSelection()
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case advancedMsg:
		m.busy = false
		m.snap = msg.snap
		m.clampSelection()
		if msg.err != nil {
			m.lastLog = "Advance failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = outcomeLine(msg.name, msg.out)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab", "right", "l":
		m.tab = (m.tab + 1) % tabCount
		return m, nil
	case "shift+tab", "left", "h":
		m.tab = (m.tab + tabCount - 1) % tabCount
		return m, nil
	}
	if m.busy {
		return m, nil
	}
	switch msg.String() {
	case "r":
		m.busy = true
		m.lastLog = "Refreshing…"
		return m, m.reloadCmd()
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.snap.projects)-1 {
			m.selected++
		}
	case "a", "enter":
		if m.tab != tabProjects || len(m.snap.projects) == 0 {
			return m, nil
		}
		p := m.snap.projects[m.selected]
		if p.Status.Next() == p.Status {
			m.lastLog = p.Name + " is already at the last stage."
			return m, nil
		}
		m.busy = true
		m.lastLog = fmt.Sprintf("Advancing %s…", p.Name)
		return m, m.advanceCmd(p.ID, p.Name)
	}
	return m, nil
}

func (m *boardModel) clampSelection() {
	if m.selected >= len(m.snap.projects) {
		m.selected = len(m.snap.projects) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func outcomeLine(name string, out engine.Outcome) string {
	parts := []string{fmt.Sprintf("%s advanced: +%d XP", name, out.XPGained())}
	if lvl, ok := out.LevelUp(); ok {
		parts = append(parts, fmt.Sprintf("level %d", lvl))
	}
	for _, a := range out.Unlocked() {
		parts = append(parts, ui.IconTrophy+" "+a)
	}
	for _, q := range out.CompletedQuests() {
		parts = append(parts, ui.IconTarget+" "+q)
	}
	return strings.Join(parts, " | ")
}

func (m boardModel) View() string {
	if m.err != nil {
		return ui.Bad.Render("Error: "+m.err.Error()) + "\n\nPress q to quit.\n"
	}

	var body string
	switch m.tab {
	case tabProjects:
		body = m.renderProjects()
	case tabGrowth:
		body = m.renderGrowth()
	case tabLog:
		body = m.renderLog()
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderProfile(), "  ", m.renderQuests())
	}
	return m.renderHeader() + "\n" + m.renderTabs() + "\n\n" + body + "\n" + m.renderFooter()
}

func (m boardModel) renderHeader() string {
	s := m.snap.summary
	if s.Level == 0 {
		return ui.Heading(ui.IconLab, "Product Lab") + " " + ui.Muted.Render("loading…")
	}
	return fmt.Sprintf("%s  Level %d  %s %s/%s XP",
		ui.Heading(ui.IconLab, "Product Lab"),
		s.Level,
		ui.ProgressBar(s.Progress, 24),
		m.f.Int(s.XP), m.f.Int(s.XPToNextLevel),
	)
}

func (m boardModel) renderTabs() string {
	names := make([]string, 0, tabCount)
	for i, n := range tabNames {
		if tab(i) == m.tab {
			names = append(names, ui.TabActive.Render(n))
		} else {
			names = append(names, ui.TabIdle.Render(n))
		}
	}
	return strings.Join(names, "  ")
}

func (m boardModel) renderProfile() string {
	s := m.snap.summary
	lines := []string{
		ui.PanelTitle.Render("Profile"),
		ui.LabelValue("Streak", fmt.Sprintf("%s %d days", ui.IconFire, s.StreakDays)),
		ui.LabelValue("Boost", fmt.Sprintf("×%.2f", s.XPBoost)),
		ui.LabelValue("Revenue", m.f.Money(s.TotalRevenue)),
		ui.LabelValue("Achievements", fmt.Sprintf("%d/%d", s.EarnedAchievements, s.TotalAchievements)),
		ui.LabelValue("Projects", fmt.Sprintf("%d (%d launched)", m.snap.overall.TotalProjects, m.snap.overall.LaunchedProjects)),
		"",
		ui.PanelTitle.Render(fmt.Sprintf("XP, last %d days", chartDays)),
	}
	values := make([]float64, len(m.snap.xp))
	for i, d := range m.snap.xp {
		values[i] = d.Value
	}
	lines = append(lines, ui.Spark(values))
	return ui.Panel.Render(strings.Join(lines, "\n"))
}

func (m boardModel) renderQuests() string {
	lines := []string{ui.PanelTitle.Render("Active quests")}
	if len(m.snap.quests) == 0 {
		lines = append(lines, ui.Muted.Render("(none)"))
	}
	for _, q := range m.snap.quests {
		frac := 0.0
		if q.Target > 0 {
			frac = float64(q.Progress) / float64(q.Target)
		}
		lines = append(lines, fmt.Sprintf("%s %s %d/%d", ui.ProgressBar(frac, 10), q.Title, q.Progress, q.Target))
	}
	return ui.Panel.Render(strings.Join(lines, "\n"))
}

func (m boardModel) renderProjects() string {
	if len(m.snap.projects) == 0 {
		return ui.Muted.Render("No projects yet. Add one with `lab project add`.")
	}
	var out []string
	for i, p := range m.snap.projects {
		line := fmt.Sprintf("%-24s %-20s score %4.1f  %s", truncate(p.Name, 24), ui.StatusText(string(p.Status)), p.Score, m.f.Money(p.Revenue))
		if i == m.selected {
			line = ui.SelectedRow.Render("> " + line)
		} else {
			line = "  " + line
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderGrowth() string {
	g := m.snap.growth
	lines := []string{
		ui.LabelValue("Channel tests", fmt.Sprintf("%d (%d running, %d completed)", g.TotalExperiments, g.RunningExperiments, g.CompletedExperiments)),
		ui.LabelValue("Installs", m.f.Int(g.TotalInstalls)),
		ui.LabelValue("Spent", m.f.Money(g.TotalSpent)),
		ui.LabelValue("ROI", m.f.OptPercent(g.OverallROI)),
		"",
		ui.PanelTitle.Render("By channel"),
	}
	if len(m.snap.channels) == 0 {
		lines = append(lines, ui.Muted.Render("(no channel tests)"))
	}
	for _, c := range m.snap.channels {
		lines = append(lines, fmt.Sprintf("%-12s %8s installs  CPI %s  ROI %s",
			c.Channel, m.f.Int(c.TotalInstalls), m.f.Money(c.AvgCPI), m.f.OptPercent(c.ROI)))
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderLog() string {
	if len(m.snap.events) == 0 {
		return ui.Muted.Render("(empty)")
	}
	var out []string
	for _, ev := range m.snap.events {
		out = append(out, ui.Muted.Render(ev.Timestamp.Local().Format("Jan 02 15:04"))+"  "+ui.EventText(ev))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	keys := ui.Muted.Render("tab: switch  j/k: move  a: advance project  r: reload  q: quit")
	return "\n" + m.lastLog + "\n" + keys
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
