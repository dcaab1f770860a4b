// Package ui is the sportdash terminal dashboard.
// This file contains the main App model which coordinates the panes and
// routes messages using the Bubble Tea architecture.
package ui

import (
	"fmt"
	"strings"
	"time"

	"sportdash/internal/analytics"
	"sportdash/internal/config"
	"sportdash/internal/reports"
	"sportdash/internal/sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReportSource produces the analytics report shown by the dashboard.
// *reports.Generator implements it.
type ReportSource interface {
	Generate() (*analytics.Report, error)
}

// StatusSource reports the git status of the data directory.
// *sync.GitSync implements it.
type StatusSource interface {
	Status() (*sync.Status, error)
}

// LayoutMode determines how panes are arranged based on terminal width.
type LayoutMode int

const (
	// LayoutWide shows the four panes in a 2x2 grid.
	LayoutWide LayoutMode = iota
	// LayoutNarrow shows only the focused pane with a tab bar.
	LayoutNarrow
)

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys                  *config.KeysConfig
	NarrowLayoutThreshold int
	ShowPace              bool
}

// App is the main application model that coordinates all panes.
type App struct {
	source      ReportSource
	syncer      StatusSource
	styles      *Styles
	config      *AppConfig
	panes       [paneCount]pane
	overview    *OverviewPane
	helpOverlay *HelpOverlay
	report      *analytics.Report
	syncStatus  *sync.Status
	loading     bool
	activePane  PaneID
	layoutMode  LayoutMode
	showHelp    bool
	width       int
	height      int
	status      string
	statusErr   bool
	statusUntil time.Time
	quitting    bool
	now         func() time.Time

	keys     GlobalKeyMap
	helpKeys HelpKeyMap

	// Grid geometry for mouse hit testing.
	leftWidth  int
	topHeight  int
	contentTop int
}

// NewApp creates a new application. The report is generated in Init so the
// constructor stays non-blocking.
func NewApp(source ReportSource, styles *Styles, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{NarrowLayoutThreshold: 80, ShowPace: true}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}

	keys := NewGlobalKeyMap(cfg.Keys)
	overview := NewOverviewPane(styles, cfg.Keys)
	a := &App{
		source:   source,
		styles:   styles,
		config:   cfg,
		overview: overview,
		panes: [paneCount]pane{
			PaneOverview: overview,
			PaneRecords:  NewRecordsPane(styles, cfg.Keys, cfg.ShowPace),
			PaneStreaks:  NewStreaksPane(styles, cfg.Keys),
			PaneGear:     NewGearPane(styles, cfg.Keys),
		},
		helpOverlay: NewHelpOverlay(styles, keys, NewNavigationKeyMap(cfg.Keys), NewYearKeyMap(cfg.Keys)),
		loading:     true,
		keys:        keys,
		helpKeys:    DefaultHelpKeyMap(),
		now:         time.Now,
	}
	a.setActivePane(PaneOverview)
	return a
}

// SetStatusSource enables the sync indicator in the title bar.
func (a *App) SetStatusSource(s StatusSource) {
	a.syncer = s
}

// Init initializes the app and generates the report asynchronously.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		loadReportCmd(a.source, false),
		syncStatusCmd(a.syncer),
	)
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportLoadedMsg:
		a.loading = false
		if msg.err != nil {
			a.SetStatus("Load: "+msg.err.Error(), true)
			return a, nil
		}
		a.setReport(msg.report)
		if msg.refresh {
			a.SetStatus(fmt.Sprintf("Reloaded %d activities", msg.report.Ingest.Records), false)
		}
		return a, nil

	case syncStatusMsg:
		if msg.err == nil {
			a.syncStatus = msg.status
		}
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.MouseMsg:
		a.handleMouse(msg)
		return a, nil

	case tickMsg:
		if a.status != "" && !a.statusUntil.IsZero() && a.now().After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		return a, tickCmd()
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Help overlay takes priority
	if a.showHelp {
		if key.Matches(msg, a.helpKeys.Close) {
			a.showHelp = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
	case key.Matches(msg, a.keys.NextPane):
		a.setActivePane((a.activePane + 1) % paneCount)
	case key.Matches(msg, a.keys.PrevPane):
		a.setActivePane((a.activePane + paneCount - 1) % paneCount)
	case key.Matches(msg, a.keys.Pane1):
		a.setActivePane(PaneOverview)
	case key.Matches(msg, a.keys.Pane2):
		a.setActivePane(PaneRecords)
	case key.Matches(msg, a.keys.Pane3):
		a.setActivePane(PaneStreaks)
	case key.Matches(msg, a.keys.Pane4):
		a.setActivePane(PaneGear)
	case key.Matches(msg, a.keys.Refresh):
		if a.loading {
			a.SetStatus("Reload: busy", true)
			return nil
		}
		a.loading = true
		return tea.Batch(loadReportCmd(a.source, true), syncStatusCmd(a.syncer))
	default:
		a.panes[a.activePane].HandleKey(msg)
	}
	return nil
}

func (a *App) handleMouse(msg tea.MouseMsg) {
	if a.showHelp {
		// Any click closes help
		if msg.Action == tea.MouseActionPress {
			a.showHelp = false
		}
		return
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.panes[a.activePane].Scroll(-1)
		return
	case tea.MouseButtonWheelDown:
		a.panes[a.activePane].Scroll(1)
		return
	}

	if msg.Action != tea.MouseActionPress {
		return
	}
	if a.layoutMode == LayoutNarrow {
		if msg.Y == a.contentTop-1 && a.width > 0 {
			tab := PaneID(msg.X * int(paneCount) / a.width)
			a.setActivePane(min(tab, paneCount-1))
		}
		return
	}
	if p, ok := a.paneAtPosition(msg.X, msg.Y); ok {
		a.setActivePane(p)
	}
}

// paneAtPosition maps a cell in the wide grid to its pane.
func (a *App) paneAtPosition(x, y int) (PaneID, bool) {
	if a.layoutMode != LayoutWide || y < a.contentTop || y >= a.height-1 {
		return 0, false
	}
	col := 0
	if x > a.leftWidth {
		col = 1
	}
	row := 0
	if y-a.contentTop >= a.topHeight {
		row = 1
	}
	return PaneID(row*2 + col), true
}

func (a *App) setReport(r *analytics.Report) {
	a.report = r
	for _, p := range a.panes {
		p.SetReport(r)
	}
}

// setActivePane sets the active pane and updates focus states.
func (a *App) setActivePane(id PaneID) {
	a.activePane = id
	for i, p := range a.panes {
		p.SetFocused(PaneID(i) == id)
	}
}

// updateLayout recalculates pane sizes based on terminal dimensions.
func (a *App) updateLayout() {
	a.helpOverlay.SetSize(a.width, a.height)

	// Title bar and help bar take one line each.
	contentHeight := max(a.height-2, 10)
	a.contentTop = 1

	threshold := a.config.NarrowLayoutThreshold
	if threshold <= 0 {
		threshold = 80
	}

	if a.width < threshold {
		a.layoutMode = LayoutNarrow
		// Tab bar sits above the pane.
		a.contentTop = 2
		for _, p := range a.panes {
			p.SetSize(max(a.width, 20), max(contentHeight-1, 8))
		}
		return
	}

	a.layoutMode = LayoutWide
	a.leftWidth = (a.width - 1) / 2
	rightWidth := a.width - a.leftWidth - 1
	a.topHeight = contentHeight / 2
	bottomHeight := contentHeight - a.topHeight

	a.panes[PaneOverview].SetSize(a.leftWidth, a.topHeight)
	a.panes[PaneRecords].SetSize(rightWidth, a.topHeight)
	a.panes[PaneStreaks].SetSize(a.leftWidth, bottomHeight)
	a.panes[PaneGear].SetSize(rightWidth, bottomHeight)
}

// View renders the entire app.
func (a *App) View() string {
	if a.quitting {
		return a.renderGoodbye()
	}
	if a.showHelp {
		return a.helpOverlay.View()
	}

	var b strings.Builder
	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")

	if a.layoutMode == LayoutNarrow {
		b.WriteString(a.renderPaneTabs())
		b.WriteString("\n")
		b.WriteString(a.panes[a.activePane].View())
	} else {
		top := lipgloss.JoinHorizontal(lipgloss.Top, a.panes[PaneOverview].View(), " ", a.panes[PaneRecords].View())
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, a.panes[PaneStreaks].View(), " ", a.panes[PaneGear].View())
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, top, bottom))
	}
	b.WriteString("\n")
	b.WriteString(a.renderHelpBar())
	return b.String()
}

// renderPaneTabs renders a tab bar showing available panes.
func (a *App) renderPaneTabs() string {
	activeTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorPrimary).
		Bold(true)
	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	parts := make([]string, 0, paneCount)
	for id := PaneOverview; id < paneCount; id++ {
		if id == a.activePane {
			parts = append(parts, activeTabStyle.Render("["+id.Label()+"]"))
		} else {
			parts = append(parts, inactiveTabStyle.Render(" "+id.Label()+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (a *App) renderGoodbye() string {
	var b strings.Builder
	b.WriteString("\n  See you on the road!\n")
	if a.report != nil && a.report.WeekStreak.Live() {
		b.WriteString(fmt.Sprintf("  Week streak: %s\n", plural(a.report.WeekStreak.Current, "week")))
	}
	b.WriteString("\n")
	return b.String()
}

// renderTitleBar shows the year-to-date totals, sync state and date.
func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" sportdash ")

	var stats string
	now := a.now()
	if a.report != nil {
		if ys, ok := a.report.Year(now.Year()); ok {
			stats = a.styles.StatLabelStyle.Render(fmt.Sprintf("%d: %s in %s",
				ys.Year, reports.FormatKm(ys.Total.TotalDistanceKm), plural(ys.Total.SessionCount, "session")))
		}
	} else if a.loading {
		stats = a.styles.StatLabelStyle.Render("loading…")
	}

	syncState := a.renderSyncStatus()
	date := a.styles.DateStyle.Render(now.Format("Mon Jan 2 · 15:04"))

	used := lipgloss.Width(title) + lipgloss.Width(stats) + lipgloss.Width(syncState) + lipgloss.Width(date)
	spacer := strings.Repeat(" ", max(a.width-used-4, 2))

	parts := []string{title}
	if stats != "" {
		parts = append(parts, "  "+stats)
	}
	parts = append(parts, spacer)
	if syncState != "" {
		parts = append(parts, syncState+"  ")
	}
	parts = append(parts, date)
	return strings.Join(parts, "")
}

func (a *App) renderSyncStatus() string {
	st := a.syncStatus
	if st == nil || !st.IsRepo {
		return ""
	}
	switch {
	case st.HasChanges:
		return a.styles.SyncPendingStyle.Render("● uncommitted")
	case st.Behind > 0:
		return a.styles.SyncBehindStyle.Render(fmt.Sprintf("↓%d", st.Behind))
	case st.Ahead > 0:
		return a.styles.SyncAheadStyle.Render(fmt.Sprintf("↑%d", st.Ahead))
	case st.HasRemote:
		return a.styles.SyncSyncedStyle.Render("✓ synced")
	}
	return a.styles.SyncDisabledStyle.Render("local only")
}

// renderHelpBar shows the status message, or hints for the focused pane.
func (a *App) renderHelpBar() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.ErrorStyle.Render(a.status)
		}
		return a.styles.StatusStyle.Render(a.status)
	}

	var pairs []string
	add := func(b key.Binding) {
		h := b.Help()
		pairs = append(pairs, h.Key, h.Desc)
	}
	if a.activePane == PaneOverview {
		add(a.overview.yearKeys.Prev)
		add(a.overview.yearKeys.Next)
	}
	nav := a.overview.keys
	pairs = append(pairs, nav.Up.Help().Key+" "+nav.Down.Help().Key, "scroll")
	add(a.keys.NextPane)
	add(a.keys.Refresh)
	add(a.keys.Help)
	add(a.keys.Quit)
	return a.styles.RenderHelp(pairs...)
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = a.now().Add(ttl)
}

// Run starts the Bubble Tea program. syncer may be nil.
func Run(source ReportSource, syncer StatusSource, styles *Styles, cfg *AppConfig) error {
	app := NewApp(source, styles, cfg)
	if syncer != nil {
		app.SetStatusSource(syncer)
	}
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
