package ui

import (
	"strings"
	"testing"
	"time"

	"sportdash/internal/config"
	"sportdash/internal/sync"

	tea "github.com/charmbracelet/bubbletea"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestApp_LayoutModeTransitions verifies layout mode changes based on width.
func TestApp_LayoutModeTransitions(t *testing.T) {
	app := NewApp(sampleSource(), createTestStyles(), &AppConfig{
		Keys:                  &config.KeysConfig{},
		NarrowLayoutThreshold: 80,
	})

	tests := []struct {
		name         string
		width        int
		expectedMode LayoutMode
	}{
		{"Very narrow (40)", 40, LayoutNarrow},
		{"At threshold (79)", 79, LayoutNarrow},
		{"At threshold (80)", 80, LayoutWide},
		{"Very wide (200)", 200, LayoutWide},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app.Update(tea.WindowSizeMsg{Width: tc.width, Height: 30})
			if app.layoutMode != tc.expectedMode {
				t.Errorf("Width %d: expected layout mode %v, got %v", tc.width, tc.expectedMode, app.layoutMode)
			}
		})
	}
}

func TestApp_CustomThreshold(t *testing.T) {
	app := NewApp(sampleSource(), createTestStyles(), &AppConfig{NarrowLayoutThreshold: 100})

	app.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	if app.layoutMode != LayoutNarrow {
		t.Errorf("Expected LayoutNarrow at width 90 with threshold 100, got %v", app.layoutMode)
	}
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if app.layoutMode != LayoutWide {
		t.Errorf("Expected LayoutWide at width 100 with threshold 100, got %v", app.layoutMode)
	}
}

func TestApp_WideLayoutShowsAllPanes(t *testing.T) {
	app := newLoadedApp(t, 160, 50)
	view := app.View()

	for _, title := range []string{"OVERVIEW", "RECORDS", "STREAKS & GOALS", "GEAR"} {
		if !strings.Contains(view, title) {
			t.Errorf("wide view missing pane %s", title)
		}
	}
	if !strings.Contains(view, "2026: 78.0 km in 3 sessions") {
		t.Error("title bar should show year-to-date totals")
	}
}

func TestApp_NarrowLayoutShowsOnlyActivePane(t *testing.T) {
	app := newLoadedApp(t, 60, 30)
	view := app.View()

	if !strings.Contains(view, "[Overview]") {
		t.Error("Expected [Overview] tab highlighted in narrow mode")
	}
	if strings.Contains(view, "HALL") || strings.Contains(view, "RECORDS") {
		t.Error("narrow mode should render only the active pane")
	}
}

func TestApp_PaneSwitching(t *testing.T) {
	app := newLoadedApp(t, 60, 30)

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if app.activePane != PaneRecords {
		t.Fatalf("after tab: pane = %v, want Records", app.activePane)
	}
	if !strings.Contains(app.View(), "[Records]") {
		t.Error("Expected [Records] tab to be highlighted after switch")
	}

	app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if app.activePane != PaneGear {
		t.Errorf("shift+tab should wrap to Gear, got %v", app.activePane)
	}

	app.Update(runeKey("3"))
	if app.activePane != PaneStreaks {
		t.Errorf("'3' should jump to Streaks, got %v", app.activePane)
	}
	if !app.panes[PaneStreaks].(*StreaksPane).focused {
		t.Error("Streaks pane should be focused")
	}
	if app.panes[PaneOverview].(*OverviewPane).focused {
		t.Error("Overview pane should lose focus")
	}
}

func TestApp_YearKeysOnlyOnOverview(t *testing.T) {
	app := newLoadedApp(t, 160, 50)

	if year, _ := app.overview.SelectedYear(); year != 2026 {
		t.Fatalf("initial year = %d, want newest", year)
	}
	app.Update(runeKey("h"))
	if year, _ := app.overview.SelectedYear(); year != 2025 {
		t.Errorf("after h: year = %d, want 2025", year)
	}
	if !strings.Contains(app.View(), "[2025]") {
		t.Error("year tab 2025 should be highlighted")
	}

	// Oldest year stays selected.
	app.Update(runeKey("h"))
	if year, _ := app.overview.SelectedYear(); year != 2025 {
		t.Errorf("year = %d, want 2025", year)
	}

	app.Update(runeKey("2"))
	app.Update(runeKey("l"))
	if year, _ := app.overview.SelectedYear(); year != 2025 {
		t.Error("year keys must not reach the overview while another pane is active")
	}
}

func TestApp_Refresh(t *testing.T) {
	app := newLoadedApp(t, 160, 50)

	_, cmd := app.Update(runeKey("r"))
	if cmd == nil {
		t.Fatal("refresh should return a command")
	}
	if !app.loading {
		t.Error("loading should be set while refreshing")
	}

	app.Update(runeKey("r"))
	if !app.statusErr || !strings.Contains(app.status, "busy") {
		t.Errorf("second refresh status = %q", app.status)
	}

	app.Update(loadReportCmd(app.source, true)())
	if app.loading {
		t.Error("loading should clear after the report arrives")
	}
	if app.status != "Reloaded 4 activities" {
		t.Errorf("status = %q", app.status)
	}
}

func TestApp_LoadError(t *testing.T) {
	setupTest(t)
	app := NewApp(errorSource(), createTestStyles(), nil)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app.Update(loadReportCmd(app.source, false)())

	if !app.statusErr || !strings.Contains(app.status, "no date column") {
		t.Errorf("status = %q, err = %v", app.status, app.statusErr)
	}
	if !strings.Contains(app.View(), "no date column") {
		t.Error("error should be shown in the help bar")
	}
}

func TestApp_EmptyData(t *testing.T) {
	setupTest(t)
	app := NewApp(&fakeSource{}, createTestStyles(), nil)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app.Update(loadReportCmd(app.source, false)())

	if !strings.Contains(app.View(), "No activities yet.") {
		t.Error("empty data should show the onboarding hint")
	}
}

func TestApp_HelpToggle(t *testing.T) {
	app := newLoadedApp(t, 100, 40)

	app.Update(runeKey("?"))
	if !app.showHelp {
		t.Fatal("? should open help")
	}
	view := app.View()
	for _, want := range []string{"Keyboard Shortcuts", "Global", "Scrolling", "next pane", "older year"} {
		if !strings.Contains(view, want) {
			t.Errorf("help overlay missing %q", want)
		}
	}

	// Keys do not leak to panes while help is open.
	app.Update(runeKey("2"))
	if app.activePane != PaneOverview {
		t.Error("pane switched while help was open")
	}

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if app.showHelp {
		t.Error("esc should close help")
	}
}

func TestApp_CustomKeys(t *testing.T) {
	setupTest(t)
	app := NewApp(sampleSource(), createTestStyles(), &AppConfig{
		Keys: &config.KeysConfig{NextPane: "n", Quit: "x"},
	})

	app.Update(runeKey("n"))
	if app.activePane != PaneRecords {
		t.Errorf("custom next pane key: pane = %v", app.activePane)
	}
	_, cmd := app.Update(runeKey("q"))
	if cmd != nil || app.quitting {
		t.Error("q should not quit when quit is remapped")
	}
	_, cmd = app.Update(runeKey("x"))
	if cmd == nil || !app.quitting {
		t.Error("x should quit")
	}
}

func TestApp_Goodbye(t *testing.T) {
	app := newLoadedApp(t, 100, 40)
	app.Update(runeKey("q"))

	view := app.View()
	if !strings.Contains(view, "See you on the road!") {
		t.Errorf("goodbye view = %q", view)
	}
	if !strings.Contains(view, "Week streak:") {
		t.Error("goodbye should mention the live week streak")
	}
}

func TestApp_MouseSelectsPane(t *testing.T) {
	app := newLoadedApp(t, 160, 50)

	app.Update(tea.MouseMsg{X: 120, Y: 40, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if app.activePane != PaneGear {
		t.Errorf("click bottom right: pane = %v, want Gear", app.activePane)
	}
	app.Update(tea.MouseMsg{X: 5, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if app.activePane != PaneOverview {
		t.Errorf("click top left: pane = %v, want Overview", app.activePane)
	}

	app.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	app.Update(tea.MouseMsg{X: 50, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if app.activePane != PaneGear {
		t.Errorf("click last tab: pane = %v, want Gear", app.activePane)
	}
}

func TestApp_MouseWheelScrolls(t *testing.T) {
	app := newLoadedApp(t, 60, 12)
	app.Update(runeKey("2"))
	records := app.panes[PaneRecords].(*RecordsPane)

	app.Update(tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	if records.offset != 1 {
		t.Errorf("offset after wheel down = %d, want 1", records.offset)
	}
	app.Update(tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	app.Update(tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if records.offset != 0 {
		t.Errorf("offset = %d, want clamped to 0", records.offset)
	}
}

type fakeStatus struct{ status *sync.Status }

func (f fakeStatus) Status() (*sync.Status, error) { return f.status, nil }

func TestApp_SyncIndicator(t *testing.T) {
	app := newLoadedApp(t, 160, 50)

	tests := []struct {
		status *sync.Status
		want   string
	}{
		{&sync.Status{IsRepo: true, HasChanges: true}, "uncommitted"},
		{&sync.Status{IsRepo: true, HasRemote: true, Ahead: 2}, "↑2"},
		{&sync.Status{IsRepo: true, HasRemote: true, Behind: 1}, "↓1"},
		{&sync.Status{IsRepo: true, HasRemote: true}, "synced"},
		{&sync.Status{IsRepo: true}, "local only"},
	}
	for _, tt := range tests {
		app.SetStatusSource(fakeStatus{tt.status})
		app.Update(syncStatusCmd(app.syncer)())
		if got := app.renderTitleBar(); !strings.Contains(got, tt.want) {
			t.Errorf("title bar %q missing %q", got, tt.want)
		}
	}

	app.Update(syncStatusMsg{status: &sync.Status{}})
	if got := app.renderSyncStatus(); got != "" {
		t.Errorf("no repo should hide the indicator, got %q", got)
	}
}

func TestApp_StatusExpires(t *testing.T) {
	app := newLoadedApp(t, 100, 40)
	app.SetStatus("Reloaded", false)

	app.Update(tickMsg(testNow))
	if app.status == "" {
		t.Fatal("status cleared too early")
	}
	app.now = func() time.Time { return testNow.Add(6 * time.Second) }
	app.Update(tickMsg(testNow))
	if app.status != "" {
		t.Errorf("status = %q, want expired", app.status)
	}
}
