package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// loadReportCmd runs the engine off the event loop. refresh marks reloads
// requested by the user.
func loadReportCmd(src ReportSource, refresh bool) tea.Cmd {
	return func() tea.Msg {
		report, err := src.Generate()
		return reportLoadedMsg{report: report, refresh: refresh, err: err}
	}
}

// syncStatusCmd queries git for the data directory status.
func syncStatusCmd(src StatusSource) tea.Cmd {
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		status, err := src.Status()
		return syncStatusMsg{status: status, err: err}
	}
}

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
