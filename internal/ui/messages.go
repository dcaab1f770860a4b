package ui

import (
	"time"

	"sportdash/internal/analytics"
	"sportdash/internal/sync"
)

// reportLoadedMsg carries a freshly generated report.
type reportLoadedMsg struct {
	report  *analytics.Report
	refresh bool
	err     error
}

// syncStatusMsg is sent when git sync status is refreshed.
type syncStatusMsg struct {
	status *sync.Status
	err    error
}

// tickMsg is sent periodically for time updates.
type tickMsg time.Time
