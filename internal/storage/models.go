package storage

import (
	"time"

	"sportdash/internal/activity"
)

// ActivityTable is the raw activity log as stored on disk. The header order
// is kept so appended rows line up with what the export produced.
type ActivityTable struct {
	Header []string
	Rows   []activity.RawRow
}

// Len returns the number of rows.
func (t *ActivityTable) Len() int {
	return len(t.Rows)
}

// FetchRun records one sync against the remote API.
type FetchRun struct {
	At      time.Time `json:"at"`
	Fetched int       `json:"fetched"`
	Added   int       `json:"added"`
	Source  string    `json:"source"`
}

// FetchState tracks sync progress between runs.
type FetchState struct {
	LastFetchAt      *time.Time `json:"last_fetch_at,omitempty"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
	TotalAdded       int        `json:"total_added"`
	History          []FetchRun `json:"history"`
}

// maxFetchHistory bounds the history kept in fetch_state.json.
const maxFetchHistory = 50

// Record appends a run and trims old history.
func (s *FetchState) Record(run FetchRun) {
	at := run.At
	s.LastFetchAt = &at
	s.TotalAdded += run.Added
	s.History = append(s.History, run)
	if len(s.History) > maxFetchHistory {
		s.History = s.History[len(s.History)-maxFetchHistory:]
	}
}
