// Package reports turns the stored activity log into an analytics report
// and renders it as JSON or Markdown.
package reports

import (
	"fmt"
	"time"

	"sportdash/internal/activity"
	"sportdash/internal/analytics"
	"sportdash/internal/storage"
)

// Generator creates reports from storage data.
type Generator struct {
	store  *storage.Storage
	engine *analytics.Engine
	now    func() time.Time
}

// NewGenerator creates a new report generator. The report date follows the
// storage clock.
func NewGenerator(store *storage.Storage, engine *analytics.Engine) *Generator {
	return &Generator{store: store, engine: engine, now: store.Now}
}

// SetNowFunc overrides the reference time for streaks and year-to-date cuts.
func (g *Generator) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = g.store.Now
	}
	g.now = now
}

// Generate loads every stored row and runs the engine over it.
func (g *Generator) Generate() (*analytics.Report, error) {
	table, err := g.store.LoadActivities()
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	if table.Len() > 0 {
		if err := activity.ValidateHeader(table.Header); err != nil {
			return nil, fmt.Errorf("%s: %w", storage.ActivitiesFile, err)
		}
	}
	return g.engine.Run(table.Rows, g.now()), nil
}
