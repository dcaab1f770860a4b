package ui

import (
	"errors"
	"testing"
	"time"

	"sportdash/internal/activity"
	"sportdash/internal/analytics"
	"sportdash/internal/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus/hooks/test"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// setupTest disables colors so rendered output can be matched as text.
func setupTest(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{})
}

// fakeSource runs the engine over in-memory rows.
type fakeSource struct {
	rows  []activity.RawRow
	err   error
	calls int
}

func (f *fakeSource) Generate() (*analytics.Report, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	log, _ := test.NewNullLogger()
	opts := analytics.DefaultOptions()
	opts.Goals = map[activity.Category]float64{activity.CategoryCycling: 100}
	n := activity.NewNormalizer(activity.NormalizerOptions{Location: time.UTC}, log)
	engine := analytics.NewEngine(n, activity.NewCategorizer(), opts, log)
	return engine.Run(f.rows, testNow), nil
}

func row(id, date, name, typ, seconds, km, gear string) activity.RawRow {
	return activity.RawRow{
		"Activiteits-ID":             id,
		"Datum van activiteit":       date,
		"Naam activiteit":            name,
		"Activiteitstype":            typ,
		"Beweegtijd":                 seconds,
		"Afstand":                    km,
		"Uitrusting voor activiteit": gear,
	}
}

func sampleSource() *fakeSource {
	return &fakeSource{rows: []activity.RawRow{
		row("1", "10 feb 2025, 08:00:00", "Winterrit", "Fietsrit", "5400", "40,0", "Canyon"),
		row("2", "15 feb 2026, 08:00:00", "Rondje polder", "Fietsrit", "7200", "60,0", "Canyon"),
		row("3", "20 feb 2026, 18:00:00", "Avondloop", "Hardloopsessie", "1800", "6,0", "Pegasus"),
		row("4", "28 feb 2026, 18:00:00", "Duurloop", "Hardloopsessie", "3600", "12,0", "Pegasus"),
	}}
}

func errorSource() *fakeSource {
	return &fakeSource{err: errors.New("activities.csv: no date column")}
}

// newLoadedApp returns an app sized to width x height with the sample
// report already delivered.
func newLoadedApp(t *testing.T, width, height int) *App {
	t.Helper()
	setupTest(t)
	app := NewApp(sampleSource(), createTestStyles(), &AppConfig{
		Keys:                  &config.KeysConfig{},
		NarrowLayoutThreshold: 80,
		ShowPace:              true,
	})
	app.now = func() time.Time { return testNow }
	app.Update(tea.WindowSizeMsg{Width: width, Height: height})
	app.Update(loadReportCmd(app.source, false)())
	if app.report == nil {
		t.Fatal("report not loaded")
	}
	return app
}
