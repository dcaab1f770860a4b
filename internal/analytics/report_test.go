package analytics

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportdash/internal/activity"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEngine(opts Options) *Engine {
	log := quietLogger()
	n := activity.NewNormalizer(activity.NormalizerOptions{Location: time.UTC}, log)
	return NewEngine(n, activity.NewCategorizer(), opts, log)
}

// TestEngine_Run tests the whole pipeline from raw rows.
func TestEngine_Run(t *testing.T) {
	rows := []activity.RawRow{
		{"date": "2025-01-01", "type": "Run", "distance": "10", "moving_time": "3000"},
		{"date": "2025-01-08", "type": "Run", "distance": "12", "moving_time": "3600"},
		{"date": "not a date", "type": "Run", "distance": "12", "moving_time": "3600"},
	}
	e := newTestEngine(DefaultOptions())

	report := e.Run(rows, day(2025, time.January, 10))
	require.NotNil(t, report)
	assert.Equal(t, 3, report.Ingest.Rows)
	assert.Equal(t, 2, report.Ingest.Records)
	assert.Equal(t, 1, report.Ingest.Dropped)
	assert.Len(t, report.Ingest.Issues, 1)

	assert.Equal(t, 2, report.WeekStreak.Longest)
	assert.Equal(t, 2, report.WeekStreak.Current)
	assert.Equal(t, 1, report.DayStreak.Longest)
	assert.Equal(t, 0, report.DayStreak.Current)

	year, ok := report.Year(2025)
	require.True(t, ok)
	assert.InDelta(t, 22.0, year.Total.TotalDistanceKm, 1e-9)
	running, ok := year.Category(activity.CategoryRunning)
	require.True(t, ok)
	assert.Equal(t, 2, running.SessionCount)

	require.NotNil(t, report.Latest)
	assert.Equal(t, day(2025, time.January, 8).YearDay(), report.Latest.Date.YearDay())
}

// TestEngine_RunIsIdempotent tests that the same input yields the same report.
func TestEngine_RunIsIdempotent(t *testing.T) {
	rows := []activity.RawRow{
		{"date": "2025-01-01", "type": "Ride", "name": "a", "distance": "40", "moving_time": "5400", "gear": "Canyon"},
		{"date": "2024-01-03", "type": "Ride", "name": "b", "distance": "30", "moving_time": "4000", "gear": "Canyon"},
	}
	e := newTestEngine(DefaultOptions())
	now := day(2025, time.February, 1)
	assert.Equal(t, e.Run(rows, now), e.Run(rows, now))
}

// TestEngine_EmptyInput tests that no rows give an empty but complete report.
func TestEngine_EmptyInput(t *testing.T) {
	report := newTestEngine(DefaultOptions()).Run(nil, day(2025, time.January, 10))
	assert.Empty(t, report.Years)
	assert.NotNil(t, report.Comparisons)
	assert.Empty(t, report.HallOfFame)
	assert.Nil(t, report.Latest)
	assert.Equal(t, 0, report.WeekStreak.Longest)
}

// TestMonthlyDistance tests per-month totals next to the prior year.
func TestMonthlyDistance(t *testing.T) {
	records := []activity.Record{
		rec(day(2024, time.February, 3), activity.CategoryCycling, 50, 7200),
		rec(day(2025, time.February, 1), activity.CategoryCycling, 20, 3600),
		rec(day(2025, time.February, 20), activity.CategoryCycling, 30, 3600),
		rec(day(2025, time.April, 1), activity.CategoryRunning, 8, 2400),
	}
	months := MonthlyDistance(records)
	require.Len(t, months, 3)

	cycling := months[0]
	assert.Equal(t, 2025, cycling.Year)
	assert.Equal(t, activity.CategoryCycling, cycling.Category)
	assert.InDelta(t, 50.0, cycling.DistanceKm[1], 1e-9)
	require.NotNil(t, cycling.PriorDistanceKm)
	assert.InDelta(t, 50.0, cycling.PriorDistanceKm[1], 1e-9)

	running := months[1]
	assert.Equal(t, activity.CategoryRunning, running.Category)
	require.NotNil(t, running.PriorDistanceKm)
	assert.Zero(t, running.PriorDistanceKm[3])

	assert.Equal(t, 2024, months[2].Year)
	assert.Nil(t, months[2].PriorDistanceKm)
}

// TestGearUsage tests the gear totals and dominant category.
func TestGearUsage(t *testing.T) {
	records := []activity.Record{
		withGear(rec(day(2025, time.March, 1), activity.CategoryCycling, 60, 7200), "Canyon"),
		withGear(rec(day(2025, time.March, 2), activity.CategoryIndoorCycling, 30, 3600), "Canyon"),
		withGear(rec(day(2025, time.March, 3), activity.CategoryCycling, 40, 5400), "Canyon"),
		withGear(rec(day(2025, time.March, 4), activity.CategoryRunning, 10, 3000), "Pegasus"),
		rec(day(2025, time.March, 5), activity.CategoryRunning, 10, 3000),
	}
	gear := GearUsage(records)
	require.Len(t, gear, 2)
	assert.Equal(t, "Canyon", gear[0].Name)
	assert.Equal(t, 3, gear[0].Sessions)
	assert.InDelta(t, 130.0, gear[0].DistanceKm, 1e-9)
	assert.Equal(t, activity.CategoryCycling, gear[0].Category)
	assert.Equal(t, day(2025, time.March, 1), gear[0].FirstUsed)
	assert.Equal(t, day(2025, time.March, 3), gear[0].LastUsed)
	assert.Equal(t, "Pegasus", gear[1].Name)
}

// TestGoalsProgress tests capped percentages and ordering.
func TestGoalsProgress(t *testing.T) {
	records := []activity.Record{
		rec(day(2025, time.March, 1), activity.CategoryRunning, 400, 3600),
		rec(day(2025, time.March, 2), activity.CategoryCycling, 1500, 3600),
		rec(day(2024, time.March, 2), activity.CategoryCycling, 1500, 3600),
	}
	goals := map[activity.Category]float64{
		activity.CategoryRunning:  350,
		activity.CategoryCycling:  3000,
		activity.CategorySwimming: 0,
	}
	progress := GoalsProgress(records, goals, 2025)
	require.Len(t, progress, 2)

	assert.Equal(t, activity.CategoryCycling, progress[0].Category)
	assert.InDelta(t, 50.0, progress[0].Percent, 1e-9)
	assert.InDelta(t, 1500.0, progress[0].RemainingKm, 1e-9)
	assert.False(t, progress[0].Reached)

	assert.Equal(t, activity.CategoryRunning, progress[1].Category)
	assert.InDelta(t, 100.0, progress[1].Percent, 1e-9)
	assert.Zero(t, progress[1].RemainingKm)
	assert.True(t, progress[1].Reached)
}
