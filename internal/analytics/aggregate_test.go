package analytics

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportdash/internal/activity"
)

func ids(records []activity.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

// TestAggregate_SpeedOutlierExcludedFromRanking tests that a GPS glitch does
// not make the fastest list but still counts in totals.
func TestAggregate_SpeedOutlierExcludedFromRanking(t *testing.T) {
	a := withSpeed(rec(day(2025, time.May, 1), activity.CategoryCycling, 30, 4320), 25)
	b := withSpeed(rec(day(2025, time.May, 2), activity.CategoryCycling, 40, 4800), 30)
	glitch := withSpeed(rec(day(2025, time.May, 3), activity.CategoryCycling, 50, 450), 400)

	s := Aggregate([]activity.Record{a, b, glitch}, DefaultOptions())
	assert.Equal(t, 3, s.SessionCount)
	assert.InDelta(t, 120.0, s.TotalDistanceKm, 1e-9)
	assert.Equal(t, []string{b.ID, a.ID}, ids(s.Top.Speed))
	assert.Equal(t, []string{glitch.ID, b.ID, a.ID}, ids(s.Top.Distance))
}

// TestAggregate_MinSpeedDistance tests that very short sessions are not ranked on speed.
func TestAggregate_MinSpeedDistance(t *testing.T) {
	short := withSpeed(rec(day(2025, time.May, 1), activity.CategoryRunning, 0.4, 60), 24)
	long := withSpeed(rec(day(2025, time.May, 2), activity.CategoryRunning, 10, 3600), 10)

	s := Aggregate([]activity.Record{short, long}, DefaultOptions())
	assert.Equal(t, []string{long.ID}, ids(s.Top.Speed))
	// The floor only applies to the speed board.
	assert.Equal(t, []string{long.ID, short.ID}, ids(s.Top.Distance))
	assert.Equal(t, []string{long.ID, short.ID}, ids(s.Top.Duration))

	opts := DefaultOptions()
	opts.MinSpeedDistanceKm = 0
	s = Aggregate([]activity.Record{short, long}, opts)
	assert.Equal(t, []string{short.ID, long.ID}, ids(s.Top.Speed))
}

// TestAggregate_RecordsWithoutID tests that records lacking an ID are each
// ranked instead of collapsing into one entry.
func TestAggregate_RecordsWithoutID(t *testing.T) {
	records := []activity.Record{
		rec(day(2025, time.May, 1), activity.CategoryCycling, 30, 3600),
		rec(day(2025, time.May, 2), activity.CategoryCycling, 40, 4800),
		rec(day(2025, time.May, 3), activity.CategoryCycling, 50, 6000),
	}
	for i := range records {
		records[i].ID = ""
	}

	s := Aggregate(records, DefaultOptions())
	assert.Equal(t, 3, s.SessionCount)
	require.Len(t, s.Top.Distance, 3)
	assert.Len(t, s.Top.Duration, 3)
	assert.Len(t, s.Top.Speed, 3)
	assert.InDelta(t, 50.0, s.Top.Distance[0].DistanceKm, 1e-9)
	assert.InDelta(t, 30.0, s.Top.Distance[2].DistanceKm, 1e-9)
}

// TestAggregate_TopNAndTies tests truncation and tie-breaking by date then ID.
func TestAggregate_TopNAndTies(t *testing.T) {
	late := rec(day(2025, time.June, 10), activity.CategoryRunning, 10, 3000)
	early := rec(day(2025, time.June, 1), activity.CategoryRunning, 10, 3000)
	sameDayA := activity.Record{ID: "a", Date: day(2025, time.June, 5), DistanceKm: 8, MovingTimeSec: 100, Category: activity.CategoryRunning}
	sameDayB := activity.Record{ID: "b", Date: day(2025, time.June, 5), DistanceKm: 8, MovingTimeSec: 100, Category: activity.CategoryRunning}
	small := rec(day(2025, time.June, 2), activity.CategoryRunning, 2, 600)

	s := Aggregate([]activity.Record{sameDayB, late, small, sameDayA, early}, DefaultOptions())
	assert.Equal(t, []string{early.ID, late.ID, "a"}, ids(s.Top.Distance))

	opts := DefaultOptions()
	opts.TopN = 10
	s = Aggregate([]activity.Record{sameDayB, late, small, sameDayA, early}, opts)
	assert.Equal(t, []string{early.ID, late.ID, "a", "b", small.ID}, ids(s.Top.Distance))
}

// TestAggregate_Means tests that absent metrics don't drag the means down.
func TestAggregate_Means(t *testing.T) {
	records := []activity.Record{
		withHR(rec(day(2025, time.May, 1), activity.CategoryRunning, 10, 3600), 150),
		rec(day(2025, time.May, 2), activity.CategoryRunning, 12, 3600),
		withHR(activity.Record{ID: "gym", Date: day(2025, time.May, 3), Category: activity.CategoryStrength}, 110),
	}
	s := Aggregate(records, DefaultOptions())
	require.NotNil(t, s.MeanHeartRate)
	assert.InDelta(t, 130.0, *s.MeanHeartRate, 1e-9)
	require.NotNil(t, s.MeanSpeedKmh)
	assert.InDelta(t, 11.0, *s.MeanSpeedKmh, 1e-9)
	assert.Equal(t, 2, s.SpeedSamples)

	// Zero-distance sessions are not ranked.
	assert.NotContains(t, ids(s.Top.Distance), "gym")
	assert.NotContains(t, ids(s.Top.Duration), "gym")
}

// TestAggregate_Empty tests that an empty set gives empty, non-nil leaderboards.
func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil, DefaultOptions())
	assert.Zero(t, s.SessionCount)
	assert.Nil(t, s.MeanHeartRate)
	assert.Nil(t, s.MeanSpeedKmh)
	assert.NotNil(t, s.Top.Distance)
	assert.NotNil(t, s.Top.Duration)
	assert.NotNil(t, s.Top.Speed)
	assert.Empty(t, s.Top.Speed)
}

// TestMerge_NoOpRoundTrip tests that merging nothing leaves the summary unchanged.
func TestMerge_NoOpRoundTrip(t *testing.T) {
	records := []activity.Record{
		withHR(rec(day(2025, time.May, 1), activity.CategoryRunning, 10, 3600), 150),
		rec(day(2025, time.May, 2), activity.CategoryRunning, 12, 3600),
		rec(day(2025, time.May, 4), activity.CategoryRunning, 21.1, 7200),
		rec(day(2025, time.May, 9), activity.CategoryRunning, 5, 1500),
	}
	s := Aggregate(records, DefaultOptions())
	s.Year = 2025
	s.Category = catPtr(activity.CategoryRunning)

	assert.Equal(t, s, Merge(s, nil, DefaultOptions()))
	assert.Equal(t, s, Merge(s, []activity.Record{}, DefaultOptions()))
}

// TestMerge_Incremental tests that merging in batches equals one pass.
func TestMerge_Incremental(t *testing.T) {
	faker := gofakeit.New(11)
	var records []activity.Record
	for i := 0; i < 40; i++ {
		r := rec(faker.DateRange(day(2025, time.January, 1), day(2025, time.December, 31)),
			activity.CategoryCycling, faker.Float64Range(1, 120), faker.Number(600, 20000))
		if faker.Bool() {
			r = withHR(r, faker.Float64Range(90, 180))
		}
		records = append(records, r)
	}

	opts := DefaultOptions()
	whole := Aggregate(records, opts)
	batched := Merge(Aggregate(records[:15], opts), records[15:], opts)
	assert.Equal(t, whole, batched)
}

// TestSummarizeYears tests per-year and per-category grouping.
func TestSummarizeYears(t *testing.T) {
	records := []activity.Record{
		rec(day(2024, time.March, 1), activity.CategoryRunning, 10, 3600),
		rec(day(2025, time.March, 1), activity.CategoryRunning, 5, 1800),
		rec(day(2025, time.March, 2), activity.CategoryIndoorCycling, 30, 3600),
		rec(day(2025, time.March, 3), activity.CategoryCycling, 60, 7200),
		{ID: "odd", Date: day(2025, time.March, 4), Category: "kitesurf"},
	}

	years := SummarizeYears(records, DefaultOptions())
	require.Len(t, years, 2)
	assert.Equal(t, 2025, years[0].Year)
	assert.Equal(t, 2024, years[1].Year)

	y := years[0]
	assert.Equal(t, 4, y.Total.SessionCount)
	assert.Equal(t, 2025, y.Total.Year)
	var sum int
	var cats []activity.Category
	for _, s := range y.Categories {
		sum += s.SessionCount
		cats = append(cats, *s.Category)
		assert.Equal(t, 2025, s.Year)
	}
	assert.Equal(t, y.Total.SessionCount, sum)
	assert.Equal(t, []activity.Category{
		activity.CategoryCycling,
		activity.CategoryIndoorCycling,
		activity.CategoryRunning,
		activity.CategoryOther,
	}, cats)

	running, ok := y.Category(activity.CategoryRunning)
	require.True(t, ok)
	assert.InDelta(t, 5.0, running.TotalDistanceKm, 1e-9)
	_, ok = y.Category(activity.CategorySwimming)
	assert.False(t, ok)
}

// TestHallOfFame tests all-time leaderboards per category.
func TestHallOfFame(t *testing.T) {
	records := []activity.Record{
		rec(day(2023, time.March, 1), activity.CategoryRunning, 42.2, 14000),
		rec(day(2024, time.March, 1), activity.CategoryRunning, 10, 3000),
		rec(day(2025, time.March, 1), activity.CategoryRunning, 21.1, 6300),
		rec(day(2025, time.March, 2), activity.CategoryRunning, 5, 1500),
	}
	hof := HallOfFame(records, DefaultOptions())
	require.Len(t, hof, 1)
	assert.Zero(t, hof[0].Year)
	assert.Equal(t, []string{records[0].ID, records[2].ID, records[1].ID}, ids(hof[0].Top.Distance))
}
