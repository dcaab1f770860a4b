package analytics

import (
	"math"
	"time"

	"sportdash/internal/activity"
)

// Metric identifies a compared quantity.
type Metric string

const (
	MetricCount     Metric = "count"
	MetricDistance  Metric = "distance_km"
	MetricTime      Metric = "time_sec"
	MetricElevation Metric = "elevation_m"
)

// Direction is the sign of a change.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// flatEpsilon absorbs float noise when deciding whether a metric moved.
const flatEpsilon = 1e-9

// Delta compares one metric against the prior year. Without a baseline
// Previous, Change and PercentChange are nil.
type Delta struct {
	Metric        Metric    `json:"metric"`
	Current       float64   `json:"current"`
	Previous      *float64  `json:"previous,omitempty"`
	Change        *float64  `json:"change,omitempty"`
	PercentChange *float64  `json:"percent_change,omitempty"`
	HasBaseline   bool      `json:"has_baseline"`
	Direction     Direction `json:"direction,omitempty"`
	Improved      bool      `json:"improved"`
}

// YearComparison compares a year, or one category within it, to the year before.
type YearComparison struct {
	Year               int                `json:"year"`
	Category           *activity.Category `json:"category,omitempty"`
	YearToDate         bool               `json:"year_to_date"`
	ReferenceDayOfYear int                `json:"reference_day_of_year,omitempty"`
	Current            Summary            `json:"current"`
	Previous           *Summary           `json:"previous,omitempty"`
	Deltas             []Delta            `json:"deltas"`
}

// Delta returns the delta for m.
func (c YearComparison) Delta(m Metric) (Delta, bool) {
	for _, d := range c.Deltas {
		if d.Metric == m {
			return d, true
		}
	}
	return Delta{}, false
}

// CompareInput is the input of a single comparison.
type CompareInput struct {
	Year               int
	Category           *activity.Category
	Current            []activity.Record
	Prior              []activity.Record
	PriorAvailable     bool
	ReferenceDayOfYear int
	IsLatestYear       bool
	Options            Options
}

// Compare computes the deltas between the current and prior records. For
// the latest year the prior records are cut at the reference day of year so
// both sides cover the same part of the calendar.
func Compare(in CompareInput) YearComparison {
	opts := in.Options.normalized()

	cur := Aggregate(in.Current, opts)
	cur.Year = in.Year
	cur.Category = in.Category

	out := YearComparison{
		Year:       in.Year,
		Category:   in.Category,
		YearToDate: in.IsLatestYear,
		Current:    cur,
	}
	if in.IsLatestYear {
		out.ReferenceDayOfYear = in.ReferenceDayOfYear
	}

	if !in.PriorAvailable {
		out.Deltas = []Delta{
			noBaseline(MetricCount, float64(cur.SessionCount)),
			noBaseline(MetricDistance, cur.TotalDistanceKm),
			noBaseline(MetricTime, float64(cur.TotalTimeSec)),
			noBaseline(MetricElevation, cur.TotalElevationM),
		}
		return out
	}

	prior := in.Prior
	if in.IsLatestYear {
		prior = upToDayOfYear(in.Prior, in.ReferenceDayOfYear)
	}
	prev := Aggregate(prior, opts)
	prev.Year = in.Year - 1
	prev.Category = in.Category
	out.Previous = &prev

	out.Deltas = []Delta{
		newDelta(MetricCount, float64(cur.SessionCount), float64(prev.SessionCount)),
		newDelta(MetricDistance, cur.TotalDistanceKm, prev.TotalDistanceKm),
		newDelta(MetricTime, float64(cur.TotalTimeSec), float64(prev.TotalTimeSec)),
		newDelta(MetricElevation, cur.TotalElevationM, prev.TotalElevationM),
	}
	return out
}

func noBaseline(m Metric, current float64) Delta {
	return Delta{Metric: m, Current: current}
}

func newDelta(m Metric, current, previous float64) Delta {
	change := current - previous
	d := Delta{
		Metric:      m,
		Current:     current,
		Previous:    &previous,
		Change:      &change,
		HasBaseline: true,
	}
	switch {
	case change > flatEpsilon:
		d.Direction = DirectionUp
	case change < -flatEpsilon:
		d.Direction = DirectionDown
	default:
		d.Direction = DirectionFlat
	}
	// More is better for every metric compared here.
	d.Improved = d.Direction == DirectionUp
	if math.Abs(previous) > flatEpsilon {
		pct := change / previous * 100
		d.PercentChange = &pct
	}
	return d
}

// upToDayOfYear returns a new slice with records on or before day doy.
func upToDayOfYear(records []activity.Record, doy int) []activity.Record {
	out := make([]activity.Record, 0, len(records))
	for _, r := range records {
		if r.Date.YearDay() <= doy {
			out = append(out, r)
		}
	}
	return out
}

// ReferenceDayOfYear picks the cut-off day for year-to-date comparisons.
// When the newest data is from the current year that is today; for a stale
// export it is the day of the most recent record.
func ReferenceDayOfYear(records []activity.Record, now time.Time) (latestYear, day int) {
	var latest time.Time
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		if latest.IsZero() || r.Date.After(latest) {
			latest = r.Date
		}
	}
	if latest.IsZero() {
		return 0, 0
	}
	if latest.Year() == now.Year() {
		return latest.Year(), now.YearDay()
	}
	return latest.Year(), latest.YearDay()
}

// CompareYears compares every year with data against the year before, as a
// whole and per category. Results are ordered newest year first, the total
// before the categories.
func CompareYears(records []activity.Record, now time.Time, opts Options) []YearComparison {
	byYear := groupByYear(records)
	if len(byYear) == 0 {
		return []YearComparison{}
	}
	latestYear, refDay := ReferenceDayOfYear(records, now)

	var out []YearComparison
	for _, year := range yearsDesc(byYear) {
		current := byYear[year]
		prior, priorAvailable := byYear[year-1]
		isLatest := year == latestYear

		out = append(out, Compare(CompareInput{
			Year:               year,
			Current:            current,
			Prior:              prior,
			PriorAvailable:     priorAvailable,
			ReferenceDayOfYear: refDay,
			IsLatestYear:       isLatest,
			Options:            opts,
		}))

		curByCat := groupByCategory(current)
		priorByCat := groupByCategory(prior)
		for _, c := range activity.AllCategories() {
			_, inCurrent := curByCat[c]
			_, inPrior := priorByCat[c]
			if !inCurrent && !inPrior {
				continue
			}
			cat := c
			out = append(out, Compare(CompareInput{
				Year:               year,
				Category:           &cat,
				Current:            curByCat[c],
				Prior:              priorByCat[c],
				PriorAvailable:     priorAvailable,
				ReferenceDayOfYear: refDay,
				IsLatestYear:       isLatest,
				Options:            opts,
			}))
		}
	}
	return out
}

// Find returns the comparison for year and category; a nil category selects
// the whole-year comparison.
func Find(comparisons []YearComparison, year int, c *activity.Category) (YearComparison, bool) {
	for _, cmp := range comparisons {
		if cmp.Year != year {
			continue
		}
		switch {
		case c == nil && cmp.Category == nil:
			return cmp, true
		case c != nil && cmp.Category != nil && *c == *cmp.Category:
			return cmp, true
		}
	}
	return YearComparison{}, false
}
