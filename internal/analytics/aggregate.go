// Package analytics computes summaries, leaderboards, streaks and
// year-over-year comparisons from categorized activity records. Everything
// here is pure: callers pass in records and the reference time.
package analytics

import (
	"sort"
	"time"

	"sportdash/internal/activity"
)

// SpeedBand is the plausible average speed range for a category, in km/h.
type SpeedBand struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the band, inclusive.
func (b SpeedBand) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Options tunes leaderboards, streaks and goals.
type Options struct {
	TopN               int
	MinSpeedDistanceKm float64
	SpeedBands         map[activity.Category]SpeedBand
	WeekStart          time.Weekday
	Goals              map[activity.Category]float64
}

// DefaultSpeedBands returns the built-in plausibility bands.
func DefaultSpeedBands() map[activity.Category]SpeedBand {
	return map[activity.Category]SpeedBand{
		activity.CategoryCycling:       {Min: 5, Max: 70},
		activity.CategoryIndoorCycling: {Min: 5, Max: 70},
		activity.CategoryRunning:       {Min: 4, Max: 25},
		activity.CategoryWalking:       {Min: 2, Max: 10},
		activity.CategorySwimming:      {Min: 0.5, Max: 8},
		activity.CategoryStrength:      {Min: 0, Max: 100},
		activity.CategoryRacquet:       {Min: 0, Max: 100},
		activity.CategoryOther:         {Min: 0, Max: 100},
	}
}

// DefaultOptions returns top 3 leaderboards, a 1 km minimum for speed
// rankings and Monday as the first day of the week.
func DefaultOptions() Options {
	return Options{
		TopN:               3,
		MinSpeedDistanceKm: 1.0,
		SpeedBands:         DefaultSpeedBands(),
		WeekStart:          time.Monday,
		Goals:              map[activity.Category]float64{},
	}
}

func (o Options) normalized() Options {
	if o.TopN <= 0 {
		o.TopN = 3
	}
	if o.MinSpeedDistanceKm < 0 {
		o.MinSpeedDistanceKm = 0
	}
	if o.SpeedBands == nil {
		o.SpeedBands = DefaultSpeedBands()
	}
	return o
}

func (o Options) band(c activity.Category) SpeedBand {
	if b, ok := o.SpeedBands[c]; ok {
		return b
	}
	if b, ok := o.SpeedBands[activity.CategoryOther]; ok {
		return b
	}
	return SpeedBand{Min: 0, Max: 100}
}

// Leaderboards holds the top records per metric, best first.
type Leaderboards struct {
	Distance []activity.Record `json:"distance"`
	Duration []activity.Record `json:"duration"`
	Speed    []activity.Record `json:"speed"`
}

// Summary aggregates a set of records, usually one category in one year.
// Year 0 means all time and a nil Category means all categories.
type Summary struct {
	Year            int                `json:"year,omitempty"`
	Category        *activity.Category `json:"category,omitempty"`
	SessionCount    int                `json:"session_count"`
	TotalDistanceKm float64            `json:"total_distance_km"`
	TotalTimeSec    int                `json:"total_time_sec"`
	TotalElevationM float64            `json:"total_elevation_m"`
	MeanHeartRate   *float64           `json:"mean_heart_rate,omitempty"`
	MeanSpeedKmh    *float64           `json:"mean_speed_kmh,omitempty"`

	HeartRateSamples int     `json:"-"`
	HeartRateSum     float64 `json:"-"`
	SpeedSamples     int     `json:"-"`
	SpeedSum         float64 `json:"-"`

	Top Leaderboards `json:"top"`
}

// Label names the summary's category, or "All" for all categories.
func (s Summary) Label() string {
	if s.Category == nil {
		return "All"
	}
	return s.Category.Label()
}

// Aggregate summarizes records in one pass.
func Aggregate(records []activity.Record, opts Options) Summary {
	return Merge(Summary{}, records, opts)
}

// Merge folds more records into an existing summary and returns the result.
// The input summary is not modified. Merging no records yields an equal value.
func Merge(s Summary, records []activity.Record, opts Options) Summary {
	opts = opts.normalized()
	out := s

	for _, r := range records {
		out.SessionCount++
		out.TotalDistanceKm += r.DistanceKm
		out.TotalTimeSec += r.MovingTimeSec
		out.TotalElevationM += r.ElevationM
		if r.AvgHeartRate != nil {
			out.HeartRateSamples++
			out.HeartRateSum += *r.AvgHeartRate
		}
		if v, ok := r.Speed(); ok {
			out.SpeedSamples++
			out.SpeedSum += v
		}
	}

	out.MeanHeartRate = mean(out.HeartRateSum, out.HeartRateSamples)
	out.MeanSpeedKmh = mean(out.SpeedSum, out.SpeedSamples)

	out.Top = Leaderboards{
		Distance: rank(append(cloneRecords(s.Top.Distance), records...), opts.TopN, distanceMetric),
		Duration: rank(append(cloneRecords(s.Top.Duration), records...), opts.TopN, durationMetric),
		Speed:    rank(append(cloneRecords(s.Top.Speed), records...), opts.TopN, speedMetric(opts)),
	}
	return out
}

func mean(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := sum / float64(n)
	return &v
}

func cloneRecords(in []activity.Record) []activity.Record {
	out := make([]activity.Record, len(in))
	copy(out, in)
	return out
}

// metric extracts the ranking value; ok=false keeps a record off the board.
type metric func(r activity.Record) (float64, bool)

func distanceMetric(r activity.Record) (float64, bool) {
	return r.DistanceKm, r.DistanceKm > 0
}

func durationMetric(r activity.Record) (float64, bool) {
	return float64(r.MovingTimeSec), r.MovingTimeSec > 0
}

func speedMetric(opts Options) metric {
	return func(r activity.Record) (float64, bool) {
		v, ok := r.Speed()
		if !ok || v <= 0 {
			return 0, false
		}
		if r.DistanceKm < opts.MinSpeedDistanceKm {
			return 0, false
		}
		return v, opts.band(r.Category).Contains(v)
	}
}

// rank sorts candidates by metric descending, then earliest date, then ID,
// and keeps the first n. Duplicate IDs are ranked once; records without an
// ID are always ranked.
func rank(candidates []activity.Record, n int, m metric) []activity.Record {
	type scored struct {
		rec   activity.Record
		value float64
	}
	seen := make(map[string]struct{}, len(candidates))
	pool := make([]scored, 0, len(candidates))
	for _, r := range candidates {
		v, ok := m(r)
		if !ok {
			continue
		}
		if r.ID != "" {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
		}
		pool = append(pool, scored{rec: r, value: v})
	}

	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.value != b.value {
			return a.value > b.value
		}
		if !a.rec.Date.Equal(b.rec.Date) {
			return a.rec.Date.Before(b.rec.Date)
		}
		return a.rec.ID < b.rec.ID
	})

	if len(pool) > n {
		pool = pool[:n]
	}
	out := make([]activity.Record, 0, len(pool))
	for _, s := range pool {
		out = append(out, s.rec)
	}
	return out
}

// YearSummary is the total for a year plus one summary per category.
type YearSummary struct {
	Year       int       `json:"year"`
	Total      Summary   `json:"total"`
	Categories []Summary `json:"categories"`
}

// Category returns the summary for c, if the year has records for it.
func (y YearSummary) Category(c activity.Category) (Summary, bool) {
	for _, s := range y.Categories {
		if s.Category != nil && *s.Category == c {
			return s, true
		}
	}
	return Summary{}, false
}

// SummarizeYears builds one YearSummary per year with data, newest first.
func SummarizeYears(records []activity.Record, opts Options) []YearSummary {
	byYear := groupByYear(records)
	out := make([]YearSummary, 0, len(byYear))
	for _, year := range yearsDesc(byYear) {
		recs := byYear[year]
		ys := YearSummary{
			Year:  year,
			Total: Aggregate(recs, opts),
		}
		ys.Total.Year = year
		ys.Categories = summarizeCategories(recs, opts)
		for i := range ys.Categories {
			ys.Categories[i].Year = year
		}
		out = append(out, ys)
	}
	return out
}

// HallOfFame returns all-time summaries per category present.
func HallOfFame(records []activity.Record, opts Options) []Summary {
	return summarizeCategories(records, opts)
}

func summarizeCategories(records []activity.Record, opts Options) []Summary {
	byCat := groupByCategory(records)
	out := make([]Summary, 0, len(byCat))
	for _, c := range activity.AllCategories() {
		recs, ok := byCat[c]
		if !ok {
			continue
		}
		s := Aggregate(recs, opts)
		cat := c
		s.Category = &cat
		out = append(out, s)
	}
	return out
}

func groupByYear(records []activity.Record) map[int][]activity.Record {
	out := make(map[int][]activity.Record)
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		out[r.Year()] = append(out[r.Year()], r)
	}
	return out
}

// groupByCategory buckets records; unknown categories count as Other.
func groupByCategory(records []activity.Record) map[activity.Category][]activity.Record {
	out := make(map[activity.Category][]activity.Record)
	for _, r := range records {
		c := r.Category
		if !c.Valid() {
			c = activity.CategoryOther
		}
		out[c] = append(out[c], r)
	}
	return out
}

func yearsDesc(byYear map[int][]activity.Record) []int {
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
