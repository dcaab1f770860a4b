package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"sportdash/internal/activity"
)

// Ingest describes how the raw rows were turned into records.
type Ingest struct {
	Rows             int      `json:"rows"`
	Records          int      `json:"records"`
	Dropped          int      `json:"dropped"`
	SpeedConversions int      `json:"speed_conversions"`
	Issues           []string `json:"issues,omitempty"`
}

// MonthBreakdown is the distance per calendar month for one category and
// year, next to the same months of the year before.
type MonthBreakdown struct {
	Year            int               `json:"year"`
	Category        activity.Category `json:"category"`
	DistanceKm      [12]float64       `json:"distance_km"`
	PriorDistanceKm *[12]float64      `json:"prior_distance_km,omitempty"`
}

// GearSummary totals the sessions logged with one piece of equipment.
type GearSummary struct {
	Name       string            `json:"name"`
	Sessions   int               `json:"sessions"`
	DistanceKm float64           `json:"distance_km"`
	TimeSec    int               `json:"time_sec"`
	Category   activity.Category `json:"category"`
	FirstUsed  time.Time         `json:"first_used"`
	LastUsed   time.Time         `json:"last_used"`
}

// GoalProgress tracks a yearly distance goal.
type GoalProgress struct {
	Year        int               `json:"year"`
	Category    activity.Category `json:"category"`
	TargetKm    float64           `json:"target_km"`
	DistanceKm  float64           `json:"distance_km"`
	Percent     float64           `json:"percent"`
	RemainingKm float64           `json:"remaining_km"`
	Reached     bool              `json:"reached"`
}

// Report is the complete analytics result for one run.
type Report struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Ingest      Ingest           `json:"ingest"`
	DayStreak   Streak           `json:"day_streak"`
	WeekStreak  Streak           `json:"week_streak"`
	Years       []YearSummary    `json:"years"`
	Comparisons []YearComparison `json:"comparisons"`
	HallOfFame  []Summary        `json:"hall_of_fame"`
	Months      []MonthBreakdown `json:"months"`
	Gear        []GearSummary    `json:"gear"`
	Goals       []GoalProgress   `json:"goals"`
	Latest      *activity.Record `json:"latest,omitempty"`
}

// Year returns the summary for year, if present.
func (r *Report) Year(year int) (YearSummary, bool) {
	for _, y := range r.Years {
		if y.Year == year {
			return y, true
		}
	}
	return YearSummary{}, false
}

// Engine runs the full pipeline: normalize, categorize, analyze.
type Engine struct {
	normalizer  *activity.Normalizer
	categorizer *activity.Categorizer
	opts        Options
	log         logrus.FieldLogger
}

// NewEngine creates an engine. Nil collaborators fall back to defaults.
func NewEngine(n *activity.Normalizer, c *activity.Categorizer, opts Options, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if n == nil {
		n = activity.NewNormalizer(activity.NormalizerOptions{}, log)
	}
	if c == nil {
		c = activity.NewCategorizer()
	}
	return &Engine{normalizer: n, categorizer: c, opts: opts.normalized(), log: log}
}

// Options returns the options the engine runs with.
func (e *Engine) Options() Options {
	return e.opts
}

// Run normalizes and categorizes rows, then analyzes the records as of now.
func (e *Engine) Run(rows []activity.RawRow, now time.Time) *Report {
	res := e.normalizer.Normalize(rows)
	report := e.Analyze(e.categorizer.Apply(res.Records), now)
	report.Ingest = Ingest{
		Rows:             res.Rows,
		Records:          len(res.Records),
		Dropped:          res.Dropped,
		SpeedConversions: res.SpeedConversions,
		Issues:           res.IssueList(),
	}
	return report
}

// Analyze builds a report from records that are already categorized.
func (e *Engine) Analyze(records []activity.Record, now time.Time) *Report {
	r := &Report{
		GeneratedAt: now,
		Ingest:      Ingest{Rows: len(records), Records: len(records)},
		DayStreak:   ComputeStreak(records, UnitDay, now, e.opts.WeekStart),
		WeekStreak:  ComputeStreak(records, UnitWeek, now, e.opts.WeekStart),
		Years:       SummarizeYears(records, e.opts),
		Comparisons: CompareYears(records, now, e.opts),
		HallOfFame:  HallOfFame(records, e.opts),
		Months:      MonthlyDistance(records),
		Gear:        GearUsage(records),
		Goals:       GoalsProgress(records, e.opts.Goals, now.Year()),
		Latest:      latestRecord(records),
	}
	e.log.WithFields(logrus.Fields{
		"records":     len(records),
		"years":       len(r.Years),
		"day_streak":  r.DayStreak.Current,
		"week_streak": r.WeekStreak.Current,
	}).Debug("analytics report built")
	return r
}

func latestRecord(records []activity.Record) *activity.Record {
	var latest *activity.Record
	for i := range records {
		if records[i].Date.IsZero() {
			continue
		}
		if latest == nil || records[i].Date.After(latest.Date) {
			rec := records[i]
			latest = &rec
		}
	}
	return latest
}

// MonthlyDistance returns per-month distance for each year and category with
// data, newest year first.
func MonthlyDistance(records []activity.Record) []MonthBreakdown {
	byYear := groupByYear(records)
	out := make([]MonthBreakdown, 0)
	for _, year := range yearsDesc(byYear) {
		cur := groupByCategory(byYear[year])
		prior, hasPrior := byYear[year-1]
		priorByCat := groupByCategory(prior)
		for _, c := range activity.AllCategories() {
			recs, ok := cur[c]
			if !ok {
				continue
			}
			mb := MonthBreakdown{Year: year, Category: c, DistanceKm: monthTotals(recs)}
			if hasPrior {
				p := monthTotals(priorByCat[c])
				mb.PriorDistanceKm = &p
			}
			out = append(out, mb)
		}
	}
	return out
}

func monthTotals(records []activity.Record) [12]float64 {
	var out [12]float64
	for _, r := range records {
		out[r.Date.Month()-1] += r.DistanceKm
	}
	return out
}

// GearUsage totals records per gear name, most distance first. Records
// without gear are skipped.
func GearUsage(records []activity.Record) []GearSummary {
	type acc struct {
		GearSummary
		perCategory map[activity.Category]int
	}
	byName := make(map[string]*acc)
	for _, r := range records {
		if r.Gear == "" {
			continue
		}
		a, ok := byName[r.Gear]
		if !ok {
			a = &acc{
				GearSummary: GearSummary{Name: r.Gear, FirstUsed: r.Date, LastUsed: r.Date},
				perCategory: make(map[activity.Category]int),
			}
			byName[r.Gear] = a
		}
		a.Sessions++
		a.DistanceKm += r.DistanceKm
		a.TimeSec += r.MovingTimeSec
		a.perCategory[r.Category]++
		if r.Date.Before(a.FirstUsed) {
			a.FirstUsed = r.Date
		}
		if r.Date.After(a.LastUsed) {
			a.LastUsed = r.Date
		}
	}

	out := make([]GearSummary, 0, len(byName))
	for _, a := range byName {
		g := a.GearSummary
		g.Category = dominantCategory(a.perCategory)
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm > out[j].DistanceKm
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// dominantCategory picks the most used category, ties going to display order.
func dominantCategory(counts map[activity.Category]int) activity.Category {
	best, bestN := activity.CategoryOther, 0
	for _, c := range activity.AllCategories() {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}

// GoalsProgress reports progress on the yearly distance goals for year.
func GoalsProgress(records []activity.Record, goals map[activity.Category]float64, year int) []GoalProgress {
	out := make([]GoalProgress, 0, len(goals))
	for _, c := range activity.AllCategories() {
		target, ok := goals[c]
		if !ok || target <= 0 {
			continue
		}
		var dist float64
		for _, r := range records {
			if r.Category == c && r.Year() == year {
				dist += r.DistanceKm
			}
		}
		g := GoalProgress{
			Year:        year,
			Category:    c,
			TargetKm:    target,
			DistanceKm:  dist,
			Percent:     math.Min(100, dist/target*100),
			RemainingKm: math.Max(0, target-dist),
			Reached:     dist >= target,
		}
		out = append(out, g)
	}
	return out
}
