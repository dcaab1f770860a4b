package analytics

import (
	"sort"
	"time"

	"sportdash/internal/activity"
)

// Unit is the period a streak is counted in.
type Unit string

const (
	UnitDay  Unit = "day"
	UnitWeek Unit = "week"
)

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Streak holds the current and longest run of consecutive active periods.
type Streak struct {
	Unit         Unit       `json:"unit"`
	Current      int        `json:"current"`
	Longest      int        `json:"longest"`
	LongestRange *DateRange `json:"longest_range,omitempty"`
}

// Live reports whether the current streak is still unbroken.
func (s Streak) Live() bool {
	return s.Current > 0
}

// civilDay counts days since 1970-01-01 for the calendar date of t in its own
// location. Working on civil dates keeps DST transitions out of the math.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func dayToDate(day int64) time.Time {
	return time.Unix(day*86400, 0).UTC()
}

// weekdayOf returns the weekday of a civil day. Day 0 was a Thursday.
func weekdayOf(day int64) time.Weekday {
	return time.Weekday(((day+4)%7 + 7) % 7)
}

func periodStart(day int64, unit Unit, weekStart time.Weekday) int64 {
	if unit != UnitWeek {
		return day
	}
	offset := (int64(weekdayOf(day)) - int64(weekStart) + 7) % 7
	return day - offset
}

func periodLength(unit Unit) int64 {
	if unit == UnitWeek {
		return 7
	}
	return 1
}

// ComputeStreak computes day or week streaks over the records' dates.
// The current streak is live only when the latest active period is the one
// containing now or the one right before it.
func ComputeStreak(records []activity.Record, unit Unit, now time.Time, weekStart time.Weekday) Streak {
	if unit != UnitWeek {
		unit = UnitDay
	}
	out := Streak{Unit: unit}

	seen := make(map[int64]struct{}, len(records))
	periods := make([]int64, 0, len(records))
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		p := periodStart(civilDay(r.Date), unit, weekStart)
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		periods = append(periods, p)
	}
	if len(periods) == 0 {
		return out
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i] < periods[j] })

	step := periodLength(unit)

	bestLen, bestStart, bestEnd := 1, periods[0], periods[0]
	runLen, runStart := 1, periods[0]
	for i := 1; i < len(periods); i++ {
		if periods[i]-periods[i-1] == step {
			runLen++
		} else {
			runLen, runStart = 1, periods[i]
		}
		if runLen > bestLen {
			bestLen, bestStart, bestEnd = runLen, runStart, periods[i]
		}
	}
	out.Longest = bestLen
	out.LongestRange = &DateRange{
		Start: dayToDate(bestStart),
		End:   dayToDate(bestEnd + step - 1),
	}

	last := periods[len(periods)-1]
	current := periodStart(civilDay(now), unit, weekStart)
	if current-last > step {
		return out
	}
	out.Current = 1
	for i := len(periods) - 1; i > 0; i-- {
		if periods[i]-periods[i-1] != step {
			break
		}
		out.Current++
	}
	return out
}
