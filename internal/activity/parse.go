package activity

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order. Dutch month names are translated to
// English before a second pass over the same list.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"Jan 2, 2006, 3:04:05 PM",
	"Jan 2, 2006 3:04:05 PM",
	"Jan 2, 2006",
	"2 Jan 2006, 15:04:05",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006, 15:04",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"2 January 2006, 15:04:05",
	"2 January 2006 15:04:05",
	"2 January 2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2-1-2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
}

var dutchMonths = map[string]string{
	"januari":   "January",
	"jan":       "Jan",
	"februari":  "February",
	"feb":       "Feb",
	"maart":     "March",
	"mrt":       "Mar",
	"mar":       "Mar",
	"april":     "April",
	"apr":       "Apr",
	"mei":       "May",
	"juni":      "June",
	"jun":       "Jun",
	"juli":      "July",
	"jul":       "Jul",
	"augustus":  "August",
	"aug":       "Aug",
	"september": "September",
	"sept":      "Sep",
	"sep":       "Sep",
	"oktober":   "October",
	"okt":       "Oct",
	"november":  "November",
	"nov":       "Nov",
	"december":  "December",
	"dec":       "Dec",
}

var wordPattern = regexp.MustCompile(`\pL+\.?`)

// translateMonths rewrites whole-word Dutch month names to English.
// Other words are left untouched so AM/PM markers keep their case.
func translateMonths(s string) string {
	return wordPattern.ReplaceAllStringFunc(s, func(word string) string {
		bare := strings.TrimSuffix(word, ".")
		if en, ok := dutchMonths[strings.ToLower(bare)]; ok {
			return en
		}
		return word
	})
}

// ParseDate parses an activity date in any of the supported export formats.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.Local
	}
	candidates := []string{s}
	if translated := translateMonths(s); translated != s {
		candidates = append(candidates, translated)
	}
	for _, c := range candidates {
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, c, loc); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseDecimal parses numbers written with either "." or "," as decimal
// separator. When both appear the last one is the decimal separator.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("\u00a0", "", " ", "", "'", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// maxDurationSec bounds parsed durations at one year.
const maxDurationSec = 366 * 24 * 3600

// ParseSeconds parses a duration given as plain seconds or as h:mm:ss / mm:ss.
func ParseSeconds(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		v, err := ParseDecimal(s)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(v) || math.Abs(v) > maxDurationSec {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return int(math.Round(v)), nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		if total > (maxDurationSec-n)/60 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		total = total*60 + n
	}
	return total, nil
}

// FormatDecimal writes v with a comma decimal separator, as the Dutch
// export does ("37,97").
func FormatDecimal(v float64, precision int) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', precision, 64), ".", ",", 1)
}

var dutchMonthAbbrev = [...]string{"jan", "feb", "mrt", "apr", "mei", "jun", "jul", "aug", "sep", "okt", "nov", "dec"}

// FormatDutchDate formats t like the Dutch export: "4 jan 2026, 09:28:00".
func FormatDutchDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d, %s", t.Day(), dutchMonthAbbrev[t.Month()-1], t.Year(), t.Format("15:04:05"))
}
