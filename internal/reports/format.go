package reports

import (
	"fmt"
	"math"
	"strings"

	"sportdash/internal/analytics"
)

// FormatDuration renders seconds as 1h05m, or 42m below an hour.
func FormatDuration(sec int) string {
	if sec < 0 {
		sec = 0
	}
	minutes := (sec + 30) / 60
	h, m := minutes/60, minutes%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

// FormatPace renders a speed in km/h as minutes per km, e.g. 5:00 /km.
func FormatPace(kmh float64) string {
	if kmh <= 0 || math.IsInf(kmh, 0) || math.IsNaN(kmh) {
		return "-"
	}
	total := int(math.Round(3600 / kmh))
	return fmt.Sprintf("%d:%02d /km", total/60, total%60)
}

// FormatKm renders a distance with one decimal.
func FormatKm(km float64) string {
	return fmt.Sprintf("%.1f km", km)
}

// FormatDelta renders the relative change of a delta. Without a prior year
// it is "n/a"; growth from zero is "new".
func FormatDelta(d analytics.Delta) string {
	switch {
	case !d.HasBaseline:
		return "n/a"
	case d.PercentChange == nil:
		if d.Current > 0 {
			return "new"
		}
		return "0%"
	}
	p := *d.PercentChange
	if math.Abs(p) < 0.05 {
		return "0%"
	}
	return fmt.Sprintf("%+.1f%%", p)
}

// escapeCell makes s safe inside a Markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
