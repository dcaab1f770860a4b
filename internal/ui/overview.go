package ui

import (
	"fmt"
	"strings"

	"sportdash/internal/activity"
	"sportdash/internal/analytics"
	"sportdash/internal/config"
	"sportdash/internal/reports"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// OverviewPane shows one year at a time: KPIs, the change against the year
// before, and a per-category breakdown.
type OverviewPane struct {
	scrollPane
	yearKeys YearKeyMap
	report   *analytics.Report
	// selected indexes report.Years, which is newest first.
	selected int
}

// NewOverviewPane creates the overview pane.
func NewOverviewPane(styles *Styles, keys *config.KeysConfig) *OverviewPane {
	p := &OverviewPane{
		scrollPane: newScrollPane(PaneOverview.Label(), styles, NewNavigationKeyMap(keys)),
		yearKeys:   NewYearKeyMap(keys),
	}
	p.rebuild()
	return p
}

// SetReport replaces the data. The selected year is kept when it still exists.
func (p *OverviewPane) SetReport(r *analytics.Report) {
	year, hadYear := p.SelectedYear()
	p.report = r
	p.selected = 0
	if hadYear && r != nil {
		for i, ys := range r.Years {
			if ys.Year == year {
				p.selected = i
			}
		}
	}
	p.rebuild()
}

// SelectedYear returns the year on screen.
func (p *OverviewPane) SelectedYear() (int, bool) {
	if p.report == nil || len(p.report.Years) == 0 {
		return 0, false
	}
	return p.report.Years[p.selected].Year, true
}

func (p *OverviewPane) HandleKey(msg tea.KeyMsg) bool {
	years := 0
	if p.report != nil {
		years = len(p.report.Years)
	}
	switch {
	case key.Matches(msg, p.yearKeys.Prev):
		if p.selected < years-1 {
			p.selected++
			p.offset = 0
			p.rebuild()
		}
		return true
	case key.Matches(msg, p.yearKeys.Next):
		if p.selected > 0 {
			p.selected--
			p.offset = 0
			p.rebuild()
		}
		return true
	}
	return p.scrollPane.HandleKey(msg)
}

func (p *OverviewPane) View() string {
	return p.render()
}

func (p *OverviewPane) rebuild() {
	switch {
	case p.report == nil:
		p.setLines([]string{p.styles.StatLabelStyle.Render("Loading…")})
		return
	case len(p.report.Years) == 0:
		p.setLines([]string{
			"No activities yet.",
			"",
			p.styles.StatLabelStyle.Render("Run 'sportdash fetch' or 'sportdash import <file>'."),
		})
		return
	}

	ys := p.report.Years[p.selected]
	cmp, hasCmp := analytics.Find(p.report.Comparisons, ys.Year, nil)

	lines := []string{p.yearTabs(), ""}
	lines = append(lines, p.styles.SectionStyle.Render(yearHeadline(ys.Year, cmp, hasCmp)))

	kpis := []struct {
		label  string
		value  string
		metric analytics.Metric
	}{
		{"Sessions", fmt.Sprintf("%d", ys.Total.SessionCount), analytics.MetricCount},
		{"Distance", reports.FormatKm(ys.Total.TotalDistanceKm), analytics.MetricDistance},
		{"Time", reports.FormatDuration(ys.Total.TotalTimeSec), analytics.MetricTime},
		{"Elevation", fmt.Sprintf("%.0f m", ys.Total.TotalElevationM), analytics.MetricElevation},
	}
	for _, k := range kpis {
		line := p.kpi(k.label, k.value)
		if hasCmp {
			if d, ok := cmp.Delta(k.metric); ok {
				line += "  " + p.delta(d)
			}
		}
		lines = append(lines, line)
	}
	if hr := ys.Total.MeanHeartRate; hr != nil {
		lines = append(lines, p.kpi("Avg HR", fmt.Sprintf("%.0f bpm", *hr)))
	}
	if v := ys.Total.MeanSpeedKmh; v != nil {
		lines = append(lines, p.kpi("Avg speed", fmt.Sprintf("%.1f km/h", *v)))
	}

	if len(ys.Categories) > 0 {
		lines = append(lines, "", p.styles.SectionStyle.Render("By category"))
		for _, s := range ys.Categories {
			line := fmt.Sprintf("%-15s %4d  %10s", s.Label(), s.SessionCount, reports.FormatKm(s.TotalDistanceKm))
			if c, ok := analytics.Find(p.report.Comparisons, ys.Year, s.Category); ok {
				if d, ok := c.Delta(analytics.MetricDistance); ok {
					line += "  " + p.delta(d)
				}
			}
			lines = append(lines, line)
		}
	}

	if m, ok := monthsFor(p.report.Months, ys.Year, activity.CategoryCycling); ok {
		lines = append(lines, "", p.styles.SectionStyle.Render("Cycling per month"))
		lines = append(lines, monthBars(m.DistanceKm))
	}

	p.setLines(lines)
}

func yearHeadline(year int, cmp analytics.YearComparison, ok bool) string {
	switch {
	case !ok:
		return fmt.Sprintf("%d", year)
	case cmp.YearToDate && cmp.ReferenceDayOfYear > 0 && cmp.Previous != nil:
		return fmt.Sprintf("%d year to date (day %d) vs %d", year, cmp.ReferenceDayOfYear, year-1)
	case cmp.Previous != nil:
		return fmt.Sprintf("%d vs %d", year, year-1)
	}
	return fmt.Sprintf("%d (first year)", year)
}

// yearTabs lists the years oldest first with the selected one bracketed.
func (p *OverviewPane) yearTabs() string {
	years := p.report.Years
	parts := make([]string, 0, len(years))
	for i := len(years) - 1; i >= 0; i-- {
		label := fmt.Sprintf("%d", years[i].Year)
		if i == p.selected {
			parts = append(parts, p.styles.YearTabActiveStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, p.styles.YearTabStyle.Render(" "+label+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (p *OverviewPane) kpi(label, value string) string {
	return p.styles.StatLabelStyle.Render(fmt.Sprintf("%-10s", label)) + " " +
		p.styles.StatValueStyle.Render(fmt.Sprintf("%12s", value))
}

func (p *OverviewPane) delta(d analytics.Delta) string {
	arrow := "·"
	switch d.Direction {
	case analytics.DirectionUp:
		arrow = "↑"
	case analytics.DirectionDown:
		arrow = "↓"
	}
	if !d.HasBaseline {
		arrow = " "
	}
	return p.styles.DeltaStyle(d).Render(arrow + " " + reports.FormatDelta(d))
}

func monthsFor(months []analytics.MonthBreakdown, year int, c activity.Category) (analytics.MonthBreakdown, bool) {
	for _, m := range months {
		if m.Year == year && m.Category == c {
			return m, true
		}
	}
	return analytics.MonthBreakdown{}, false
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// monthBars draws one bar per month scaled to the best month.
func monthBars(km [12]float64) string {
	var peak float64
	for _, v := range km {
		peak = max(peak, v)
	}
	var b strings.Builder
	for _, v := range km {
		if peak <= 0 || v <= 0 {
			b.WriteRune(' ')
			continue
		}
		idx := int(v / peak * float64(len(sparkLevels)-1))
		b.WriteRune(sparkLevels[idx])
	}
	return b.String() + fmt.Sprintf("  best %.0f km", peak)
}
