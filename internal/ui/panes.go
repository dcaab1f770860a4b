package ui

import (
	"fmt"
	"strings"
	"time"

	"sportdash/internal/activity"
	"sportdash/internal/analytics"
	"sportdash/internal/config"
	"sportdash/internal/reports"
)

const dateLayout = "2 Jan 2006"

// RecordsPane is the all-time hall of fame per category.
type RecordsPane struct {
	scrollPane
	showPace bool
}

// NewRecordsPane creates the records pane. With showPace running speeds are
// shown as minutes per km.
func NewRecordsPane(styles *Styles, keys *config.KeysConfig, showPace bool) *RecordsPane {
	p := &RecordsPane{
		scrollPane: newScrollPane(PaneRecords.Label(), styles, NewNavigationKeyMap(keys)),
		showPace:   showPace,
	}
	p.SetReport(nil)
	return p
}

func (p *RecordsPane) SetReport(r *analytics.Report) {
	if r == nil {
		p.setLines([]string{p.styles.StatLabelStyle.Render("Loading…")})
		return
	}
	if len(r.HallOfFame) == 0 {
		p.setLines([]string{"No records yet."})
		return
	}

	var lines []string
	for i, s := range r.HallOfFame {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, p.styles.SectionStyle.Render(fmt.Sprintf("%s (%d sessions)", s.Label(), s.SessionCount)))
		lines = p.board(lines, "Longest", s.Top.Distance, func(r activity.Record) string {
			return reports.FormatKm(r.DistanceKm)
		})
		lines = p.board(lines, "Duration", s.Top.Duration, func(r activity.Record) string {
			return reports.FormatDuration(r.MovingTimeSec)
		})
		lines = p.board(lines, "Fastest", s.Top.Speed, func(r activity.Record) string {
			v, _ := r.Speed()
			if p.showPace && r.Category == activity.CategoryRunning {
				return reports.FormatPace(v)
			}
			return fmt.Sprintf("%.1f km/h", v)
		})
	}
	p.setLines(lines)
}

func (p *RecordsPane) board(lines []string, label string, recs []activity.Record, value func(activity.Record) string) []string {
	if len(recs) == 0 {
		return lines
	}
	lines = append(lines, p.styles.StatLabelStyle.Render(label))
	for i, r := range recs {
		lines = append(lines, fmt.Sprintf(" %d. %s  %s  %s",
			i+1,
			p.styles.StatValueStyle.Render(fmt.Sprintf("%10s", value(r))),
			r.Date.Format(dateLayout),
			truncateText(r.RawName, 28)))
	}
	return lines
}

func (p *RecordsPane) View() string {
	return p.render()
}

// StreaksPane shows the day and week streaks and progress on the distance
// goals of the current year.
type StreaksPane struct {
	scrollPane
}

// NewStreaksPane creates the streaks & goals pane.
func NewStreaksPane(styles *Styles, keys *config.KeysConfig) *StreaksPane {
	p := &StreaksPane{scrollPane: newScrollPane(PaneStreaks.Label(), styles, NewNavigationKeyMap(keys))}
	p.SetReport(nil)
	return p
}

func (p *StreaksPane) SetReport(r *analytics.Report) {
	if r == nil {
		p.setLines([]string{p.styles.StatLabelStyle.Render("Loading…")})
		return
	}

	lines := []string{p.styles.SectionStyle.Render("Streaks")}
	lines = append(lines, p.streak("Days", r.DayStreak)...)
	lines = append(lines, p.streak("Weeks", r.WeekStreak)...)

	lines = append(lines, "", p.styles.SectionStyle.Render(fmt.Sprintf("Goals %d", r.GeneratedAt.Year())))
	if len(r.Goals) == 0 {
		lines = append(lines, p.styles.StatLabelStyle.Render("No goals configured."))
	}
	for _, g := range r.Goals {
		lines = append(lines, fmt.Sprintf("%-15s %s / %s",
			g.Category.Label(),
			p.styles.StatValueStyle.Render(reports.FormatKm(g.DistanceKm)),
			reports.FormatKm(g.TargetKm)))
		status := fmt.Sprintf("%.1f km to go", g.RemainingKm)
		if g.Reached {
			status = p.styles.DeltaUpStyle.Render("reached")
		}
		lines = append(lines, fmt.Sprintf("%s %3.0f%%  %s", p.bar(g.Percent, 20), g.Percent, status))
	}

	if r.Latest != nil {
		lines = append(lines, "", p.styles.SectionStyle.Render("Latest"))
		lines = append(lines, fmt.Sprintf("%s  %s  %s",
			r.Latest.Date.Format(dateLayout),
			truncateText(r.Latest.RawName, 28),
			reports.FormatKm(r.Latest.DistanceKm)))
	}
	lines = append(lines, "", p.styles.StatLabelStyle.Render(
		fmt.Sprintf("Read %d of %d rows, %d dropped.", r.Ingest.Records, r.Ingest.Rows, r.Ingest.Dropped)))
	p.setLines(lines)
}

func (p *StreaksPane) streak(label string, s analytics.Streak) []string {
	unit := string(s.Unit)
	current := plural(s.Current, unit)
	if s.Live() {
		current = p.styles.StreakLiveStyle.Render(current)
	} else {
		current = p.styles.StreakBrokenStyle.Render(current)
	}
	lines := []string{fmt.Sprintf("%-6s current %s", label, current)}
	best := fmt.Sprintf("%-6s longest %s", "", plural(s.Longest, unit))
	if s.LongestRange != nil {
		best += p.styles.StatLabelStyle.Render(fmt.Sprintf("  %s to %s",
			s.LongestRange.Start.Format(dateLayout), s.LongestRange.End.Format(dateLayout)))
	}
	return append(lines, best)
}

// bar renders pct (0-100+) as a fixed-width progress bar.
func (p *StreaksPane) bar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	filled = min(max(filled, 0), width)
	return strings.Repeat(p.styles.GoalBarFull, filled) + strings.Repeat(p.styles.GoalBarEmpty, width-filled)
}

func (p *StreaksPane) View() string {
	return p.render()
}

// GearPane lists bikes and shoes by distance.
type GearPane struct {
	scrollPane
}

// NewGearPane creates the gear pane.
func NewGearPane(styles *Styles, keys *config.KeysConfig) *GearPane {
	p := &GearPane{scrollPane: newScrollPane(PaneGear.Label(), styles, NewNavigationKeyMap(keys))}
	p.SetReport(nil)
	return p
}

func (p *GearPane) SetReport(r *analytics.Report) {
	if r == nil {
		p.setLines([]string{p.styles.StatLabelStyle.Render("Loading…")})
		return
	}
	if len(r.Gear) == 0 {
		p.setLines([]string{"No gear recorded."})
		return
	}
	var lines []string
	for i, g := range r.Gear {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, p.styles.SectionStyle.Render(truncateText(g.Name, 40))+
			p.styles.StatLabelStyle.Render("  "+g.Category.Label()))
		lines = append(lines, fmt.Sprintf("%s  %s  %s",
			p.styles.StatValueStyle.Render(reports.FormatKm(g.DistanceKm)),
			plural(g.Sessions, "session"),
			reports.FormatDuration(g.TimeSec)))
		lines = append(lines, p.styles.StatLabelStyle.Render(usedRange(g.FirstUsed, g.LastUsed)))
	}
	p.setLines(lines)
}

func (p *GearPane) View() string {
	return p.render()
}

func usedRange(first, last time.Time) string {
	if first.Equal(last) {
		return "used " + first.Format(dateLayout)
	}
	return fmt.Sprintf("used %s to %s", first.Format(dateLayout), last.Format(dateLayout))
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// truncateText shortens s to max runes, marking the cut with an ellipsis.
func truncateText(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
