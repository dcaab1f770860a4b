package reports

import (
	"fmt"
	"strings"

	"sportdash/internal/activity"
	"sportdash/internal/analytics"
)

const dateLayout = "2006-01-02"

// MarkdownOptions controls the Markdown rendering.
type MarkdownOptions struct {
	// ShowPace renders running speeds as min/km
	ShowPace bool
	// Years limits the year sections to the newest N years (0 = all)
	Years int
}

// FormatMarkdown renders a report as Markdown.
func FormatMarkdown(r *analytics.Report, opts MarkdownOptions) string {
	var sb strings.Builder

	sb.WriteString("# Activity report\n\n")
	fmt.Fprintf(&sb, "Generated %s", r.GeneratedAt.Format("2006-01-02 15:04"))
	if r.Latest != nil {
		fmt.Fprintf(&sb, ", latest activity %s (%s)", r.Latest.Date.Format(dateLayout), escapeCell(r.Latest.RawName))
	}
	sb.WriteString(".\n\n")

	if r.Ingest.Records == 0 {
		sb.WriteString("No activities found.\n")
		writeIngest(&sb, r.Ingest)
		return sb.String()
	}

	writeStreaks(&sb, r)
	writeGoals(&sb, r.Goals)

	years := r.Years
	if opts.Years > 0 && len(years) > opts.Years {
		years = years[:opts.Years]
	}
	for _, y := range years {
		writeYear(&sb, r, y, opts)
	}

	writeHallOfFame(&sb, r.HallOfFame, opts)
	writeGear(&sb, r.Gear)
	writeIngest(&sb, r.Ingest)
	return sb.String()
}

func writeStreaks(sb *strings.Builder, r *analytics.Report) {
	sb.WriteString("## Streaks\n\n")
	sb.WriteString("| | Current | Longest | Period |\n|---|---|---|---|\n")
	for _, s := range []struct {
		label  string
		streak analytics.Streak
	}{
		{"Days", r.DayStreak},
		{"Weeks", r.WeekStreak},
	} {
		period := "-"
		if s.streak.LongestRange != nil {
			period = s.streak.LongestRange.Start.Format(dateLayout) + " to " + s.streak.LongestRange.End.Format(dateLayout)
		}
		fmt.Fprintf(sb, "| %s | %d | %d | %s |\n", s.label, s.streak.Current, s.streak.Longest, period)
	}
	sb.WriteString("\n")
}

func writeGoals(sb *strings.Builder, goals []analytics.GoalProgress) {
	if len(goals) == 0 {
		return
	}
	fmt.Fprintf(sb, "## Goals %d\n\n", goals[0].Year)
	sb.WriteString("| Category | Target | Done | Progress |\n|---|---|---|---|\n")
	for _, g := range goals {
		progress := fmt.Sprintf("%.0f%%", g.Percent)
		if g.Reached {
			progress += " (reached)"
		}
		fmt.Fprintf(sb, "| %s | %s | %s | %s |\n",
			g.Category.Label(), FormatKm(g.TargetKm), FormatKm(g.DistanceKm), progress)
	}
	sb.WriteString("\n")
}

func writeYear(sb *strings.Builder, r *analytics.Report, y analytics.YearSummary, opts MarkdownOptions) {
	total, _ := analytics.Find(r.Comparisons, y.Year, nil)
	if total.YearToDate {
		fmt.Fprintf(sb, "## %d (year to date, through day %d)\n\n", y.Year, total.ReferenceDayOfYear)
	} else {
		fmt.Fprintf(sb, "## %d\n\n", y.Year)
	}

	fmt.Fprintf(sb, "| Category | Sessions | Distance | Time | Elevation | Avg speed | Distance vs %d |\n", y.Year-1)
	sb.WriteString("|---|---|---|---|---|---|---|\n")

	rows := append([]analytics.Summary{y.Total}, y.Categories...)
	for _, s := range rows {
		cmp, ok := analytics.Find(r.Comparisons, y.Year, s.Category)
		delta := "n/a"
		if ok {
			if d, ok := cmp.Delta(analytics.MetricDistance); ok {
				delta = FormatDelta(d)
			}
		}
		fmt.Fprintf(sb, "| %s | %d | %s | %s | %.0f m | %s | %s |\n",
			s.Label(), s.SessionCount, FormatKm(s.TotalDistanceKm), FormatDuration(s.TotalTimeSec),
			s.TotalElevationM, speedCell(s.MeanSpeedKmh, s.Category, opts), delta)
	}
	sb.WriteString("\n")
}

func speedCell(v *float64, c *activity.Category, opts MarkdownOptions) string {
	if v == nil {
		return "-"
	}
	if opts.ShowPace && c != nil && *c == activity.CategoryRunning {
		return FormatPace(*v)
	}
	return fmt.Sprintf("%.1f km/h", *v)
}

func writeHallOfFame(sb *strings.Builder, hof []analytics.Summary, opts MarkdownOptions) {
	if len(hof) == 0 {
		return
	}
	sb.WriteString("## Hall of fame\n")
	for _, s := range hof {
		top := s.Top
		n := max(len(top.Distance), len(top.Duration), len(top.Speed))
		if n == 0 {
			continue
		}
		fmt.Fprintf(sb, "\n### %s\n\n", s.Label())
		sb.WriteString("| # | Longest | Longest time | Fastest |\n|---|---|---|---|\n")
		for i := 0; i < n; i++ {
			fmt.Fprintf(sb, "| %d | %s | %s | %s |\n", i+1,
				recordCell(top.Distance, i, func(r activity.Record) string { return FormatKm(r.DistanceKm) }),
				recordCell(top.Duration, i, func(r activity.Record) string { return FormatDuration(r.MovingTimeSec) }),
				recordCell(top.Speed, i, func(r activity.Record) string {
					v, _ := r.Speed()
					return speedCell(&v, s.Category, opts)
				}),
			)
		}
	}
	sb.WriteString("\n")
}

func recordCell(list []activity.Record, i int, value func(activity.Record) string) string {
	if i >= len(list) {
		return ""
	}
	r := list[i]
	cell := value(r) + ", " + r.Date.Format(dateLayout)
	if name := escapeCell(r.RawName); name != "" {
		cell += " " + name
	}
	return cell
}

func writeGear(sb *strings.Builder, gear []analytics.GearSummary) {
	if len(gear) == 0 {
		return
	}
	sb.WriteString("## Gear\n\n")
	sb.WriteString("| Gear | Used for | Sessions | Distance | Time | Last used |\n|---|---|---|---|---|---|\n")
	for _, g := range gear {
		fmt.Fprintf(sb, "| %s | %s | %d | %s | %s | %s |\n",
			escapeCell(g.Name), g.Category.Label(), g.Sessions, FormatKm(g.DistanceKm),
			FormatDuration(g.TimeSec), g.LastUsed.Format(dateLayout))
	}
	sb.WriteString("\n")
}

func writeIngest(sb *strings.Builder, in analytics.Ingest) {
	fmt.Fprintf(sb, "_Read %d of %d rows", in.Records, in.Rows)
	if in.Dropped > 0 {
		fmt.Fprintf(sb, ", %d dropped", in.Dropped)
	}
	if in.SpeedConversions > 0 {
		fmt.Fprintf(sb, ", %d speeds converted from m/s", in.SpeedConversions)
	}
	if len(in.Issues) > 0 {
		fmt.Fprintf(sb, ", %d data issues", len(in.Issues))
	}
	sb.WriteString("._\n")
}
