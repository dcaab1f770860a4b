package ui

import (
	"sportdash/internal/analytics"
	"sportdash/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds all application styles, initialized with theme configuration.
type Styles struct {
	// Colors
	ColorPrimary   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorPositive  lipgloss.Color
	ColorNegative  lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorBg        lipgloss.Color
	ColorBgLight   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color

	// Component styles
	TitleStyle       lipgloss.Style
	DateStyle        lipgloss.Style
	PaneStyle        lipgloss.Style
	PaneFocusedStyle lipgloss.Style
	PaneTitleStyle   lipgloss.Style
	SectionStyle     lipgloss.Style

	YearTabStyle       lipgloss.Style
	YearTabActiveStyle lipgloss.Style

	StatLabelStyle lipgloss.Style
	StatValueStyle lipgloss.Style

	DeltaUpStyle   lipgloss.Style
	DeltaDownStyle lipgloss.Style
	DeltaFlatStyle lipgloss.Style

	StreakLiveStyle   lipgloss.Style
	StreakBrokenStyle lipgloss.Style
	GoalBarFull       string
	GoalBarEmpty      string

	HelpStyle    lipgloss.Style
	HelpKeyStyle lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style

	// Sync status styles
	SyncSyncedStyle   lipgloss.Style
	SyncPendingStyle  lipgloss.Style
	SyncAheadStyle    lipgloss.Style
	SyncBehindStyle   lipgloss.Style
	SyncDisabledStyle lipgloss.Style
}

// NewStyles creates a new Styles instance from the given config.
func NewStyles(cfg *config.Config) *Styles {
	return NewStylesFromTheme(&cfg.Theme)
}

// NewStylesFromTheme creates a new Styles instance from a ThemeConfig.
// If a theme color is empty, it uses the appropriate default.
func NewStylesFromTheme(theme *config.ThemeConfig) *Styles {
	s := &Styles{}

	s.ColorPrimary = colorOrDefault(theme.Primary, "#FC4C02")
	s.ColorAccent = colorOrDefault(theme.Accent, "#3B82F6")
	s.ColorMuted = colorOrDefault(theme.Muted, "#6B7280")
	s.ColorPositive = colorOrDefault(theme.Positive, "#10B981")
	s.ColorNegative = colorOrDefault(theme.Negative, "#EF4444")
	s.ColorWarning = lipgloss.Color("#F59E0B")

	s.ColorBg = colorOrDefault(theme.Background, "#1F2937")
	s.ColorBgLight = lipgloss.Color("#374151")
	s.ColorText = colorOrDefault(theme.Text, "#F9FAFB")
	s.ColorTextMuted = lipgloss.Color("#9CA3AF")

	s.initComponentStyles()
	return s
}

// colorOrDefault returns the lipgloss.Color from hex string, or default if empty.
func colorOrDefault(hex, defaultHex string) lipgloss.Color {
	if hex != "" {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(defaultHex)
}

func (s *Styles) initComponentStyles() {
	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorText).
		Background(s.ColorPrimary).
		Padding(0, 1)

	s.DateStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.PaneStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorMuted).
		Padding(0, 1)

	s.PaneFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorPrimary).
		Padding(0, 1)

	s.PaneTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorPrimary)

	s.SectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorAccent)

	s.YearTabStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.YearTabActiveStyle = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.StatLabelStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.StatValueStyle = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Bold(true)

	s.DeltaUpStyle = lipgloss.NewStyle().
		Foreground(s.ColorPositive)

	s.DeltaDownStyle = lipgloss.NewStyle().
		Foreground(s.ColorNegative)

	s.DeltaFlatStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.StreakLiveStyle = lipgloss.NewStyle().
		Foreground(s.ColorWarning).
		Bold(true)

	s.StreakBrokenStyle = lipgloss.NewStyle().
		Foreground(s.ColorMuted)

	s.GoalBarFull = lipgloss.NewStyle().Foreground(s.ColorPositive).Render("█")
	s.GoalBarEmpty = lipgloss.NewStyle().Foreground(s.ColorBgLight).Render("░")

	s.HelpStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.HelpKeyStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	s.StatusStyle = lipgloss.NewStyle().
		Foreground(s.ColorPositive).
		Italic(true)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(s.ColorNegative).
		Bold(true)

	s.SyncSyncedStyle = lipgloss.NewStyle().
		Foreground(s.ColorPositive)

	s.SyncPendingStyle = lipgloss.NewStyle().
		Foreground(s.ColorWarning)

	s.SyncAheadStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent)

	s.SyncBehindStyle = lipgloss.NewStyle().
		Foreground(s.ColorWarning).
		Bold(true)

	s.SyncDisabledStyle = lipgloss.NewStyle().
		Foreground(s.ColorMuted)
}

// DeltaStyle picks the color for a year-over-year change. Improvements are
// positive whatever their sign.
func (s *Styles) DeltaStyle(d analytics.Delta) lipgloss.Style {
	switch {
	case !d.HasBaseline || d.Direction == analytics.DirectionFlat:
		return s.DeltaFlatStyle
	case d.Improved:
		return s.DeltaUpStyle
	default:
		return s.DeltaDownStyle
	}
}

// RenderHelp renders help text with key bindings using the given styles.
func (s *Styles) RenderHelp(keys ...string) string {
	var result string
	for i := 0; i+1 < len(keys); i += 2 {
		if i > 0 {
			result += "  "
		}
		result += s.HelpKeyStyle.Render("["+keys[i]+"]") + " " + s.HelpStyle.Render(keys[i+1])
	}
	return result
}
