package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlay renders a help screen listing the active key bindings.
type HelpOverlay struct {
	width  int
	height int
	styles *Styles
	global GlobalKeyMap
	nav    NavigationKeyMap
	years  YearKeyMap
}

// NewHelpOverlay creates a new help overlay
func NewHelpOverlay(styles *Styles, global GlobalKeyMap, nav NavigationKeyMap, years YearKeyMap) *HelpOverlay {
	return &HelpOverlay{
		styles: styles,
		global: global,
		nav:    nav,
		years:  years,
	}
}

// SetSize sets the overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	overlayWidth := 60
	if h.width > 0 {
		overlayWidth = min(60, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(16)

	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)

	mutedStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true)

	var b strings.Builder
	section := func(name string, bindings ...key.Binding) {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n")
		for _, kb := range bindings {
			help := kb.Help()
			b.WriteString(keyStyle.Render(help.Key) + descStyle.Render(help.Desc) + "\n")
		}
	}

	b.WriteString(titleStyle.Render("sportdash - Keyboard Shortcuts"))
	b.WriteString("\n")

	g := h.global
	section("Global", g.NextPane, g.PrevPane, g.Pane1, g.Pane2, g.Pane3, g.Pane4, g.Refresh, g.Help, g.Quit)
	section("Scrolling", h.nav.Up, h.nav.Down, h.nav.Top, h.nav.Bottom)
	section("Overview", h.years.Prev, h.years.Next)

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Press ? or Esc to close"))

	return lipgloss.Place(
		h.width,
		h.height,
		lipgloss.Center,
		lipgloss.Center,
		overlayStyle.Render(b.String()),
	)
}
