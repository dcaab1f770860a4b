package ui

import (
	"strings"

	"sportdash/internal/analytics"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PaneID identifies each pane in the application.
type PaneID int

const (
	PaneOverview PaneID = iota
	PaneRecords
	PaneStreaks
	PaneGear
	paneCount
)

// Label is the tab label of the pane.
func (p PaneID) Label() string {
	switch p {
	case PaneOverview:
		return "Overview"
	case PaneRecords:
		return "Records"
	case PaneStreaks:
		return "Streaks & Goals"
	case PaneGear:
		return "Gear"
	}
	return ""
}

// pane is a dashboard panel that renders part of the report.
type pane interface {
	SetReport(r *analytics.Report)
	SetSize(width, height int)
	SetFocused(focused bool)
	// HandleKey reports whether the pane consumed the key.
	HandleKey(msg tea.KeyMsg) bool
	Scroll(lines int)
	View() string
}

// scrollPane is a bordered panel with a scrollable body. The concrete panes
// embed it and only build the body lines.
type scrollPane struct {
	title   string
	styles  *Styles
	keys    NavigationKeyMap
	width   int
	height  int
	focused bool
	offset  int
	lines   []string
}

func newScrollPane(title string, styles *Styles, keys NavigationKeyMap) scrollPane {
	return scrollPane{title: title, styles: styles, keys: keys}
}

func (p *scrollPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.clamp()
}

func (p *scrollPane) SetFocused(focused bool) {
	p.focused = focused
}

func (p *scrollPane) setLines(lines []string) {
	p.lines = lines
	p.clamp()
}

// bodyHeight leaves room for the border and the title line.
func (p *scrollPane) bodyHeight() int {
	return max(1, p.height-4)
}

func (p *scrollPane) clamp() {
	maxOffset := max(0, len(p.lines)-p.bodyHeight())
	p.offset = min(max(p.offset, 0), maxOffset)
}

func (p *scrollPane) HandleKey(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, p.keys.Up):
		p.offset--
	case key.Matches(msg, p.keys.Down):
		p.offset++
	case key.Matches(msg, p.keys.Top):
		p.offset = 0
	case key.Matches(msg, p.keys.Bottom):
		p.offset = len(p.lines)
	default:
		return false
	}
	p.clamp()
	return true
}

func (p *scrollPane) Scroll(lines int) {
	p.offset += lines
	p.clamp()
}

// render draws the pane frame around the visible body lines.
func (p *scrollPane) render() string {
	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	inner := max(10, p.width-4)

	var b strings.Builder
	title := strings.ToUpper(p.title)
	if len(p.lines) > p.bodyHeight() {
		title += p.styles.StatLabelStyle.Render(scrollHint(p.offset, len(p.lines), p.bodyHeight()))
	}
	b.WriteString(p.styles.PaneTitleStyle.Render(title))
	b.WriteString("\n\n")

	end := min(len(p.lines), p.offset+p.bodyHeight())
	clip := lipgloss.NewStyle().MaxWidth(inner)
	for i := p.offset; i < end; i++ {
		b.WriteString(clip.Render(p.lines[i]))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return style.
		Width(max(12, p.width-2)).
		Height(max(3, p.height-2)).
		Render(b.String())
}

func scrollHint(offset, total, visible int) string {
	switch {
	case offset == 0:
		return "  ↓"
	case offset+visible >= total:
		return "  ↑"
	}
	return "  ↕"
}
