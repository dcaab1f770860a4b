package ui

// Key bindings use the Bubble Tea key package; every binding can be
// overridden from the keys section of the config.

import (
	"strings"

	"sportdash/internal/config"

	"github.com/charmbracelet/bubbles/key"
)

// parseKeys splits a comma-separated string into individual keys.
// If the input is empty, returns the default keys.
func parseKeys(customKeys string, defaultKeys ...string) []string {
	if customKeys == "" {
		return defaultKeys
	}
	keys := strings.Split(customKeys, ",")
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		trimmed := strings.TrimSpace(k)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultKeys
	}
	return result
}

// binding builds a key binding whose help label follows the configured keys.
func binding(custom, desc string, defaults ...string) key.Binding {
	keys := parseKeys(custom, defaults...)
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(strings.Join(keys, "/"), desc),
	)
}

// GlobalKeyMap defines keys available throughout the application.
type GlobalKeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	NextPane key.Binding
	PrevPane key.Binding
	Pane1    key.Binding
	Pane2    key.Binding
	Pane3    key.Binding
	Pane4    key.Binding
	Refresh  key.Binding
}

// NewGlobalKeyMap creates global key bindings from config.
func NewGlobalKeyMap(cfg *config.KeysConfig) GlobalKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return GlobalKeyMap{
		Quit:     binding(cfg.Quit, "quit", "q", "ctrl+c"),
		Help:     binding(cfg.Help, "help", "?"),
		NextPane: binding(cfg.NextPane, "next pane", "tab"),
		PrevPane: binding(cfg.PrevPane, "previous pane", "shift+tab"),
		Pane1:    binding(cfg.Pane1, "overview", "1"),
		Pane2:    binding(cfg.Pane2, "records", "2"),
		Pane3:    binding(cfg.Pane3, "streaks & goals", "3"),
		Pane4:    binding(cfg.Pane4, "gear", "4"),
		Refresh:  binding(cfg.Refresh, "reload data", "r"),
	}
}

// NavigationKeyMap scrolls the focused pane.
type NavigationKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// NewNavigationKeyMap creates navigation key bindings from config.
func NewNavigationKeyMap(cfg *config.KeysConfig) NavigationKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return NavigationKeyMap{
		Up:     binding(cfg.Up, "scroll up", "k", "up"),
		Down:   binding(cfg.Down, "scroll down", "j", "down"),
		Top:    binding(cfg.Top, "top", "g"),
		Bottom: binding(cfg.Bottom, "bottom", "G"),
	}
}

// YearKeyMap switches the year shown in the overview.
type YearKeyMap struct {
	Prev key.Binding
	Next key.Binding
}

// NewYearKeyMap creates year key bindings from config.
func NewYearKeyMap(cfg *config.KeysConfig) YearKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return YearKeyMap{
		Prev: binding(cfg.PrevYear, "older year", "h", "left"),
		Next: binding(cfg.NextYear, "newer year", "l", "right"),
	}
}

// HelpKeyMap defines keys for the help overlay.
type HelpKeyMap struct {
	Close key.Binding
}

// DefaultHelpKeyMap returns the default help overlay key bindings.
func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{
		Close: key.NewBinding(
			key.WithKeys("?", "esc", "q", "enter", " "),
			key.WithHelp("any key", "close"),
		),
	}
}
