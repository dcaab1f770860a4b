// Package notify provides cross-platform desktop notification support.
// It uses native notification mechanisms on macOS (osascript) and Linux (notify-send).
package notify

import (
	"fmt"
	"strings"
	"time"

	"sportdash/internal/analytics"
)

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// Send sends a notification with the given title and message.
	Send(title, message string) error

	// SendWithSound sends a notification with sound.
	SendWithSound(title, message string) error

	// IsSupported returns true if notifications are supported on this platform.
	IsSupported() bool
}

// sendTimeout bounds the notification helper process.
const sendTimeout = 5 * time.Second

type noopNotifier struct{}

func (n *noopNotifier) Send(title, message string) error          { return nil }
func (n *noopNotifier) SendWithSound(title, message string) error { return nil }
func (n *noopNotifier) IsSupported() bool                         { return false }

// New creates a platform-specific notifier.
// Returns a no-op notifier if the platform doesn't support notifications.
func New() Notifier {
	n := newPlatformNotifier()
	if n == nil || !n.IsSupported() {
		return &noopNotifier{}
	}
	return n
}

// Config holds notification configuration.
type Config struct {
	Enabled bool
	// OnFetch announces the result of a Strava fetch.
	OnFetch bool
	Sound   bool
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() Config {
	return Config{OnFetch: true}
}

// FetchMessage builds the notification for a completed fetch, e.g.
// "3 new activities" / "Week streak: 12 weeks".
func FetchMessage(added int, week analytics.Streak) (title, message string) {
	title = "sportdash"
	switch added {
	case 0:
		message = "No new activities"
	case 1:
		message = "1 new activity"
	default:
		message = fmt.Sprintf("%d new activities", added)
	}
	if week.Live() {
		message += fmt.Sprintf("\nWeek streak: %s", plural(week.Current, "week"))
	}
	return title, message
}

// NotifyFetch announces a fetch when notifications are enabled. Fetches
// that found nothing stay silent.
func NotifyFetch(n Notifier, cfg Config, added int, week analytics.Streak) error {
	if n == nil || !cfg.Enabled || !cfg.OnFetch || added == 0 {
		return nil
	}
	title, message := FetchMessage(added, week)
	if cfg.Sound {
		return n.SendWithSound(title, message)
	}
	return n.Send(title, message)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// escapeAppleScript escapes special characters for AppleScript strings.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
