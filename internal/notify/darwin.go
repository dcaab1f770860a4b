//go:build darwin

// Package notify provides desktop notification support.
// This file implements macOS notifications using osascript.
package notify

import (
	"context"
	"fmt"
	"os/exec"
)

// darwinNotifier implements notifications for macOS using osascript.
type darwinNotifier struct{}

// newPlatformNotifier creates the macOS notifier.
func newPlatformNotifier() Notifier {
	return &darwinNotifier{}
}

// Send sends a notification without sound.
func (n *darwinNotifier) Send(title, message string) error {
	return n.sendNotification(title, message, false)
}

// SendWithSound sends a notification with sound.
func (n *darwinNotifier) SendWithSound(title, message string) error {
	return n.sendNotification(title, message, true)
}

// IsSupported returns true if osascript is available.
func (n *darwinNotifier) IsSupported() bool {
	_, err := exec.LookPath("osascript")
	return err == nil
}

// sendNotification sends a macOS notification using osascript.
func (n *darwinNotifier) sendNotification(title, message string, sound bool) error {
	title = escapeAppleScript(title)
	message = escapeAppleScript(message)

	script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
	if sound {
		script += ` sound name "Glass"`
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("osascript failed: %w", err)
	}

	return nil
}
