package main

import (
	"testing"
	"time"
)

func TestFormatAgeAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "1 hour ago"},
		{3 * time.Hour, "3 hours ago"},
		{24 * time.Hour, "yesterday"},
		{3 * 24 * time.Hour, "3 days ago"},
		{7 * 24 * time.Hour, "1 week ago"},
		{21 * 24 * time.Hour, "3 weeks ago"},
		{90 * 24 * time.Hour, "Dec 1, 2025"},
	}
	for _, tt := range tests {
		if got := formatAgeAt(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("formatAgeAt(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestIsYes(t *testing.T) {
	tests := []struct {
		in   string
		def  bool
		want bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"", false, false},
		{"maybe\n", true, false},
	}
	for _, tt := range tests {
		if got := isYes(tt.in, tt.def); got != tt.want {
			t.Errorf("isYes(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}

func TestNormalizeFormat(t *testing.T) {
	for in, want := range map[string]string{"": "markdown", "md": "markdown", "markdown": "markdown", "json": "json"} {
		got, err := normalizeFormat(in)
		if err != nil || got != want {
			t.Errorf("normalizeFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := normalizeFormat("html"); err == nil {
		t.Error("expected error for html")
	}
}

func TestYesNoDefault(t *testing.T) {
	if yesNoDefault(true) != "Y/n" || yesNoDefault(false) != "y/N" {
		t.Error("unexpected prompt defaults")
	}
}

func TestSpeedUnitWarning(t *testing.T) {
	for _, unit := range []string{"", "auto", "mps", "bogus"} {
		if got := speedUnitWarning(unit); got != "" {
			t.Errorf("speedUnitWarning(%q) = %q, want empty", unit, got)
		}
	}
	if speedUnitWarning("kmh") == "" {
		t.Error("speedUnitWarning(kmh) is empty")
	}
}
