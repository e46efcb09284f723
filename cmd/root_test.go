package cmd

import (
	"testing"
	"time"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := parseSince(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseSince(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSince(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSince(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatDuration(90 * 24 * time.Hour); got != "90d" {
		t.Errorf("formatDuration(90d) = %q", got)
	}
	if got := formatDuration(5 * time.Hour); got != "5h" {
		t.Errorf("formatDuration(5h) = %q", got)
	}
	if got := formatBytes(2048); got != "2.0 KB" {
		t.Errorf("formatBytes(2048) = %q", got)
	}
	if got := formatBytes(12); got != "12 B" {
		t.Errorf("formatBytes(12) = %q", got)
	}
}

func TestMark(t *testing.T) {
	tests := []struct {
		value     string
		defaulted bool
		want      string
	}{
		{"language", false, "language"},
		{"", true, "(none) *"},
		{"Languages", true, "Languages *"},
		{"", false, "(none)"},
	}
	for _, tt := range tests {
		if got := mark(tt.value, tt.defaulted); got != tt.want {
			t.Errorf("mark(%q, %v) = %q, want %q", tt.value, tt.defaulted, got, tt.want)
		}
	}
}
