package utils

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2026-09-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Year() != 2026 || parsed.Month() != time.September || parsed.Day() != 15 {
		t.Errorf("parsed wrong date: %v", parsed)
	}

	for _, bad := range []string{"", "None", "15.09.2026", "2026-13-01", "garbage"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseClockFormats(t *testing.T) {
	cases := []struct {
		in         string
		hour, mins int
	}{
		{"14:30", 14, 30},
		{"06:05:00", 6, 5},
		{"2:45 pm", 14, 45},
		{"2:45PM", 14, 45},
		{"18.20", 18, 20},
		{" 09:00 ", 9, 0},
	}
	for _, tc := range cases {
		parsed, err := ParseClock(tc.in)
		if err != nil {
			t.Errorf("ParseClock(%q) failed: %v", tc.in, err)
			continue
		}
		if parsed.Hour() != tc.hour || parsed.Minute() != tc.mins {
			t.Errorf("ParseClock(%q) = %02d:%02d, want %02d:%02d",
				tc.in, parsed.Hour(), parsed.Minute(), tc.hour, tc.mins)
		}
	}

	for _, bad := range []string{"", "None", "25:00", "noonish"} {
		if _, err := ParseClock(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestCombineDateClock(t *testing.T) {
	date := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)

	combined := CombineDateClock(date, "14:30")
	if combined.Hour() != 14 || combined.Minute() != 30 {
		t.Errorf("expected 14:30, got %v", combined)
	}

	// Missing or malformed clocks default to noon.
	for _, clock := range []string{"", "None", "???"} {
		combined := CombineDateClock(date, clock)
		if combined.Hour() != 12 || combined.Minute() != 0 {
			t.Errorf("CombineDateClock(%q) = %v, want noon", clock, combined)
		}
	}
}

func TestFormatClock(t *testing.T) {
	parsed, err := ParseClock("2:45 PM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := FormatClock(parsed); got != "14:45" {
		t.Errorf("FormatClock = %q, want 14:45", got)
	}
}
