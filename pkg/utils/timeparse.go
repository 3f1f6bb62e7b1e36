package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical wire format for dates coming out of the scrapers.
const DateLayout = "2006-01-02"

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"15.04",
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == "None" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	parsed, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return parsed, nil
}

// ParseClock parses a time-of-day string from a scraper. Sources disagree on
// format, so several layouts are tried. The returned time carries only the
// hour/minute/second components.
func ParseClock(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == "None" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	for _, layout := range clockLayouts {
		if parsed, err := time.Parse(layout, strings.ToUpper(trimmed)); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", value)
}

// CombineDateClock merges a date with a HH:MM string. When the clock part is
// missing or unparseable the result defaults to noon, which keeps offers with
// unknown times groupable without skewing toward midnight.
func CombineDateClock(date time.Time, clock string) time.Time {
	hour, minute := 12, 0
	if parsed, err := ParseClock(clock); err == nil {
		hour, minute = parsed.Hour(), parsed.Minute()
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

// FormatClock renders a parsed clock back to the canonical HH:MM form.
func FormatClock(clock time.Time) string {
	return clock.Format("15:04")
}
