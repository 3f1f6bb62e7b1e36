package ratelimit

import (
	"testing"
	"time"
)

func TestBucketKeyFormats(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 50, 12, 0, time.UTC)

	cases := []struct {
		window Window
		want   string
	}{
		{Hourly, "rate_limit:skyscanner:hourly:2026-03-10-14"},
		{Daily, "rate_limit:skyscanner:daily:2026-03-10"},
		{Monthly, "rate_limit:skyscanner:monthly:2026-03"},
	}
	for _, tc := range cases {
		if got := BucketKey("skyscanner", tc.window, now); got != tc.want {
			t.Errorf("BucketKey(%s) = %q, want %q", tc.window, got, tc.want)
		}
	}
}

func TestBucketKeyChangesAcrossWindows(t *testing.T) {
	before := time.Date(2026, time.March, 10, 14, 59, 0, 0, time.UTC)
	after := before.Add(2 * time.Minute)

	if BucketKey("kiwi", Hourly, before) == BucketKey("kiwi", Hourly, after) {
		t.Error("hourly keys must differ across the hour boundary")
	}
	if BucketKey("kiwi", Daily, before) != BucketKey("kiwi", Daily, after) {
		t.Error("daily key must not change within the same day")
	}
}

func TestWindowTTL(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 50, 0, 0, time.UTC)

	if got, want := WindowTTL(Hourly, now), 10*time.Minute+expiryBuffer; got != want {
		t.Errorf("hourly TTL = %v, want %v", got, want)
	}
	if got, want := WindowTTL(Daily, now), 9*time.Hour+10*time.Minute+expiryBuffer; got != want {
		t.Errorf("daily TTL = %v, want %v", got, want)
	}

	// March has 31 days: 21 full days remain plus the rest of the 10th.
	monthly := WindowTTL(Monthly, now)
	want := 21*24*time.Hour + 9*time.Hour + 10*time.Minute + expiryBuffer
	if monthly != want {
		t.Errorf("monthly TTL = %v, want %v", monthly, want)
	}
}

func TestWindowTTLYearRollover(t *testing.T) {
	now := time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC)

	if got, want := WindowTTL(Monthly, now), time.Hour+expiryBuffer; got != want {
		t.Errorf("monthly TTL at year end = %v, want %v", got, want)
	}
	if got, want := WindowTTL(Daily, now), time.Hour+expiryBuffer; got != want {
		t.Errorf("daily TTL at year end = %v, want %v", got, want)
	}
}
