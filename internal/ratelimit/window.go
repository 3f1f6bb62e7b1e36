package ratelimit

import (
	"fmt"
	"time"
)

// Window is the calendar period over which a source's call budget is tracked.
type Window string

const (
	Hourly  Window = "hourly"
	Daily   Window = "daily"
	Monthly Window = "monthly"
)

// expiryBuffer is added to every TTL so a counter never outlives its window
// by less than it takes Redis to expire the key.
const expiryBuffer = time.Minute

// BucketKey builds the store key for a source in the window containing now.
// The calendar bucket is part of the key, so a new window always starts from
// a fresh counter.
func BucketKey(source string, window Window, now time.Time) string {
	var bucket string
	switch window {
	case Hourly:
		bucket = now.Format("2006-01-02-15")
	case Daily:
		bucket = now.Format("2006-01-02")
	case Monthly:
		bucket = now.Format("2006-01")
	default:
		bucket = now.Format("2006-01-02")
	}
	return fmt.Sprintf("rate_limit:%s:%s:%s", source, window, bucket)
}

// WindowTTL returns how long a counter created at now should live: the time
// remaining until the window boundary plus a small buffer.
func WindowTTL(window Window, now time.Time) time.Duration {
	var boundary time.Time
	switch window {
	case Hourly:
		boundary = time.Date(now.Year(), now.Month(), now.Day(), now.Hour()+1, 0, 0, 0, now.Location())
	case Monthly:
		// time.Date normalizes month 13 into January of the next year.
		boundary = time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	default:
		boundary = time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	}
	return boundary.Sub(now) + expiryBuffer
}
