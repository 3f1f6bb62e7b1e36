package entity

import "time"

// ScrapeRun statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ScrapeRun is the persisted record of one orchestration run. It is created
// as "running" before the first batch and finalized exactly once.
type ScrapeRun struct {
	ID           uint
	JobType      string
	Source       string
	Status       string
	Attempted    int
	Inserted     int
	Updated      int
	Skipped      int
	ErrorMessage string
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// RunStats is the summary handed back to callers after a save. It always
// reflects the best-effort outcome, even when the run ends as failed.
type RunStats struct {
	RunID           uint
	Attempted       int
	Inserted        int
	Updated         int
	Skipped         int
	Failed          int
	DurationSeconds float64
	Status          string
	Error           string
}
