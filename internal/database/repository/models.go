package repository

import "time"

// Run represents one sync/export/sweep execution.
type Run struct {
	ID         string
	Kind       string
	StartedAt  time.Time
	FinishedAt *time.Time
	Summary    *string
}

// RunEvent represents one logged decision within a run.
type RunEvent struct {
	ID        int64
	RunID     string
	Level     string
	Message   string
	CreatedAt time.Time
}
