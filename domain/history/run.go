package history

import (
	"context"
	"time"

	"mp4-splitter/domain/video"
)

// Status is the outcome of an export run
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run records one export attempt
type Run struct {
	ID         string
	Source     string
	OutputDir  string
	Status     Status
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
	Segments   []video.Segment
}

// Duration returns how long the run took
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists export runs
type Store interface {
	RecordRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}
