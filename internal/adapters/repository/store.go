// Package repository keeps the state and results of asynchronous ranking jobs.
package repository

import (
	"context"
	"time"

	"github.com/okian/skillmatch/internal/domain/model"
)

// Status is the lifecycle state of a job.
type Status string

// Job lifecycle: queued -> running -> done | failed.
const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Finished reports whether the status is terminal.
func (s Status) Finished() bool { return s == StatusDone || s == StatusFailed }

// Record is a snapshot of one job. Result is set once the job is done and
// Err once it failed.
type Record struct {
	JobID       string
	Status      Status
	SubmittedAt time.Time
	UpdatedAt   time.Time
	Result      *model.RankedList
	Err         error
}

// Store provides read/write access to job state.
type Store interface {
	// Put registers a queued job. Returns ErrExists if the id is already stored.
	Put(ctx context.Context, jobID string, submittedAt time.Time) error

	// MarkRunning moves a queued job to running.
	MarkRunning(ctx context.Context, jobID string) error

	// Complete stores the ranking of a running job.
	Complete(ctx context.Context, jobID string, list model.RankedList) error

	// Fail records why a queued or running job failed.
	Fail(ctx context.Context, jobID string, cause error) error

	// Get returns the job. Returns ErrNotFound if the job is unknown or evicted.
	Get(ctx context.Context, jobID string) (Record, error)

	// Delete forgets a job; unknown ids are ignored.
	Delete(ctx context.Context, jobID string)

	// Count returns the number of retained jobs.
	Count(ctx context.Context) int
}
