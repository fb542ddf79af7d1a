package async

import (
	"context"
	"errors"
	"time"
)

// Job is the smallest useful unit of work: one claimed generation job.
type Job struct {
	JobID       string
	SubmittedAt time.Time
}

// Runner executes a single generation job from claim to terminal status.
type Runner interface {
	Run(ctx context.Context, jobID string) error
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// ErrQueueClosed is returned by Enqueue once Shutdown has begun, so the
// claim loop can stop instead of silently dropping claimed jobs.
var ErrQueueClosed = errors.New("queue is shutting down")
