package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/storylingo/storylingo/internal/async"
	"github.com/storylingo/storylingo/internal/repository"
)

// ClaimLoop polls the database for pending jobs and feeds them to the
// worker queue. Claiming flips the status, so several loops can run
// against the same database without double-processing.
type ClaimLoop struct {
	Jobs   repository.GenerationJobRepository
	Queue  async.Queue
	Logger *slog.Logger
	Every  time.Duration
	Batch  int
}

func NewClaimLoop(jobs repository.GenerationJobRepository, queue async.Queue, logger *slog.Logger, every time.Duration, batch int) *ClaimLoop {
	if logger == nil {
		logger = slog.Default()
	}
	if every <= 0 {
		every = 5 * time.Second
	}
	if batch <= 0 {
		batch = 10
	}
	return &ClaimLoop{Jobs: jobs, Queue: queue, Logger: logger, Every: every, Batch: batch}
}

// Run blocks until ctx is canceled or the queue shuts down.
func (l *ClaimLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.Every)
	defer ticker.Stop()

	for {
		if err := l.claimOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			l.Logger.Info("claim loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *ClaimLoop) claimOnce(ctx context.Context) error {
	jobs, err := l.Jobs.ClaimPending(ctx, l.Batch)
	if err != nil {
		// transient; the next tick retries
		l.Logger.Error("claim pending failed", "err", err)
		return nil
	}
	for _, job := range jobs {
		if err := l.Queue.Enqueue(ctx, async.Job{JobID: job.JobID, SubmittedAt: time.Now()}); err != nil {
			return err
		}
	}
	return nil
}
