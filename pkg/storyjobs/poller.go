package storyjobs

import (
	"context"
	"time"
)

// phase is the poll loop's explicit state. One loop drives all
// transitions; there is no timer rescheduling itself.
//
//	notStarted -> polling -> completed | failed | timedOut
type phase int

const (
	phaseNotStarted phase = iota
	phasePolling
	phaseCompleted
	phaseFailed
	phaseTimedOut
)

type pollConfig struct {
	interval    time.Duration
	maxAttempts int
	progress    func(StatusResponse)
}

type PollOption func(*pollConfig)

// WithInterval sets the wait between consecutive status queries.
func WithInterval(d time.Duration) PollOption {
	return func(cfg *pollConfig) {
		if d > 0 {
			cfg.interval = d
		}
	}
}

// WithMaxAttempts caps how many status queries are issued before the poll
// gives up with a *TimeoutError.
func WithMaxAttempts(n int) PollOption {
	return func(cfg *pollConfig) {
		if n > 0 {
			cfg.maxAttempts = n
		}
	}
}

// WithProgress registers a callback invoked once per non-terminal status
// response, in order, with the exact payload received. It runs on the
// polling goroutine: a slow callback delays the next query.
func WithProgress(fn func(StatusResponse)) PollOption {
	return func(cfg *pollConfig) {
		cfg.progress = fn
	}
}

// PollUntilDone queries jobID's status until it completes, fails, or the
// attempt budget runs out, waiting the configured interval between
// queries. There is never more than one query in flight, and the outcome
// is delivered exactly once:
//
//   - completed: the story is returned
//   - failed: *JobError, with no further queries
//   - a failed query: *TransportError, with no further queries
//   - maxAttempts non-terminal responses: *TimeoutError
//
// Cancelling ctx stops the loop between attempts and aborts any in-flight
// request; the context's error is returned as-is.
func (c *Client) PollUntilDone(ctx context.Context, jobID string, opts ...PollOption) (*Story, error) {
	cfg := pollConfig{
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, o := range opts {
		o(&cfg)
	}

	p := &poll{client: c, jobID: jobID, cfg: cfg, phase: phaseNotStarted}
	return p.run(ctx)
}

// GenerateAndWait submits req and polls the resulting job to completion.
func (c *Client) GenerateAndWait(ctx context.Context, req GenerateRequest, opts ...PollOption) (*Story, error) {
	jobID, err := c.Start(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.PollUntilDone(ctx, jobID, opts...)
}

type poll struct {
	client *Client
	jobID  string
	cfg    pollConfig
	phase  phase
}

func (p *poll) run(ctx context.Context) (*Story, error) {
	log := p.client.logger
	log.Info("story.poll.start", "job_id", p.jobID, "interval", p.cfg.interval, "max_attempts", p.cfg.maxAttempts)

	p.phase = phasePolling
	for attempt := 1; ; attempt++ {
		resp, err := p.client.GetStatus(ctx, p.jobID)
		if err != nil {
			// Transport failure: the job's true state is unknown, so the
			// loop must not keep burning attempts against a dead endpoint.
			p.phase = phaseFailed
			log.Error("story.poll.transport_error", "job_id", p.jobID, "attempt", attempt, "error", err)
			return nil, err
		}

		switch resp.Status {
		case StatusCompleted:
			p.phase = phaseCompleted
			log.Info("story.poll.ok", "job_id", p.jobID, "attempts", attempt)
			return resp.Story, nil
		case StatusFailed:
			p.phase = phaseFailed
			log.Error("story.poll.job_failed", "job_id", p.jobID, "attempts", attempt)
			return nil, &JobError{JobID: p.jobID, Attempts: attempt}
		}

		log.Debug("story.poll.pending", "job_id", p.jobID, "attempt", attempt, "status", resp.Status)
		if p.cfg.progress != nil {
			p.cfg.progress(resp)
		}

		if attempt >= p.cfg.maxAttempts {
			p.phase = phaseTimedOut
			log.Error("story.poll.timeout", "job_id", p.jobID, "attempts", attempt)
			return nil, &TimeoutError{JobID: p.jobID, Attempts: attempt, Interval: p.cfg.interval}
		}

		select {
		case <-ctx.Done():
			p.phase = phaseFailed
			return nil, ctx.Err()
		case <-time.After(p.cfg.interval):
		}
	}
}
