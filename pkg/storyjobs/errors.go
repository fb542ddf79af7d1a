package storyjobs

import (
	"fmt"
	"time"
)

// The four failure kinds stay distinct types so callers can branch with
// errors.As: a StartError means no job exists, a TransportError means the
// job's true state is unknown, a JobError is the server's verdict, and a
// TimeoutError means the attempt budget ran out first.

// StartError reports that job creation did not yield a job ID.
type StartError struct {
	StatusCode int // 0 when the request never got a response
	Body       string
	Err        error
}

func (e *StartError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("start generation: %v", e.Err)
	}
	return fmt.Sprintf("start generation: status %d: %s", e.StatusCode, e.Body)
}

func (e *StartError) Unwrap() error { return e.Err }

// TransportError reports a failed status query: network error, non-2xx
// response, or an undecodable body. The poll loop aborts on the first one;
// the job itself may still be running server-side.
type TransportError struct {
	JobID      string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("query job %s: status %d: %v", e.JobID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("query job %s: %v", e.JobID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// JobError reports that the server marked the job failed. Terminal: the
// poller never re-queries a failed job.
type JobError struct {
	JobID    string
	Attempts int // queries issued, the terminal one included
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s failed after %d queries", e.JobID, e.Attempts)
}

// TimeoutError reports that the attempt ceiling was reached with the job
// still in a non-terminal state.
type TimeoutError struct {
	JobID    string
	Attempts int
	Interval time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("job %s still running after %d queries at %s intervals", e.JobID, e.Attempts, e.Interval)
}
