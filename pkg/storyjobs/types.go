// Package storyjobs is the client SDK for the story-generation API: it
// submits generation requests and polls the returned job until the story
// is ready.
//
// A job moves through pending and processing before landing on one of the
// two terminal states, completed or failed. [Client.PollUntilDone] drives
// that lifecycle for the caller: one status query at a time, a fixed wait
// between queries, and a bounded number of attempts.
package storyjobs

import "time"

// Status is a generation job's lifecycle state as reported by the server.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether s ends the poll loop. Only completed and failed
// are terminal; any other value, known or not, means keep polling.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Defaults for PollUntilDone. Callers wanting a longer watch raise the
// attempt ceiling per call; the CLI uses 150.
const (
	DefaultInterval    = 2 * time.Second
	DefaultMaxAttempts = 100
)

// GenerateRequest describes the story to generate.
type GenerateRequest struct {
	Language string `json:"language"`
	Level    string `json:"level"`
	Genre    string `json:"genre"`
	Prompt   string `json:"prompt"`
}

// Story is the finished result: a title plus the chapter texts in order.
type Story struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// StatusResponse is one status query's payload, handed untouched to the
// progress callback. Story is set only once Status is completed;
// ChunksCompleted is present while the job is underway.
type StatusResponse struct {
	JobID           string `json:"job_id"`
	Status          Status `json:"status"`
	Story           *Story `json:"story,omitempty"`
	ChunksCompleted *int   `json:"chunks_completed,omitempty"`
}
