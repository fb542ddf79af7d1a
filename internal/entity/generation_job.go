package entity

import (
	"time"

	"github.com/google/uuid"
)

// GenerationJob represents a story-generation job row for transfer
// between layers. JobID is the public handle clients poll with. UserID
// is nil for jobs submitted without credentials.
type GenerationJob struct {
	ID           uuid.UUID  `json:"id"`
	JobID        string     `json:"job_id"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	LanguageCode string     `json:"language_code"`
	Level        string     `json:"level"`
	Genre        string     `json:"genre"`
	Prompt       string     `json:"prompt"`
	Status       string     `json:"status"`
	ChunksTotal  int        `json:"chunks_total"`
	ChunksDone   int        `json:"chunks_done"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}
