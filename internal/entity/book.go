package entity

import (
	"time"

	"github.com/google/uuid"
)

// BookSummary is a library listing row: book metadata plus the caller's
// per-user state.
type BookSummary struct {
	ID            uuid.UUID  `json:"id"`
	JobID         string     `json:"job_id"`
	Title         string     `json:"title"`
	LanguageCode  string     `json:"language_code"`
	Level         string     `json:"level"`
	Genre         string     `json:"genre"`
	TotalChapters int        `json:"total_chapters"`
	IsFavorite    bool       `json:"is_favorite"`
	LastOpenedAt  *time.Time `json:"last_opened_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// BookDetail is a full story fetch, chapters included.
type BookDetail struct {
	BookSummary
	Content []string `json:"content"`
}
