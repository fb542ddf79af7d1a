package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile represents a user row for transfer between layers.
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	FirebaseUID string    `json:"firebase_uid"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserStats aggregates a user's learning activity.
type UserStats struct {
	TotalBooks        int      `json:"total_books"`
	TotalWordsLearned int      `json:"total_words_learned"`
	FavoriteBooks     int      `json:"favorite_books"`
	LanguagesLearning []string `json:"languages_learning"`
}
