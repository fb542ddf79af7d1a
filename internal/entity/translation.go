package entity

import (
	"time"

	"github.com/google/uuid"
)

// TranslationResult is the translate endpoint's response shape.
type TranslationResult struct {
	Word         string               `json:"word"`
	Translations []string             `json:"translations"`
	SourceLang   string               `json:"source_lang"`
	TargetLang   string               `json:"target_lang"`
	Examples     []TranslationExample `json:"examples,omitempty"`
}

// TranslationExample is a usage pair pulled from the dictionary entry.
type TranslationExample struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// VocabularyWord represents a saved vocabulary row for transfer between layers.
type VocabularyWord struct {
	ID           uuid.UUID `json:"id"`
	Word         string    `json:"word"`
	Translation  string    `json:"translation"`
	LanguageCode string    `json:"language_code"`
	BookID       uuid.UUID `json:"book_id"`
	HoverCount   int       `json:"hover_count"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// VocabularyStats aggregates a user's vocabulary activity.
type VocabularyStats struct {
	TotalWords   int             `json:"total_words"`
	ByLanguage   []LanguageCount `json:"by_language"`
	MostReviewed []ReviewedWord  `json:"most_reviewed"`
}

type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

type ReviewedWord struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Language    string `json:"language"`
	HoverCount  int    `json:"hover_count"`
}
