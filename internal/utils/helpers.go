package utils

import (
	"time"

	"github.com/storylingo/storylingo/gen/ent"
	authpb "github.com/storylingo/storylingo/gen/proto/auth/v1"
	"github.com/storylingo/storylingo/internal/entity"
)

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ToPBUser(u *ent.User) *authpb.User {
	return &authpb.User{
		Id:          u.ID.String(),
		FirebaseUid: u.FirebaseUID,
		Email:       u.Email,
		DisplayName: strOrEmpty(u.DisplayName),
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func ToUserProfile(e *ent.User) *entity.UserProfile {
	return &entity.UserProfile{
		ID:          e.ID,
		FirebaseUID: e.FirebaseUID,
		Email:       e.Email,
		DisplayName: e.DisplayName,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToBookSummary(b *ent.Book, lib *ent.UserBook) *entity.BookSummary {
	return &entity.BookSummary{
		ID:            b.ID,
		JobID:         b.JobID,
		Title:         b.Title,
		LanguageCode:  b.LanguageCode,
		Level:         b.Level,
		Genre:         b.Genre,
		TotalChapters: b.TotalChapters,
		IsFavorite:    lib.IsFavorite,
		LastOpenedAt:  lib.LastOpenedAt,
		CreatedAt:     b.CreatedAt,
	}
}

func ToBookDetail(b *ent.Book, lib *ent.UserBook) *entity.BookDetail {
	return &entity.BookDetail{
		BookSummary: *ToBookSummary(b, lib),
		Content:     b.Content,
	}
}

func ToGenerationJob(e *ent.GenerationJob) *entity.GenerationJob {
	return &entity.GenerationJob{
		ID:           e.ID,
		JobID:        e.JobID,
		UserID:       e.UserID,
		LanguageCode: e.LanguageCode,
		Level:        e.Level,
		Genre:        e.Genre,
		Prompt:       e.Prompt,
		Status:       e.Status,
		ChunksTotal:  e.ChunksTotal,
		ChunksDone:   e.ChunksDone,
		ErrorMessage: e.ErrorMessage,
		CreatedAt:    e.CreatedAt,
		StartedAt:    e.StartedAt,
		FinishedAt:   e.FinishedAt,
	}
}

func ToVocabularyWord(e *ent.Vocabulary) *entity.VocabularyWord {
	return &entity.VocabularyWord{
		ID:           e.ID,
		Word:         e.Word,
		Translation:  e.Translation,
		LanguageCode: e.LanguageCode,
		BookID:       e.BookID,
		HoverCount:   e.HoverCount,
		LastSeenAt:   e.LastSeenAt,
		CreatedAt:    e.CreatedAt,
	}
}
