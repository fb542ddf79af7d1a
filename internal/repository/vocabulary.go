package repository

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/storylingo/storylingo/gen/ent"
	"github.com/storylingo/storylingo/gen/ent/vocabulary"
	"github.com/storylingo/storylingo/internal/common"
	"github.com/storylingo/storylingo/internal/entity"
	"github.com/storylingo/storylingo/internal/utils"
)

// SaveWordRequest wraps parameters for recording a word lookup.
type SaveWordRequest struct {
	UserID       uuid.UUID
	BookID       uuid.UUID
	LanguageCode string
	Word         string
	Translation  string
}

// ListWordsOptions filters and pages a vocabulary listing.
type ListWordsOptions struct {
	BookID   *uuid.UUID
	Language string
	Limit    int
	Offset   int
}

type VocabularyRepository interface {
	// SaveWord records a lookup: a repeat of the same word bumps
	// hover_count and refreshes the translation and last_seen_at.
	SaveWord(ctx context.Context, request *SaveWordRequest) (*ent.Vocabulary, error)
	ListWords(ctx context.Context, userID uuid.UUID, opts ListWordsOptions) ([]*entity.VocabularyWord, error)
	DeleteWord(ctx context.Context, userID, id uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) (*entity.VocabularyStats, error)
}

type vocabularyRepository struct {
	client *ent.Client
	logger *slog.Logger
}

func NewVocabularyRepository(client *ent.Client, logger *slog.Logger) VocabularyRepository {
	return &vocabularyRepository{
		client: client,
		logger: logger,
	}
}

func (r *vocabularyRepository) SaveWord(ctx context.Context, request *SaveWordRequest) (*ent.Vocabulary, error) {
	existing, err := r.client.Vocabulary.Query().
		Where(
			vocabulary.UserID(request.UserID),
			vocabulary.BookID(request.BookID),
			vocabulary.LanguageCode(request.LanguageCode),
			vocabulary.Word(request.Word),
		).
		Only(ctx)
	if err == nil {
		return r.client.Vocabulary.UpdateOne(existing).
			AddHoverCount(1).
			SetTranslation(request.Translation).
			SetLastSeenAt(time.Now()).
			Save(ctx)
	}
	if !ent.IsNotFound(err) {
		r.logger.Error("failed to look up word", "word", request.Word, "error", err)
		return nil, err
	}

	v, err := r.client.Vocabulary.Create().
		SetUserID(request.UserID).
		SetBookID(request.BookID).
		SetLanguageCode(request.LanguageCode).
		SetWord(request.Word).
		SetTranslation(request.Translation).
		Save(ctx)
	if err != nil {
		r.logger.Error("failed to save word", "word", request.Word, "error", err)
		return nil, err
	}
	return v, nil
}

func (r *vocabularyRepository) ListWords(ctx context.Context, userID uuid.UUID, opts ListWordsOptions) ([]*entity.VocabularyWord, error) {
	q := r.client.Vocabulary.Query().Where(vocabulary.UserID(userID))
	if opts.BookID != nil {
		q = q.Where(vocabulary.BookID(*opts.BookID))
	}
	if opts.Language != "" {
		q = q.Where(vocabulary.LanguageCode(opts.Language))
	}
	q = q.Order(vocabulary.ByLastSeenAt(sql.OrderDesc()))
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	rows, err := q.All(ctx)
	if err != nil {
		r.logger.Error("failed to list vocabulary", "user_id", userID, "error", err)
		return nil, err
	}

	result := make([]*entity.VocabularyWord, len(rows))
	for i, row := range rows {
		result[i] = utils.ToVocabularyWord(row)
	}
	return result, nil
}

func (r *vocabularyRepository) DeleteWord(ctx context.Context, userID, id uuid.UUID) error {
	n, err := r.client.Vocabulary.Delete().
		Where(vocabulary.ID(id), vocabulary.UserID(userID)).
		Exec(ctx)
	if err != nil {
		r.logger.Error("failed to delete word", "vocabulary_id", id, "error", err)
		return err
	}
	if n == 0 {
		return common.NewAppError("NOT_FOUND", "vocabulary entry not found", common.ErrNotFound)
	}
	return nil
}

func (r *vocabularyRepository) Stats(ctx context.Context, userID uuid.UUID) (*entity.VocabularyStats, error) {
	// distinct words: looking up "casa" in two books still counts once
	words, err := r.client.Vocabulary.Query().
		Where(vocabulary.UserID(userID)).
		Unique(true).
		Select(vocabulary.FieldWord).
		Strings(ctx)
	if err != nil {
		r.logger.Error("failed to count vocabulary", "user_id", userID, "error", err)
		return nil, err
	}

	var pairs []struct {
		LanguageCode string `json:"language_code"`
		Word         string `json:"word"`
	}
	err = r.client.Vocabulary.Query().
		Where(vocabulary.UserID(userID)).
		Unique(true).
		Select(vocabulary.FieldLanguageCode, vocabulary.FieldWord).
		Scan(ctx, &pairs)
	if err != nil {
		r.logger.Error("failed to group vocabulary by language", "user_id", userID, "error", err)
		return nil, err
	}
	perLang := make(map[string]int)
	for _, p := range pairs {
		perLang[p.LanguageCode]++
	}
	byLang := make([]entity.LanguageCount, 0, len(perLang))
	for code, n := range perLang {
		byLang = append(byLang, entity.LanguageCount{Language: code, Count: n})
	}
	sort.Slice(byLang, func(i, j int) bool {
		if byLang[i].Count != byLang[j].Count {
			return byLang[i].Count > byLang[j].Count
		}
		return byLang[i].Language < byLang[j].Language
	})

	top, err := r.client.Vocabulary.Query().
		Where(vocabulary.UserID(userID)).
		Order(vocabulary.ByHoverCount(sql.OrderDesc()), vocabulary.ByLastSeenAt(sql.OrderDesc())).
		Limit(10).
		All(ctx)
	if err != nil {
		r.logger.Error("failed to list most reviewed words", "user_id", userID, "error", err)
		return nil, err
	}

	stats := &entity.VocabularyStats{
		TotalWords:   len(words),
		ByLanguage:   byLang,
		MostReviewed: make([]entity.ReviewedWord, len(top)),
	}
	for i, row := range top {
		stats.MostReviewed[i] = entity.ReviewedWord{
			Word:        row.Word,
			Translation: row.Translation,
			Language:    row.LanguageCode,
			HoverCount:  row.HoverCount,
		}
	}
	return stats, nil
}
