package repository

import (
	"context"
	"log/slog"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/storylingo/storylingo/gen/ent"
	"github.com/storylingo/storylingo/gen/ent/book"
	"github.com/storylingo/storylingo/gen/ent/userbook"
	"github.com/storylingo/storylingo/gen/ent/vocabulary"
	"github.com/storylingo/storylingo/internal/common"
	"github.com/storylingo/storylingo/internal/entity"
	"github.com/storylingo/storylingo/internal/utils"
)

// CreateBookRequest wraps parameters for saving an assembled story.
type CreateBookRequest struct {
	UserID        uuid.UUID
	JobID         string
	Title         string
	LanguageCode  string
	Level         string
	Genre         string
	Content       []string
	TotalChapters int
}

type BookRepository interface {
	// CreateFromStory inserts the book and adds it to the owner's library.
	CreateFromStory(ctx context.Context, request *CreateBookRequest) (*ent.Book, error)
	GetByJobID(ctx context.Context, jobID string) (*ent.Book, error)
	ListLibrary(ctx context.Context, userID uuid.UUID) ([]*entity.BookSummary, error)
	// GetDetail returns the full story and refreshes last_opened_at.
	GetDetail(ctx context.Context, userID, bookID uuid.UUID) (*entity.BookDetail, error)
	SetFavorite(ctx context.Context, userID, bookID uuid.UUID, favorite bool) error
	// Delete removes the book from the caller's library, and the book row
	// itself when the caller owns it. The owned story's job id comes back
	// so callers can clear its generation artifacts; it is empty when the
	// book only left a shared library.
	Delete(ctx context.Context, userID, bookID uuid.UUID) (string, error)
}

type bookRepository struct {
	client *ent.Client
	logger *slog.Logger
}

func NewBookRepository(client *ent.Client, logger *slog.Logger) BookRepository {
	return &bookRepository{
		client: client,
		logger: logger,
	}
}

func (r *bookRepository) CreateFromStory(ctx context.Context, request *CreateBookRequest) (*ent.Book, error) {
	tx, err := r.client.Tx(ctx)
	if err != nil {
		return nil, err
	}
	b, err := tx.Book.Create().
		SetUserID(request.UserID).
		SetJobID(request.JobID).
		SetTitle(request.Title).
		SetLanguageCode(request.LanguageCode).
		SetLevel(request.Level).
		SetGenre(request.Genre).
		SetContent(request.Content).
		SetTotalChapters(request.TotalChapters).
		Save(ctx)
	if err != nil {
		r.logger.Error("failed to create book", "job_id", request.JobID, "error", err)
		return nil, rollback(tx, err)
	}
	if _, err := tx.UserBook.Create().
		SetUserID(request.UserID).
		SetBookID(b.ID).
		Save(ctx); err != nil {
		r.logger.Error("failed to add book to library", "book_id", b.ID, "error", err)
		return nil, rollback(tx, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	r.logger.Info("book created", "book_id", b.ID, "job_id", request.JobID, "title", request.Title)
	return b, nil
}

func (r *bookRepository) GetByJobID(ctx context.Context, jobID string) (*ent.Book, error) {
	return r.client.Book.Query().Where(book.JobID(jobID)).Only(ctx)
}

func (r *bookRepository) ListLibrary(ctx context.Context, userID uuid.UUID) ([]*entity.BookSummary, error) {
	rows, err := r.client.UserBook.Query().
		Where(userbook.UserID(userID)).
		WithBook().
		Order(userbook.ByCreatedAt(sql.OrderDesc())).
		All(ctx)
	if err != nil {
		r.logger.Error("failed to list library", "user_id", userID, "error", err)
		return nil, err
	}

	result := make([]*entity.BookSummary, 0, len(rows))
	for _, row := range rows {
		if row.Edges.Book == nil {
			continue
		}
		result = append(result, utils.ToBookSummary(row.Edges.Book, row))
	}
	return result, nil
}

func (r *bookRepository) GetDetail(ctx context.Context, userID, bookID uuid.UUID) (*entity.BookDetail, error) {
	row, err := r.client.UserBook.Query().
		Where(userbook.UserID(userID), userbook.BookID(bookID)).
		WithBook().
		Only(ctx)
	if err != nil {
		if !ent.IsNotFound(err) {
			r.logger.Error("failed to get book", "book_id", bookID, "error", err)
		}
		return nil, err
	}
	b := row.Edges.Book

	// reading the book counts as opening it
	row, err = r.client.UserBook.UpdateOne(row).SetLastOpenedAt(time.Now()).Save(ctx)
	if err != nil {
		r.logger.Error("failed to update last_opened_at", "book_id", bookID, "error", err)
		return nil, err
	}
	return utils.ToBookDetail(b, row), nil
}

func (r *bookRepository) SetFavorite(ctx context.Context, userID, bookID uuid.UUID, favorite bool) error {
	n, err := r.client.UserBook.Update().
		Where(userbook.UserID(userID), userbook.BookID(bookID)).
		SetIsFavorite(favorite).
		Save(ctx)
	if err != nil {
		r.logger.Error("failed to set favorite", "book_id", bookID, "error", err)
		return err
	}
	if n == 0 {
		return common.NewAppError("NOT_FOUND", "book not in library", common.ErrNotFound)
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, userID, bookID uuid.UUID) (string, error) {
	tx, err := r.client.Tx(ctx)
	if err != nil {
		return "", err
	}
	n, err := tx.UserBook.Delete().
		Where(userbook.UserID(userID), userbook.BookID(bookID)).
		Exec(ctx)
	if err != nil {
		return "", rollback(tx, err)
	}
	if n == 0 {
		return "", rollback(tx, common.NewAppError("NOT_FOUND", "book not in library", common.ErrNotFound))
	}
	// the owner's delete takes the book itself with it
	owned, err := tx.Book.Query().
		Where(book.ID(bookID), book.UserID(userID)).
		First(ctx)
	if err != nil && !ent.IsNotFound(err) {
		return "", rollback(tx, err)
	}
	jobID := ""
	if owned != nil {
		jobID = owned.JobID
		if _, err := tx.Vocabulary.Delete().Where(vocabulary.BookID(bookID)).Exec(ctx); err != nil {
			return "", rollback(tx, err)
		}
		if _, err := tx.UserBook.Delete().Where(userbook.BookID(bookID)).Exec(ctx); err != nil {
			return "", rollback(tx, err)
		}
		if err := tx.Book.DeleteOneID(bookID).Exec(ctx); err != nil {
			return "", rollback(tx, err)
		}
	}
	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to delete book", "book_id", bookID, "error", err)
		return "", err
	}
	r.logger.Info("book deleted", "book_id", bookID, "user_id", userID, "owned", owned != nil)
	return jobID, nil
}
