package repository

import (
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/storylingo/storylingo/gen/ent"
	"github.com/storylingo/storylingo/gen/ent/book"
	"github.com/storylingo/storylingo/gen/ent/generationjob"
	"github.com/storylingo/storylingo/gen/ent/user"
	"github.com/storylingo/storylingo/gen/ent/userbook"
	"github.com/storylingo/storylingo/gen/ent/vocabulary"
	"github.com/storylingo/storylingo/internal/entity"
)

type UserRepository interface {
	// GetOrCreate returns the user for a Firebase UID, creating the row on
	// first login.
	GetOrCreate(ctx context.Context, firebaseUID, email string, displayName *string) (*ent.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ent.User, error)
	GetByFirebaseUID(ctx context.Context, firebaseUID string) (*ent.User, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName *string) (*ent.User, error)
	// DeleteAccount removes the user and everything hanging off it.
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, id uuid.UUID) (*entity.UserStats, error)
}

type userRepository struct {
	client *ent.Client
	logger *slog.Logger
}

func NewUserRepository(client *ent.Client, logger *slog.Logger) UserRepository {
	return &userRepository{
		client: client,
		logger: logger,
	}
}

func (r *userRepository) GetOrCreate(ctx context.Context, firebaseUID, email string, displayName *string) (*ent.User, error) {
	u, err := r.client.User.Query().Where(user.FirebaseUID(firebaseUID)).Only(ctx)
	if err == nil {
		return u, nil
	}
	if !ent.IsNotFound(err) {
		r.logger.Error("failed to look up user", "firebase_uid", firebaseUID, "error", err)
		return nil, err
	}

	create := r.client.User.Create().
		SetFirebaseUID(firebaseUID).
		SetEmail(email)
	if displayName != nil && *displayName != "" {
		create = create.SetDisplayName(*displayName)
	}
	u, err = create.Save(ctx)
	if ent.IsConstraintError(err) {
		// lost a first-login race; the row exists now
		return r.client.User.Query().Where(user.FirebaseUID(firebaseUID)).Only(ctx)
	}
	if err != nil {
		r.logger.Error("failed to create user", "firebase_uid", firebaseUID, "error", err)
		return nil, err
	}
	r.logger.Info("user created", "user_id", u.ID, "firebase_uid", firebaseUID)
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*ent.User, error) {
	return r.client.User.Query().Where(user.ID(id)).Only(ctx)
}

func (r *userRepository) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*ent.User, error) {
	return r.client.User.Query().Where(user.FirebaseUID(firebaseUID)).Only(ctx)
}

func (r *userRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName *string) (*ent.User, error) {
	upd := r.client.User.UpdateOneID(id)
	if displayName == nil || *displayName == "" {
		upd = upd.ClearDisplayName()
	} else {
		upd = upd.SetDisplayName(*displayName)
	}
	u, err := upd.Save(ctx)
	if err != nil {
		if !ent.IsNotFound(err) {
			r.logger.Error("failed to update user", "user_id", id, "error", err)
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	tx, err := r.client.Tx(ctx)
	if err != nil {
		return err
	}
	// dependents first: vocabulary and library rows reference books
	if _, err := tx.Vocabulary.Delete().Where(vocabulary.UserID(id)).Exec(ctx); err != nil {
		return rollback(tx, err)
	}
	if _, err := tx.UserBook.Delete().Where(userbook.UserID(id)).Exec(ctx); err != nil {
		return rollback(tx, err)
	}
	if _, err := tx.GenerationJob.Delete().Where(generationjob.UserID(id)).Exec(ctx); err != nil {
		return rollback(tx, err)
	}
	if _, err := tx.Book.Delete().Where(book.UserID(id)).Exec(ctx); err != nil {
		return rollback(tx, err)
	}
	if err := tx.User.DeleteOneID(id).Exec(ctx); err != nil {
		return rollback(tx, err)
	}
	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to delete account", "user_id", id, "error", err)
		return err
	}
	r.logger.Info("account deleted", "user_id", id)
	return nil
}

func (r *userRepository) Stats(ctx context.Context, id uuid.UUID) (*entity.UserStats, error) {
	totalBooks, err := r.client.UserBook.Query().Where(userbook.UserID(id)).Count(ctx)
	if err != nil {
		r.logger.Error("failed to count books", "user_id", id, "error", err)
		return nil, err
	}
	favorites, err := r.client.UserBook.Query().
		Where(userbook.UserID(id), userbook.IsFavorite(true)).
		Count(ctx)
	if err != nil {
		r.logger.Error("failed to count favorites", "user_id", id, "error", err)
		return nil, err
	}
	// distinct words: saving "casa" from two books counts once
	words, err := r.client.Vocabulary.Query().
		Where(vocabulary.UserID(id)).
		Unique(true).
		Select(vocabulary.FieldWord).
		Strings(ctx)
	if err != nil {
		r.logger.Error("failed to count vocabulary", "user_id", id, "error", err)
		return nil, err
	}
	langs, err := r.client.Book.Query().
		Where(book.HasReadersWith(userbook.UserID(id))).
		Select(book.FieldLanguageCode).
		Strings(ctx)
	if err != nil {
		r.logger.Error("failed to list languages", "user_id", id, "error", err)
		return nil, err
	}
	slices.Sort(langs)
	langs = slices.Compact(langs)

	return &entity.UserStats{
		TotalBooks:        totalBooks,
		TotalWordsLearned: len(words),
		FavoriteBooks:     favorites,
		LanguagesLearning: langs,
	}, nil
}
