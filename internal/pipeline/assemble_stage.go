package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/storylingo/storylingo/constants"
	"github.com/storylingo/storylingo/gen/ent"
	"github.com/storylingo/storylingo/internal/blob"
	"github.com/storylingo/storylingo/internal/entity"
	"github.com/storylingo/storylingo/internal/repository"
)

type AssembleStage struct {
	JobsRepo  repository.GenerationJobRepository
	BooksRepo repository.BookRepository
	Store     blob.Store
	Logger    *slog.Logger
}

func NewAssembleStage(jobs repository.GenerationJobRepository, books repository.BookRepository, store blob.Store, logger *slog.Logger) *AssembleStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssembleStage{JobsRepo: jobs, BooksRepo: books, Store: store, Logger: logger}
}

// Run collects the generated chunks into the final story document, saves
// the book to the owner's library, and completes the job.
func (s *AssembleStage) Run(ctx context.Context, jobID string) (*ent.Book, error) {
	job, err := s.JobsRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}

	var manifest entity.Manifest
	if err := s.Store.DownloadJSON(ctx, constants.ManifestBlobPath(jobID), &manifest); err != nil {
		return nil, fmt.Errorf("download manifest: %w", err)
	}

	names, err := s.Store.List(ctx, constants.ChunksBlobPrefix(jobID))
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	if len(names) != job.ChunksTotal {
		return nil, fmt.Errorf("found %d chunks, want %d", len(names), job.ChunksTotal)
	}

	chunks := make([]entity.Chunk, 0, len(names))
	for _, name := range names {
		var chunk entity.Chunk
		if err := s.Store.DownloadJSON(ctx, name, &chunk); err != nil {
			return nil, fmt.Errorf("download %s: %w", name, err)
		}
		chunks = append(chunks, chunk)
	}
	// blob listing is lexical, chunk_10 sorts before chunk_2
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ChunkID < chunks[j].ChunkID })

	title := manifest.Title
	if title == "" {
		title = "Untitled Story"
	}
	story := entity.FinalStory{
		StoryID:       jobID,
		Title:         title,
		Language:      manifest.Language,
		Genre:         manifest.Genre,
		ReadingLevel:  manifest.ReadingLevel,
		Status:        string(constants.JobStatusCompleted),
		TotalChapters: len(chunks),
	}
	for _, chunk := range chunks {
		story.Chapters = append(story.Chapters, entity.StoryChapter{
			ChapterNumber: chunk.ChunkID,
			Title:         chunk.ChapterTitle,
			Content:       chunk.Content,
		})
		story.Content = append(story.Content, chunk.Content)
	}

	if err := s.Store.UploadJSON(ctx, constants.FinalBlobPath(jobID), story); err != nil {
		return nil, fmt.Errorf("upload final story: %w", err)
	}

	// jobs submitted without credentials have no library to land in; the
	// story stays reachable through the status endpoint
	var book *ent.Book
	if job.UserID != nil {
		book, err = s.BooksRepo.CreateFromStory(ctx, &repository.CreateBookRequest{
			UserID:        *job.UserID,
			JobID:         jobID,
			Title:         title,
			LanguageCode:  job.LanguageCode,
			Level:         job.Level,
			Genre:         job.Genre,
			Content:       story.Content,
			TotalChapters: len(chunks),
		})
		if err != nil {
			return nil, fmt.Errorf("save book: %w", err)
		}
	}

	if err := s.JobsRepo.MarkCompleted(ctx, jobID); err != nil {
		return book, err
	}
	return book, nil
}
