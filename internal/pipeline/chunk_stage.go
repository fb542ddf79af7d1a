package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/storylingo/storylingo/constants"
	"github.com/storylingo/storylingo/internal/blob"
	"github.com/storylingo/storylingo/internal/entity"
	"github.com/storylingo/storylingo/internal/llm"
	"github.com/storylingo/storylingo/internal/repository"
)

type ChunkStage struct {
	JobsRepo  repository.GenerationJobRepository
	Store     blob.Store
	Generator llm.StoryGenerator
	Logger    *slog.Logger
}

func NewChunkStage(jobs repository.GenerationJobRepository, store blob.Store, gen llm.StoryGenerator, logger *slog.Logger) *ChunkStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChunkStage{JobsRepo: jobs, Store: store, Generator: gen, Logger: logger}
}

// Run writes chapters 1..len(manifest.Chapters) in order, bumping the
// job's progress counter after each uploaded chunk. Chapters are written
// sequentially so each failure leaves a clean resume point.
func (s *ChunkStage) Run(ctx context.Context, manifest entity.Manifest) error {
	story := llm.StoryRequest{
		JobID:    manifest.StoryID,
		Language: manifest.Language,
		Level:    manifest.ReadingLevel,
		Genre:    manifest.Genre,
		Prompt:   manifest.UserPrompt,
	}

	for i, outline := range manifest.Chapters {
		n := i + 1
		content, err := s.Generator.GenerateChapter(ctx, llm.ChapterRequest{
			Story:      story,
			StoryTitle: manifest.Title,
			Number:     n,
			Outline:    llm.ChapterOutline{Title: outline.Title, Summary: outline.Summary},
		})
		if err != nil {
			return fmt.Errorf("generate chapter %d: %w", n, err)
		}

		chunk := entity.Chunk{
			StoryID:      manifest.StoryID,
			ChunkID:      n,
			ChapterTitle: outline.Title,
			Content:      content,
			Status:       string(constants.JobStatusCompleted),
		}
		if err := s.Store.UploadJSON(ctx, constants.ChunkBlobPath(manifest.StoryID, n), chunk); err != nil {
			return fmt.Errorf("upload chunk %d: %w", n, err)
		}
		if err := s.JobsRepo.MarkChunkDone(ctx, manifest.StoryID); err != nil {
			return fmt.Errorf("record chunk %d: %w", n, err)
		}
		s.Logger.Info("chunk generated", "job_id", manifest.StoryID, "chunk", n, "bytes", len(content))
	}
	return nil
}
