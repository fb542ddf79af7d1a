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

type OutlineStage struct {
	JobsRepo  repository.GenerationJobRepository
	Store     blob.Store
	Generator llm.StoryGenerator
	Logger    *slog.Logger
}

func NewOutlineStage(jobs repository.GenerationJobRepository, store blob.Store, gen llm.StoryGenerator, logger *slog.Logger) *OutlineStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutlineStage{JobsRepo: jobs, Store: store, Generator: gen, Logger: logger}
}

// Run plans the story for a claimed job and uploads the manifest.
// Returns the manifest so the chunk stage can run without refetching.
func (s *OutlineStage) Run(ctx context.Context, jobID string) (entity.Manifest, error) {
	job, err := s.JobsRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return entity.Manifest{}, fmt.Errorf("load job: %w", err)
	}

	outline, err := s.Generator.GenerateOutline(ctx, llm.StoryRequest{
		JobID:    job.JobID,
		Language: job.LanguageCode,
		Level:    job.Level,
		Genre:    job.Genre,
		Prompt:   job.Prompt,
	})
	if err != nil {
		return entity.Manifest{}, fmt.Errorf("generate outline: %w", err)
	}
	if len(outline.Chapters) != job.ChunksTotal {
		return entity.Manifest{}, fmt.Errorf("outline has %d chapters, want %d", len(outline.Chapters), job.ChunksTotal)
	}

	manifest := entity.Manifest{
		StoryID:      job.JobID,
		UserPrompt:   job.Prompt,
		Genre:        job.Genre,
		ReadingLevel: job.Level,
		Language:     job.LanguageCode,
		Title:        outline.Title,
		Chapters:     make([]entity.ChapterOutline, 0, len(outline.Chapters)),
		Status:       string(constants.JobStatusPending),
	}
	for _, ch := range outline.Chapters {
		manifest.Chapters = append(manifest.Chapters, entity.ChapterOutline{Title: ch.Title, Summary: ch.Summary})
	}

	if err := s.Store.UploadJSON(ctx, constants.ManifestBlobPath(job.JobID), manifest); err != nil {
		return entity.Manifest{}, fmt.Errorf("upload manifest: %w", err)
	}
	return manifest, nil
}
