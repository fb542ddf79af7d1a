package processor

import (
	"context"
	"log/slog"

	"github.com/storylingo/storylingo/internal/repository"
)

// Processor coordinates outline, chunk, and assembly for one claimed job.
// Any stage error marks the job failed with the stage's message.
type Processor struct {
	Logger   *slog.Logger
	Jobs     repository.GenerationJobRepository
	Outline  *OutlineStage
	Chunks   *ChunkStage
	Assemble *AssembleStage
}

func NewProcessor(logger *slog.Logger, jobs repository.GenerationJobRepository, outline *OutlineStage, chunks *ChunkStage, assemble *AssembleStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Jobs: jobs, Outline: outline, Chunks: chunks, Assemble: assemble}
}

// Run drives a claimed job to a terminal status. Satisfies async.Runner.
func (p *Processor) Run(ctx context.Context, jobID string) error {
	manifest, err := p.Outline.Run(ctx, jobID)
	if err != nil {
		p.Logger.Error("processor.outline.failed", "job_id", jobID, "err", err)
		p.markFailed(ctx, jobID, err)
		return err
	}
	p.Logger.Info("processor.outline.ok", "job_id", jobID, "title", manifest.Title, "chapters", len(manifest.Chapters))

	if err := p.Chunks.Run(ctx, manifest); err != nil {
		p.Logger.Error("processor.chunks.failed", "job_id", jobID, "err", err)
		p.markFailed(ctx, jobID, err)
		return err
	}
	p.Logger.Info("processor.chunks.ok", "job_id", jobID)

	book, err := p.Assemble.Run(ctx, jobID)
	if err != nil {
		p.Logger.Error("processor.assemble.failed", "job_id", jobID, "err", err)
		p.markFailed(ctx, jobID, err)
		return err
	}
	if book != nil {
		p.Logger.Info("processor.assemble.ok", "job_id", jobID, "book_id", book.ID)
	} else {
		p.Logger.Info("processor.assemble.ok", "job_id", jobID, "book_id", "none")
	}
	return nil
}

// markFailed records the terminal failure; a second error here only gets logged.
func (p *Processor) markFailed(ctx context.Context, jobID string, cause error) {
	if err := p.Jobs.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		p.Logger.Error("processor.mark_failed.error", "job_id", jobID, "err", err)
	}
}
