package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/storylingo/storylingo/constants"
	"github.com/storylingo/storylingo/gen/ent"
	"github.com/storylingo/storylingo/gen/ent/generationjob"
)

// CreateJobRequest wraps parameters for enqueueing a generation job.
// UserID nil means the job was submitted without credentials; its story
// is reachable by job_id only and never joins a library.
type CreateJobRequest struct {
	JobID        string
	UserID       *uuid.UUID
	LanguageCode string
	Level        string
	Genre        string
	Prompt       string
}

type GenerationJobRepository interface {
	Create(ctx context.Context, request *CreateJobRequest) (*ent.GenerationJob, error)
	GetByJobID(ctx context.Context, jobID string) (*ent.GenerationJob, error)
	// ClaimPending atomically flips up to limit pending jobs to processing
	// and returns the claimed rows, oldest first. Safe to run from several
	// workers at once; a job is only ever claimed by one of them.
	ClaimPending(ctx context.Context, limit int) ([]*ent.GenerationJob, error)
	// MarkChunkDone bumps chunks_done by one while the job is processing.
	MarkChunkDone(ctx context.Context, jobID string) error
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID, message string) error
}

type generationJobRepo struct {
	ent *ent.Client
	log *slog.Logger
}

func NewGenerationJobRepository(entc *ent.Client, log *slog.Logger) GenerationJobRepository {
	return &generationJobRepo{ent: entc, log: log}
}

func (r *generationJobRepo) Create(ctx context.Context, request *CreateJobRequest) (*ent.GenerationJob, error) {
	job, err := r.ent.GenerationJob.
		Create().
		SetJobID(request.JobID).
		SetNillableUserID(request.UserID).
		SetLanguageCode(request.LanguageCode).
		SetLevel(request.Level).
		SetGenre(request.Genre).
		SetPrompt(request.Prompt).
		Save(ctx)
	if err != nil {
		r.log.Error("generation_job create failed", "job_id", request.JobID, "err", err)
		return nil, err
	}
	r.log.Info("generation_job created", "job_id", job.JobID, "user_id", job.UserID, "language", job.LanguageCode, "level", job.Level)
	return job, nil
}

func (r *generationJobRepo) GetByJobID(ctx context.Context, jobID string) (*ent.GenerationJob, error) {
	return r.ent.GenerationJob.
		Query().
		Where(generationjob.JobID(jobID)).
		Only(ctx)
}

func (r *generationJobRepo) ClaimPending(ctx context.Context, limit int) ([]*ent.GenerationJob, error) {
	candidates, err := r.ent.GenerationJob.
		Query().
		Where(generationjob.StatusEQ(string(constants.JobStatusPending))).
		Order(generationjob.ByCreatedAt()).
		Limit(limit).
		All(ctx)
	if err != nil {
		r.log.Error("generation_job claim query failed", "err", err)
		return nil, err
	}

	claimed := make([]*ent.GenerationJob, 0, len(candidates))
	for _, job := range candidates {
		// compare-and-swap on status so concurrent claimers never share a job
		n, err := r.ent.GenerationJob.
			Update().
			Where(
				generationjob.JobID(job.JobID),
				generationjob.StatusEQ(string(constants.JobStatusPending)),
			).
			SetStatus(string(constants.JobStatusProcessing)).
			SetStartedAt(time.Now()).
			Save(ctx)
		if err != nil {
			r.log.Error("generation_job claim failed", "job_id", job.JobID, "err", err)
			return claimed, err
		}
		if n == 0 {
			continue
		}
		job, err := r.GetByJobID(ctx, job.JobID)
		if err != nil {
			return claimed, err
		}
		r.log.Info("generation_job claimed", "job_id", job.JobID)
		claimed = append(claimed, job)
	}
	return claimed, nil
}

func (r *generationJobRepo) MarkChunkDone(ctx context.Context, jobID string) error {
	n, err := r.ent.GenerationJob.
		Update().
		Where(
			generationjob.JobID(jobID),
			generationjob.StatusEQ(string(constants.JobStatusProcessing)),
		).
		AddChunksDone(1).
		Save(ctx)
	if err != nil {
		r.log.Error("generation_job chunk bump failed", "job_id", jobID, "err", err)
		return err
	}
	if n == 0 {
		r.log.Warn("generation_job chunk bump skipped, job not processing", "job_id", jobID)
	}
	return nil
}

func (r *generationJobRepo) MarkCompleted(ctx context.Context, jobID string) error {
	n, err := r.ent.GenerationJob.
		Update().
		Where(
			generationjob.JobID(jobID),
			generationjob.StatusEQ(string(constants.JobStatusProcessing)),
		).
		SetStatus(string(constants.JobStatusCompleted)).
		SetFinishedAt(time.Now()).
		Save(ctx)
	if err != nil {
		r.log.Error("generation_job finish(completed) failed", "job_id", jobID, "err", err)
		return err
	}
	if n == 0 {
		r.log.Warn("generation_job already terminal", "job_id", jobID)
		return nil
	}
	r.log.Info("generation_job finished", "job_id", jobID, "status", constants.JobStatusCompleted)
	return nil
}

func (r *generationJobRepo) MarkFailed(ctx context.Context, jobID, message string) error {
	n, err := r.ent.GenerationJob.
		Update().
		Where(
			generationjob.JobID(jobID),
			generationjob.StatusIn(
				string(constants.JobStatusPending),
				string(constants.JobStatusProcessing),
			),
		).
		SetStatus(string(constants.JobStatusFailed)).
		SetErrorMessage(message).
		SetFinishedAt(time.Now()).
		Save(ctx)
	if err != nil {
		r.log.Error("generation_job finish(failed) failed", "job_id", jobID, "err", err)
		return err
	}
	if n == 0 {
		r.log.Warn("generation_job already terminal", "job_id", jobID)
		return nil
	}
	r.log.Warn("generation_job finished", "job_id", jobID, "status", constants.JobStatusFailed, "error", message)
	return nil
}
