package repository

import (
	"context"
	"testing"
	"time"

	"github.com/storylingo/storylingo/constants"
)

// TestJobCreateAndGet verifies defaults on a fresh job row.
func TestJobCreateAndGet(t *testing.T) {
	client := newTestClient(t)
	repo := NewGenerationJobRepository(client, testLogger)
	ctx := context.Background()
	u := createTestUser(t, client)

	created, err := repo.Create(ctx, &CreateJobRequest{
		JobID: "story_0000beef", UserID: &u.ID, LanguageCode: "es",
		Level: "B1", Genre: "mystery", Prompt: "a detective in Sevilla",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != string(constants.JobStatusPending) {
		t.Errorf("new job status = %q, want pending", created.Status)
	}
	if created.ChunksTotal != constants.ChunksPerStory || created.ChunksDone != 0 {
		t.Errorf("chunk counters = %d/%d, want 0/%d",
			created.ChunksDone, created.ChunksTotal, constants.ChunksPerStory)
	}

	got, err := repo.GetByJobID(ctx, "story_0000beef")
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByJobID returned a different row")
	}
}

// TestClaimPending verifies oldest-first claiming and that a claimed
// job is gone from the pending pool.
func TestClaimPending(t *testing.T) {
	client := newTestClient(t)
	repo := NewGenerationJobRepository(client, testLogger)
	ctx := context.Background()
	u := createTestUser(t, client)

	for _, jobID := range []string{"story_00000001", "story_00000002", "story_00000003"} {
		if _, err := repo.Create(ctx, &CreateJobRequest{
			JobID: jobID, UserID: &u.ID, LanguageCode: "fr",
			Level: "A1", Genre: "fable", Prompt: "p",
		}); err != nil {
			t.Fatalf("seeding %s: %v", jobID, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	claimed, err := repo.ClaimPending(ctx, 2)
	if err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}
	if len(claimed) != 2 {
		t.Fatalf("claimed %d jobs, want 2", len(claimed))
	}
	if claimed[0].JobID != "story_00000001" || claimed[1].JobID != "story_00000002" {
		t.Errorf("claim order = %q, %q, want oldest first", claimed[0].JobID, claimed[1].JobID)
	}
	for _, job := range claimed {
		if job.Status != string(constants.JobStatusProcessing) {
			t.Errorf("claimed job %s status = %q, want processing", job.JobID, job.Status)
		}
		if job.StartedAt == nil {
			t.Errorf("claimed job %s has no started_at", job.JobID)
		}
	}

	rest, err := repo.ClaimPending(ctx, 10)
	if err != nil {
		t.Fatalf("ClaimPending rest: %v", err)
	}
	if len(rest) != 1 || rest[0].JobID != "story_00000003" {
		t.Errorf("second claim = %v, want just story_00000003", rest)
	}

	none, err := repo.ClaimPending(ctx, 10)
	if err != nil {
		t.Fatalf("ClaimPending empty: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("claimed %d jobs from an empty pool", len(none))
	}
}

// TestMarkChunkDone verifies the counter only moves for processing jobs.
func TestMarkChunkDone(t *testing.T) {
	client := newTestClient(t)
	repo := NewGenerationJobRepository(client, testLogger)
	ctx := context.Background()
	u := createTestUser(t, client)

	if _, err := repo.Create(ctx, &CreateJobRequest{
		JobID: "story_0000cafe", UserID: &u.ID, LanguageCode: "de",
		Level: "A2", Genre: "saga", Prompt: "p",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// still pending: the bump must not apply
	if err := repo.MarkChunkDone(ctx, "story_0000cafe"); err != nil {
		t.Fatalf("MarkChunkDone on pending: %v", err)
	}
	job, _ := repo.GetByJobID(ctx, "story_0000cafe")
	if job.ChunksDone != 0 {
		t.Errorf("chunks_done moved on a pending job: %d", job.ChunksDone)
	}

	if _, err := repo.ClaimPending(ctx, 1); err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := repo.MarkChunkDone(ctx, "story_0000cafe"); err != nil {
			t.Fatalf("MarkChunkDone %d: %v", i, err)
		}
	}
	job, _ = repo.GetByJobID(ctx, "story_0000cafe")
	if job.ChunksDone != 3 {
		t.Errorf("chunks_done = %d, want 3", job.ChunksDone)
	}
}

// TestTerminalStatusSticks verifies completed and failed never change,
// whichever comes second.
func TestTerminalStatusSticks(t *testing.T) {
	client := newTestClient(t)
	repo := NewGenerationJobRepository(client, testLogger)
	ctx := context.Background()
	u := createTestUser(t, client)

	if _, err := repo.Create(ctx, &CreateJobRequest{
		JobID: "story_0000dead", UserID: &u.ID, LanguageCode: "it",
		Level: "C1", Genre: "noir", Prompt: "p",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.ClaimPending(ctx, 1); err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}

	if err := repo.MarkCompleted(ctx, "story_0000dead"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if err := repo.MarkFailed(ctx, "story_0000dead", "too late"); err != nil {
		t.Fatalf("MarkFailed after completed: %v", err)
	}
	job, _ := repo.GetByJobID(ctx, "story_0000dead")
	if job.Status != string(constants.JobStatusCompleted) {
		t.Errorf("status = %q, completed must stick", job.Status)
	}
	if job.ErrorMessage != nil {
		t.Errorf("error_message set on a completed job: %q", *job.ErrorMessage)
	}
	if job.FinishedAt == nil {
		t.Error("finished_at not set")
	}
}

// TestMarkFailedFromPending verifies a job can fail before it is ever
// claimed, and the message is stored.
func TestMarkFailedFromPending(t *testing.T) {
	client := newTestClient(t)
	repo := NewGenerationJobRepository(client, testLogger)
	ctx := context.Background()
	u := createTestUser(t, client)

	if _, err := repo.Create(ctx, &CreateJobRequest{
		JobID: "story_0000f00d", UserID: &u.ID, LanguageCode: "pt",
		Level: "A1", Genre: "fable", Prompt: "p",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.MarkFailed(ctx, "story_0000f00d", "prompt upload failed"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	job, _ := repo.GetByJobID(ctx, "story_0000f00d")
	if job.Status != string(constants.JobStatusFailed) {
		t.Errorf("status = %q, want failed", job.Status)
	}
	if job.ErrorMessage == nil || *job.ErrorMessage != "prompt upload failed" {
		t.Errorf("error_message = %v, want the failure reason", job.ErrorMessage)
	}

	claimed, err := repo.ClaimPending(ctx, 10)
	if err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}
	if len(claimed) != 0 {
		t.Errorf("failed job was claimable: %v", claimed)
	}
}
