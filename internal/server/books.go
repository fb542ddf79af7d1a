package server

import (
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/storylingo/storylingo/constants"
	"github.com/storylingo/storylingo/gen/ent"
	"github.com/storylingo/storylingo/internal/blob"
	"github.com/storylingo/storylingo/internal/common"
	"github.com/storylingo/storylingo/internal/entity"
	"github.com/storylingo/storylingo/internal/repository"
)

// BookHandlers serves bookd's generation and library endpoints. Generation
// accepts anonymous callers; the library is always scoped to an account.
type BookHandlers struct {
	jobs     repository.GenerationJobRepository
	books    repository.BookRepository
	store    blob.Store
	resolver IdentityResolver
	logger   *slog.Logger
}

func NewBookHandlers(jobs repository.GenerationJobRepository, books repository.BookRepository, store blob.Store, resolver IdentityResolver, logger *slog.Logger) *BookHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookHandlers{
		jobs:     jobs,
		books:    books,
		store:    store,
		resolver: resolver,
		logger:   logger,
	}
}

func (h *BookHandlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.health)
	mux.HandleFunc("POST /api/books/generate", OptionalAuth(h.resolver, h.logger, h.generate))
	mux.HandleFunc("GET /api/books/{job_id}/status", h.status)
	mux.HandleFunc("GET /api/books", RequireAuth(h.resolver, h.logger, h.library))
	mux.HandleFunc("GET /api/books/{book_id}", RequireAuth(h.resolver, h.logger, h.detail))
	mux.HandleFunc("POST /api/books/{book_id}/favorite", RequireAuth(h.resolver, h.logger, h.favorite))
	mux.HandleFunc("DELETE /api/books/{book_id}", RequireAuth(h.resolver, h.logger, h.remove))
	return mux
}

func (h *BookHandlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "book-service",
		"status":  "healthy",
	})
}

type generateRequest struct {
	Language string `json:"language"`
	Level    string `json:"level"`
	Genre    string `json:"genre"`
	Prompt   string `json:"prompt"`
}

type generateResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *BookHandlers) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v := common.NewValidator()
	v.Field("language", req.Language, common.Required)
	v.Field("level", req.Level, common.Required, common.OneOf(constants.CEFRLevels...))
	v.Field("genre", req.Genre, common.Required)
	v.Field("prompt", req.Prompt, common.Required)
	if err := v.Error(); err != nil {
		writeAppError(w, err)
		return
	}
	code, known := constants.CanonicalizeLanguage(req.Language)
	if !known {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("unsupported language %q", req.Language))
		return
	}

	// anonymous jobs are allowed; their stories never join a library
	var owner *uuid.UUID
	if identity, ok := IdentityFromContext(r.Context()); ok {
		owner = &identity.UserID
	}

	id := uuid.New()
	jobID := fmt.Sprintf("story_%x", id[:4])

	// upload the raw prompt first so the pipeline always finds it; the
	// artifact keeps the language as the caller typed it
	raw := &entity.RawPrompt{
		UserPrompt:   req.Prompt,
		Genre:        req.Genre,
		ReadingLevel: req.Level,
		Language:     req.Language,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.store.UploadJSON(r.Context(), constants.PromptBlobPath(jobID), raw); err != nil {
		h.logger.Error("failed to upload raw prompt", "job_id", jobID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to start story generation")
		return
	}

	if _, err := h.jobs.Create(r.Context(), &repository.CreateJobRequest{
		JobID:        jobID,
		UserID:       owner,
		LanguageCode: string(code),
		Level:        req.Level,
		Genre:        req.Genre,
		Prompt:       req.Prompt,
	}); err != nil {
		h.logger.Error("failed to create generation job", "job_id", jobID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to start story generation")
		return
	}

	writeJSON(w, http.StatusAccepted, generateResponse{
		JobID:   jobID,
		Status:  string(constants.JobStatusPending),
		Message: "Story generation started",
	})
}

type statusResponse struct {
	JobID           string             `json:"job_id"`
	Status          string             `json:"status"`
	Story           *entity.FinalStory `json:"story,omitempty"`
	ChunksCompleted *int               `json:"chunks_completed,omitempty"`
	Error           *string            `json:"error,omitempty"`
}

// status reports a job's progress straight from its row, so a job id that
// was never accepted is a 404 rather than a phantom "pending".
func (h *BookHandlers) status(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	job, err := h.jobs.GetByJobID(r.Context(), jobID)
	if err != nil {
		if ent.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "Story not found")
			return
		}
		h.logger.Error("failed to fetch job status", "job_id", jobID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to fetch story status")
		return
	}

	resp := statusResponse{JobID: jobID, Status: job.Status}
	switch constants.JobStatus(job.Status) {
	case constants.JobStatusCompleted:
		var story entity.FinalStory
		if err := h.store.DownloadJSON(r.Context(), constants.FinalBlobPath(jobID), &story); err != nil {
			h.logger.Error("final story missing for completed job", "job_id", jobID, "error", err)
			writeDetail(w, http.StatusInternalServerError, "Failed to load story")
			return
		}
		resp.Story = &story
	case constants.JobStatusFailed:
		if job.ErrorMessage != nil {
			resp.Error = job.ErrorMessage
		}
	default:
		chunks := job.ChunksDone
		resp.ChunksCompleted = &chunks
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookHandlers) library(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	books, err := h.books.ListLibrary(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list library", "user_id", userID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *BookHandlers) detail(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	bookID, err := uuid.Parse(r.PathValue("book_id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "book_id must be a UUID")
		return
	}

	detail, err := h.books.GetDetail(r.Context(), userID, bookID)
	if err != nil {
		if ent.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "Book not found")
			return
		}
		h.logger.Error("failed to fetch book", "book_id", bookID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to fetch book")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type favoriteRequest struct {
	IsFavorite bool `json:"is_favorite"`
}

type favoriteResponse struct {
	BookID     uuid.UUID `json:"book_id"`
	IsFavorite bool      `json:"is_favorite"`
}

func (h *BookHandlers) favorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	bookID, err := uuid.Parse(r.PathValue("book_id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "book_id must be a UUID")
		return
	}
	var req favoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.books.SetFavorite(r.Context(), userID, bookID, req.IsFavorite); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{BookID: bookID, IsFavorite: req.IsFavorite})
}

func (h *BookHandlers) remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	bookID, err := uuid.Parse(r.PathValue("book_id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "book_id must be a UUID")
		return
	}

	ownedJobID, err := h.books.Delete(r.Context(), userID, bookID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	// best effort: the library row is gone either way
	if ownedJobID != "" {
		if err := h.store.DeletePrefix(r.Context(), constants.StoryBlobPrefix(ownedJobID)); err != nil {
			h.logger.Error("failed to clear story artifacts", "job_id", ownedJobID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Book deleted successfully"})
}
