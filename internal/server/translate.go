package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/storylingo/storylingo/internal/common"
	"github.com/storylingo/storylingo/internal/export"
	"github.com/storylingo/storylingo/internal/repository"
	"github.com/storylingo/storylingo/internal/translate"
	"github.com/storylingo/storylingo/internal/utils"
)

const (
	defaultWordLimit = 100
	maxWordLimit     = 500
)

// TranslateHandlers serves translated's dictionary lookups and the
// per-user vocabulary notebook built from them.
type TranslateHandlers struct {
	translator *translate.Service
	vocab      repository.VocabularyRepository
	exporter   *export.Service
	resolver   IdentityResolver
	logger     *slog.Logger
}

func NewTranslateHandlers(translator *translate.Service, vocab repository.VocabularyRepository, exporter *export.Service, resolver IdentityResolver, logger *slog.Logger) *TranslateHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranslateHandlers{
		translator: translator,
		vocab:      vocab,
		exporter:   exporter,
		resolver:   resolver,
		logger:     logger,
	}
}

func (h *TranslateHandlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.health)
	mux.HandleFunc("GET /api/translate", RequireAuth(h.resolver, h.logger, h.translateWord))
	mux.HandleFunc("POST /api/vocabulary", RequireAuth(h.resolver, h.logger, h.saveWord))
	mux.HandleFunc("GET /api/vocabulary", RequireAuth(h.resolver, h.logger, h.listWords))
	mux.HandleFunc("GET /api/vocabulary/stats", RequireAuth(h.resolver, h.logger, h.stats))
	mux.HandleFunc("GET /api/vocabulary/export", RequireAuth(h.resolver, h.logger, h.exportWords))
	mux.HandleFunc("DELETE /api/vocabulary/{id}", RequireAuth(h.resolver, h.logger, h.deleteWord))
	return mux
}

func (h *TranslateHandlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":    "translation-service",
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"cache_size": h.translator.CacheLen(),
	})
}

func (h *TranslateHandlers) translateWord(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("query"))
	src := strings.TrimSpace(q.Get("src"))
	dst := strings.TrimSpace(q.Get("dst"))
	if query == "" {
		writeDetail(w, http.StatusBadRequest, "query is required")
		return
	}
	if src == "" {
		writeDetail(w, http.StatusBadRequest, "src is required")
		return
	}
	if dst == "" {
		dst = "en"
	}

	result, err := h.translator.Translate(r.Context(), query, src, dst)
	if err != nil {
		// the upstream's own status goes through as-is; everything else is
		// the dictionary being unreachable
		var upstream *translate.UpstreamError
		if errors.As(err, &upstream) {
			writeDetail(w, upstream.StatusCode, "Translation API error: "+upstream.Body)
			return
		}
		if errors.Is(err, common.ErrUnavailable) {
			writeAppError(w, err)
			return
		}
		h.logger.Error("translation failed", "query", query, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Translation failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type saveWordRequest struct {
	Word         string    `json:"word"`
	Translation  string    `json:"translation"`
	LanguageCode string    `json:"language_code"`
	BookID       uuid.UUID `json:"book_id"`
}

func (h *TranslateHandlers) saveWord(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	var req saveWordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	v := common.NewValidator()
	v.Field("word", req.Word, common.Required)
	v.Field("translation", req.Translation, common.Required)
	v.Field("language_code", req.LanguageCode, common.Required)
	if err := v.Error(); err != nil {
		writeAppError(w, err)
		return
	}
	if req.BookID == uuid.Nil {
		writeDetail(w, http.StatusBadRequest, "book_id is required")
		return
	}

	word, err := h.vocab.SaveWord(r.Context(), &repository.SaveWordRequest{
		UserID:       userID,
		BookID:       req.BookID,
		LanguageCode: req.LanguageCode,
		Word:         req.Word,
		Translation:  req.Translation,
	})
	if err != nil {
		h.logger.Error("failed to save vocabulary word", "user_id", userID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to save vocabulary word")
		return
	}
	writeJSON(w, http.StatusCreated, utils.ToVocabularyWord(word))
}

// listWordsOptions parses the shared filter and paging params for the
// listing and export endpoints.
func listWordsOptions(r *http.Request) (repository.ListWordsOptions, error) {
	opts := repository.ListWordsOptions{Limit: defaultWordLimit}
	q := r.URL.Query()

	if raw := q.Get("book_id"); raw != "" {
		bookID, err := uuid.Parse(raw)
		if err != nil {
			return opts, errors.New("book_id must be a UUID")
		}
		opts.BookID = &bookID
	}
	opts.Language = strings.TrimSpace(q.Get("language"))
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return opts, errors.New("limit must be a positive integer")
		}
		if limit > maxWordLimit {
			return opts, errors.New("limit must be at most 500")
		}
		opts.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return opts, errors.New("offset must be a non-negative integer")
		}
		opts.Offset = offset
	}
	return opts, nil
}

func (h *TranslateHandlers) listWords(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	opts, err := listWordsOptions(r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	words, err := h.vocab.ListWords(r.Context(), userID, opts)
	if err != nil {
		h.logger.Error("failed to list vocabulary", "user_id", userID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to fetch vocabulary")
		return
	}
	writeJSON(w, http.StatusOK, words)
}

func (h *TranslateHandlers) deleteWord(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "id must be a UUID")
		return
	}

	if err := h.vocab.DeleteWord(r.Context(), userID, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Vocabulary word not found")
			return
		}
		h.logger.Error("failed to delete vocabulary word", "id", id, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to delete vocabulary word")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vocabulary word deleted successfully"})
}

func (h *TranslateHandlers) stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	stats, err := h.vocab.Stats(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to fetch vocabulary stats", "user_id", userID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to fetch vocabulary stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *TranslateHandlers) exportWords(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	opts, err := listWordsOptions(r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	// the spreadsheet is the whole notebook, not a page of it
	opts.Limit = 0
	opts.Offset = 0

	data, err := h.exporter.ExportVocabularyXLSX(r.Context(), userID, opts)
	if err != nil {
		h.logger.Error("failed to export vocabulary", "user_id", userID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to export vocabulary")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="vocabulary.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
