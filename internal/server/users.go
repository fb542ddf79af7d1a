package server

import (
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/storylingo/storylingo/gen/ent"
	"github.com/storylingo/storylingo/internal/common"
	"github.com/storylingo/storylingo/internal/repository"
)

// UserHandlers serves userd's profile and stats endpoints. Everything here
// operates on the caller resolved by the auth middleware.
type UserHandlers struct {
	users    repository.UserRepository
	resolver IdentityResolver
	logger   *slog.Logger
}

func NewUserHandlers(users repository.UserRepository, resolver IdentityResolver, logger *slog.Logger) *UserHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandlers{
		users:    users,
		resolver: resolver,
		logger:   logger,
	}
}

func (h *UserHandlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.health)
	mux.HandleFunc("GET /api/users/me", RequireAuth(h.resolver, h.logger, h.me))
	mux.HandleFunc("PUT /api/users/me", RequireAuth(h.resolver, h.logger, h.update))
	mux.HandleFunc("DELETE /api/users/me", RequireAuth(h.resolver, h.logger, h.deleteAccount))
	mux.HandleFunc("GET /api/users/me/stats", RequireAuth(h.resolver, h.logger, h.stats))
	return mux
}

func (h *UserHandlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "user-service",
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// profileResponse is the profile wire shape; unlike authd's it omits the
// provider uid, which clients have no use for past login.
type profileResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

func newProfileResponse(u *ent.User) profileResponse {
	return profileResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *UserHandlers) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if ent.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to fetch user profile", "user_id", userID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to fetch user profile")
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(u))
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
}

func (h *UserHandlers) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DisplayName == nil {
		writeDetail(w, http.StatusBadRequest, "No fields to update")
		return
	}
	trimmed := strings.TrimSpace(*req.DisplayName)

	u, err := h.users.UpdateDisplayName(r.Context(), userID, &trimmed)
	if err != nil {
		if ent.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to update user profile", "user_id", userID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to update user profile")
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(u))
}

func (h *UserHandlers) deleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	if err := h.users.DeleteAccount(r.Context(), userID); err != nil {
		h.logger.Error("failed to delete account", "user_id", userID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

func (h *UserHandlers) stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	stats, err := h.users.Stats(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to fetch user stats", "user_id", userID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to fetch user stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
