package server

import (
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/storylingo/storylingo/gen/ent"
	"github.com/storylingo/storylingo/internal/authn"
	"github.com/storylingo/storylingo/internal/entity"
	"github.com/storylingo/storylingo/internal/repository"
	"github.com/storylingo/storylingo/internal/utils"
)

// deprecatedAuthDetail answers the password endpoints that predate the
// provider-side login flow.
const deprecatedAuthDetail = "This endpoint is deprecated. Use Firebase Authentication SDK on the client side, then call /api/auth/verify with the ID token."

// AuthHandlers serves authd's HTTP surface: token verification plus the
// sync between provider identities and user rows.
type AuthHandlers struct {
	verifier authn.TokenVerifier
	lookup   authn.UserLookup
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewAuthHandlers(verifier authn.TokenVerifier, lookup authn.UserLookup, users repository.UserRepository, logger *slog.Logger) *AuthHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandlers{
		verifier: verifier,
		lookup:   lookup,
		users:    users,
		logger:   logger,
	}
}

func (h *AuthHandlers) Routes() *http.ServeMux {
	resolver := &LocalResolver{Verifier: h.verifier}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.health)
	mux.HandleFunc("POST /api/auth/verify", h.verifyAndSync)
	mux.HandleFunc("GET /api/auth/me", RequireAuth(resolver, h.logger, h.me))
	mux.HandleFunc("POST /api/auth/token/verify", RequireAuth(resolver, h.logger, h.tokenVerify))
	mux.HandleFunc("GET /api/auth/firebase-user/{uid}", RequireAuth(resolver, h.logger, h.firebaseUser))
	mux.HandleFunc("POST /api/auth/login", h.gone)
	mux.HandleFunc("POST /api/auth/signup", h.gone)
	return mux
}

func (h *AuthHandlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":       "auth-service (Firebase)",
		"status":        "healthy",
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"auth_provider": "Firebase Authentication",
	})
}

type verifyRequest struct {
	IDToken     string  `json:"id_token"`
	DisplayName *string `json:"display_name,omitempty"`
}

type verifyResponse struct {
	User    *entity.UserProfile `json:"user"`
	Message string              `json:"message"`
}

func (h *AuthHandlers) verifyAndSync(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		writeDetail(w, http.StatusBadRequest, "id_token is required")
		return
	}

	token, err := h.verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		h.logger.Debug("token rejected during sync", "error", err)
		writeAppError(w, err)
		return
	}
	if token.Email == "" {
		writeDetail(w, http.StatusBadRequest, "Email not found in Firebase token")
		return
	}

	// caller's choice wins, then the token's name claim, then the mailbox
	displayName := token.Name
	if req.DisplayName != nil && strings.TrimSpace(*req.DisplayName) != "" {
		displayName = strings.TrimSpace(*req.DisplayName)
	}
	if displayName == "" {
		displayName = emailLocalPart(token.Email)
	}

	u, err := h.users.GetOrCreate(r.Context(), token.UID, token.Email, &displayName)
	if err != nil {
		h.logger.Error("failed to sync user", "firebase_uid", token.UID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to verify user")
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{
		User:    utils.ToUserProfile(u),
		Message: "User verified and synchronized",
	})
}

func (h *AuthHandlers) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	u, err := h.users.GetByFirebaseUID(r.Context(), identity.FirebaseUID)
	if err != nil {
		if ent.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "User not found in database. Please call /api/auth/verify first.")
			return
		}
		h.logger.Error("failed to fetch user", "firebase_uid", identity.FirebaseUID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, utils.ToUserProfile(u))
}

type tokenUser struct {
	ID            *uuid.UUID `json:"id,omitempty"`
	FirebaseUID   string     `json:"firebase_uid"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"email_verified"`
}

type tokenVerifyResponse struct {
	Valid bool      `json:"valid"`
	User  tokenUser `json:"user"`
}

// tokenVerify reports the token's claims without forcing a user row into
// existence; the id is attached only when the caller has synced before.
func (h *AuthHandlers) tokenVerify(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	resp := tokenVerifyResponse{
		Valid: true,
		User: tokenUser{
			FirebaseUID:   identity.FirebaseUID,
			Email:         identity.Email,
			EmailVerified: identity.EmailVerified,
		},
	}
	if u, err := h.users.GetByFirebaseUID(r.Context(), identity.FirebaseUID); err == nil {
		resp.User.ID = &u.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandlers) firebaseUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	uid := r.PathValue("uid")
	if identity.FirebaseUID != uid {
		writeDetail(w, http.StatusForbidden, "Cannot access other user's information")
		return
	}

	record, err := h.lookup.LookupUser(r.Context(), uid)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *AuthHandlers) gone(w http.ResponseWriter, _ *http.Request) {
	writeDetail(w, http.StatusGone, deprecatedAuthDetail)
}
