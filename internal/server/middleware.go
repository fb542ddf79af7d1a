package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/storylingo/storylingo/gen/proto/auth/v1"
	"github.com/storylingo/storylingo/internal/authn"
	"github.com/storylingo/storylingo/internal/common"
)

// Identity is the authenticated caller as seen by request handlers.
// UserID is zero when the token was verified without touching the user
// store, which is how authd's own endpoints operate.
type Identity struct {
	UserID        uuid.UUID
	FirebaseUID   string
	Email         string
	EmailVerified bool
	DisplayName   string
}

// IdentityResolver turns a raw ID token into the caller's identity.
// Rejected tokens yield an error wrapping common.ErrUnauthorized; an
// unreachable verifier wraps common.ErrUnavailable.
type IdentityResolver interface {
	Resolve(ctx context.Context, idToken string) (*Identity, error)
}

// LocalResolver verifies tokens in-process against the identity provider.
// authd uses it; the sibling services resolve through authd instead so
// the user row is synced exactly once.
type LocalResolver struct {
	Verifier authn.TokenVerifier
}

func (r *LocalResolver) Resolve(ctx context.Context, idToken string) (*Identity, error) {
	token, err := r.Verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return &Identity{
		FirebaseUID:   token.UID,
		Email:         token.Email,
		EmailVerified: token.EmailVerified,
		DisplayName:   token.Name,
	}, nil
}

// GRPCResolver resolves identity through authd's VerifyToken endpoint,
// which verifies the token, syncs the user row, and returns its id.
type GRPCResolver struct {
	client v1.AuthServiceClient
	logger *slog.Logger
}

func NewGRPCResolver(client v1.AuthServiceClient, logger *slog.Logger) *GRPCResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCResolver{client: client, logger: logger}
}

func (r *GRPCResolver) Resolve(ctx context.Context, idToken string) (*Identity, error) {
	resp, err := r.client.VerifyToken(ctx, &v1.VerifyTokenRequest{IdToken: idToken})
	if err != nil {
		switch status.Code(err) {
		case codes.Unauthenticated, codes.InvalidArgument:
			return nil, common.NewAppError("INVALID_TOKEN", "invalid or expired token", common.ErrUnauthorized)
		default:
			r.logger.Error("auth service verify call failed", "error", err)
			return nil, common.NewAppError("AUTH_UNAVAILABLE", "authentication service unavailable", common.ErrUnavailable)
		}
	}

	user := resp.GetUser()
	userID, err := uuid.Parse(user.GetId())
	if err != nil {
		r.logger.Error("auth service returned a malformed user id", "user_id", user.GetId(), "error", err)
		return nil, common.NewAppError("AUTH_UNAVAILABLE", "authentication service unavailable", common.ErrUnavailable)
	}
	return &Identity{
		UserID:        userID,
		FirebaseUID:   user.GetFirebaseUid(),
		Email:         user.GetEmail(),
		EmailVerified: resp.GetEmailVerified(),
		DisplayName:   user.GetDisplayName(),
	}, nil
}

type identityCtxKey struct{}

func withIdentity(ctx context.Context, id *Identity) context.Context {
	ctx = context.WithValue(ctx, identityCtxKey{}, id)
	if id.UserID != uuid.Nil {
		ctx = common.WithUserID(ctx, id.UserID)
	}
	return ctx
}

// IdentityFromContext returns the identity stored by RequireAuth.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(*Identity)
	return id, ok
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved identity on the request context for the wrapped handler.
func RequireAuth(resolver IdentityResolver, logger *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeDetail(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		identity, err := resolver.Resolve(r.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, common.ErrUnavailable) {
				logger.Error("token resolution unavailable", "error", err)
				writeDetail(w, http.StatusServiceUnavailable, "Authentication service unavailable")
				return
			}
			logger.Debug("token rejected", "error", err)
			writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next(w, r.WithContext(withIdentity(r.Context(), identity)))
	}
}

// OptionalAuth behaves like RequireAuth when an Authorization header is
// present and passes the request through anonymously when it is absent.
// Story generation accepts both kinds of caller.
func OptionalAuth(resolver IdentityResolver, logger *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	authed := RequireAuth(resolver, logger, next)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next(w, r)
			return
		}
		authed(w, r)
	}
}

// WithCORS answers preflight requests and tags responses so the browser
// clients can call the API from any origin.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// WithRequestLog assigns each request a short id, threads it through the
// context, and logs one line when the request finishes.
func WithRequestLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()[:8]
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(common.WithRequestID(r.Context(), requestID)))

		logger.Info("request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed_ms", time.Since(start).Milliseconds())
	})
}
