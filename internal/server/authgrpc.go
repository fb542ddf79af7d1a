package server

import (
	"context"
	"strings"

	"log/slog"

	v1 "github.com/storylingo/storylingo/gen/proto/auth/v1"
	"github.com/storylingo/storylingo/internal/authn"
	"github.com/storylingo/storylingo/internal/common"
	"github.com/storylingo/storylingo/internal/repository"
	"github.com/storylingo/storylingo/internal/utils"
)

// AuthService is authd's gRPC surface. The sibling services call it for
// every bearer token they see, so verification and the user-row sync live
// in one place.
type AuthService struct {
	v1.UnimplementedAuthServiceServer
	verifier authn.TokenVerifier
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewAuthService(verifier authn.TokenVerifier, users repository.UserRepository, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		verifier: verifier,
		users:    users,
		logger:   logger,
	}
}

// VerifyToken implements v1.AuthServiceServer
func (s *AuthService) VerifyToken(ctx context.Context, req *v1.VerifyTokenRequest) (*v1.VerifyTokenResponse, error) {
	idToken := strings.TrimSpace(req.GetIdToken())
	if idToken == "" {
		s.logger.Error("verify request missing id_token")
		return nil, common.InvalidArgumentError("id_token is required")
	}

	token, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.logger.Debug("token verification failed", "error", err)
		return nil, common.UnauthenticatedError("invalid or expired token")
	}
	if token.Email == "" {
		s.logger.Error("verified token carries no email", "firebase_uid", token.UID)
		return nil, common.InvalidArgumentError("email not found in token")
	}

	displayName := token.Name
	if displayName == "" {
		displayName = emailLocalPart(token.Email)
	}
	u, err := s.users.GetOrCreate(ctx, token.UID, token.Email, &displayName)
	if err != nil {
		s.logger.Error("failed to sync user", "firebase_uid", token.UID, "error", err)
		return nil, common.InternalError("failed to sync user")
	}

	return &v1.VerifyTokenResponse{
		Valid:         true,
		User:          utils.ToPBUser(u),
		EmailVerified: token.EmailVerified,
	}, nil
}
