package authn

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/storylingo/storylingo/internal/common"
)

// FirebaseVerifier fronts the Firebase Admin SDK for token checks and
// user-record lookups.
type FirebaseVerifier struct {
	auth   *auth.Client
	logger *slog.Logger
}

// NewFirebaseVerifier builds a verifier backed by the Firebase Admin SDK.
// An empty credentialsFile falls back to application default credentials.
func NewFirebaseVerifier(ctx context.Context, credentialsFile string, logger *slog.Logger) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase auth client: %w", err)
	}
	logger.Info("firebase verifier ready", "credentials_file", credentialsFile != "")
	return &FirebaseVerifier{auth: client, logger: logger}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Token, error) {
	tok, err := v.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		v.logger.Warn("token verification failed", "error", err)
		return nil, common.NewAppError("INVALID_TOKEN", "invalid or expired token", common.ErrUnauthorized)
	}
	return &Token{
		UID:           tok.UID,
		Email:         claimString(tok, "email"),
		EmailVerified: claimBool(tok, "email_verified"),
		Name:          claimString(tok, "name"),
	}, nil
}

func (v *FirebaseVerifier) LookupUser(ctx context.Context, uid string) (*ProviderUser, error) {
	rec, err := v.auth.GetUser(ctx, uid)
	if err != nil {
		v.logger.Warn("firebase user lookup failed", "uid", uid, "error", err)
		return nil, common.NewAppError("USER_NOT_FOUND", "firebase user not found", common.ErrNotFound)
	}
	return &ProviderUser{
		UID:           rec.UID,
		Email:         rec.Email,
		EmailVerified: rec.EmailVerified,
		DisplayName:   rec.DisplayName,
		PhotoURL:      rec.PhotoURL,
		Disabled:      rec.Disabled,
	}, nil
}

func claimString(t *auth.Token, key string) string {
	if v, ok := t.Claims[key].(string); ok {
		return v
	}
	return ""
}

func claimBool(t *auth.Token, key string) bool {
	if v, ok := t.Claims[key].(bool); ok {
		return v
	}
	return false
}
