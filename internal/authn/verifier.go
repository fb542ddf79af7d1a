// Package authn verifies end-user identity tokens. The production
// implementation fronts Firebase; tests and local development use the
// static verifier.
package authn

import (
	"context"
)

// Token is a verified identity extracted from an ID token.
type Token struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
}

type TokenVerifier interface {
	// Verify checks the raw ID token and returns the identity it carries.
	// An invalid, expired or unparseable token yields an error wrapping
	// common.ErrUnauthorized.
	Verify(ctx context.Context, idToken string) (*Token, error)
}

// ProviderUser is the identity provider's user record, in the wire shape
// the firebase-user endpoint returns.
type ProviderUser struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	DisplayName   string `json:"display_name"`
	PhotoURL      string `json:"photo_url"`
	Disabled      bool   `json:"disabled"`
}

type UserLookup interface {
	// LookupUser fetches the provider's record for uid. An unknown uid
	// yields an error wrapping common.ErrNotFound.
	LookupUser(ctx context.Context, uid string) (*ProviderUser, error)
}
