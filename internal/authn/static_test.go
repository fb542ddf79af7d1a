package authn

import (
	"context"
	"errors"
	"testing"

	"github.com/storylingo/storylingo/internal/common"
)

// TestStaticVerifier covers the known-token and unknown-token paths.
func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier()
	v.Add("good-token", Token{
		UID:           "uid-1",
		Email:         "reader@example.com",
		EmailVerified: true,
		Name:          "Reader",
	})

	got, err := v.Verify(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.UID != "uid-1" || got.Email != "reader@example.com" || !got.EmailVerified {
		t.Errorf("unexpected identity: %+v", got)
	}

	_, err = v.Verify(context.Background(), "bogus")
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for unknown token, got %v", err)
	}
}
