package authn

import (
	"context"
	"sync"

	"github.com/storylingo/storylingo/internal/common"
)

// StaticVerifier resolves tokens from a fixed table. It backs tests and
// local development where no Firebase project is wired up.
type StaticVerifier struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{tokens: make(map[string]Token)}
}

// Add registers idToken as resolving to the given identity.
func (s *StaticVerifier) Add(idToken string, identity Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[idToken] = identity
}

func (s *StaticVerifier) Verify(_ context.Context, idToken string) (*Token, error) {
	s.mu.RLock()
	identity, ok := s.tokens[idToken]
	s.mu.RUnlock()
	if !ok {
		return nil, common.NewAppError("INVALID_TOKEN", "invalid or expired token", common.ErrUnauthorized)
	}
	return &identity, nil
}

func (s *StaticVerifier) LookupUser(_ context.Context, uid string) (*ProviderUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, identity := range s.tokens {
		if identity.UID == uid {
			return &ProviderUser{
				UID:           identity.UID,
				Email:         identity.Email,
				EmailVerified: identity.EmailVerified,
				DisplayName:   identity.Name,
			}, nil
		}
	}
	return nil, common.NewAppError("USER_NOT_FOUND", "firebase user not found", common.ErrNotFound)
}
