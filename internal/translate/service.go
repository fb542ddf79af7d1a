package translate

import (
	"context"
	"log/slog"

	"github.com/storylingo/storylingo/constants"
	"github.com/storylingo/storylingo/internal/entity"
)

// Translator is the upstream dictionary lookup.
type Translator interface {
	Translate(ctx context.Context, query, src, dst string) (*entity.TranslationResult, error)
}

// Service answers lookups from the cache first and falls back to the
// upstream dictionary. Language inputs are canonicalized, so "Spanish"
// and "es" share cache entries.
type Service struct {
	upstream Translator
	cache    Cache
	logger   *slog.Logger
}

func NewService(upstream Translator, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		upstream: upstream,
		cache:    cache,
		logger:   logger,
	}
}

func (s *Service) Translate(ctx context.Context, query, src, dst string) (*entity.TranslationResult, error) {
	srcCode, _ := constants.CanonicalizeLanguage(src)
	dstCode, _ := constants.CanonicalizeLanguage(dst)
	src, dst = string(srcCode), string(dstCode)
	key := CacheKey(src, dst, query)

	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug("translate.cache.hit", "key", key)
		return cached, nil
	}

	result, err := s.upstream.Translate(ctx, query, src, dst)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, result)
	return result, nil
}

// CacheLen reports the number of live cache entries (health endpoint).
func (s *Service) CacheLen() int {
	return s.cache.Len()
}
