package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/storylingo/storylingo/internal/common"
	"github.com/storylingo/storylingo/internal/entity"
)

const (
	// caps applied while flattening the dictionary response
	maxTranslations           = 5
	maxExamplesPerTranslation = 2
	maxExamples               = 3

	maxResponseBytes = 1 << 20
)

// FallbackTranslation is the placeholder returned when the dictionary
// has nothing for the query.
func FallbackTranslation(query string) string {
	return fmt.Sprintf("[Translation not found for '%s']", query)
}

// UpstreamError carries a non-200 dictionary response so the HTTP layer
// can propagate the same status to the caller.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("linguee status %d: %s", e.StatusCode, e.Body)
}

// LingueeClient queries a linguee-api deployment for word translations.
type LingueeClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewLingueeClient(baseURL string, timeout time.Duration, logger *slog.Logger) *LingueeClient {
	return &LingueeClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type lingueeExample struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

type lingueeTranslation struct {
	Text     string           `json:"text"`
	Examples []lingueeExample `json:"examples"`
}

type lingueeLemma struct {
	Text         string               `json:"text"`
	Translations []lingueeTranslation `json:"translations"`
}

func (c *LingueeClient) Translate(ctx context.Context, query, src, dst string) (*entity.TranslationResult, error) {
	start := time.Now()
	params := url.Values{}
	params.Set("query", query)
	params.Set("src", src)
	params.Set("dst", dst)
	params.Set("guess_direction", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("translate.upstream.unreachable", "query", query, "error", err)
		return nil, common.NewAppError("TRANSLATION_UPSTREAM", "translation service unreachable", common.ErrUnavailable)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("linguee response body close error", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading linguee response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("translate.upstream.error",
			"query", query, "status", resp.StatusCode,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var lemmas []lingueeLemma
	if err := json.Unmarshal(body, &lemmas); err != nil {
		return nil, fmt.Errorf("decode linguee response: %w", err)
	}

	result := flattenLemmas(query, src, dst, lemmas)
	c.logger.Info("translate.lookup.ok",
		"query", query, "src", src, "dst", dst,
		"translations", len(result.Translations),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// flattenLemmas collapses the dictionary's lemma tree into the wire
// shape: at most 5 translations, 2 examples per translation, 3 overall.
func flattenLemmas(query, src, dst string, lemmas []lingueeLemma) *entity.TranslationResult {
	result := &entity.TranslationResult{
		Word:         query,
		Translations: []string{},
		SourceLang:   src,
		TargetLang:   dst,
	}
	for _, lemma := range lemmas {
		for _, tr := range lemma.Translations {
			if len(result.Translations) >= maxTranslations {
				break
			}
			if tr.Text == "" {
				continue
			}
			result.Translations = append(result.Translations, tr.Text)
			for i, ex := range tr.Examples {
				if i >= maxExamplesPerTranslation || len(result.Examples) >= maxExamples {
					break
				}
				result.Examples = append(result.Examples, entity.TranslationExample{
					Source: ex.Src,
					Target: ex.Dst,
				})
			}
		}
	}
	if len(result.Translations) == 0 {
		result.Translations = []string{FallbackTranslation(query)}
	}
	return result
}
