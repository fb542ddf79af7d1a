package server

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/storylingo/storylingo/gen/ent"
	"github.com/storylingo/storylingo/internal/common"
	"github.com/storylingo/storylingo/internal/entity"
	"github.com/storylingo/storylingo/internal/export"
	"github.com/storylingo/storylingo/internal/repository"
	"github.com/storylingo/storylingo/internal/translate"
)

// fakeDictionary stands in for the Linguee client.
type fakeDictionary struct {
	calls int
	err   error
}

func (f *fakeDictionary) Translate(_ context.Context, query, src, dst string) (*entity.TranslationResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &entity.TranslationResult{
		Word:         query,
		Translations: []string{"house"},
		SourceLang:   src,
		TargetLang:   dst,
	}, nil
}

type translateHarness struct {
	handlers *TranslateHandlers
	client   *ent.Client
	upstream *fakeDictionary
	user     *ent.User
	book     *ent.Book
}

func newTranslateHarness(t *testing.T) *translateHarness {
	t.Helper()
	client := newTestClient(t)
	u := createTestUser(t, client)

	books := repository.NewBookRepository(client, testLogger)
	b, err := books.CreateFromStory(context.Background(), &repository.CreateBookRequest{
		UserID: u.ID, JobID: "story_7e570001", Title: "La Casa",
		LanguageCode: "es", Level: "A1", Genre: "fable",
		Content: []string{"uno"}, TotalChapters: 1,
	})
	if err != nil {
		t.Fatalf("seeding book: %v", err)
	}

	upstream := &fakeDictionary{}
	service := translate.NewService(upstream, translate.NewTTLCache(16, time.Minute), testLogger)
	vocab := repository.NewVocabularyRepository(client, testLogger)
	exporter := export.NewService(vocab, testLogger)
	resolver := resolverFor("tok", &Identity{UserID: u.ID, FirebaseUID: u.FirebaseUID, Email: u.Email})

	return &translateHarness{
		handlers: NewTranslateHandlers(service, vocab, exporter, resolver, testLogger),
		client:   client,
		upstream: upstream,
		user:     u,
		book:     b,
	}
}

func TestTranslateHealthReportsCacheSize(t *testing.T) {
	h := newTranslateHarness(t)

	doRequest(t, h.handlers.Routes(), http.MethodGet, "/api/translate?query=casa&src=es", "tok", nil)

	rec := doRequest(t, h.handlers.Routes(), http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["service"] != "translation-service" {
		t.Errorf("unexpected health payload: %v", body)
	}
	if size, ok := body["cache_size"].(float64); !ok || size != 1 {
		t.Errorf("expected cache_size 1, got %v", body["cache_size"])
	}
}

func TestTranslateWord(t *testing.T) {
	h := newTranslateHarness(t)

	rec := doRequest(t, h.handlers.Routes(), http.MethodGet, "/api/translate?query=Casa&src=Spanish", "tok", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var result entity.TranslationResult
	decodeBody(t, rec, &result)
	if result.Word != "Casa" || result.SourceLang != "es" || result.TargetLang != "en" {
		t.Errorf("unexpected result: %+v", result)
	}

	// the repeat comes from the cache
	doRequest(t, h.handlers.Routes(), http.MethodGet, "/api/translate?query=casa&src=es&dst=en", "tok", nil)
	if h.upstream.calls != 1 {
		t.Errorf("expected a single upstream call, got %d", h.upstream.calls)
	}
}

func TestTranslateParamValidation(t *testing.T) {
	h := newTranslateHarness(t)

	rec := doRequest(t, h.handlers.Routes(), http.MethodGet, "/api/translate?src=es", "tok", nil)
	wantDetail(t, rec, http.StatusBadRequest, "query is required")

	rec = doRequest(t, h.handlers.Routes(), http.MethodGet, "/api/translate?query=casa", "tok", nil)
	wantDetail(t, rec, http.StatusBadRequest, "src is required")
}

func TestTranslateUpstreamErrorPassesStatusThrough(t *testing.T) {
	h := newTranslateHarness(t)
	h.upstream.err = &translate.UpstreamError{StatusCode: http.StatusNotFound, Body: `{"detail":"no entry"}`}

	rec := doRequest(t, h.handlers.Routes(), http.MethodGet, "/api/translate?query=zzz&src=es", "tok", nil)
	wantDetail(t, rec, http.StatusNotFound, `Translation API error: {"detail":"no entry"}`)
}

func TestTranslateUpstreamUnreachable(t *testing.T) {
	h := newTranslateHarness(t)
	h.upstream.err = common.NewAppError("TRANSLATION_UPSTREAM", "translation service unreachable", common.ErrUnavailable)

	rec := doRequest(t, h.handlers.Routes(), http.MethodGet, "/api/translate?query=casa&src=es", "tok", nil)
	wantDetail(t, rec, http.StatusServiceUnavailable, "translation service unreachable")
}

func TestSaveAndListVocabulary(t *testing.T) {
	h := newTranslateHarness(t)

	body := map[string]any{
		"word": "casa", "translation": "house",
		"language_code": "es", "book_id": h.book.ID,
	}
	rec := doRequest(t, h.handlers.Routes(), http.MethodPost, "/api/vocabulary", "tok", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var saved entity.VocabularyWord
	decodeBody(t, rec, &saved)
	if saved.Word != "casa" || saved.HoverCount != 1 {
		t.Errorf("unexpected saved word: %+v", saved)
	}

	// a repeat lookup bumps the hover count instead of duplicating
	rec = doRequest(t, h.handlers.Routes(), http.MethodPost, "/api/vocabulary", "tok", body)
	decodeBody(t, rec, &saved)
	if saved.HoverCount != 2 {
		t.Errorf("expected hover_count 2, got %d", saved.HoverCount)
	}

	rec = doRequest(t, h.handlers.Routes(), http.MethodGet, "/api/vocabulary", "tok", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var words []entity.VocabularyWord
	decodeBody(t, rec, &words)
	if len(words) != 1 {
		t.Fatalf("expected 1 word, got %d", len(words))
	}

	// the language filter accepts names as well as codes
	rec = doRequest(t, h.handlers.Routes(), http.MethodGet, "/api/vocabulary?language=es", "tok", nil)
	decodeBody(t, rec, &words)
	if len(words) != 1 {
		t.Errorf("language filter dropped the word")
	}
}

func TestSaveVocabularyValidation(t *testing.T) {
	h := newTranslateHarness(t)

	rec := doRequest(t, h.handlers.Routes(), http.MethodPost, "/api/vocabulary", "tok",
		map[string]any{"word": "casa", "translation": "house", "language_code": "es"})
	wantDetail(t, rec, http.StatusBadRequest, "book_id is required")

	rec = doRequest(t, h.handlers.Routes(), http.MethodPost, "/api/vocabulary", "tok",
		map[string]any{"word": "", "translation": "house", "language_code": "es", "book_id": h.book.ID})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a blank word, got %d", rec.Code)
	}
}

func TestListVocabularyParamValidation(t *testing.T) {
	h := newTranslateHarness(t)

	for _, target := range []string{
		"/api/vocabulary?limit=0",
		"/api/vocabulary?limit=headache",
		"/api/vocabulary?limit=501",
		"/api/vocabulary?offset=-1",
		"/api/vocabulary?book_id=nope",
	} {
		rec := doRequest(t, h.handlers.Routes(), http.MethodGet, target, "tok", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestDeleteVocabularyWord(t *testing.T) {
	h := newTranslateHarness(t)

	rec := doRequest(t, h.handlers.Routes(), http.MethodPost, "/api/vocabulary", "tok",
		map[string]any{"word": "faro", "translation": "lighthouse", "language_code": "es", "book_id": h.book.ID})
	var saved entity.VocabularyWord
	decodeBody(t, rec, &saved)

	rec = doRequest(t, h.handlers.Routes(), http.MethodDelete, "/api/vocabulary/"+saved.ID.String(), "tok", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["message"] != "Vocabulary word deleted successfully" {
		t.Errorf("unexpected message: %v", body)
	}

	rec = doRequest(t, h.handlers.Routes(), http.MethodDelete, "/api/vocabulary/"+saved.ID.String(), "tok", nil)
	wantDetail(t, rec, http.StatusNotFound, "Vocabulary word not found")
}

func TestVocabularyStatsEndpoint(t *testing.T) {
	h := newTranslateHarness(t)

	for _, w := range []string{"casa", "faro", "torre"} {
		doRequest(t, h.handlers.Routes(), http.MethodPost, "/api/vocabulary", "tok",
			map[string]any{"word": w, "translation": w, "language_code": "es", "book_id": h.book.ID})
	}

	rec := doRequest(t, h.handlers.Routes(), http.MethodGet, "/api/vocabulary/stats", "tok", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats entity.VocabularyStats
	decodeBody(t, rec, &stats)
	if stats.TotalWords != 3 {
		t.Errorf("expected 3 words, got %d", stats.TotalWords)
	}
	if len(stats.ByLanguage) != 1 || stats.ByLanguage[0].Language != "es" {
		t.Errorf("unexpected language breakdown: %+v", stats.ByLanguage)
	}
}

func TestVocabularyExport(t *testing.T) {
	h := newTranslateHarness(t)
	doRequest(t, h.handlers.Routes(), http.MethodPost, "/api/vocabulary", "tok",
		map[string]any{"word": "casa", "translation": "house", "language_code": "es", "book_id": h.book.ID})

	rec := doRequest(t, h.handlers.Routes(), http.MethodGet, "/api/vocabulary/export", "tok", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Error("missing Content-Disposition header")
	}
	// XLSX is a zip container
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("response body is not a spreadsheet")
	}
}

func TestVocabularyRejectsOtherUsersWords(t *testing.T) {
	h := newTranslateHarness(t)

	rec := doRequest(t, h.handlers.Routes(), http.MethodPost, "/api/vocabulary", "tok",
		map[string]any{"word": "casa", "translation": "house", "language_code": "es", "book_id": h.book.ID})
	var saved entity.VocabularyWord
	decodeBody(t, rec, &saved)

	// same routes, different caller
	other := createTestUser(t, h.client)
	vocab := repository.NewVocabularyRepository(h.client, testLogger)
	exporter := export.NewService(vocab, testLogger)
	service := translate.NewService(h.upstream, translate.NewTTLCache(16, time.Minute), testLogger)
	otherHandlers := NewTranslateHandlers(service, vocab, exporter,
		resolverFor("tok2", &Identity{UserID: other.ID, FirebaseUID: other.FirebaseUID}), testLogger)

	rec = doRequest(t, otherHandlers.Routes(), http.MethodDelete, "/api/vocabulary/"+saved.ID.String(), "tok2", nil)
	wantDetail(t, rec, http.StatusNotFound, "Vocabulary word not found")

	rec = doRequest(t, otherHandlers.Routes(), http.MethodGet, "/api/vocabulary", "tok2", nil)
	var words []entity.VocabularyWord
	decodeBody(t, rec, &words)
	if len(words) != 0 {
		t.Errorf("another user's listing leaked %d words", len(words))
	}
}
