package server

import (
	"net/http"
	"testing"

	"github.com/storylingo/storylingo/internal/authn"
	"github.com/storylingo/storylingo/internal/entity"
	"github.com/storylingo/storylingo/internal/repository"
)

func newAuthHandlers(t *testing.T) (*AuthHandlers, *authn.StaticVerifier) {
	t.Helper()
	client := newTestClient(t)
	verifier := authn.NewStaticVerifier()
	users := repository.NewUserRepository(client, testLogger)
	return NewAuthHandlers(verifier, verifier, users, testLogger), verifier
}

func TestAuthHealth(t *testing.T) {
	h, _ := newAuthHandlers(t)

	rec := doRequest(t, h.Routes(), http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["service"] != "auth-service (Firebase)" || body["status"] != "healthy" {
		t.Errorf("unexpected health payload: %v", body)
	}
	if body["auth_provider"] != "Firebase Authentication" {
		t.Errorf("missing auth_provider: %v", body)
	}
}

func TestVerifyAndSyncCreatesUser(t *testing.T) {
	h, verifier := newAuthHandlers(t)
	verifier.Add("tok-ana", authn.Token{UID: "fb-ana", Email: "ana@example.com", EmailVerified: true, Name: "Ana"})

	rec := doRequest(t, h.Routes(), http.MethodPost, "/api/auth/verify", "",
		map[string]string{"id_token": "tok-ana"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var body struct {
		User    entity.UserProfile `json:"user"`
		Message string             `json:"message"`
	}
	decodeBody(t, rec, &body)
	if body.Message != "User verified and synchronized" {
		t.Errorf("unexpected message %q", body.Message)
	}
	if body.User.FirebaseUID != "fb-ana" || body.User.Email != "ana@example.com" {
		t.Errorf("unexpected user: %+v", body.User)
	}
	if body.User.DisplayName == nil || *body.User.DisplayName != "Ana" {
		t.Errorf("expected display name from the token, got %v", body.User.DisplayName)
	}

	// a second verify is idempotent
	rec = doRequest(t, h.Routes(), http.MethodPost, "/api/auth/verify", "",
		map[string]string{"id_token": "tok-ana"})
	var again struct {
		User entity.UserProfile `json:"user"`
	}
	decodeBody(t, rec, &again)
	if again.User.ID != body.User.ID {
		t.Error("repeat verify created a second user")
	}
}

func TestVerifyAndSyncDisplayNameFallbacks(t *testing.T) {
	h, verifier := newAuthHandlers(t)
	verifier.Add("tok-plain", authn.Token{UID: "fb-plain", Email: "plain.jane@example.com"})
	verifier.Add("tok-pick", authn.Token{UID: "fb-pick", Email: "pick@example.com", Name: "From Token"})

	// no name claim: the mailbox local part fills in
	rec := doRequest(t, h.Routes(), http.MethodPost, "/api/auth/verify", "",
		map[string]string{"id_token": "tok-plain"})
	var body struct {
		User entity.UserProfile `json:"user"`
	}
	decodeBody(t, rec, &body)
	if body.User.DisplayName == nil || *body.User.DisplayName != "plain.jane" {
		t.Errorf("expected mailbox fallback, got %v", body.User.DisplayName)
	}

	// an explicit display_name beats the token claim
	rec = doRequest(t, h.Routes(), http.MethodPost, "/api/auth/verify", "",
		map[string]string{"id_token": "tok-pick", "display_name": "Chosen"})
	decodeBody(t, rec, &body)
	if body.User.DisplayName == nil || *body.User.DisplayName != "Chosen" {
		t.Errorf("expected request display_name to win, got %v", body.User.DisplayName)
	}
}

func TestVerifyAndSyncRejections(t *testing.T) {
	h, verifier := newAuthHandlers(t)
	verifier.Add("tok-noemail", authn.Token{UID: "fb-ghost"})

	rec := doRequest(t, h.Routes(), http.MethodPost, "/api/auth/verify", "",
		map[string]string{"id_token": "tok-unknown"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for an unknown token, got %d", rec.Code)
	}

	rec = doRequest(t, h.Routes(), http.MethodPost, "/api/auth/verify", "",
		map[string]string{"id_token": "tok-noemail"})
	wantDetail(t, rec, http.StatusBadRequest, "Email not found in Firebase token")

	rec = doRequest(t, h.Routes(), http.MethodPost, "/api/auth/verify", "",
		map[string]string{"id_token": "  "})
	wantDetail(t, rec, http.StatusBadRequest, "id_token is required")
}

func TestAuthMe(t *testing.T) {
	h, verifier := newAuthHandlers(t)
	verifier.Add("tok-leo", authn.Token{UID: "fb-leo", Email: "leo@example.com", Name: "Leo"})

	// no sync yet
	rec := doRequest(t, h.Routes(), http.MethodGet, "/api/auth/me", "tok-leo", nil)
	wantDetail(t, rec, http.StatusNotFound, "User not found in database. Please call /api/auth/verify first.")

	doRequest(t, h.Routes(), http.MethodPost, "/api/auth/verify", "",
		map[string]string{"id_token": "tok-leo"})

	rec = doRequest(t, h.Routes(), http.MethodGet, "/api/auth/me", "tok-leo", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after verify, got %d", rec.Code)
	}
	var profile entity.UserProfile
	decodeBody(t, rec, &profile)
	if profile.FirebaseUID != "fb-leo" || profile.Email != "leo@example.com" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestTokenVerify(t *testing.T) {
	h, verifier := newAuthHandlers(t)
	verifier.Add("tok-mia", authn.Token{UID: "fb-mia", Email: "mia@example.com", EmailVerified: true})

	rec := doRequest(t, h.Routes(), http.MethodPost, "/api/auth/token/verify", "tok-mia", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body tokenVerifyResponse
	decodeBody(t, rec, &body)
	if !body.Valid || body.User.FirebaseUID != "fb-mia" || !body.User.EmailVerified {
		t.Errorf("unexpected response: %+v", body)
	}
	if body.User.ID != nil {
		t.Error("id must be absent before the first sync")
	}

	doRequest(t, h.Routes(), http.MethodPost, "/api/auth/verify", "",
		map[string]string{"id_token": "tok-mia"})

	rec = doRequest(t, h.Routes(), http.MethodPost, "/api/auth/token/verify", "tok-mia", nil)
	decodeBody(t, rec, &body)
	if body.User.ID == nil {
		t.Error("id must be attached once the user row exists")
	}
}

func TestFirebaseUserLookup(t *testing.T) {
	h, verifier := newAuthHandlers(t)
	verifier.Add("tok-sam", authn.Token{UID: "fb-sam", Email: "sam@example.com", Name: "Sam"})

	rec := doRequest(t, h.Routes(), http.MethodGet, "/api/auth/firebase-user/fb-sam", "tok-sam", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var record authn.ProviderUser
	decodeBody(t, rec, &record)
	if record.UID != "fb-sam" || record.DisplayName != "Sam" {
		t.Errorf("unexpected provider record: %+v", record)
	}

	rec = doRequest(t, h.Routes(), http.MethodGet, "/api/auth/firebase-user/fb-other", "tok-sam", nil)
	wantDetail(t, rec, http.StatusForbidden, "Cannot access other user's information")
}

func TestDeprecatedAuthEndpoints(t *testing.T) {
	h, _ := newAuthHandlers(t)

	for _, path := range []string{"/api/auth/login", "/api/auth/signup"} {
		rec := doRequest(t, h.Routes(), http.MethodPost, path, "",
			map[string]string{"email": "x@y.z", "password": "hunter2"})
		if rec.Code != http.StatusGone {
			t.Errorf("%s: expected 410, got %d", path, rec.Code)
		}
	}
}
