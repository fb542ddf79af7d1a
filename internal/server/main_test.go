package server

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"log/slog"

	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/storylingo/storylingo/gen/ent"
	"github.com/storylingo/storylingo/gen/ent/enttest"
	"github.com/storylingo/storylingo/internal/common"
)

// sqlite3Driver adapts modernc.org/sqlite to the driver name Ent's
// sqlite dialect expects, with foreign keys enabled per connection.
type sqlite3Driver struct {
	*sqlite.Driver
}

func (d sqlite3Driver) Open(name string) (driver.Conn, error) {
	conn, err := d.Driver.Open(name)
	if err != nil {
		return conn, err
	}
	c := conn.(interface {
		Exec(stmt string, args []driver.Value) (driver.Result, error)
	})
	if _, err := c.Exec("PRAGMA foreign_keys = on;", nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return conn, nil
}

func init() {
	sql.Register("sqlite3", sqlite3Driver{Driver: &sqlite.Driver{}})
}

var (
	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	dbseq      atomic.Int64
)

func newTestClient(t *testing.T) *ent.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:srvtest%d?mode=memory&cache=shared", dbseq.Add(1))
	client := enttest.Open(t, "sqlite3", dsn)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func createTestUser(t *testing.T, client *ent.Client) *ent.User {
	t.Helper()
	n := dbseq.Add(1)
	u, err := client.User.Create().
		SetFirebaseUID(fmt.Sprintf("firebase-%d-%s", n, uuid.NewString()[:8])).
		SetEmail(fmt.Sprintf("user%d@example.com", n)).
		Save(context.Background())
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return u
}

// fakeResolver maps raw tokens to identities without a verifier behind it.
type fakeResolver struct {
	identities map[string]*Identity
	err        error
}

func (f *fakeResolver) Resolve(_ context.Context, idToken string) (*Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	identity, ok := f.identities[idToken]
	if !ok {
		return nil, common.NewAppError("INVALID_TOKEN", "invalid or expired token", common.ErrUnauthorized)
	}
	return identity, nil
}

func resolverFor(token string, identity *Identity) *fakeResolver {
	return &fakeResolver{identities: map[string]*Identity{token: identity}}
}

// doRequest runs one request through the handler and returns the recorder.
func doRequest(t *testing.T, handler http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

// wantDetail asserts the error wire shape.
func wantDetail(t *testing.T, rec *httptest.ResponseRecorder, status int, detail string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (%s)", status, rec.Code, rec.Body.String())
	}
	var body struct {
		Detail string `json:"detail"`
	}
	decodeBody(t, rec, &body)
	if body.Detail != detail {
		t.Errorf("expected detail %q, got %q", detail, body.Detail)
	}
}
