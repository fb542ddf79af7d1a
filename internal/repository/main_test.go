package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/storylingo/storylingo/gen/ent"
	"github.com/storylingo/storylingo/gen/ent/enttest"
	"modernc.org/sqlite"
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

// newTestClient opens a fresh in-memory database per test.
func newTestClient(t *testing.T) *ent.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", dbseq.Add(1))
	client := enttest.Open(t, "sqlite3", dsn)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// createTestUser seeds a user row for fixtures.
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
