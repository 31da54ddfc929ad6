package auth_test

import (
	"context"
	"database/sql"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/goliatone/go-petcare-auth"
)

var testSigningKey = base64.StdEncoding.EncodeToString([]byte("petcare-test-signing-key-0123456789"))

const testPassword = "secret123"

func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, auth.CreateSchema(context.Background(), db))

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func setupRepos(t *testing.T) auth.RepositoryManager {
	t.Helper()
	repos := auth.NewRepositoryManager(setupDB(t))
	require.NoError(t, repos.Validate())
	return repos
}

// fakeClock is a settable time source shared by codec and manager
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testHasher() auth.PasswordHasher {
	return auth.NewBcryptHasher(4)
}

func newUserDTO(login, email, identifier string) auth.UserDTO {
	return auth.UserDTO{
		Person: auth.PersonDTO{
			Name:        "Test " + login,
			Identifier:  identifier,
			PhoneNumber: "5551234567",
		},
		Login:    login,
		Password: testPassword,
		Email:    email,
	}
}

func mustCreateUser(t *testing.T, users *auth.UserService, login, email, identifier string) auth.UserDTO {
	t.Helper()
	created, err := users.Create(context.Background(), newUserDTO(login, email, identifier))
	require.NoError(t, err)
	return created
}

// recordingSink keeps every event it receives
type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) ofType(eventType auth.ActivityEventType) []auth.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []auth.ActivityEvent{}
	for _, e := range s.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
