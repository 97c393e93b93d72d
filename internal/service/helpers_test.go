package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mediumish/internal/notify"
	"mediumish/internal/repository"
	"mediumish/internal/repository/db"
	"mediumish/internal/session"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	svc      *Service
	mail     *notify.LogNotifier
	clock    *fakeClock
	issuer   *session.Issuer
	repos    *repository.Repository
	notifier notify.Notifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithNotifier(t, nil)
}

func newTestEnvWithNotifier(t *testing.T, n notify.Notifier) *testEnv {
	t.Helper()

	conn, err := db.InitDB(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	env := &testEnv{
		mail:   notify.NewLogNotifier(nil),
		clock:  &fakeClock{t: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
		issuer: session.NewIssuer("test-secret", time.Hour),
		repos:  repository.NewRepository(conn),
	}
	env.notifier = env.mail
	if n != nil {
		env.notifier = n
	}
	env.svc = NewService(env.repos, Config{
		Issuer:     env.issuer,
		Notifier:   env.notifier,
		ResetURL:   "http://localhost:5173",
		BcryptCost: bcrypt.MinCost,
		Now:        env.clock.Now,
	})
	return env
}

// register creates a user and advances the clock so creation times differ.
func (e *testEnv) register(t *testing.T, username string) string {
	t.Helper()
	id, err := e.svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@x.com",
		Password: "pw-" + username,
	})
	require.NoError(t, err)
	e.clock.Advance(time.Second)
	return id
}

func (e *testEnv) post(t *testing.T, authorID, title, content string) string {
	t.Helper()
	p, err := e.svc.CreatePost(context.Background(), authorID, title, content)
	require.NoError(t, err)
	e.clock.Advance(time.Second)
	return p.ID
}
