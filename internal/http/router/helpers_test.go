package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/JesseBremer/journal-mate/internal/auth"
	"github.com/JesseBremer/journal-mate/internal/http/ban"
	"github.com/JesseBremer/journal-mate/internal/http/handlers"
	rl "github.com/JesseBremer/journal-mate/internal/http/rate_limiter"
	"github.com/JesseBremer/journal-mate/internal/http/router"
	"github.com/JesseBremer/journal-mate/internal/journal"
	"github.com/JesseBremer/journal-mate/internal/repo"
)

const cookieName = "journal_session"

type testApp struct {
	handler  http.Handler
	users    *repo.InMemoryUserRepository
	entries  *repo.InMemoryEntryRepository
	sessions *auth.MemorySessionStore
	limiter  *rl.Limiter
	bans     *ban.MemoryTracker
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithLimits(t, 1000, 1000)
}

func newTestAppWithLimits(t *testing.T, rps float64, burst int) *testApp {
	t.Helper()
	return buildTestApp(t, rps, burst, false)
}

func buildTestApp(t *testing.T, rps float64, burst int, trustProxy bool) *testApp {
	t.Helper()

	users := repo.NewInMemoryUserRepository()
	entries := repo.NewInMemoryEntryRepository()
	store := auth.NewMemorySessionStore()

	creds := auth.NewCredentials(users, bcrypt.MinCost)
	_, err := creds.EnsureDefaultUser(context.Background())
	require.NoError(t, err)

	sessions := auth.NewSessions(store, "test-secret", 30*24*time.Hour)
	svc := journal.NewService(entries, repo.NewInMemoryAccountRepository(users, entries), repo.NewInMemoryStatsRepository(entries))
	server := handlers.NewServer(creds, sessions, svc, handlers.CookieConfig{Name: cookieName})

	limiter := rl.NewLimiter(rps, burst)
	bans := ban.NewMemoryTracker(ban.Policy{MaxStrikes: 3, StrikeWindow: time.Minute, BanDuration: time.Hour})

	return &testApp{
		handler:  router.NewRouter(router.Config{Server: server, Limiter: limiter, Bans: bans, TrustProxy: trustProxy}),
		users:    users,
		entries:  entries,
		sessions: store,
		limiter:  limiter,
		bans:     bans,
	}
}

// do sends a JSON request; cookie may be nil.
func (a *testApp) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.doFrom("", nil, method, path, body, cookie)
}

// doFrom sends the request from remoteAddr (httptest's default when empty)
// with the extra headers set.
func (a *testApp) doFrom(remoteAddr string, headers map[string]string, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func (a *testApp) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	w := a.do(http.MethodPost, "/api/login", handlers.CredentialsRequest{Username: username, Password: password}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := sessionCookie(w)
	require.NotNil(t, c, "login must set the session cookie")
	return c
}

func (a *testApp) register(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	w := a.do(http.MethodPost, "/api/register", handlers.CredentialsRequest{Username: username, Password: password}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	c := sessionCookie(w)
	require.NotNil(t, c, "register must set the session cookie")
	return c
}

func (a *testApp) createEntry(t *testing.T, cookie *http.Cookie, title, content string) int {
	t.Helper()

	w := a.do(http.MethodPost, "/api/entries", handlers.EntryRequest{Title: title, Content: content}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp handlers.EntryCreatedResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), "body: %s", w.Body.String())
	return v
}

func entryPath(id int) string {
	return fmt.Sprintf("/api/entries/%d", id)
}
