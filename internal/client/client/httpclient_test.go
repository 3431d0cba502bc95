package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/akarpov87/authkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTokens is an in-memory stand-in for the SQLite session store.
type memTokens struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemTokens() *memTokens { return &memTokens{m: map[string]string{}} }

func (r *memTokens) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[key], nil
}

func (r *memTokens) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = value
	return nil
}

func (r *memTokens) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
	return nil
}

func (r *memTokens) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m = map[string]string{}
	return nil
}

// fakeBackend emulates the server's rotation behavior: exactly one refresh
// token is valid at a time, and presenting a consumed one fails.
type fakeBackend struct {
	mu           sync.Mutex
	seq          int
	validAccess  string
	validRefresh string
	refreshCalls int
	refreshDelay time.Duration
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func (b *fakeBackend) pairData() map[string]any {
	return map[string]any{
		"accessToken":  b.validAccess,
		"refreshToken": b.validRefresh,
		"user":         models.User{ID: "u1", Email: "test@example.com", Name: "Test User"},
	}
}

func (b *fakeBackend) rotate() {
	b.seq++
	b.validAccess = fmt.Sprintf("access-%d", b.seq)
	b.validRefresh = fmt.Sprintf("refresh-%d", b.seq)
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req["email"] != "test@example.com" || req["password"] != "password123" {
			writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Error: "invalid credentials"})
			return
		}

		b.mu.Lock()
		b.rotate()
		data := b.pairData()
		b.mu.Unlock()

		writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Message: "Login successful"})
	})

	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)

		time.Sleep(b.refreshDelay)

		b.mu.Lock()
		b.refreshCalls++
		if req["refreshToken"] != b.validRefresh {
			b.mu.Unlock()
			writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Error: "invalid or expired token"})
			return
		}
		b.rotate()
		data := b.pairData()
		b.mu.Unlock()

		writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Message: "Token refreshed successfully"})
	})

	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		valid := r.Header.Get("Authorization") == "Bearer "+b.validAccess
		b.mu.Unlock()

		if !valid {
			writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Error: "invalid or expired token"})
			return
		}
		writeJSON(w, http.StatusOK, envelope{
			Success: true,
			Data:    models.User{ID: "u1", Email: "test@example.com", Name: "Test User"},
			Message: "User retrieved successfully",
		})
	})

	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.validAccess = ""
		b.validRefresh = ""
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Logout successful"})
	})

	return mux
}

func setupClient(t *testing.T, b *fakeBackend) (*HTTPClient, *memTokens) {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	repo := newMemTokens()
	return NewHTTPClient(srv.URL, 5*time.Second, repo), repo
}

func TestLogin_StartsSession(t *testing.T) {
	b := &fakeBackend{}
	c, repo := setupClient(t, b)
	ctx := context.Background()

	user, err := c.Login(ctx, "test@example.com", []byte("password123"))
	require.NoError(t, err)
	assert.Equal(t, "Test User", user.Name)
	assert.True(t, c.IsLoggedIn())

	// The refresh token is persisted for the next process.
	stored, err := repo.Get(ctx, refreshTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", stored)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	b := &fakeBackend{}
	c, _ := setupClient(t, b)

	_, err := c.Login(context.Background(), "test@example.com", []byte("wrong"))
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, c.IsLoggedIn())
}

func TestMe_RefreshesOnceAndReplays(t *testing.T) {
	b := &fakeBackend{}
	c, _ := setupClient(t, b)
	ctx := context.Background()

	_, err := c.Login(ctx, "test@example.com", []byte("password123"))
	require.NoError(t, err)

	// Invalidate the access token server-side, as if it had expired.
	b.mu.Lock()
	b.validAccess = "rotated-away"
	b.mu.Unlock()

	user, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, 1, b.refreshCalls)
}

func TestRefresh_ConcurrentCallsCoalesce(t *testing.T) {
	b := &fakeBackend{refreshDelay: 100 * time.Millisecond}
	c, _ := setupClient(t, b)
	ctx := context.Background()

	_, err := c.Login(ctx, "test@example.com", []byte("password123"))
	require.NoError(t, err)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Refresh(ctx)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}
	// Without coalescing, every straggler would present the consumed token
	// and get logged out.
	assert.Equal(t, 1, b.refreshCalls)
	assert.True(t, c.IsLoggedIn())
}

func TestMe_ConcurrentExpiredCallsShareOneRefresh(t *testing.T) {
	b := &fakeBackend{refreshDelay: 100 * time.Millisecond}
	c, _ := setupClient(t, b)
	ctx := context.Background()

	_, err := c.Login(ctx, "test@example.com", []byte("password123"))
	require.NoError(t, err)

	b.mu.Lock()
	b.validAccess = "rotated-away"
	b.mu.Unlock()

	const n = 5
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Me(ctx)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}
	assert.Equal(t, 1, b.refreshCalls)
}

func TestRefresh_TerminalFailureClearsSession(t *testing.T) {
	b := &fakeBackend{}
	c, repo := setupClient(t, b)
	ctx := context.Background()

	_, err := c.Login(ctx, "test@example.com", []byte("password123"))
	require.NoError(t, err)

	// Another device rotated the token out from under this session.
	b.mu.Lock()
	b.validRefresh = "someone-else"
	b.mu.Unlock()

	require.ErrorIs(t, c.Refresh(ctx), ErrUnauthorized)
	assert.False(t, c.IsLoggedIn())

	stored, err := repo.Get(ctx, refreshTokenKey)
	require.NoError(t, err)
	assert.Empty(t, stored, "a terminal failure must clear the persisted token")
}

func TestRefresh_ServerUnavailableKeepsSession(t *testing.T) {
	b := &fakeBackend{}
	srv := httptest.NewServer(b.handler())
	repo := newMemTokens()
	c := NewHTTPClient(srv.URL, time.Second, repo)
	ctx := context.Background()

	_, err := c.Login(ctx, "test@example.com", []byte("password123"))
	require.NoError(t, err)

	srv.Close()

	require.ErrorIs(t, c.Refresh(ctx), ErrUnavailable)

	// The token is kept: connectivity loss is not a reason to log out.
	stored, err := repo.Get(ctx, refreshTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", stored)
}

func TestRestoreSession(t *testing.T) {
	b := &fakeBackend{}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)
	ctx := context.Background()

	// First process logs in.
	repo := newMemTokens()
	first := NewHTTPClient(srv.URL, time.Second, repo)
	_, err := first.Login(ctx, "test@example.com", []byte("password123"))
	require.NoError(t, err)

	// A second process picks the session up from the shared store.
	second := NewHTTPClient(srv.URL, time.Second, repo)
	require.NoError(t, second.RestoreSession(ctx))
	assert.True(t, second.IsLoggedIn())

	user, err := second.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
}

func TestRestoreSession_NoPersistedToken(t *testing.T) {
	b := &fakeBackend{}
	c, _ := setupClient(t, b)

	require.ErrorIs(t, c.RestoreSession(context.Background()), ErrUnauthorized)
}

func TestLogout_ClearsSessionEvenWithoutServer(t *testing.T) {
	b := &fakeBackend{}
	srv := httptest.NewServer(b.handler())
	repo := newMemTokens()
	c := NewHTTPClient(srv.URL, time.Second, repo)
	ctx := context.Background()

	_, err := c.Login(ctx, "test@example.com", []byte("password123"))
	require.NoError(t, err)

	srv.Close()

	err = c.Logout(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, c.IsLoggedIn())

	stored, err := repo.Get(ctx, refreshTokenKey)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
