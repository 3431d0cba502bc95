package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/akarpov87/authkeeper/internal/client/models"
	"github.com/akarpov87/authkeeper/internal/client/repositories/tokens"
	"github.com/akarpov87/authkeeper/internal/common"
)

// refreshTokenKey is the session-store key the refresh token survives
// restarts under. The access token is memory-only.
const refreshTokenKey = "refresh_token"

// errTokenRejected marks a request the server refused with 401. Internal
// signal only; callers of HTTPClient see ErrUnauthorized.
var errTokenRejected = errors.New("access token rejected")

// inflightRefresh is the shared state of one refresh round. Concurrent
// callers wait on done and read err afterwards.
type inflightRefresh struct {
	done chan struct{}
	err  error
}

// HTTPClient talks to the AuthKeeper backend over HTTP and manages the token
// pair for the session.
//
// Exactly one refresh request is ever on the wire at a time: concurrent
// callers that need a refresh coalesce onto the in-flight one and share its
// outcome. A request rejected with 401 is replayed once after a successful
// refresh. A terminal refresh failure clears the session, locally and in the
// persistent store, so a stale rotated-out token is never retried.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  tokens.Repository

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	user         *models.User
	inflight     *inflightRefresh
}

func NewHTTPClient(baseURL string, timeout time.Duration, repo tokens.Repository) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  repo,
	}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type tokenPairData struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

func (c *HTTPClient) post(ctx context.Context, path string, body any) (*apiResponse, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, ErrUnavailable
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, resp.StatusCode, ErrUnavailable
	}
	return &out, resp.StatusCode, nil
}

// Login authenticates with the backend and starts a session. The password
// slice is not retained.
func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	resp, status, err := c.post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": string(password),
	})
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if !resp.Success {
		return nil, ErrUnavailable
	}

	var data tokenPairData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, ErrUnavailable
	}

	if err := c.storeSession(ctx, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// Logout revokes the refresh token on the server and clears the local
// session. The local session is cleared even when the server call fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	c.mu.Lock()
	token := c.refreshToken
	c.mu.Unlock()

	var reqErr error
	if token != "" {
		_, _, reqErr = c.post(ctx, "/auth/logout", map[string]string{"refreshToken": token})
	}

	if err := c.clearSession(ctx); err != nil {
		return err
	}
	return reqErr
}

// Refresh rotates the refresh token, coalescing with any refresh already in
// flight.
func (c *HTTPClient) Refresh(ctx context.Context) error {
	return c.refreshSession(ctx)
}

// Me returns the current user. On a 401 the token pair is refreshed once and
// the request replayed; if the refresh fails the caller gets ErrUnauthorized.
func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	user, err := c.getMe(ctx)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, errTokenRejected) {
		return nil, err
	}

	if err := c.refreshSession(ctx); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, ErrUnavailable
		}
		return nil, ErrUnauthorized
	}

	user, err = c.getMe(ctx)
	if errors.Is(err, errTokenRejected) {
		return nil, ErrUnauthorized
	}
	return user, err
}

func (c *HTTPClient) getMe(ctx context.Context) (*models.User, error) {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()

	if token == "" {
		return nil, errTokenRejected
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errTokenRejected
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, ErrUnavailable
	}
	if !out.Success {
		return nil, ErrUnavailable
	}

	var user models.User
	if err := json.Unmarshal(out.Data, &user); err != nil {
		return nil, ErrUnavailable
	}
	return &user, nil
}

// RestoreSession loads the persisted refresh token and rotates it, so a new
// CLI process resumes the previous login without re-entering credentials.
func (c *HTTPClient) RestoreSession(ctx context.Context) error {
	token, err := c.tokens.Get(ctx, refreshTokenKey)
	if err != nil {
		return ErrLocalDataNotAvailable
	}
	if token == "" {
		return ErrUnauthorized
	}

	c.mu.Lock()
	c.refreshToken = token
	c.mu.Unlock()

	return c.refreshSession(ctx)
}

func (c *HTTPClient) IsLoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != ""
}

func (c *HTTPClient) User() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// refreshSession runs (or joins) the single refresh round. The first caller
// becomes the owner and does the network work; everyone who arrives while it
// runs waits for the same outcome instead of sending a competing request,
// which would consume the rotated token and log the session out.
func (c *HTTPClient) refreshSession(ctx context.Context) error {
	c.mu.Lock()
	if ref := c.inflight; ref != nil {
		c.mu.Unlock()
		select {
		case <-ref.done:
			return ref.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ref := &inflightRefresh{done: make(chan struct{})}
	c.inflight = ref
	token := c.refreshToken
	c.mu.Unlock()

	ref.err = c.doRefresh(ctx, token)

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()
	close(ref.done)

	return ref.err
}

func (c *HTTPClient) doRefresh(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthorized
	}

	resp, status, err := c.post(ctx, "/auth/refresh", map[string]string{"refreshToken": token})
	if err != nil {
		// Network trouble is not terminal; the token may still be good.
		return err
	}

	if status == http.StatusUnauthorized || status == http.StatusBadRequest {
		// The token was consumed, revoked, or expired. Keeping it around
		// would only produce more failures.
		if clearErr := c.clearSession(ctx); clearErr != nil {
			return clearErr
		}
		return ErrUnauthorized
	}
	if !resp.Success {
		return ErrUnavailable
	}

	var data tokenPairData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return ErrUnavailable
	}

	return c.storeSession(ctx, &data)
}

func (c *HTTPClient) storeSession(ctx context.Context, data *tokenPairData) error {
	c.mu.Lock()
	c.accessToken = data.AccessToken
	c.refreshToken = data.RefreshToken
	user := data.User
	c.user = &user
	c.mu.Unlock()

	if err := c.tokens.Set(ctx, refreshTokenKey, data.RefreshToken); err != nil {
		return ErrLocalDataNotAvailable
	}
	return nil
}

func (c *HTTPClient) clearSession(ctx context.Context) error {
	c.mu.Lock()
	c.accessToken = ""
	c.refreshToken = ""
	c.user = nil
	c.mu.Unlock()

	if err := c.tokens.Clear(ctx); err != nil {
		return ErrLocalDataNotAvailable
	}
	return nil
}
