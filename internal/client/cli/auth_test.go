package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/akarpov87/authkeeper/internal/client/client"
	"github.com/akarpov87/authkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	loggedIn  bool
	lastEmail string
	lastPass  string
	loginErr  error
	meErr     error
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Login(_ context.Context, email string, password []byte) (*models.User, error) {
	f.lastEmail = email
	f.lastPass = string(password)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.loggedIn = true
	return &models.User{ID: "u1", Email: email, Name: "Test User"}, nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.loggedIn = false
	return nil
}

func (f *fakeClient) Refresh(context.Context) error { return nil }

func (f *fakeClient) Me(context.Context) (*models.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &models.User{ID: "u1", Email: "test@example.com", Name: "Test User"}, nil
}

func (f *fakeClient) RestoreSession(context.Context) error { return client.ErrUnauthorized }
func (f *fakeClient) IsLoggedIn() bool                     { return f.loggedIn }
func (f *fakeClient) User() *models.User {
	if !f.loggedIn {
		return nil
	}
	return &models.User{ID: "u1", Email: "test@example.com", Name: "Test User"}
}

func stubInput(t *testing.T, text string, password []byte) {
	t.Helper()
	origText, origPass := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPass })

	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) {
		return text, nil
	}
	getPassword = func(io.Writer) ([]byte, error) {
		pw := make([]byte, len(password))
		copy(pw, password)
		return pw, nil
	}
}

func newTestApp(fc *fakeClient) *App {
	return &App{client: fc, reader: bufio.NewReader(strings.NewReader(""))}
}

func TestLogin_PassesCredentialsThrough(t *testing.T) {
	stubInput(t, "test@example.com", []byte("password123"))

	fc := &fakeClient{}
	a := newTestApp(fc)

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "test@example.com", fc.lastEmail)
	assert.Equal(t, "password123", fc.lastPass)
	assert.True(t, a.isLoggedIn())
}

func TestLogin_InvalidCredentialsKeepsREPLAlive(t *testing.T) {
	stubInput(t, "test@example.com", []byte("wrong"))

	fc := &fakeClient{loginErr: client.ErrInvalidCredentials}
	a := newTestApp(fc)

	// The failure is reported to the user, not propagated.
	require.NoError(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
}

func TestLogin_ServerUnavailable(t *testing.T) {
	stubInput(t, "test@example.com", []byte("password123"))

	fc := &fakeClient{loginErr: client.ErrUnavailable}
	a := newTestApp(fc)

	require.NoError(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
}

func TestLogout(t *testing.T) {
	fc := &fakeClient{loggedIn: true}
	a := newTestApp(fc)

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
}

func TestMe_SessionExpiredIsHandled(t *testing.T) {
	fc := &fakeClient{meErr: client.ErrUnauthorized}
	a := newTestApp(fc)

	require.NoError(t, a.Me(context.Background()))
}

func TestGetStatus(t *testing.T) {
	fc := &fakeClient{}
	a := newTestApp(fc)

	assert.Equal(t, "(logged out)", a.getStatus())

	fc.loggedIn = true
	assert.Equal(t, "(test@example.com)", a.getStatus())
}
