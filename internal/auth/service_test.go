package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"sales_dashboard/internal/analytics"
	"sales_dashboard/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	loginResp  analytics.LoginResponse
	loginErr   error
	logoutErr  error
	logoutSeen bool
}

func (f *fakeBackend) Login(_ context.Context, username, password string) (analytics.LoginResponse, error) {
	if f.loginErr != nil {
		return analytics.LoginResponse{}, f.loginErr
	}
	return f.loginResp, nil
}

func (f *fakeBackend) Me(context.Context) (analytics.UserInfo, error) {
	return analytics.UserInfo{Username: "admin", IsAdmin: true}, nil
}

func (f *fakeBackend) Logout(context.Context) (analytics.LogoutResponse, error) {
	f.logoutSeen = true
	return analytics.LogoutResponse{Message: "Logged out successfully"}, f.logoutErr
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	return session.Open(filepath.Join(t.TempDir(), "session.toml"), nil)
}

func TestLoginStoresToken(t *testing.T) {
	store := newStore(t)
	backend := &fakeBackend{loginResp: analytics.LoginResponse{AccessToken: "jwt-token", TokenType: "bearer", ExpiresIn: 60, Username: "admin"}}
	svc := New(backend, store, nil)

	resp, err := svc.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", resp.AccessToken)
	assert.Equal(t, "jwt-token", store.Token())
	assert.Equal(t, "admin", store.Username())
	assert.True(t, svc.LoggedIn())
}

func TestLoginFailureLeavesStoreUnchanged(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.SetToken("previous-token", "admin"))

	backend := &fakeBackend{loginErr: &analytics.APIError{
		StatusCode: http.StatusUnauthorized,
		Status:     "401 Unauthorized",
		Detail:     "Incorrect username or password",
	}}
	svc := New(backend, store, nil)

	_, err := svc.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)

	var loginErr *LoginError
	require.True(t, errors.As(err, &loginErr))
	assert.Equal(t, "Incorrect username or password", loginErr.Message)
	assert.ErrorIs(t, err, analytics.ErrAPI)

	assert.Equal(t, "previous-token", store.Token())
}

func TestLoginTransportFailureUsesGenericMessage(t *testing.T) {
	store := newStore(t)
	svc := New(&fakeBackend{loginErr: fmt.Errorf("%w: dial tcp: refused", analytics.ErrAPI)}, store, nil)

	_, err := svc.Login(context.Background(), "admin", "pw")
	var loginErr *LoginError
	require.True(t, errors.As(err, &loginErr))
	assert.Equal(t, genericLoginFailure, loginErr.Message)
	assert.False(t, store.LoggedIn())
}

func TestLoginRequiresCredentials(t *testing.T) {
	store := newStore(t)
	svc := New(&fakeBackend{}, store, nil)

	_, err := svc.Login(context.Background(), "  ", "pw")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.False(t, store.LoggedIn())
}

func TestLogoutClearsTokenEvenWhenBackendFails(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.SetToken("token", "admin"))
	backend := &fakeBackend{logoutErr: errors.New("offline")}
	svc := New(backend, store, nil)

	require.NoError(t, svc.Logout(context.Background()))
	assert.True(t, backend.logoutSeen)
	assert.False(t, store.LoggedIn())
}

func TestWhoamiRequiresLogin(t *testing.T) {
	svc := New(&fakeBackend{}, newStore(t), nil)

	_, err := svc.Whoami(context.Background())
	assert.ErrorIs(t, err, analytics.ErrNotLoggedIn)
}
