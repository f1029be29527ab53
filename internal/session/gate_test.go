package session

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamup-platform/teamup-cli/internal/api"
	"github.com/teamup-platform/teamup-cli/internal/credential"
	"github.com/teamup-platform/teamup-cli/internal/model"
)

// fakeAuthService scripts the auth endpoints.
type fakeAuthService struct {
	loginResp    *api.TokenResponse
	loginErr     error
	registerResp *api.TokenResponse
	registerErr  error
	meUser       *model.User
	meErr        error

	token      string
	loginCalls int
	meCalls    int
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*api.TokenResponse, error) {
	f.loginCalls++
	return f.loginResp, f.loginErr
}

func (f *fakeAuthService) Register(ctx context.Context, name, email, password string) (*api.TokenResponse, error) {
	return f.registerResp, f.registerErr
}

func (f *fakeAuthService) Me(ctx context.Context) (*model.User, error) {
	f.meCalls++
	return f.meUser, f.meErr
}

func (f *fakeAuthService) SetToken(token string) { f.token = token }
func (f *fakeAuthService) ClearToken()           { f.token = "" }

// memStore is an in-memory credential.Store.
type memStore struct {
	values map[string]string
	setErr error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (s *memStore) Get(key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (s *memStore) Set(key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func (s *memStore) Delete(key string) error {
	delete(s.values, key)
	return nil
}

func newTestGate(svc *fakeAuthService, creds *memStore) *Gate {
	return NewGate(svc, creds, zerolog.Nop())
}

func TestLoginInstallsSession(t *testing.T) {
	svc := &fakeAuthService{
		loginResp: &api.TokenResponse{
			AccessToken: "tok-1",
			User:        model.User{ID: "u1", Email: "a@b.c", Role: model.RoleUser},
		},
	}
	creds := newMemStore()
	g := newTestGate(svc, creds)

	err := g.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	user, ok := g.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, g.IsAuthenticated())
	assert.Equal(t, "tok-1", svc.token)
	assert.Equal(t, "tok-1", creds.values[credential.TokenKey])
}

func TestLoginEmptyCredentialsFailFast(t *testing.T) {
	svc := &fakeAuthService{}
	g := newTestGate(svc, newMemStore())

	err := g.Login(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))
	assert.Zero(t, svc.loginCalls, "no server call for empty credentials")
	assert.False(t, g.IsAuthenticated())
}

func TestLoginFailureKeepsPriorSession(t *testing.T) {
	svc := &fakeAuthService{
		loginResp: &api.TokenResponse{
			AccessToken: "tok-1",
			User:        model.User{ID: "u1", Role: model.RoleUser},
		},
	}
	g := newTestGate(svc, newMemStore())
	require.NoError(t, g.Login(context.Background(), "a@b.c", "secret"))

	svc.loginResp = nil
	svc.loginErr = &api.AuthError{Message: "bad password"}
	err := g.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)

	user, ok := g.CurrentUser()
	require.True(t, ok, "failed login must not destroy the session")
	assert.Equal(t, "u1", user.ID)
}

func TestLoginWrapsTransportError(t *testing.T) {
	svc := &fakeAuthService{loginErr: errors.New("connection refused")}
	g := newTestGate(svc, newMemStore())

	err := g.Login(context.Background(), "a@b.c", "secret")
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err), "transport failures surface as auth errors")
}

func TestRegisterValidationErrorPassesThrough(t *testing.T) {
	svc := &fakeAuthService{
		registerErr: &api.ValidationError{Message: "email already registered"},
	}
	g := newTestGate(svc, newMemStore())

	err := g.Register(context.Background(), "Ann", "a@b.c", "secret")
	require.Error(t, err)
	assert.True(t, api.IsValidationError(err))
	assert.Contains(t, err.Error(), "email already registered")
}

func TestIsAdminDerivedFromRole(t *testing.T) {
	svc := &fakeAuthService{
		loginResp: &api.TokenResponse{
			AccessToken: "tok-1",
			User:        model.User{ID: "u1", Role: model.RoleUser},
		},
	}
	g := newTestGate(svc, newMemStore())

	assert.False(t, g.IsAdmin(), "signed out is never admin")

	require.NoError(t, g.Login(context.Background(), "a@b.c", "secret"))
	assert.False(t, g.IsAdmin())

	g.SetUser(model.User{ID: "u1", Role: model.RoleAdmin})
	assert.True(t, g.IsAdmin())

	g.Logout()
	assert.False(t, g.IsAdmin())
}

func TestLogoutClearsEverything(t *testing.T) {
	svc := &fakeAuthService{
		loginResp: &api.TokenResponse{
			AccessToken: "tok-1",
			User:        model.User{ID: "u1"},
		},
	}
	creds := newMemStore()
	g := newTestGate(svc, creds)
	require.NoError(t, g.Login(context.Background(), "a@b.c", "secret"))

	g.Logout()

	assert.False(t, g.IsAuthenticated())
	assert.Empty(t, svc.token)
	_, err := creds.Get(credential.TokenKey)
	assert.Error(t, err, "persisted token purged")

	// Idempotent.
	g.Logout()
	assert.False(t, g.IsAuthenticated())
}

func TestRestoreResolvesStoredToken(t *testing.T) {
	svc := &fakeAuthService{
		meUser: &model.User{ID: "u1", Email: "a@b.c", Role: model.RoleAdmin},
	}
	creds := newMemStore()
	creds.values[credential.TokenKey] = "tok-stored"
	g := newTestGate(svc, creds)

	g.Restore(context.Background())

	require.True(t, g.IsAuthenticated())
	assert.True(t, g.IsAdmin())
	assert.Equal(t, "tok-stored", svc.token)
}

func TestRestoreRejectedTokenStaysSignedOutSilently(t *testing.T) {
	svc := &fakeAuthService{meErr: &api.AuthError{Message: "token expired"}}
	creds := newMemStore()
	creds.values[credential.TokenKey] = "tok-stale"
	g := newTestGate(svc, creds)

	g.Restore(context.Background())

	assert.False(t, g.IsAuthenticated())
	assert.Empty(t, svc.token, "rejected token removed from the client")
	_, err := creds.Get(credential.TokenKey)
	assert.Error(t, err, "stale token purged from the store")
}

func TestRestoreWithoutStoredTokenIsNoop(t *testing.T) {
	svc := &fakeAuthService{}
	g := newTestGate(svc, newMemStore())

	g.Restore(context.Background())

	assert.False(t, g.IsAuthenticated())
	assert.Zero(t, svc.meCalls, "no server call without a stored token")
}

func TestPersistFailureStillSignsIn(t *testing.T) {
	svc := &fakeAuthService{
		loginResp: &api.TokenResponse{
			AccessToken: "tok-1",
			User:        model.User{ID: "u1"},
		},
	}
	creds := newMemStore()
	creds.setErr = errors.New("keyring unavailable")
	g := newTestGate(svc, creds)

	err := g.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err, "keyring trouble must not block sign in")
	assert.True(t, g.IsAuthenticated())
}
