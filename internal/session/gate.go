// Package session owns the client-held authenticated identity. The Gate is
// the single writer of the Session value; every other component reads a
// derived view through CurrentUser and IsAdmin.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/teamup-platform/teamup-cli/internal/api"
	"github.com/teamup-platform/teamup-cli/internal/credential"
	"github.com/teamup-platform/teamup-cli/internal/model"
)

// AuthService is the slice of the API client the gate depends on.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*api.TokenResponse, error)
	Register(ctx context.Context, name, email, password string) (*api.TokenResponse, error)
	Me(ctx context.Context) (*model.User, error)
	SetToken(token string)
	ClearToken()
}

// Gate maintains the session lifecycle: create on login/register, restore
// from the keyring on startup, destroy on logout or token rejection.
type Gate struct {
	svc    AuthService
	creds  credential.Store
	logger zerolog.Logger

	mu      sync.RWMutex
	session *model.Session
}

// NewGate creates a Gate over the given auth service and credential store.
func NewGate(svc AuthService, creds credential.Store, logger zerolog.Logger) *Gate {
	return &Gate{
		svc:    svc,
		creds:  creds,
		logger: logger,
	}
}

// Login authenticates with the server and replaces the current session on
// success. On failure the prior session is left untouched and the returned
// error carries a user-displayable message.
func (g *Gate) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return &api.AuthError{Message: "email and password are required"}
	}

	resp, err := g.svc.Login(ctx, email, password)
	if err != nil {
		if api.IsAuthError(err) {
			return err
		}
		return &api.AuthError{Message: api.UserMessage(err, "could not sign in")}
	}

	g.install(resp)
	return nil
}

// Register creates a new account and signs it in. A rejected payload
// (email already in use, malformed input) surfaces as a ValidationError.
func (g *Gate) Register(ctx context.Context, name, email, password string) error {
	if strings.TrimSpace(name) == "" ||
		strings.TrimSpace(email) == "" || password == "" {
		return &api.ValidationError{Message: "name, email and password are required"}
	}

	resp, err := g.svc.Register(ctx, name, email, password)
	if err != nil {
		if api.IsValidationError(err) || api.IsAuthError(err) {
			return err
		}
		return &api.AuthError{Message: api.UserMessage(err, "could not sign up")}
	}

	g.install(resp)
	return nil
}

// install replaces the session with a server-issued identity and persists
// the token so future startups can restore without re-prompting.
func (g *Gate) install(resp *api.TokenResponse) {
	g.mu.Lock()
	g.session = &model.Session{
		User:  resp.User,
		Token: resp.AccessToken,
	}
	g.mu.Unlock()

	g.svc.SetToken(resp.AccessToken)

	if err := g.creds.Set(credential.TokenKey, resp.AccessToken); err != nil {
		// The session is still valid for this run; only restoration on
		// the next startup is affected.
		g.logger.Warn().Err(err).Msg("persisting session token failed")
	}
}

// Logout clears the session and purges the persisted token. It needs no
// server round-trip and is idempotent with no active session.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.session = nil
	g.mu.Unlock()

	g.svc.ClearToken()

	if err := g.creds.Delete(credential.TokenKey); err != nil {
		g.logger.Debug().Err(err).Msg("purging session token failed")
	}
}

// Invalidate destroys the session after an authorization failure from any
// API call. Equivalent to Logout.
func (g *Gate) Invalidate() {
	g.Logout()
}

// Restore resolves a previously persisted token to a full identity. A
// missing, expired, or rejected token leaves the gate signed out without
// surfacing an error.
func (g *Gate) Restore(ctx context.Context) {
	token, err := g.creds.Get(credential.TokenKey)
	if err != nil || token == "" {
		return
	}

	g.svc.SetToken(token)

	user, err := g.svc.Me(ctx)
	if err != nil {
		g.logger.Debug().Err(err).Msg("stored session token rejected")
		g.svc.ClearToken()
		if delErr := g.creds.Delete(credential.TokenKey); delErr != nil {
			g.logger.Debug().Err(delErr).Msg("purging stale token failed")
		}
		return
	}

	g.mu.Lock()
	g.session = &model.Session{User: *user, Token: token}
	g.mu.Unlock()
}

// CurrentUser returns the authenticated identity, if any.
func (g *Gate) CurrentUser() (model.User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.session == nil {
		return model.User{}, false
	}
	return g.session.User, true
}

// SetUser updates the identity fields of the active session after a
// profile edit. No-op when signed out.
func (g *Gate) SetUser(user model.User) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session != nil {
		g.session.User = user
	}
}

// IsAuthenticated reports whether a session exists.
func (g *Gate) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session != nil
}

// IsAdmin is derived on read: true iff a session exists and its role is
// admin. Never true while signed out.
func (g *Gate) IsAdmin() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session != nil && g.session.User.Role == model.RoleAdmin
}
