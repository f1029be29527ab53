package app

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamup-platform/teamup-cli/internal/api"
	"github.com/teamup-platform/teamup-cli/internal/credential"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/notify"
	"github.com/teamup-platform/teamup-cli/internal/session"
	"github.com/teamup-platform/teamup-cli/internal/ui/notifpanel"
)

// fakeAuth resolves every credential to the configured user.
type fakeAuth struct {
	user model.User
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*api.TokenResponse, error) {
	return &api.TokenResponse{AccessToken: "tok", TokenType: "bearer", User: f.user}, nil
}

func (f *fakeAuth) Register(ctx context.Context, name, email, password string) (*api.TokenResponse, error) {
	return &api.TokenResponse{AccessToken: "tok", TokenType: "bearer", User: f.user}, nil
}

func (f *fakeAuth) Me(ctx context.Context) (*model.User, error) {
	u := f.user
	return &u, nil
}

func (f *fakeAuth) SetToken(token string) {}
func (f *fakeAuth) ClearToken()           {}

type memStore struct {
	vals map[string]string
}

func (s *memStore) Get(key string) (string, error) {
	v, ok := s.vals[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (s *memStore) Set(key, value string) error {
	s.vals[key] = value
	return nil
}

func (s *memStore) Delete(key string) error {
	delete(s.vals, key)
	return nil
}

// quietFeed keeps the synchronizer silent; these tests never open the panel.
type quietFeed struct{}

func (quietFeed) Notifications(ctx context.Context) ([]model.Notification, error) {
	return nil, nil
}
func (quietFeed) UnreadCount(ctx context.Context) (int, error)          { return 0, nil }
func (quietFeed) MarkNotificationRead(ctx context.Context, id string) error { return nil }
func (quietFeed) MarkAllNotificationsRead(ctx context.Context) error    { return nil }
func (quietFeed) ClearNotifications(ctx context.Context) error          { return nil }

func newTestApp(auth *fakeAuth, store credential.Store) Model {
	client := api.NewClient("http://localhost:0")
	gate := session.NewGate(auth, store, zerolog.Nop())
	sync := notify.New(quietFeed{}, time.Hour, zerolog.Nop())
	return New(client, gate, sync, nil, zerolog.Nop())
}

// startRestored runs the startup restore and returns the settled model.
func startRestored(t *testing.T, m Model) Model {
	t.Helper()

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, restoredMsg{}, msg)

	updated, _ := m.Update(msg)
	return updated.(Model)
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStartupWithoutSessionLandsOnLogin(t *testing.T) {
	m := newTestApp(&fakeAuth{}, &memStore{vals: map[string]string{}})

	got := startRestored(t, m)

	assert.Equal(t, ViewLogin, got.state)
	assert.False(t, got.gate.IsAuthenticated())
}

func TestStartupWithStoredTokenLandsOnDashboard(t *testing.T) {
	auth := &fakeAuth{user: model.User{ID: "u1", Email: "ana@example.com", Role: model.RoleUser}}
	store := &memStore{vals: map[string]string{credential.TokenKey: "tok"}}
	m := newTestApp(auth, store)

	got := startRestored(t, m)

	assert.Equal(t, ViewDashboard, got.state)
	assert.True(t, got.gate.IsAuthenticated())
}

func TestAdminKeyKeepsNonAdminOnDashboard(t *testing.T) {
	auth := &fakeAuth{user: model.User{ID: "u1", Email: "ana@example.com", Role: model.RoleUser}}
	store := &memStore{vals: map[string]string{credential.TokenKey: "tok"}}
	got := startRestored(t, newTestApp(auth, store))
	require.Equal(t, ViewDashboard, got.state)

	updated, _ := got.Update(keyPress("A"))
	after := updated.(Model)

	assert.Equal(t, ViewDashboard, after.state, "non-admins stay on an authenticated view")
	assert.True(t, after.gate.IsAuthenticated(), "the guard never signs the user out")
}

func TestAdminKeyOpensConsoleForAdmins(t *testing.T) {
	auth := &fakeAuth{user: model.User{ID: "u1", Email: "root@example.com", Role: model.RoleAdmin}}
	store := &memStore{vals: map[string]string{credential.TokenKey: "tok"}}
	got := startRestored(t, newTestApp(auth, store))

	updated, _ := got.Update(keyPress("A"))
	after := updated.(Model)

	assert.Equal(t, ViewAdmin, after.state)
}

func TestCourseNotificationNavigatesToCourseView(t *testing.T) {
	auth := &fakeAuth{user: model.User{ID: "u1", Email: "ana@example.com", Role: model.RoleUser}}
	store := &memStore{vals: map[string]string{credential.TokenKey: "tok"}}
	got := startRestored(t, newTestApp(auth, store))

	updated, cmd := got.Update(notifpanel.NavigateMsg{
		EntityType: model.EntityCourse,
		EntityID:   "c9",
	})
	after := updated.(Model)

	assert.Equal(t, ViewCourse, after.state)
	assert.Equal(t, "c9", after.course.CourseID())
	assert.NotNil(t, cmd, "navigation issues the course fetch")
}
