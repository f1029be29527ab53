package notifpanel

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamup-platform/teamup-cli/internal/keys"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/notify"
)

// fakeFeed records mark-read calls; the list endpoints stay empty because
// these tests seed the synchronizer directly.
type fakeFeed struct {
	mu          sync.Mutex
	markReadIDs []string
}

func (f *fakeFeed) Notifications(ctx context.Context) ([]model.Notification, error) {
	return nil, nil
}

func (f *fakeFeed) UnreadCount(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeFeed) MarkNotificationRead(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markReadIDs = append(f.markReadIDs, id)
	return nil
}

func (f *fakeFeed) MarkAllNotificationsRead(ctx context.Context) error { return nil }
func (f *fakeFeed) ClearNotifications(ctx context.Context) error       { return nil }

func (f *fakeFeed) marked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.markReadIDs))
	copy(out, f.markReadIDs)
	return out
}

// runCmd executes a command and flattens a batch into its messages.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)

	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}

	var msgs []tea.Msg
	for _, c := range batch {
		if c != nil {
			msgs = append(msgs, c())
		}
	}
	return msgs
}

func TestSelectUnreadItemMarksReadAndNavigates(t *testing.T) {
	feed := &fakeFeed{}
	s := notify.New(feed, time.Hour, zerolog.Nop())
	s.Prime([]model.Notification{
		{ID: "n1", Title: "New chapter", EntityType: model.EntityCourse, EntityID: "c1"},
	}, 1)

	panel := New(s, keys.DefaultKeyMap(), 80, 24)
	panel, cmd := panel.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := runCmd(t, cmd)

	var nav *NavigateMsg
	for _, msg := range msgs {
		if n, ok := msg.(NavigateMsg); ok {
			nav = &n
		}
	}
	require.NotNil(t, nav, "selecting an item with an entity emits the navigation")
	assert.Equal(t, model.EntityCourse, nav.EntityType)
	assert.Equal(t, "c1", nav.EntityID)

	state := s.State()
	assert.True(t, state.Items[0].IsRead, "flip is applied before the server call settles")
	assert.Zero(t, state.UnreadCount)
	assert.Equal(t, []string{"n1"}, feed.marked())
}

func TestSelectReadItemNavigatesWithoutServerCall(t *testing.T) {
	feed := &fakeFeed{}
	s := notify.New(feed, time.Hour, zerolog.Nop())
	s.Prime([]model.Notification{
		{ID: "n1", EntityType: model.EntityAssignment, EntityID: "a1", IsRead: true},
	}, 0)

	panel := New(s, keys.DefaultKeyMap(), 80, 24)
	panel, cmd := panel.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := runCmd(t, cmd)

	require.Len(t, msgs, 1)
	nav, ok := msgs[0].(NavigateMsg)
	require.True(t, ok)
	assert.Equal(t, model.EntityAssignment, nav.EntityType)
	assert.Equal(t, "a1", nav.EntityID)
	assert.Empty(t, feed.marked(), "already-read items issue no call")
}

func TestSelectItemWithoutEntityOnlyMarksRead(t *testing.T) {
	feed := &fakeFeed{}
	s := notify.New(feed, time.Hour, zerolog.Nop())
	s.Prime([]model.Notification{
		{ID: "n1", Title: "Welcome"},
	}, 1)

	panel := New(s, keys.DefaultKeyMap(), 80, 24)
	panel, cmd := panel.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := runCmd(t, cmd)

	for _, msg := range msgs {
		_, ok := msg.(NavigateMsg)
		assert.False(t, ok, "no entity reference, no navigation")
	}
	assert.Equal(t, []string{"n1"}, feed.marked())
	assert.True(t, s.State().Items[0].IsRead)
}
