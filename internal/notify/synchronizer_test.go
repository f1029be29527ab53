package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamup-platform/teamup-cli/internal/model"
)

// fakeService scripts the notification endpoints and counts calls.
type fakeService struct {
	mu    sync.Mutex
	items []model.Notification
	count int

	listErr  error
	countErr error
	markErr  error

	listCalls    int
	markCalls    int
	markAllCalls int
	clearCalls   int
}

func (f *fakeService) Notifications(ctx context.Context) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Notification, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeService) UnreadCount(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.count, nil
}

func (f *fakeService) MarkNotificationRead(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls++
	return f.markErr
}

func (f *fakeService) MarkAllNotificationsRead(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markAllCalls++
	return f.markErr
}

func (f *fakeService) ClearNotifications(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	return f.markErr
}

func (f *fakeService) calls() (list, mark, markAll, clear int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.markCalls, f.markAllCalls, f.clearCalls
}

func notif(id string, read bool) model.Notification {
	return model.Notification{ID: id, Title: "n-" + id, IsRead: read}
}

func newTestSync(svc Service, interval time.Duration) *Synchronizer {
	return New(svc, interval, zerolog.Nop())
}

func TestLoadReplacesStateWholesale(t *testing.T) {
	svc := &fakeService{
		items: []model.Notification{notif("1", false), notif("2", true)},
		count: 1,
	}
	s := newTestSync(svc, time.Minute)

	require.NoError(t, s.Load(context.Background()))

	state := s.State()
	require.Len(t, state.Items, 2)
	assert.Equal(t, "1", state.Items[0].ID, "server order preserved")
	assert.Equal(t, 1, state.UnreadCount)
}

func TestLoadFailureLeavesStateUntouched(t *testing.T) {
	svc := &fakeService{
		items: []model.Notification{notif("1", false)},
		count: 1,
	}
	s := newTestSync(svc, time.Minute)
	require.NoError(t, s.Load(context.Background()))

	svc.mu.Lock()
	svc.listErr = errors.New("boom")
	svc.mu.Unlock()

	err := s.Load(context.Background())
	require.Error(t, err)

	state := s.State()
	assert.Len(t, state.Items, 1, "failed refresh keeps prior items")
	assert.Equal(t, 1, state.UnreadCount)
}

func TestMarkReadFlipsLocallyBeforeServerCall(t *testing.T) {
	svc := &fakeService{
		items: []model.Notification{notif("1", false), notif("2", false)},
		count: 2,
	}
	s := newTestSync(svc, time.Minute)
	require.NoError(t, s.Load(context.Background()))

	cmd := s.MarkRead("1")
	require.NotNil(t, cmd)

	// The flip and the decrement are visible before the command runs.
	state := s.State()
	assert.True(t, state.Items[0].IsRead)
	assert.Equal(t, 1, state.UnreadCount)

	msg := cmd()
	assert.Nil(t, msg, "successful sync yields no message")
	_, mark, _, _ := svc.calls()
	assert.Equal(t, 1, mark)
}

func TestMarkReadUnknownOrReadIsNoop(t *testing.T) {
	svc := &fakeService{
		items: []model.Notification{notif("1", true)},
		count: 0,
	}
	s := newTestSync(svc, time.Minute)
	require.NoError(t, s.Load(context.Background()))

	assert.Nil(t, s.MarkRead("missing"), "unknown id issues no call")
	assert.Nil(t, s.MarkRead("1"), "already-read issues no call")

	_, mark, _, _ := svc.calls()
	assert.Zero(t, mark)
	assert.Equal(t, 0, s.State().UnreadCount)
}

func TestMarkReadCountFlooredAtZero(t *testing.T) {
	// Count endpoint may transiently lag the item list.
	svc := &fakeService{
		items: []model.Notification{notif("1", false)},
		count: 0,
	}
	s := newTestSync(svc, time.Minute)
	require.NoError(t, s.Load(context.Background()))

	cmd := s.MarkRead("1")
	require.NotNil(t, cmd)
	assert.Equal(t, 0, s.State().UnreadCount, "count never goes negative")
}

func TestMarkReadFailureKeepsLocalFlip(t *testing.T) {
	svc := &fakeService{
		items: []model.Notification{notif("1", false)},
		count: 1,
	}
	s := newTestSync(svc, time.Minute)
	require.NoError(t, s.Load(context.Background()))

	svc.mu.Lock()
	svc.markErr = errors.New("boom")
	svc.mu.Unlock()

	cmd := s.MarkRead("1")
	require.NotNil(t, cmd)

	msg := cmd()
	failed, ok := msg.(SyncFailedMsg)
	require.True(t, ok)
	assert.Equal(t, "mark-read", failed.Op)

	state := s.State()
	assert.True(t, state.Items[0].IsRead, "no rollback on sync failure")
	assert.Equal(t, 0, state.UnreadCount)
}

func TestMarkAllRead(t *testing.T) {
	svc := &fakeService{
		items: []model.Notification{notif("1", false), notif("2", false)},
		count: 2,
	}
	s := newTestSync(svc, time.Minute)
	require.NoError(t, s.Load(context.Background()))

	cmd := s.MarkAllRead()
	require.NotNil(t, cmd)

	state := s.State()
	for _, item := range state.Items {
		assert.True(t, item.IsRead)
	}
	assert.Equal(t, 0, state.UnreadCount)

	assert.Nil(t, cmd())
	_, _, markAll, _ := svc.calls()
	assert.Equal(t, 1, markAll)

	assert.Nil(t, s.MarkAllRead(), "nothing unread issues no call")
}

func TestClear(t *testing.T) {
	svc := &fakeService{
		items: []model.Notification{notif("1", false)},
		count: 1,
	}
	s := newTestSync(svc, time.Minute)
	require.NoError(t, s.Load(context.Background()))

	cmd := s.Clear()
	require.NotNil(t, cmd)

	state := s.State()
	assert.Empty(t, state.Items)
	assert.Equal(t, 0, state.UnreadCount)

	assert.Nil(t, cmd())
	_, _, _, clear := svc.calls()
	assert.Equal(t, 1, clear)

	assert.Nil(t, s.Clear(), "empty inbox issues no call")
}

func TestOpenLoadsImmediatelyAndCloseStopsTimer(t *testing.T) {
	svc := &fakeService{count: 0}
	s := newTestSync(svc, 20*time.Millisecond)

	cmd := s.Open()
	require.NotNil(t, cmd)

	// Initial load happens without waiting for the first tick.
	msg := cmd()
	_, ok := msg.(RefreshedMsg)
	require.True(t, ok)

	// Let at least one periodic refresh land.
	time.Sleep(60 * time.Millisecond)
	list1, _, _, _ := svc.calls()
	assert.GreaterOrEqual(t, list1, 2, "periodic refresh while open")

	s.Close()
	time.Sleep(30 * time.Millisecond)
	list2, _, _, _ := svc.calls()
	time.Sleep(50 * time.Millisecond)
	list3, _, _, _ := svc.calls()
	assert.Equal(t, list2, list3, "no fetches after close")

	// Idempotent.
	s.Close()
	assert.False(t, s.IsOpen())
}

func TestOpenWhileOpenIsNoop(t *testing.T) {
	svc := &fakeService{}
	s := newTestSync(svc, time.Hour)

	_ = s.Open()
	require.True(t, s.IsOpen())
	time.Sleep(10 * time.Millisecond)
	listBefore, _, _, _ := svc.calls()

	_ = s.Open()
	time.Sleep(10 * time.Millisecond)
	listAfter, _, _, _ := svc.calls()
	assert.Equal(t, listBefore, listAfter, "reopen does not stack a second immediate fetch")

	s.Close()
}

func TestCloseReleasesSubscribers(t *testing.T) {
	svc := &fakeService{}
	s := newTestSync(svc, time.Hour)

	cmd := s.Open()
	require.NotNil(t, cmd)
	_ = cmd() // consume the initial refresh result

	sub := s.WaitForNextRefresh()
	require.NotNil(t, sub)
	extra := s.Open() // redundant open only re-subscribes
	require.NotNil(t, extra)

	s.Close()

	results := make(chan tea.Msg, 2)
	go func() { results <- sub() }()
	go func() { results <- extra() }()

	for i := 0; i < 2; i++ {
		select {
		case msg := <-results:
			assert.Nil(t, msg, "released subscriber carries no result")
		case <-time.After(2 * time.Second):
			t.Fatal("subscriber still blocked after close")
		}
	}
}

func TestSubscribeWhileClosedYieldsNoCommand(t *testing.T) {
	s := newTestSync(&fakeService{}, time.Hour)
	assert.Nil(t, s.WaitForNextRefresh())

	_ = s.Open()
	s.Close()
	assert.Nil(t, s.WaitForNextRefresh())
}

func TestPrimeOnlyAppliesToEmptyState(t *testing.T) {
	svc := &fakeService{
		items: []model.Notification{notif("fresh", false)},
		count: 1,
	}
	s := newTestSync(svc, time.Minute)

	s.Prime([]model.Notification{notif("cached", true)}, 0)
	state := s.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "cached", state.Items[0].ID)

	require.NoError(t, s.Load(context.Background()))
	s.Prime([]model.Notification{notif("stale", true)}, 9)

	state = s.State()
	assert.Equal(t, "fresh", state.Items[0].ID, "fetched data wins over cache")
	assert.Equal(t, 1, state.UnreadCount)
}

func TestDefaultInterval(t *testing.T) {
	s := New(&fakeService{}, 0, zerolog.Nop())
	assert.Equal(t, 30*time.Second, s.interval)
}
