// Package notify owns the client's view of the notification inbox: the
// loaded items, the unread count, and the refresh loop that runs while the
// notification panel is open. All mutations of that state happen here.
package notify

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/teamup-platform/teamup-cli/internal/model"
)

// Service is the slice of the API client the synchronizer depends on.
type Service interface {
	Notifications(ctx context.Context) ([]model.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	ClearNotifications(ctx context.Context) error
}

// State is a read-only snapshot of the inbox. Items keep server order
// (newest first); UnreadCount comes from its own endpoint and may
// transiently diverge from the loaded items until the next refresh.
type State struct {
	Items       []model.Notification
	UnreadCount int
	Loading     bool
}

// RefreshedMsg is a tea.Msg sent after a load attempt settles. Err is set
// for failed background refreshes; state is untouched in that case.
type RefreshedMsg struct {
	Err error
}

// SyncFailedMsg is a tea.Msg sent when a mutating call (mark read, mark
// all, clear) fails after the local state has already changed. The local
// flip is kept; the next successful load restores server truth.
type SyncFailedMsg struct {
	Op  string
	Err error
}

// fetchTimeout bounds a single refresh round-trip.
const fetchTimeout = 30 * time.Second

// Synchronizer keeps the bell indicator and notification list fresh while
// bounding network chatter. It is the sole owner of the inbox state.
type Synchronizer struct {
	svc      Service
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	items   []model.Notification
	unread  int
	loading bool
	open    bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	resultCh chan RefreshedMsg
}

// New creates a Synchronizer polling at the given interval while open.
func New(svc Service, interval time.Duration, logger zerolog.Logger) *Synchronizer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Synchronizer{
		svc:      svc,
		interval: interval,
		logger:   logger,
		resultCh: make(chan RefreshedMsg, 16),
	}
}

// State returns a copy of the current inbox state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Notification, len(s.items))
	copy(items, s.items)
	return State{
		Items:       items,
		UnreadCount: s.unread,
		Loading:     s.loading,
	}
}

// Prime seeds the inbox from a cached snapshot so the bell badge renders
// before the first fetch. It only applies while nothing has been loaded;
// fetched data always wins.
func (s *Synchronizer) Prime(items []model.Notification, unread int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items != nil {
		return
	}
	s.items = items
	s.unread = unread
}

// Load fetches the item list and unread count concurrently and replaces
// the local state wholesale on success. On any failure the prior state is
// left untouched; the error is returned for the caller to swallow or log,
// never to block the UI.
func (s *Synchronizer) Load(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	var (
		wg       sync.WaitGroup
		items    []model.Notification
		count    int
		itemsErr error
		countErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		items, itemsErr = s.svc.Notifications(ctx)
	}()
	go func() {
		defer wg.Done()
		count, countErr = s.svc.UnreadCount(ctx)
	}()
	wg.Wait()

	if itemsErr != nil {
		return itemsErr
	}
	if countErr != nil {
		return countErr
	}

	s.mu.Lock()
	s.items = items
	s.unread = count
	s.mu.Unlock()

	return nil
}

// LoadCmd returns a tea.Cmd that performs a one-shot load and reports the
// outcome as a RefreshedMsg.
func (s *Synchronizer) LoadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return RefreshedMsg{Err: s.Load(ctx)}
	}
}

// Open starts the panel refresh session: an immediate load, then a
// recurring refresh at the configured interval until Close. At most one
// timer runs per open session; reopening while already open is a no-op.
// The returned command subscribes to refresh results.
func (s *Synchronizer) Open() tea.Cmd {
	s.mu.Lock()
	if s.open {
		done := s.doneCh
		s.mu.Unlock()
		return s.waitOn(done)
	}
	s.open = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh := s.stopCh
	done := s.doneCh
	s.mu.Unlock()

	go s.run(stopCh)

	return s.waitOn(done)
}

// Close stops the recurring refresh and releases every subscriber waiting
// on the session's results. Safe to call repeatedly; no further periodic
// fetches happen after return. A load already in flight still applies
// when it settles (last write wins).
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return
	}
	close(s.stopCh)
	close(s.doneCh)
	s.open = false
}

// IsOpen reports whether a panel refresh session is active.
func (s *Synchronizer) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// run performs the initial load, then ticks until stopped. The ticker is
// only created after the initial load has been issued, so opening the
// panel never stacks a duplicate immediate fetch.
func (s *Synchronizer) run(stopCh chan struct{}) {
	s.refresh()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.refresh()
		}
	}
}

// refresh runs one load and publishes the outcome.
func (s *Synchronizer) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	err := s.Load(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("notification refresh failed")
	}
	s.publish(RefreshedMsg{Err: err})
}

// publish sends a refresh result without blocking the poll loop.
func (s *Synchronizer) publish(msg RefreshedMsg) {
	select {
	case s.resultCh <- msg:
	default:
	}
}

// waitForRefresh returns a tea.Cmd waiting for the next refresh result of
// the active session, or nil when no session is open.
func (s *Synchronizer) waitForRefresh() tea.Cmd {
	s.mu.Lock()
	open := s.open
	done := s.doneCh
	s.mu.Unlock()

	if !open {
		return nil
	}
	return s.waitOn(done)
}

// waitOn blocks until a refresh result arrives or the session ends, so no
// subscriber goroutine outlives its panel session. A result published in
// the same instant the session closes is still delivered.
func (s *Synchronizer) waitOn(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-s.resultCh:
			return msg
		case <-done:
			select {
			case msg := <-s.resultCh:
				return msg
			default:
				return nil
			}
		}
	}
}

// WaitForNextRefresh re-subscribes after a RefreshedMsg has been handled.
// Nil when no refresh session is open.
func (s *Synchronizer) WaitForNextRefresh() tea.Cmd {
	return s.waitForRefresh()
}

// MarkRead flips one notification to read and decrements the unread count
// (floored at zero) synchronously, then returns a command issuing the
// server call. Returns nil when the item is unknown or already read; no
// network call is made in that case. A failed server call is reported as
// SyncFailedMsg without rolling back the local flip.
func (s *Synchronizer) MarkRead(id string) tea.Cmd {
	s.mu.Lock()
	flipped := false
	for i := range s.items {
		if s.items[i].ID == id && !s.items[i].IsRead {
			s.items[i].IsRead = true
			flipped = true
			break
		}
	}
	if flipped && s.unread > 0 {
		s.unread--
	}
	s.mu.Unlock()

	if !flipped {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		if err := s.svc.MarkNotificationRead(ctx, id); err != nil {
			return SyncFailedMsg{Op: "mark-read", Err: err}
		}
		return nil
	}
}

// MarkAllRead flips every loaded item to read and zeroes the count, then
// returns a command issuing one server call. Nil when nothing is unread.
func (s *Synchronizer) MarkAllRead() tea.Cmd {
	s.mu.Lock()
	if s.unread == 0 {
		s.mu.Unlock()
		return nil
	}
	for i := range s.items {
		s.items[i].IsRead = true
	}
	s.unread = 0
	s.mu.Unlock()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		if err := s.svc.MarkAllNotificationsRead(ctx); err != nil {
			return SyncFailedMsg{Op: "mark-all-read", Err: err}
		}
		return nil
	}
}

// Clear empties the loaded items and zeroes the count, then returns a
// command issuing one server call. Nil when no items are loaded.
func (s *Synchronizer) Clear() tea.Cmd {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.items = nil
	s.unread = 0
	s.mu.Unlock()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		if err := s.svc.ClearNotifications(ctx); err != nil {
			return SyncFailedMsg{Op: "clear", Err: err}
		}
		return nil
	}
}

// setLoading guards the loading indicator flag.
func (s *Synchronizer) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
