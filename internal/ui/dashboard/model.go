package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/teamup-platform/teamup-cli/internal/keys"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// CourseService is the slice of the API client this view depends on.
type CourseService interface {
	Courses(ctx context.Context) ([]model.Course, error)
	UserCourses(ctx context.Context) ([]model.Course, error)
	Participate(ctx context.Context, courseID, enrollmentCode string) error
}

// Snapshots primes the view from the local cache before the first fetch.
type Snapshots interface {
	Courses(ctx context.Context, userID string) ([]model.Course, error)
	SaveCourses(ctx context.Context, userID string, courses []model.Course) error
}

// CoursesLoadedMsg is sent when the course catalog has been fetched.
type CoursesLoadedMsg struct {
	Enrolled  []model.Course
	Available []model.Course
	FromCache bool
	Err       error
}

// SelectedCourseMsg is sent when the user opens a course.
type SelectedCourseMsg struct {
	CourseID string
}

// EnrollRequestMsg is sent when the user wants to join the selected course.
type EnrollRequestMsg struct {
	Course model.Course
}

const loadTimeout = 30 * time.Second

// courseItem wraps a model.Course for the bubbles list.
type courseItem struct {
	course   model.Course
	enrolled bool
}

func (i courseItem) FilterValue() string { return i.course.Title }

func (i courseItem) Title() string {
	if i.enrolled {
		progress := theme.ProgressStyle(i.course.Progress).
			Render(fmt.Sprintf("%3.0f%%", i.course.Progress))
		return fmt.Sprintf("%s  %s", i.course.Title, progress)
	}
	return i.course.Title
}

func (i courseItem) Description() string {
	parts := []string{firstLine(i.course.Description)}
	if n := len(i.course.Chapters); n > 0 {
		parts = append(parts, fmt.Sprintf("%d chapters", n))
	}
	if i.course.EstimatedMinutes != nil {
		parts = append(parts, fmt.Sprintf("~%d min", *i.course.EstimatedMinutes))
	}
	if !i.enrolled {
		parts = append(parts, "not enrolled")
	}
	return strings.Join(parts, " | ")
}

// Model is the course dashboard view.
type Model struct {
	list      list.Model
	svc       CourseService
	snapshots Snapshots
	keys      *keys.KeyMap
	userID    string
	loading   bool
	fromCache bool
	width     int
	height    int
}

// New creates the dashboard over the given services. snapshots may be nil
// when no local cache is configured.
func New(svc CourseService, snapshots Snapshots, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-2)
	l.Title = "Courses"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:      l,
		svc:       svc,
		snapshots: snapshots,
		keys:      k,
		loading:   true,
		width:     width,
		height:    height,
	}
}

// SetUser scopes cache reads and writes to the signed-in account.
func (m *Model) SetUser(userID string) {
	m.userID = userID
}

// Init primes the list from the cache, then fetches fresh data.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadFromCache(), m.LoadCourses())
}

// LoadCourses returns a command fetching the enrolled and available
// course lists from the server.
func (m Model) LoadCourses() tea.Cmd {
	svc := m.svc
	snapshots := m.snapshots
	userID := m.userID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		enrolled, err := svc.UserCourses(ctx)
		if err != nil {
			return CoursesLoadedMsg{Err: err}
		}
		all, err := svc.Courses(ctx)
		if err != nil {
			return CoursesLoadedMsg{Err: err}
		}

		enrolledIDs := make(map[string]bool, len(enrolled))
		for _, c := range enrolled {
			enrolledIDs[c.ID] = true
		}
		var available []model.Course
		for _, c := range all {
			if !enrolledIDs[c.ID] {
				available = append(available, c)
			}
		}

		if snapshots != nil && userID != "" {
			_ = snapshots.SaveCourses(ctx, userID, enrolled)
		}

		return CoursesLoadedMsg{Enrolled: enrolled, Available: available}
	}
}

// loadFromCache returns a command reading the last course snapshot so the
// list renders before the network round-trip settles.
func (m Model) loadFromCache() tea.Cmd {
	snapshots := m.snapshots
	userID := m.userID
	if snapshots == nil || userID == "" {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		courses, err := snapshots.Courses(ctx, userID)
		if err != nil || len(courses) == 0 {
			return nil
		}
		return CoursesLoadedMsg{Enrolled: courses, FromCache: true}
	}
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case CoursesLoadedMsg:
		if msg.Err != nil {
			// Background refresh failure: keep showing what we have.
			m.loading = false
			return m, nil
		}
		if msg.FromCache && !m.fromCache && len(m.list.Items()) > 0 {
			// Fresh data already arrived; ignore the stale snapshot.
			return m, nil
		}
		m.fromCache = msg.FromCache
		if !msg.FromCache {
			m.loading = false
		}

		items := make([]list.Item, 0, len(msg.Enrolled)+len(msg.Available))
		for _, c := range msg.Enrolled {
			items = append(items, courseItem{course: c, enrolled: true})
		}
		for _, c := range msg.Available {
			items = append(items, courseItem{course: c})
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			if item, ok := m.list.SelectedItem().(courseItem); ok {
				if item.enrolled {
					return m, func() tea.Msg {
						return SelectedCourseMsg{CourseID: item.course.ID}
					}
				}
				return m, func() tea.Msg {
					return EnrollRequestMsg{Course: item.course}
				}
			}

		case key.Matches(msg, m.keys.Enroll):
			if item, ok := m.list.SelectedItem().(courseItem); ok && !item.enrolled {
				return m, func() tea.Msg {
					return EnrollRequestMsg{Course: item.course}
				}
			}

		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.LoadCourses()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	if m.loading && len(m.list.Items()) == 0 {
		return theme.ListItemStyle.Render("Loading courses...")
	}

	view := m.list.View()
	if m.fromCache {
		view += "\n" + theme.HelpStyle.Render("showing cached data, refreshing...")
	}
	return view
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
