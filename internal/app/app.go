// Package app wires the views together: one root Bubble Tea model that
// owns routing, the authenticated session, and the notification inbox.
// Protected views are only reachable with a live session; the admin
// console additionally requires the admin role.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/teamup-platform/teamup-cli/internal/api"
	"github.com/teamup-platform/teamup-cli/internal/cache"
	"github.com/teamup-platform/teamup-cli/internal/keys"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/notify"
	"github.com/teamup-platform/teamup-cli/internal/session"
	"github.com/teamup-platform/teamup-cli/internal/theme"
	"github.com/teamup-platform/teamup-cli/internal/ui"
	"github.com/teamup-platform/teamup-cli/internal/ui/admin"
	"github.com/teamup-platform/teamup-cli/internal/ui/assignments"
	"github.com/teamup-platform/teamup-cli/internal/ui/chapter"
	"github.com/teamup-platform/teamup-cli/internal/ui/coursedetail"
	"github.com/teamup-platform/teamup-cli/internal/ui/dashboard"
	"github.com/teamup-platform/teamup-cli/internal/ui/help"
	"github.com/teamup-platform/teamup-cli/internal/ui/login"
	"github.com/teamup-platform/teamup-cli/internal/ui/notifpanel"
	"github.com/teamup-platform/teamup-cli/internal/ui/profile"
	"github.com/teamup-platform/teamup-cli/internal/ui/quiz"
)

// ViewState identifies the active view.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewDashboard
	ViewCourse
	ViewChapter
	ViewQuiz
	ViewAssignments
	ViewProfile
	ViewNotifications
	ViewAdmin
	ViewEnroll
	ViewHelp
)

// restoredMsg is sent once startup session restoration has settled.
type restoredMsg struct{}

// enrolledMsg reports the outcome of an enrollment attempt.
type enrolledMsg struct {
	courseID string
	err      error
}

// cacheSavedMsg reports a background snapshot write; only logged.
type cacheSavedMsg struct {
	err error
}

const opTimeout = 30 * time.Second

// Model is the application root.
type Model struct {
	client *api.Client
	gate   *session.Gate
	sync   *notify.Synchronizer
	cache  *cache.Cache
	logger zerolog.Logger
	keys   *keys.KeyMap
	layout ui.Layout

	state     ViewState
	prevState ViewState
	restoring bool

	login       login.Model
	dashboard   dashboard.Model
	course      coursedetail.Model
	chapter     chapter.Model
	quiz        quiz.Model
	assignments assignments.Model
	profile     profile.Model
	notifpanel  notifpanel.Model
	admin       admin.Model
	help        help.Model

	// enrollment prompt state
	enrollCourse model.Course
	enrollForm   *huh.Form
	enrollCode   *string

	width  int
	height int
}

// New creates the root model. The cache may be nil when the snapshot
// store could not be opened; everything still works, just without
// offline priming.
func New(
	client *api.Client,
	gate *session.Gate,
	sync *notify.Synchronizer,
	snapshots *cache.Cache,
	logger zerolog.Logger,
) Model {
	k := keys.DefaultKeyMap()
	width, height := 100, 30
	layout := ui.NewLayout(width, height)
	contentH := layout.ContentHeight()

	var dashSnapshots dashboard.Snapshots
	if snapshots != nil {
		dashSnapshots = snapshots
	}

	return Model{
		client:      client,
		gate:        gate,
		sync:        sync,
		cache:       snapshots,
		logger:      logger,
		keys:        k,
		layout:      layout,
		state:       ViewLogin,
		restoring:   true,
		login:       login.New(gate, width, contentH),
		dashboard:   dashboard.New(client, dashSnapshots, k, width, contentH),
		course:      coursedetail.New(client, k, width, contentH),
		chapter:     chapter.New(client, k, width, contentH),
		quiz:        quiz.New(client, width, contentH),
		assignments: assignments.New(client, k, width, contentH),
		profile:     profile.New(client, width, contentH),
		notifpanel:  notifpanel.New(sync, k, width, contentH),
		admin:       admin.New(client, k, width, contentH),
		help:        help.New(k, width, contentH),
		width:       width,
		height:      height,
	}
}

// Init attempts to restore a persisted session before the first
// protected render.
func (m Model) Init() tea.Cmd {
	gate := m.gate
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		gate.Restore(ctx)
		return restoredMsg{}
	}
}

// Update handles messages for the application root.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case restoredMsg:
		m.restoring = false
		if user, ok := m.gate.CurrentUser(); ok {
			return m.enterDashboard(user)
		}
		m.state = ViewLogin
		return m, m.login.Start()

	case login.SignedInMsg:
		if user, ok := m.gate.CurrentUser(); ok {
			return m.enterDashboard(user)
		}
		return m, nil

	case notify.RefreshedMsg:
		// Re-subscribe first so no refresh result is ever dropped.
		cmds := []tea.Cmd{m.sync.WaitForNextRefresh()}
		if msg.Err == nil {
			cmds = append(cmds, m.saveNotificationSnapshot())
		} else if api.IsAuthError(msg.Err) {
			return m.forceSignOut("session expired")
		}
		return m, tea.Batch(cmds...)

	case notify.SyncFailedMsg:
		if api.IsAuthError(msg.Err) {
			return m.forceSignOut("session expired")
		}
		m.logger.Warn().Str("op", msg.Op).Err(msg.Err).
			Msg("notification sync failed")
		return m, nil

	case cacheSavedMsg:
		if msg.err != nil {
			m.logger.Debug().Err(msg.err).Msg("snapshot write failed")
		}
		return m, nil

	case notifpanel.NavigateMsg:
		return m.navigateToEntity(msg)

	case dashboard.SelectedCourseMsg:
		m.prevState = m.state
		m.state = ViewCourse
		return m, m.course.Open(msg.CourseID)

	case dashboard.EnrollRequestMsg:
		m.startEnrollPrompt(msg.Course)
		return m, m.enrollForm.Init()

	case enrolledMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m.forceSignOut("session expired")
			}
			m.logger.Warn().Err(msg.err).Msg("enrollment failed")
			m.state = ViewDashboard
			return m, m.dashboard.LoadCourses()
		}
		m.state = ViewCourse
		return m, m.course.Open(msg.courseID)

	case coursedetail.SelectedChapterMsg:
		m.state = ViewChapter
		return m, m.chapter.Open(msg.CourseID, msg.ChapterID)

	case coursedetail.SelectedAssignmentMsg:
		m.state = ViewAssignments
		return m, m.assignments.OpenAssignment(msg.AssignmentID)

	case chapter.StartQuizMsg:
		m.state = ViewQuiz
		return m, m.quiz.Start(msg.CourseID, msg.ChapterID, msg.Questions)

	case quiz.DoneMsg:
		m.state = ViewChapter
		return m, nil

	case profile.ProfileUpdatedMsg:
		if msg.Err == nil && msg.User != nil {
			m.gate.SetUser(*msg.User)
		}
		var cmd tea.Cmd
		m.profile, cmd = m.profile.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if newModel, cmd, handled := m.handleGlobalKey(msg); handled {
			return newModel, cmd
		}

	default:
		if err := loadErrOf(msg); err != nil && api.IsAuthError(err) {
			return m.forceSignOut("session expired")
		}
	}

	return m.routeToView(msg)
}

// handleGlobalKey processes keys that work across protected views. Keys
// are never stolen from text inputs: forms and the login view receive
// everything.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.Type == tea.KeyCtrlC {
		m.sync.Close()
		return m, tea.Quit, true
	}

	if !m.navKeysActive() {
		return m, nil, false
	}

	switch {
	case msg.String() == "q":
		m.sync.Close()
		return m, tea.Quit, true

	case msg.String() == "esc":
		newModel, cmd := m.goBack()
		return newModel, cmd, true

	case keyIs(msg, "n"):
		if m.state == ViewNotifications {
			return m, nil, false
		}
		m.prevState = m.state
		m.state = ViewNotifications
		return m, m.notifpanel.Open(), true

	case keyIs(msg, "d"):
		if user, ok := m.gate.CurrentUser(); ok {
			newModel, cmd := m.enterDashboard(user)
			return newModel, cmd, true
		}
		return m, nil, true

	case keyIs(msg, "t"):
		m.leaveNotifications()
		m.state = ViewAssignments
		return m, m.assignments.Open(), true

	case keyIs(msg, "p"):
		if user, ok := m.gate.CurrentUser(); ok {
			m.leaveNotifications()
			m.state = ViewProfile
			m.profile.Open(user)
		}
		return m, nil, true

	case keyIs(msg, "A"):
		// Admin route guard: non-admins stay where they are.
		if !m.gate.IsAdmin() {
			return m, nil, true
		}
		m.leaveNotifications()
		m.state = ViewAdmin
		m.admin.Open()
		return m, nil, true

	case keyIs(msg, "L"):
		newModel, cmd := m.signOut()
		return newModel, cmd, true

	case keyIs(msg, "?"):
		if m.state == ViewHelp {
			m.state = m.prevState
			return m, nil, true
		}
		m.prevState = m.state
		m.state = ViewHelp
		return m, nil, true
	}

	return m, nil, false
}

// navKeysActive reports whether global navigation keys apply in the
// current view. Forms and detail screens with their own key handling
// keep full ownership of input.
func (m Model) navKeysActive() bool {
	switch m.state {
	case ViewLogin, ViewQuiz, ViewEnroll:
		return false
	case ViewProfile:
		return !m.profile.InForm()
	case ViewAssignments:
		return !m.assignments.InDetail()
	case ViewAdmin:
		return false
	}
	return true
}

// goBack handles esc: overlays close, detail views step out, and the
// dashboard is the floor.
func (m Model) goBack() (tea.Model, tea.Cmd) {
	switch m.state {
	case ViewNotifications:
		m.notifpanel.Close()
		m.state = m.prevState
		return m, nil
	case ViewHelp:
		m.state = m.prevState
		return m, nil
	case ViewChapter:
		m.state = ViewCourse
		return m, nil
	case ViewCourse, ViewAssignments, ViewProfile:
		m.state = ViewDashboard
		return m, nil
	}
	return m, nil
}

// routeToView delivers a message to the active view's update function.
// Data messages for inactive views still land where they belong.
func (m Model) routeToView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Loaded-data messages go to their owning view regardless of focus.
	switch msg.(type) {
	case dashboard.CoursesLoadedMsg:
		m.dashboard, cmd = m.dashboard.Update(msg)
		return m, cmd
	case coursedetail.CourseLoadedMsg:
		m.course, cmd = m.course.Update(msg)
		return m, cmd
	case chapter.ChapterLoadedMsg, chapter.CompletedMsg:
		m.chapter, cmd = m.chapter.Update(msg)
		return m, cmd
	case quiz.ResultMsg:
		m.quiz, cmd = m.quiz.Update(msg)
		return m, cmd
	case assignments.WorkLoadedMsg, assignments.DetailLoadedMsg, assignments.SubmittedMsg:
		m.assignments, cmd = m.assignments.Update(msg)
		return m, cmd
	case admin.UsersLoadedMsg, admin.AnalyticsLoadedMsg, admin.CourseReportLoadedMsg,
		admin.GroupsLoadedMsg, admin.GroupLoadedMsg, admin.AdminCoursesLoadedMsg,
		admin.CourseWorkLoadedMsg, admin.SubmissionsLoadedMsg, admin.SubmissionLoadedMsg:
		m.admin, cmd = m.admin.Update(msg)
		return m, cmd
	}

	switch m.state {
	case ViewLogin:
		m.login, cmd = m.login.Update(msg)
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewCourse:
		m.course, cmd = m.course.Update(msg)
	case ViewChapter:
		m.chapter, cmd = m.chapter.Update(msg)
	case ViewQuiz:
		m.quiz, cmd = m.quiz.Update(msg)
	case ViewAssignments:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			if backCmd, handled := m.assignments.Back(); handled {
				return m, backCmd
			}
			m.state = ViewDashboard
			return m, nil
		}
		m.assignments, cmd = m.assignments.Update(msg)
	case ViewProfile:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			if m.profile.Back() {
				return m, nil
			}
			m.state = ViewDashboard
			return m, nil
		}
		m.profile, cmd = m.profile.Update(msg)
	case ViewNotifications:
		m.notifpanel, cmd = m.notifpanel.Update(msg)
	case ViewAdmin:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				if backCmd, handled := m.admin.Back(); handled {
					return m, backCmd
				}
				m.state = ViewDashboard
				return m, nil
			case "ctrl+c":
				m.sync.Close()
				return m, tea.Quit
			}
		}
		m.admin, cmd = m.admin.Update(msg)
	case ViewEnroll:
		return m.updateEnrollForm(msg)
	}

	return m, cmd
}

// enterDashboard routes to the dashboard, priming the synchronizer and
// course list from the cache on first entry.
func (m Model) enterDashboard(user model.User) (tea.Model, tea.Cmd) {
	m.leaveNotifications()
	m.state = ViewDashboard
	m.dashboard.SetUser(user.ID)

	cmds := []tea.Cmd{
		m.dashboard.Init(),
		m.sync.LoadCmd(),
		m.sync.WaitForNextRefresh(),
	}
	if m.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		items, unread, err := m.cache.Notifications(ctx, user.ID)
		cancel()
		if err == nil && len(items) > 0 {
			m.sync.Prime(items, unread)
		}
	}
	return m, tea.Batch(cmds...)
}

// signOut tears down the session, the open refresh session, and the
// local snapshots, then shows the login form.
func (m Model) signOut() (tea.Model, tea.Cmd) {
	user, _ := m.gate.CurrentUser()
	m.sync.Close()
	m.gate.Logout()

	if m.cache != nil && user.ID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := m.cache.Purge(ctx, user.ID); err != nil {
			m.logger.Debug().Err(err).Msg("purging snapshots failed")
		}
		cancel()
	}

	m.state = ViewLogin
	return m, m.login.Start()
}

// forceSignOut handles a rejected token discovered mid-session.
func (m Model) forceSignOut(reason string) (tea.Model, tea.Cmd) {
	m.logger.Info().Str("reason", reason).Msg("session invalidated")
	m.sync.Close()
	m.gate.Invalidate()
	m.state = ViewLogin
	return m, m.login.Start()
}

// navigateToEntity routes a notification click-through to the view that
// shows the referenced entity.
func (m Model) navigateToEntity(msg notifpanel.NavigateMsg) (tea.Model, tea.Cmd) {
	switch msg.EntityType {
	case model.EntityCourse:
		m.notifpanel.Close()
		m.state = ViewCourse
		return m, m.course.Open(msg.EntityID)
	case model.EntityAssignment:
		m.notifpanel.Close()
		m.state = ViewAssignments
		return m, m.assignments.OpenAssignment(msg.EntityID)
	}
	return m, nil
}

func (m *Model) leaveNotifications() {
	if m.state == ViewNotifications {
		m.notifpanel.Close()
	}
}

// saveNotificationSnapshot writes the current inbox to the cache.
func (m Model) saveNotificationSnapshot() tea.Cmd {
	if m.cache == nil {
		return nil
	}
	user, ok := m.gate.CurrentUser()
	if !ok {
		return nil
	}
	snapshots := m.cache
	state := m.sync.State()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := snapshots.SaveNotifications(ctx, user.ID, state.Items, state.UnreadCount)
		return cacheSavedMsg{err: err}
	}
}

// startEnrollPrompt opens the enrollment-code form for a course.
func (m *Model) startEnrollPrompt(course model.Course) {
	m.prevState = m.state
	m.state = ViewEnroll
	m.enrollCourse = course
	m.enrollCode = new(string)
	m.enrollForm = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(fmt.Sprintf("Enrollment code for %q", course.Title)).
			Value(m.enrollCode),
	)).WithWidth(m.layout.ContentWidth() - 4)
}

func (m Model) updateEnrollForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.enrollForm == nil {
		m.state = ViewDashboard
		return m, nil
	}

	mdl, cmd := m.enrollForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.enrollForm = f
	}

	if m.enrollForm.State == huh.StateCompleted {
		client := m.client
		courseID := m.enrollCourse.ID
		code := strings.TrimSpace(*m.enrollCode)
		m.enrollForm = nil
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()
			err := client.Participate(ctx, courseID, code)
			return enrolledMsg{courseID: courseID, err: err}
		}
	}
	if m.enrollForm.State == huh.StateAborted {
		m.enrollForm = nil
		m.state = m.prevState
	}

	return m, cmd
}

// View renders the application.
func (m Model) View() string {
	if m.restoring {
		return theme.HelpStyle.Render("Restoring session...")
	}

	header := m.layout.RenderHeader("TeamUp", m.headerIndicator())
	statusBar := m.layout.RenderStatusBar(m.statusHints())

	var content string
	switch m.state {
	case ViewLogin:
		content = m.login.View()
	case ViewDashboard:
		content = m.dashboard.View()
	case ViewCourse:
		content = m.course.View()
	case ViewChapter:
		content = m.chapter.View()
	case ViewQuiz:
		content = m.quiz.View()
	case ViewAssignments:
		content = m.assignments.View()
	case ViewProfile:
		content = m.profile.View()
	case ViewNotifications:
		content = m.notifpanel.View()
	case ViewAdmin:
		content = m.admin.View()
	case ViewEnroll:
		if m.enrollForm != nil {
			content = lipgloss.NewStyle().Padding(1, 2).Render(m.enrollForm.View())
		}
	case ViewHelp:
		content = m.help.View()
	}

	content = lipgloss.NewStyle().
		Height(m.layout.ContentHeight()).
		Render(content)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// headerIndicator renders the session identity and the bell badge.
func (m Model) headerIndicator() string {
	user, ok := m.gate.CurrentUser()
	if !ok {
		return "signed out"
	}
	bell := ui.BellBadge(m.sync.State().UnreadCount)
	return fmt.Sprintf("%s | %s", bell, user.Email)
}

func (m Model) statusHints() string {
	switch m.state {
	case ViewLogin:
		return "tab next field, enter submit, ctrl+c quit"
	case ViewDashboard:
		hints := "enter open, n notifications, t assignments, p profile, L log out, q quit"
		if m.gate.IsAdmin() {
			hints = "enter open, n notifications, A admin, p profile, L log out, q quit"
		}
		return hints
	case ViewChapter:
		return "c complete, z quiz, esc back"
	case ViewNotifications:
		return "enter open, m mark all read, x clear, esc close"
	case ViewAdmin:
		return "enter open, esc back, ctrl+c quit"
	default:
		return "esc back, n notifications, q quit"
	}
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.layout = ui.NewLayout(width, height)
	contentH := m.layout.ContentHeight()

	m.login.SetSize(width, contentH)
	m.dashboard.SetSize(width, contentH)
	m.course.SetSize(width, contentH)
	m.chapter.SetSize(width, contentH)
	m.quiz.SetSize(width, contentH)
	m.assignments.SetSize(width, contentH)
	m.profile.SetSize(width, contentH)
	m.notifpanel.SetSize(width, contentH)
	m.admin.SetSize(width, contentH)
	m.help.SetSize(width, contentH)
}

// keyIs matches a plain key press without modifiers.
func keyIs(msg tea.KeyMsg, s string) bool {
	return msg.String() == s
}

// loadErrOf extracts the error from view data messages so a rejected
// token discovered by any fetch signs the user out.
func loadErrOf(msg tea.Msg) error {
	switch msg := msg.(type) {
	case dashboard.CoursesLoadedMsg:
		return msg.Err
	case coursedetail.CourseLoadedMsg:
		return msg.Err
	case chapter.ChapterLoadedMsg:
		return msg.Err
	case chapter.CompletedMsg:
		return msg.Err
	case quiz.ResultMsg:
		return msg.Err
	case assignments.WorkLoadedMsg:
		return msg.Err
	case assignments.DetailLoadedMsg:
		return msg.Err
	case assignments.SubmittedMsg:
		return msg.Err
	case admin.UsersLoadedMsg:
		return msg.Err
	case admin.AnalyticsLoadedMsg:
		return msg.Err
	case admin.CourseReportLoadedMsg:
		return msg.Err
	case admin.GroupsLoadedMsg:
		return msg.Err
	case admin.GroupLoadedMsg:
		return msg.Err
	case admin.AdminCoursesLoadedMsg:
		return msg.Err
	case admin.CourseWorkLoadedMsg:
		return msg.Err
	case admin.SubmissionsLoadedMsg:
		return msg.Err
	case admin.SubmissionLoadedMsg:
		return msg.Err
	}
	return nil
}
