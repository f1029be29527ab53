// Package admin holds the management console: accounts, analytics,
// study groups, and course administration. Every view in here is only
// reachable for admin accounts; the root model enforces that.
package admin

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/teamup-platform/teamup-cli/internal/api"
	"github.com/teamup-platform/teamup-cli/internal/keys"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// AdminService is the slice of the API client the console depends on.
type AdminService interface {
	Users(ctx context.Context, role string) ([]model.User, error)
	UpdateUser(ctx context.Context, userID string, update model.UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, userID string) error

	Analytics(ctx context.Context) (*model.AnalyticsOverview, error)
	CourseUsersAnalytics(ctx context.Context, courseID string) (*model.CourseUsersAnalytics, error)

	Groups(ctx context.Context, filter api.GroupFilter) ([]model.GroupSummary, error)
	Group(ctx context.Context, groupID string) (*model.GroupDetail, error)
	CreateGroup(ctx context.Context, payload model.GroupCreate) (*model.GroupDetail, error)
	UpdateGroup(ctx context.Context, groupID string, payload model.GroupUpdate) (*model.GroupDetail, error)
	ArchiveGroup(ctx context.Context, groupID string) error
	AddGroupMember(ctx context.Context, groupID string, payload model.GroupMemberAdd) (*model.GroupDetail, error)
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
	EnrollGroup(ctx context.Context, groupID, courseID string) (*model.GroupDetail, error)

	Courses(ctx context.Context) ([]model.Course, error)
	CreateCourse(ctx context.Context, course model.Course) (*model.Course, error)
	UpdateCourse(ctx context.Context, courseID string, course model.Course) (*model.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error
	EnrollUser(ctx context.Context, courseID, email string) error
	CourseParticipants(ctx context.Context, courseID string) (*model.CourseParticipants, error)
	AdminCourseAssignments(ctx context.Context, courseID string) ([]model.AssignmentShort, error)
	CreateAssignment(ctx context.Context, courseID string, payload model.AssignmentCreate) (*model.AssignmentDetail, error)
	UpdateAssignment(ctx context.Context, assignmentID string, payload model.AssignmentUpdate) (*model.AssignmentDetail, error)
	DeleteAssignment(ctx context.Context, assignmentID string) error
	Submissions(ctx context.Context, assignmentID string) ([]model.SubmissionSummary, error)
	Submission(ctx context.Context, assignmentID, submissionID string) (*model.SubmissionDetail, error)
	GradeSubmission(ctx context.Context, assignmentID, submissionID string, payload model.Grade) (*model.SubmissionDetail, error)
}

type section int

const (
	sectionMenu section = iota
	sectionUsers
	sectionAnalytics
	sectionGroups
	sectionCourses
)

var menuEntries = []struct {
	label   string
	target  section
	summary string
}{
	{"Users", sectionUsers, "manage accounts"},
	{"Analytics", sectionAnalytics, "platform and course reports"},
	{"Groups", sectionGroups, "study groups and bulk enrollment"},
	{"Courses", sectionCourses, "courses, assignments, grading"},
}

// Model is the admin console root, routing between its sections.
type Model struct {
	keys    *keys.KeyMap
	section section
	cursor  int

	users     usersModel
	analytics analyticsModel
	groups    groupsModel
	courses   coursesModel

	width  int
	height int
}

// New creates the admin console.
func New(svc AdminService, k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:      k,
		users:     newUsersModel(svc, k, width, height),
		analytics: newAnalyticsModel(svc, k, width, height),
		groups:    newGroupsModel(svc, k, width, height),
		courses:   newCoursesModel(svc, k, width, height),
		width:     width,
		height:    height,
	}
}

// Open resets the console to its menu.
func (m *Model) Open() {
	m.section = sectionMenu
	m.cursor = 0
}

// Back steps out one level within the console. Returns false when the
// menu is already showing, meaning the root model should leave the view.
func (m *Model) Back() (tea.Cmd, bool) {
	switch m.section {
	case sectionMenu:
		return nil, false
	case sectionUsers:
		if m.users.mode != usersList {
			m.users.mode = usersList
			m.users.form = nil
			return nil, true
		}
	case sectionAnalytics:
		if m.analytics.back() {
			return nil, true
		}
	case sectionGroups:
		if cmd, ok := m.groups.back(); ok {
			return cmd, true
		}
	case sectionCourses:
		if cmd, ok := m.courses.back(); ok {
			return cmd, true
		}
	}
	m.section = sectionMenu
	return nil, true
}

// Update handles messages for the console.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	// Data messages always reach their section, even when the user has
	// already navigated elsewhere.
	switch msg.(type) {
	case UsersLoadedMsg, userSavedMsg:
		var cmd tea.Cmd
		m.users, cmd = m.users.update(msg)
		return m, cmd
	case AnalyticsLoadedMsg, CourseReportLoadedMsg:
		var cmd tea.Cmd
		m.analytics, cmd = m.analytics.update(msg)
		return m, cmd
	case GroupsLoadedMsg, GroupLoadedMsg, groupMutatedMsg:
		var cmd tea.Cmd
		m.groups, cmd = m.groups.update(msg)
		return m, cmd
	case AdminCoursesLoadedMsg, CourseWorkLoadedMsg, SubmissionsLoadedMsg,
		SubmissionLoadedMsg, courseMutatedMsg:
		var cmd tea.Cmd
		m.courses, cmd = m.courses.update(msg)
		return m, cmd
	}

	if m.section == sectionMenu {
		keyMsg, ok := msg.(tea.KeyMsg)
		if !ok {
			return m, nil
		}
		switch {
		case key.Matches(keyMsg, m.keys.Down):
			if m.cursor < len(menuEntries)-1 {
				m.cursor++
			}
		case key.Matches(keyMsg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(keyMsg, m.keys.Select):
			entry := menuEntries[m.cursor]
			m.section = entry.target
			switch entry.target {
			case sectionUsers:
				return m, m.users.open()
			case sectionAnalytics:
				return m, m.analytics.open()
			case sectionGroups:
				return m, m.groups.open()
			case sectionCourses:
				return m, m.courses.open()
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.section {
	case sectionUsers:
		m.users, cmd = m.users.update(msg)
	case sectionAnalytics:
		m.analytics, cmd = m.analytics.update(msg)
	case sectionGroups:
		m.groups, cmd = m.groups.update(msg)
	case sectionCourses:
		m.courses, cmd = m.courses.update(msg)
	}
	return m, cmd
}

// View renders the console.
func (m Model) View() string {
	switch m.section {
	case sectionUsers:
		return m.users.view()
	case sectionAnalytics:
		return m.analytics.view()
	case sectionGroups:
		return m.groups.view()
	case sectionCourses:
		return m.courses.view()
	}

	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(title.Render("Admin console"))
	b.WriteString("\n\n")

	for i, entry := range menuEntries {
		marker := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			marker = "> "
			style = style.Bold(true).Foreground(theme.ColorBlue)
		}
		b.WriteString(style.Render(marker+entry.label) +
			"  " + theme.HelpStyle.Render(entry.summary) + "\n")
	}

	b.WriteString("\n" + theme.HelpStyle.Render("enter open, esc back to dashboard"))
	return theme.DetailPanelStyle.Width(m.width - 4).Render(b.String())
}

// SetSize updates the console dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.users.setSize(width, height)
	m.analytics.setSize(width, height)
	m.groups.setSize(width, height)
	m.courses.setSize(width, height)
}
