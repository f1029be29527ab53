package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/teamup-platform/teamup-cli/internal/keys"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// AnalyticsLoadedMsg carries the platform analytics overview.
type AnalyticsLoadedMsg struct {
	Overview *model.AnalyticsOverview
	Err      error
}

// CourseReportLoadedMsg carries one course's per-user progress report.
type CourseReportLoadedMsg struct {
	Report *model.CourseUsersAnalytics
	Err    error
}

// analyticsModel is the admin analytics section: the overview table with
// a per-course drill-down.
type analyticsModel struct {
	svc  AdminService
	keys *keys.KeyMap

	overview *model.AnalyticsOverview
	report   *model.CourseUsersAnalytics
	cursor   int

	loading bool
	errMsg  string
	width   int
	height  int
}

func newAnalyticsModel(svc AdminService, k *keys.KeyMap, width, height int) analyticsModel {
	return analyticsModel{
		svc:    svc,
		keys:   k,
		width:  width,
		height: height,
	}
}

func (m *analyticsModel) open() tea.Cmd {
	m.report = nil
	m.cursor = 0
	m.loading = true
	m.errMsg = ""
	return m.load()
}

func (m analyticsModel) load() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		overview, err := svc.Analytics(ctx)
		return AnalyticsLoadedMsg{Overview: overview, Err: err}
	}
}

func (m analyticsModel) loadReport(courseID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		report, err := svc.CourseUsersAnalytics(ctx, courseID)
		return CourseReportLoadedMsg{Report: report, Err: err}
	}
}

// inReport reports whether the drill-down view is active, so esc steps
// back to the overview instead of leaving the section.
func (m analyticsModel) inReport() bool { return m.report != nil }

func (m *analyticsModel) back() bool {
	if m.report == nil {
		return false
	}
	m.report = nil
	return true
}

func (m analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case AnalyticsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load analytics"
			return m, nil
		}
		m.overview = msg.Overview
		return m, nil

	case CourseReportLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load course report"
			return m, nil
		}
		m.report = msg.Report
		return m, nil

	case tea.KeyMsg:
		if m.report != nil {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.overview != nil && m.cursor < len(m.overview.Courses)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Select):
			if m.overview != nil && m.cursor < len(m.overview.Courses) {
				m.loading = true
				return m, m.loadReport(m.overview.Courses[m.cursor].CourseID)
			}
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.load()
		}
	}

	return m, nil
}

func (m analyticsModel) view() string {
	if m.loading {
		return theme.ListItemStyle.Render("Loading analytics...")
	}
	if m.errMsg != "" {
		return theme.ErrorStyle.Render(m.errMsg)
	}
	if m.report != nil {
		return m.viewReport()
	}
	if m.overview == nil {
		return ""
	}

	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(title.Render("Platform analytics"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(
		"Users: %d (%d admins, %d students)\n",
		m.overview.TotalUsers, m.overview.TotalAdmins, m.overview.TotalStudents,
	))
	b.WriteString(fmt.Sprintf(
		"Courses: %d, chapters: %d, quizzes: %d\n",
		m.overview.TotalCourses, m.overview.TotalChapters, m.overview.TotalQuizzes,
	))
	b.WriteString(fmt.Sprintf(
		"Enrollments: %d, completed chapters: %d\n",
		m.overview.TotalEnrollments, m.overview.TotalCompletedCh,
	))
	b.WriteString("Average completion: " +
		theme.ProgressStyle(m.overview.AverageCompletionRate).
			Render(fmt.Sprintf("%.1f%%", m.overview.AverageCompletionRate)) + "\n\n")

	b.WriteString(title.Render("Per course"))
	b.WriteString("\n")
	for i, c := range m.overview.Courses {
		marker := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			marker = "> "
			style = style.Bold(true).Foreground(theme.ColorBlue)
		}
		line := fmt.Sprintf(
			"%s%s  %d enrolled  %s",
			marker, c.Title, c.TotalEnrollments,
			theme.ProgressStyle(c.CompletionRate).Render(fmt.Sprintf("%.0f%%", c.CompletionRate)),
		)
		b.WriteString(style.Render(line) + "\n")
	}

	b.WriteString("\n" + theme.HelpStyle.Render("enter course report, r refresh, esc back"))
	return theme.DetailPanelStyle.Width(m.width - 4).Render(b.String())
}

func (m analyticsModel) viewReport() string {
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(title.Render(m.report.Title))
	b.WriteString(fmt.Sprintf("  (%d chapters)\n\n", m.report.TotalChapters))

	for _, u := range m.report.Users {
		line := fmt.Sprintf(
			"%s <%s>  %s  %d done",
			u.Name, u.Email,
			theme.ProgressStyle(u.Progress).Render(fmt.Sprintf("%3.0f%%", u.Progress)),
			u.CompletedChapters,
		)
		if u.CurrentChapterTitle != nil {
			line += "  " + theme.HelpStyle.Render("at: "+*u.CurrentChapterTitle)
		}
		b.WriteString(line + "\n")
	}
	if len(m.report.Users) == 0 {
		b.WriteString(theme.HelpStyle.Render("no enrolled users"))
	}

	b.WriteString("\n" + theme.HelpStyle.Render("esc back to overview"))
	return theme.DetailPanelStyle.Width(m.width - 4).Render(b.String())
}

func (m *analyticsModel) setSize(width, height int) {
	m.width = width
	m.height = height
}
