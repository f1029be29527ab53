package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/teamup-platform/teamup-cli/internal/api"
	"github.com/teamup-platform/teamup-cli/internal/keys"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// AdminCoursesLoadedMsg carries the course catalog for management.
type AdminCoursesLoadedMsg struct {
	Courses []model.Course
	Err     error
}

// CourseWorkLoadedMsg carries one course's roster and assignments.
type CourseWorkLoadedMsg struct {
	Participants *model.CourseParticipants
	Assignments  []model.AssignmentShort
	Err          error
}

// SubmissionsLoadedMsg carries an assignment's submissions.
type SubmissionsLoadedMsg struct {
	Submissions []model.SubmissionSummary
	Err         error
}

// SubmissionLoadedMsg carries one submission for grading.
type SubmissionLoadedMsg struct {
	Submission *model.SubmissionDetail
	Err        error
}

// courseMutatedMsg reports the outcome of any course-scoped mutation.
type courseMutatedMsg struct {
	err error
}

type adminCourseItem struct {
	course model.Course
}

func (i adminCourseItem) FilterValue() string { return i.course.Title }
func (i adminCourseItem) Title() string       { return i.course.Title }

func (i adminCourseItem) Description() string {
	desc := fmt.Sprintf("%d chapters", len(i.course.Chapters))
	if i.course.EnrollmentCode != "" {
		desc += ", code " + i.course.EnrollmentCode
	}
	return desc
}

type courseBindings struct {
	title       string
	description string
	imageURL    string

	assignmentTitle string
	assignmentDesc  string
	assignmentDue   string

	enrollEmail string

	gradeValue string
	feedback   string
}

type coursesMode int

const (
	coursesList coursesMode = iota
	coursesDetail
	coursesForm
	coursesConfirmDelete
	coursesEnrollForm
	coursesAssignmentForm
	coursesSubmissions
	coursesSubmissionDetail
	coursesGradeForm
)

// coursesModel is the admin course management section: the catalog,
// course editing, per-course roster and assignments, and grading.
type coursesModel struct {
	list list.Model
	svc  AdminService
	keys *keys.KeyMap

	mode     coursesMode
	selected model.Course
	editing  bool

	participants *model.CourseParticipants
	assignments  []model.AssignmentShort
	assignCursor int
	editingAssignment *model.AssignmentShort

	submissions []model.SubmissionSummary
	subCursor   int
	submission  *model.SubmissionDetail

	form *huh.Form
	fb   *courseBindings

	loading bool
	errMsg  string
	notice  string
	width   int
	height  int
}

func newCoursesModel(svc AdminService, k *keys.KeyMap, width, height int) coursesModel {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-2)
	l.Title = "Manage courses"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return coursesModel{
		list:   l,
		svc:    svc,
		keys:   k,
		width:  width,
		height: height,
	}
}

func (m *coursesModel) open() tea.Cmd {
	m.mode = coursesList
	m.loading = true
	m.errMsg = ""
	m.notice = ""
	return m.load()
}

func (m coursesModel) inDetail() bool { return m.mode != coursesList }

func (m *coursesModel) back() (tea.Cmd, bool) {
	switch m.mode {
	case coursesForm, coursesConfirmDelete, coursesEnrollForm:
		m.form = nil
		if m.editing || m.mode != coursesForm {
			m.mode = coursesDetail
		} else {
			m.mode = coursesList
		}
		return nil, true
	case coursesAssignmentForm:
		m.form = nil
		m.mode = coursesDetail
		return nil, true
	case coursesGradeForm:
		m.form = nil
		m.mode = coursesSubmissionDetail
		return nil, true
	case coursesSubmissionDetail:
		m.mode = coursesSubmissions
		m.submission = nil
		return nil, true
	case coursesSubmissions:
		m.mode = coursesDetail
		m.submissions = nil
		return nil, true
	case coursesDetail:
		m.mode = coursesList
		m.loading = true
		return m.load(), true
	}
	return nil, false
}

func (m coursesModel) load() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		courses, err := svc.Courses(ctx)
		return AdminCoursesLoadedMsg{Courses: courses, Err: err}
	}
}

func (m coursesModel) loadDetail(courseID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		participants, err := svc.CourseParticipants(ctx, courseID)
		if err != nil {
			return CourseWorkLoadedMsg{Err: err}
		}
		assignments, err := svc.AdminCourseAssignments(ctx, courseID)
		if err != nil {
			assignments = nil
		}
		return CourseWorkLoadedMsg{Participants: participants, Assignments: assignments}
	}
}

func (m coursesModel) loadSubmissions(assignmentID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		subs, err := svc.Submissions(ctx, assignmentID)
		return SubmissionsLoadedMsg{Submissions: subs, Err: err}
	}
}

func (m coursesModel) loadSubmission(assignmentID, submissionID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		sub, err := svc.Submission(ctx, assignmentID, submissionID)
		return SubmissionLoadedMsg{Submission: sub, Err: err}
	}
}

func (m coursesModel) update(msg tea.Msg) (coursesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case AdminCoursesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load courses"
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.Courses))
		for _, c := range msg.Courses {
			items = append(items, adminCourseItem{course: c})
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case CourseWorkLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load course detail"
			m.mode = coursesList
			return m, nil
		}
		m.participants = msg.Participants
		m.assignments = msg.Assignments
		m.assignCursor = 0
		m.mode = coursesDetail
		return m, nil

	case SubmissionsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load submissions"
			m.mode = coursesDetail
			return m, nil
		}
		m.submissions = msg.Submissions
		m.subCursor = 0
		m.mode = coursesSubmissions
		return m, nil

	case SubmissionLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load submission"
			m.mode = coursesSubmissions
			return m, nil
		}
		m.submission = msg.Submission
		m.mode = coursesSubmissionDetail
		return m, nil

	case courseMutatedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = api.UserMessage(msg.err, "could not apply change")
			return m, nil
		}
		m.notice = "saved"
		switch m.mode {
		case coursesSubmissionDetail, coursesGradeForm:
			m.mode = coursesSubmissions
			m.submission = nil
			m.loading = true
			return m, m.loadSubmissions(m.currentAssignmentID())
		case coursesDetail, coursesEnrollForm, coursesAssignmentForm:
			m.mode = coursesDetail
			m.loading = true
			return m, m.loadDetail(m.selected.ID)
		default:
			m.mode = coursesList
			m.loading = true
			return m, m.load()
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == coursesList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m coursesModel) handleKey(msg tea.KeyMsg) (coursesModel, tea.Cmd) {
	switch m.mode {
	case coursesList:
		switch {
		case key.Matches(msg, m.keys.Select):
			if item, ok := m.list.SelectedItem().(adminCourseItem); ok {
				m.selected = item.course
				m.loading = true
				m.notice = ""
				return m, m.loadDetail(item.course.ID)
			}
		case key.Matches(msg, m.keys.New):
			m.editing = false
			m.startCourseForm(model.Course{})
			return m, m.form.Init()
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.load()
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case coursesDetail:
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.assignCursor < len(m.assignments)-1 {
				m.assignCursor++
			}
		case key.Matches(msg, m.keys.Up):
			if m.assignCursor > 0 {
				m.assignCursor--
			}
		case key.Matches(msg, m.keys.Select):
			if m.assignCursor < len(m.assignments) {
				m.loading = true
				return m, m.loadSubmissions(m.assignments[m.assignCursor].ID)
			}
		case key.Matches(msg, m.keys.Edit):
			m.editing = true
			m.startCourseForm(m.selected)
			return m, m.form.Init()
		case key.Matches(msg, m.keys.Delete):
			m.mode = coursesConfirmDelete
		case key.Matches(msg, m.keys.Enroll):
			m.startEnrollForm()
			return m, m.form.Init()
		case key.Matches(msg, m.keys.New):
			m.editingAssignment = nil
			m.startAssignmentForm(nil)
			return m, m.form.Init()
		case msg.String() == "A" && m.assignCursor < len(m.assignments):
			a := m.assignments[m.assignCursor]
			m.editingAssignment = &a
			m.startAssignmentForm(&a)
			return m, m.form.Init()
		case msg.String() == "X" && m.assignCursor < len(m.assignments):
			return m, m.deleteAssignment(m.assignments[m.assignCursor].ID)
		}
		return m, nil

	case coursesConfirmDelete:
		switch msg.String() {
		case "y":
			return m, m.deleteCourse()
		case "n", "esc":
			m.mode = coursesDetail
		}
		return m, nil

	case coursesSubmissions:
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.subCursor < len(m.submissions)-1 {
				m.subCursor++
			}
		case key.Matches(msg, m.keys.Up):
			if m.subCursor > 0 {
				m.subCursor--
			}
		case key.Matches(msg, m.keys.Select):
			if m.subCursor < len(m.submissions) {
				s := m.submissions[m.subCursor]
				m.loading = true
				return m, m.loadSubmission(s.AssignmentID, s.ID)
			}
		}
		return m, nil

	case coursesSubmissionDetail:
		if key.Matches(msg, m.keys.Grade) {
			m.startGradeForm()
			return m, m.form.Init()
		}
		return m, nil

	case coursesForm, coursesEnrollForm, coursesAssignmentForm, coursesGradeForm:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m coursesModel) updateForm(msg tea.Msg) (coursesModel, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.errMsg = ""
		switch m.mode {
		case coursesForm:
			return m, m.submitCourseForm()
		case coursesEnrollForm:
			return m, m.submitEnrollForm()
		case coursesAssignmentForm:
			return m, m.submitAssignmentForm()
		case coursesGradeForm:
			return m, m.submitGradeForm()
		}
	}
	if m.form.State == huh.StateAborted {
		if _, ok := m.back(); ok {
			return m, nil
		}
	}
	return m, cmd
}

func (m *coursesModel) startCourseForm(course model.Course) {
	m.mode = coursesForm
	m.fb = &courseBindings{
		title:       course.Title,
		description: course.Description,
		imageURL:    course.ImageURL,
	}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Title").Value(&m.fb.title),
		huh.NewText().Title("Description").Value(&m.fb.description),
		huh.NewInput().Title("Image URL").Value(&m.fb.imageURL),
	)).WithWidth(m.width - 4)
}

func (m *coursesModel) startEnrollForm() {
	m.mode = coursesEnrollForm
	m.fb = &courseBindings{}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("User email").
			Placeholder("student@example.com").
			Value(&m.fb.enrollEmail),
	)).WithWidth(m.width - 4)
}

func (m *coursesModel) startAssignmentForm(existing *model.AssignmentShort) {
	m.mode = coursesAssignmentForm
	m.fb = &courseBindings{}
	if existing != nil {
		m.fb.assignmentTitle = existing.Title
		if existing.DueDate != nil {
			m.fb.assignmentDue = *existing.DueDate
		}
	}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Assignment title").Value(&m.fb.assignmentTitle),
		huh.NewText().Title("Description").Value(&m.fb.assignmentDesc),
		huh.NewInput().
			Title("Due date").
			Placeholder("2026-10-01T00:00:00Z").
			Value(&m.fb.assignmentDue),
	)).WithWidth(m.width - 4)
}

func (m *coursesModel) startGradeForm() {
	m.mode = coursesGradeForm
	m.fb = &courseBindings{}
	if m.submission.Grade != nil {
		m.fb.gradeValue = strconv.FormatFloat(*m.submission.Grade, 'f', -1, 64)
	}
	if m.submission.Feedback != nil {
		m.fb.feedback = *m.submission.Feedback
	}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Grade (0-100)").
			Value(&m.fb.gradeValue).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}
				v, err := strconv.ParseFloat(s, 64)
				if err != nil || v < 0 || v > 100 {
					return fmt.Errorf("grade must be a number between 0 and 100")
				}
				return nil
			}),
		huh.NewText().Title("Feedback").Value(&m.fb.feedback),
	)).WithWidth(m.width - 4)
}

func (m *coursesModel) submitCourseForm() tea.Cmd {
	svc := m.svc
	editing := m.editing
	courseID := m.selected.ID
	course := m.selected
	course.Title = strings.TrimSpace(m.fb.title)
	course.Description = strings.TrimSpace(m.fb.description)
	course.ImageURL = strings.TrimSpace(m.fb.imageURL)
	m.form = nil
	m.loading = true

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var err error
		if editing {
			_, err = svc.UpdateCourse(ctx, courseID, course)
		} else {
			_, err = svc.CreateCourse(ctx, course)
		}
		return courseMutatedMsg{err: err}
	}
}

func (m *coursesModel) submitEnrollForm() tea.Cmd {
	svc := m.svc
	courseID := m.selected.ID
	email := strings.TrimSpace(m.fb.enrollEmail)
	m.form = nil
	m.loading = true

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		err := svc.EnrollUser(ctx, courseID, email)
		return courseMutatedMsg{err: err}
	}
}

func (m *coursesModel) submitAssignmentForm() tea.Cmd {
	svc := m.svc
	courseID := m.selected.ID
	editing := m.editingAssignment
	title := strings.TrimSpace(m.fb.assignmentTitle)
	description := strings.TrimSpace(m.fb.assignmentDesc)
	var dueDate *string
	if due := strings.TrimSpace(m.fb.assignmentDue); due != "" {
		dueDate = &due
	}
	m.form = nil
	m.loading = true

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var err error
		if editing != nil {
			_, err = svc.UpdateAssignment(ctx, editing.ID, model.AssignmentUpdate{
				Title:       &title,
				Description: &description,
				DueDate:     dueDate,
			})
		} else {
			_, err = svc.CreateAssignment(ctx, courseID, model.AssignmentCreate{
				Title:       title,
				Description: description,
				DueDate:     dueDate,
			})
		}
		return courseMutatedMsg{err: err}
	}
}

func (m *coursesModel) submitGradeForm() tea.Cmd {
	svc := m.svc
	assignmentID := m.submission.AssignmentID
	submissionID := m.submission.ID

	var grade *float64
	if v := strings.TrimSpace(m.fb.gradeValue); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			grade = &parsed
		}
	}
	var feedback *string
	if f := strings.TrimSpace(m.fb.feedback); f != "" {
		feedback = &f
	}
	m.form = nil
	m.loading = true

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		_, err := svc.GradeSubmission(ctx, assignmentID, submissionID, model.Grade{
			Grade:    grade,
			Feedback: feedback,
		})
		return courseMutatedMsg{err: err}
	}
}

func (m *coursesModel) deleteCourse() tea.Cmd {
	svc := m.svc
	courseID := m.selected.ID
	m.mode = coursesList
	m.loading = true

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		err := svc.DeleteCourse(ctx, courseID)
		return courseMutatedMsg{err: err}
	}
}

func (m *coursesModel) deleteAssignment(assignmentID string) tea.Cmd {
	svc := m.svc
	m.loading = true

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		err := svc.DeleteAssignment(ctx, assignmentID)
		return courseMutatedMsg{err: err}
	}
}

func (m coursesModel) currentAssignmentID() string {
	if m.submission != nil {
		return m.submission.AssignmentID
	}
	if m.assignCursor < len(m.assignments) {
		return m.assignments[m.assignCursor].ID
	}
	return ""
}

func (m coursesModel) view() string {
	if m.loading {
		return theme.ListItemStyle.Render("Loading...")
	}

	switch m.mode {
	case coursesDetail:
		return m.viewDetail()
	case coursesForm, coursesEnrollForm, coursesAssignmentForm, coursesGradeForm:
		if m.form != nil {
			return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
		}
		return ""
	case coursesConfirmDelete:
		prompt := fmt.Sprintf("Delete course %q and all its data? y/n", m.selected.Title)
		return theme.DetailPanelStyle.Render(theme.ErrorStyle.Render(prompt))
	case coursesSubmissions:
		return m.viewSubmissions()
	case coursesSubmissionDetail:
		return m.viewSubmission()
	}

	view := m.list.View()
	if m.errMsg != "" {
		view += "\n" + theme.ErrorStyle.Render(m.errMsg)
	}
	view += "\n" + theme.HelpStyle.Render("enter open, N new course, r refresh, esc back")
	return view
}

func (m coursesModel) viewDetail() string {
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(title.Render(m.selected.Title))
	if m.selected.EnrollmentCode != "" {
		b.WriteString("  " + theme.HelpStyle.Render("code "+m.selected.EnrollmentCode))
	}
	b.WriteString("\n\n")

	b.WriteString("Assignments:\n")
	for i, a := range m.assignments {
		marker := "  "
		style := lipgloss.NewStyle()
		if i == m.assignCursor {
			marker = "> "
			style = style.Bold(true).Foreground(theme.ColorBlue)
		}
		line := marker + a.Title
		if a.DueDate != nil {
			line += "  due " + *a.DueDate
		}
		b.WriteString(style.Render(line) + "\n")
	}
	if len(m.assignments) == 0 {
		b.WriteString(theme.HelpStyle.Render("  none") + "\n")
	}

	if m.participants != nil {
		b.WriteString("\nParticipants:\n")
		for _, p := range m.participants.Participants {
			line := fmt.Sprintf("  %s <%s>", p.Name, p.Email)
			if len(p.Groups) > 0 {
				names := make([]string, len(p.Groups))
				for i, g := range p.Groups {
					names[i] = g.Name
				}
				line += "  " + theme.HelpStyle.Render(strings.Join(names, ", "))
			}
			b.WriteString(line + "\n")
		}
		if len(m.participants.Participants) == 0 {
			b.WriteString(theme.HelpStyle.Render("  none") + "\n")
		}
	}

	if m.notice != "" {
		b.WriteString("\n" + theme.ProgressStyle(100).Render(m.notice))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + theme.ErrorStyle.Render(m.errMsg))
	}
	b.WriteString("\n" + theme.HelpStyle.Render(
		"enter submissions, N new assignment, A edit assignment, X delete assignment",
	))
	b.WriteString("\n" + theme.HelpStyle.Render(
		"E edit course, e enroll user, D delete course, esc back",
	))
	return theme.DetailPanelStyle.Width(m.width - 4).Render(b.String())
}

func (m coursesModel) viewSubmissions() string {
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(title.Render("Submissions"))
	b.WriteString("\n\n")

	for i, s := range m.submissions {
		marker := "  "
		style := lipgloss.NewStyle()
		if i == m.subCursor {
			marker = "> "
			style = style.Bold(true).Foreground(theme.ColorBlue)
		}
		grade := "ungraded"
		if s.Grade != nil {
			grade = fmt.Sprintf("%.0f", *s.Grade)
		}
		line := fmt.Sprintf("%s%s  %s  %s",
			marker, s.UserName, s.CreatedAt,
			theme.GradeStyle(s.Grade).Render(grade),
		)
		b.WriteString(style.Render(line) + "\n")
	}
	if len(m.submissions) == 0 {
		b.WriteString(theme.HelpStyle.Render("no submissions yet"))
	}

	b.WriteString("\n" + theme.HelpStyle.Render("enter open, esc back"))
	return theme.DetailPanelStyle.Width(m.width - 4).Render(b.String())
}

func (m coursesModel) viewSubmission() string {
	s := m.submission
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(title.Render("Submission by " + s.UserName))
	b.WriteString("\n\n")
	b.WriteString("Email: " + s.UserEmail + "\n")
	if s.RepositoryURL != nil && *s.RepositoryURL != "" {
		b.WriteString("Repository: " + *s.RepositoryURL + "\n")
	}
	if s.TextAnswer != nil && *s.TextAnswer != "" {
		b.WriteString("\n" + *s.TextAnswer + "\n")
	}

	grade := "ungraded"
	if s.Grade != nil {
		grade = fmt.Sprintf("%.0f", *s.Grade)
	}
	b.WriteString("\nGrade: " + theme.GradeStyle(s.Grade).Render(grade) + "\n")
	if s.Feedback != nil && *s.Feedback != "" {
		b.WriteString("Feedback: " + *s.Feedback + "\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n" + theme.ErrorStyle.Render(m.errMsg))
	}
	b.WriteString("\n" + theme.HelpStyle.Render("g grade, esc back"))
	return theme.DetailPanelStyle.Width(m.width - 4).Render(b.String())
}

func (m *coursesModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
