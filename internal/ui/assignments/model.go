package assignments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/teamup-platform/teamup-cli/internal/keys"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// AssignmentService is the slice of the API client this view depends on.
type AssignmentService interface {
	MyAssignments(ctx context.Context) ([]model.MyAssignmentWork, error)
	Assignment(ctx context.Context, assignmentID string) (*model.AssignmentDetail, error)
	Submissions(ctx context.Context, assignmentID string) ([]model.SubmissionSummary, error)
	CreateSubmission(
		ctx context.Context,
		assignmentID string,
		payload model.SubmissionCreate,
	) (*model.SubmissionDetail, error)
}

// WorkLoadedMsg carries the caller's assignment standing.
type WorkLoadedMsg struct {
	Items []model.MyAssignmentWork
	Err   error
}

// DetailLoadedMsg carries one assignment with the caller's submissions.
type DetailLoadedMsg struct {
	Detail      *model.AssignmentDetail
	Submissions []model.SubmissionSummary
	Err         error
}

// SubmittedMsg is sent after a submission attempt.
type SubmittedMsg struct {
	Err error
}

const loadTimeout = 30 * time.Second

type mode int

const (
	modeList mode = iota
	modeDetail
	modeSubmit
)

// workItem wraps MyAssignmentWork for the bubbles list.
type workItem struct {
	work model.MyAssignmentWork
}

func (i workItem) FilterValue() string { return i.work.AssignmentTitle }

func (i workItem) Title() string {
	grade := theme.GradeStyle(i.work.Grade)
	label := "not submitted"
	if i.work.LatestSubmissionID != nil {
		label = "submitted"
	}
	if i.work.Grade != nil {
		label = fmt.Sprintf("%.0f", *i.work.Grade)
	}
	return fmt.Sprintf("%s  %s", i.work.AssignmentTitle, grade.Render(label))
}

func (i workItem) Description() string {
	return i.work.CourseTitle
}

// submitBindings keeps form values on the heap across model copies.
type submitBindings struct {
	repositoryURL string
	textAnswer    string
}

// Model is the assignments view: the caller's work overview, one
// assignment's detail, and the submission form.
type Model struct {
	list list.Model
	svc  AssignmentService
	keys *keys.KeyMap

	mode        mode
	assignmentID string
	detail      *model.AssignmentDetail
	submissions []model.SubmissionSummary

	form *huh.Form
	fb   *submitBindings

	loading    bool
	submitting bool
	errMsg     string
	notice     string

	width  int
	height int
}

// New creates the assignments view.
func New(svc AssignmentService, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-2)
	l.Title = "My assignments"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		svc:    svc,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Open resets the view to the overview list and returns its load command.
func (m *Model) Open() tea.Cmd {
	m.mode = modeList
	m.loading = true
	m.errMsg = ""
	m.notice = ""
	return m.loadWork()
}

// OpenAssignment jumps straight to one assignment's detail, used for
// notification click-through.
func (m *Model) OpenAssignment(assignmentID string) tea.Cmd {
	m.mode = modeDetail
	m.assignmentID = assignmentID
	m.detail = nil
	m.loading = true
	m.errMsg = ""
	m.notice = ""
	return m.loadDetail()
}

// InDetail reports whether the view is past the overview list, so the
// root model can route esc to it instead of leaving the view.
func (m Model) InDetail() bool { return m.mode != modeList }

// Back steps the view out one level. It returns false when already at
// the overview list.
func (m *Model) Back() (tea.Cmd, bool) {
	switch m.mode {
	case modeSubmit:
		m.mode = modeDetail
		m.form = nil
		return nil, true
	case modeDetail:
		m.mode = modeList
		m.loading = true
		return m.loadWork(), true
	}
	return nil, false
}

func (m Model) loadWork() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		items, err := svc.MyAssignments(ctx)
		return WorkLoadedMsg{Items: items, Err: err}
	}
}

func (m Model) loadDetail() tea.Cmd {
	svc := m.svc
	assignmentID := m.assignmentID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		detail, err := svc.Assignment(ctx, assignmentID)
		if err != nil {
			return DetailLoadedMsg{Err: err}
		}
		subs, err := svc.Submissions(ctx, assignmentID)
		if err != nil {
			subs = nil
		}
		return DetailLoadedMsg{Detail: detail, Submissions: subs}
	}
}

func (m Model) submit() tea.Cmd {
	svc := m.svc
	assignmentID := m.assignmentID
	payload := model.SubmissionCreate{
		RepositoryURL: strings.TrimSpace(m.fb.repositoryURL),
		TextAnswer:    strings.TrimSpace(m.fb.textAnswer),
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		_, err := svc.CreateSubmission(ctx, assignmentID, payload)
		return SubmittedMsg{Err: err}
	}
}

// Update handles messages for the assignments view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case WorkLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load assignments"
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.Items))
		for _, w := range msg.Items {
			items = append(items, workItem{work: w})
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case DetailLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load assignment"
			return m, nil
		}
		m.detail = msg.Detail
		m.submissions = msg.Submissions
		return m, nil

	case SubmittedMsg:
		m.submitting = false
		if msg.Err != nil {
			m.errMsg = "could not submit work"
			m.mode = modeDetail
			return m, nil
		}
		m.notice = "work submitted"
		m.mode = modeDetail
		m.loading = true
		return m, m.loadDetail()

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			switch {
			case key.Matches(msg, m.keys.Select):
				if item, ok := m.list.SelectedItem().(workItem); ok {
					return m, m.openSelected(item.work.AssignmentID)
				}
			case key.Matches(msg, m.keys.Refresh):
				m.loading = true
				return m, m.loadWork()
			}

		case modeDetail:
			if key.Matches(msg, m.keys.Submit) && m.detail != nil {
				m.startSubmitForm()
				return m, m.form.Init()
			}
		}
	}

	switch m.mode {
	case modeList:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case modeSubmit:
		if m.form == nil || m.submitting {
			return m, nil
		}
		mdl, cmd := m.form.Update(msg)
		if f, ok := mdl.(*huh.Form); ok {
			m.form = f
		}
		if m.form.State == huh.StateCompleted {
			m.submitting = true
			m.errMsg = ""
			return m, m.submit()
		}
		if m.form.State == huh.StateAborted {
			m.mode = modeDetail
			m.form = nil
		}
		return m, cmd
	}

	return m, nil
}

func (m *Model) openSelected(assignmentID string) tea.Cmd {
	m.mode = modeDetail
	m.assignmentID = assignmentID
	m.detail = nil
	m.loading = true
	m.errMsg = ""
	m.notice = ""
	return m.loadDetail()
}

func (m *Model) startSubmitForm() {
	m.mode = modeSubmit
	m.fb = &submitBindings{}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Repository URL").
			Placeholder("https://github.com/you/solution").
			Value(&m.fb.repositoryURL),
		huh.NewText().
			Title("Answer").
			Value(&m.fb.textAnswer),
	)).WithWidth(m.width - 4).WithHeight(m.height - 4)
}

// View renders the assignments view.
func (m Model) View() string {
	if m.loading {
		return theme.ListItemStyle.Render("Loading...")
	}

	switch m.mode {
	case modeDetail:
		return m.viewDetail()
	case modeSubmit:
		if m.submitting {
			return theme.ListItemStyle.Render("Submitting...")
		}
		if m.form != nil {
			return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
		}
		return ""
	}

	view := m.list.View()
	if m.errMsg != "" {
		view += "\n" + theme.ErrorStyle.Render(m.errMsg)
	}
	return view
}

func (m Model) viewDetail() string {
	if m.detail == nil {
		if m.errMsg != "" {
			return theme.ErrorStyle.Render(m.errMsg)
		}
		return ""
	}

	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(title.Render(m.detail.Title))
	b.WriteString("\n\n")
	b.WriteString(m.detail.Description)
	b.WriteString("\n\n")
	if m.detail.DueDate != nil {
		b.WriteString("Due: " + *m.detail.DueDate + "\n")
	}

	if len(m.submissions) > 0 {
		b.WriteString("\nSubmissions:\n")
		for _, s := range m.submissions {
			grade := "ungraded"
			if s.Grade != nil {
				grade = fmt.Sprintf("%.0f", *s.Grade)
			}
			line := fmt.Sprintf("  %s  %s", s.CreatedAt, theme.GradeStyle(s.Grade).Render(grade))
			if s.Feedback != nil && *s.Feedback != "" {
				line += "  " + theme.HelpStyle.Render(*s.Feedback)
			}
			b.WriteString(line + "\n")
		}
	}

	if m.notice != "" {
		b.WriteString("\n" + theme.ProgressStyle(100).Render(m.notice))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + theme.ErrorStyle.Render(m.errMsg))
	}
	b.WriteString("\n\n" + theme.HelpStyle.Render("s submit work, esc back"))

	return theme.DetailPanelStyle.Width(m.width - 4).Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
