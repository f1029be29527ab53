package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// QuizService is the slice of the API client this view depends on.
type QuizService interface {
	SubmitQuiz(
		ctx context.Context,
		courseID, chapterID string,
		answers map[string]interface{},
	) (*model.QuizResult, error)
}

// ResultMsg carries the server's grading of a quiz attempt.
type ResultMsg struct {
	Result *model.QuizResult
	Err    error
}

// DoneMsg is sent when the user leaves the result screen.
type DoneMsg struct {
	CourseID string
	Passed   bool
}

const submitTimeout = 30 * time.Second

// formBindings keeps answer values on the heap so huh's pointers stay
// valid across Bubble Tea model copies.
type formBindings struct {
	// choice answers keyed by question index, holding the option index
	// as its decimal string.
	choices map[int]*string
	// text answers keyed by question index.
	texts map[int]*string
}

// Model is the quiz-taking view built on a huh form.
type Model struct {
	svc       QuizService
	form      *huh.Form
	fb        *formBindings
	courseID  string
	chapterID string
	questions []model.Quiz

	submitting bool
	result     *model.QuizResult
	errMsg     string

	width  int
	height int
}

// New creates the quiz view.
func New(svc QuizService, width, height int) Model {
	return Model{
		svc:    svc,
		width:  width,
		height: height,
	}
}

// Start initializes the form for the given chapter quiz.
func (m *Model) Start(courseID, chapterID string, questions []model.Quiz) tea.Cmd {
	m.courseID = courseID
	m.chapterID = chapterID
	m.questions = questions
	m.submitting = false
	m.result = nil
	m.errMsg = ""

	m.fb = &formBindings{
		choices: make(map[int]*string),
		texts:   make(map[int]*string),
	}

	var fields []huh.Field
	for i, q := range questions {
		title := fmt.Sprintf("%d. %s", i+1, q.Question)
		if q.Type == "text" {
			v := new(string)
			m.fb.texts[i] = v
			fields = append(fields, huh.NewInput().
				Title(title).
				Value(v))
			continue
		}

		v := new(string)
		m.fb.choices[i] = v
		opts := make([]huh.Option[string], len(q.Options))
		for j, opt := range q.Options {
			opts[j] = huh.NewOption(opt, fmt.Sprintf("%d", j))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title(title).
			Options(opts...).
			Value(v))
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(m.width - 4).
		WithHeight(m.height - 4)
	return m.form.Init()
}

// Update handles messages for the quiz view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.errMsg = "could not submit quiz"
			return m, nil
		}
		m.result = msg.Result
		return m, nil

	case tea.KeyMsg:
		if m.result != nil && msg.String() == "enter" {
			courseID := m.courseID
			passed := m.result.Passed
			return m, func() tea.Msg {
				return DoneMsg{CourseID: courseID, Passed: passed}
			}
		}
	}

	if m.form == nil || m.submitting || m.result != nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		return m, m.submit()
	}

	return m, cmd
}

// submit returns a command sending the collected answers for grading.
func (m Model) submit() tea.Cmd {
	svc := m.svc
	courseID := m.courseID
	chapterID := m.chapterID

	answers := make(map[string]interface{}, len(m.questions))
	for i, q := range m.questions {
		if q.Type == "text" {
			if v := m.fb.texts[i]; v != nil {
				answers[q.ID] = *v
			}
			continue
		}
		if v := m.fb.choices[i]; v != nil && *v != "" {
			var idx int
			fmt.Sscanf(*v, "%d", &idx)
			answers[q.ID] = idx
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		result, err := svc.SubmitQuiz(ctx, courseID, chapterID, answers)
		return ResultMsg{Result: result, Err: err}
	}
}

// View renders the quiz form or its result.
func (m Model) View() string {
	var b strings.Builder

	if m.result != nil {
		verdict := theme.ErrorStyle.Render("Not passed")
		if m.result.Passed {
			verdict = theme.ProgressStyle(100).Render("Passed")
		}
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Quiz result"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf(
			"%s  score %.0f%%  (%d/%d correct)\n\n",
			verdict, m.result.Score,
			m.result.CorrectAnswers, m.result.TotalQuestions,
		))
		b.WriteString(theme.HelpStyle.Render("enter back to chapter"))
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	if m.errMsg != "" {
		b.WriteString(theme.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n\n")
	}
	if m.submitting {
		b.WriteString("Grading...")
	} else if m.form != nil {
		b.WriteString(m.form.View())
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
