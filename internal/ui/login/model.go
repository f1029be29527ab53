package login

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/teamup-platform/teamup-cli/internal/session"
	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// SignedInMsg is dispatched when authentication succeeds.
type SignedInMsg struct{}

// authResultMsg carries the outcome of a login or register attempt.
type authResultMsg struct {
	err error
}

const submitTimeout = 30 * time.Second

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name     string
	email    string
	password string
}

// Model is the Bubble Tea model for the sign-in and sign-up forms.
type Model struct {
	gate *session.Gate
	form *huh.Form
	fb   *formBindings

	registerMode bool
	submitting   bool
	errMsg       string

	width  int
	height int
}

// New creates a new login view over the given gate.
func New(gate *session.Gate, width, height int) Model {
	return Model{
		gate:   gate,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the sign-in form.
func (m *Model) Start() tea.Cmd {
	m.registerMode = false
	m.submitting = false
	m.errMsg = ""
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.submitting = false
		if msg.err != nil {
			// Redisplay the form with the inline error; the user may
			// correct the input and resubmit.
			m.errMsg = msg.err.Error()
			m.fb.password = ""
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, func() tea.Msg { return SignedInMsg{} }

	case tea.KeyMsg:
		// Switch between sign-in and sign-up, mirroring the login page's
		// "create an account" link.
		if msg.String() == "ctrl+r" && !m.submitting {
			m.registerMode = !m.registerMode
			m.errMsg = ""
			m.form = m.buildForm()
			return m, m.form.Init()
		}
	}

	if m.form == nil || m.submitting {
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

// submit returns a command running the gate call for the current mode.
func (m Model) submit() tea.Cmd {
	gate := m.gate
	register := m.registerMode
	name := m.fb.name
	email := m.fb.email
	password := m.fb.password

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		var err error
		if register {
			err = gate.Register(ctx, name, email, password)
		} else {
			err = gate.Login(ctx, email, password)
		}
		return authResultMsg{err: err}
	}
}

// View renders the login form with any inline error.
func (m Model) View() string {
	titleText := "Sign in to TeamUp"
	hint := "ctrl+r create an account"
	if m.registerMode {
		titleText = "Create a TeamUp account"
		hint = "ctrl+r back to sign in"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render(titleText))
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(theme.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	if m.submitting {
		b.WriteString("Signing in...")
	} else if m.form != nil {
		b.WriteString(m.form.View())
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render(hint))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	var fields []huh.Field

	if m.registerMode {
		fields = append(fields,
			huh.NewInput().
				Title("Name").
				Placeholder("Your display name").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
		)
	}

	fields = append(fields,
		huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&m.fb.email).
			Validate(validateRequired("Email")),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.password).
			Validate(validateRequired("Password")),
	)

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
