package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/teamup-platform/teamup-cli/internal/api"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// ProfileService is the slice of the API client this view depends on.
type ProfileService interface {
	UpdateProfile(ctx context.Context, update model.UserUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, current, new string) error
}

// ProfileUpdatedMsg carries the server's view of the edited account.
type ProfileUpdatedMsg struct {
	User *model.User
	Err  error
}

// passwordChangedMsg reports the outcome of a password change.
type passwordChangedMsg struct {
	err error
}

const submitTimeout = 30 * time.Second

type mode int

const (
	modeView mode = iota
	modeEdit
	modePassword
)

// formBindings keeps form values on the heap across model copies.
type formBindings struct {
	name            string
	email           string
	currentPassword string
	newPassword     string
}

// Model is the profile view: account summary, profile edit form, and
// password change form.
type Model struct {
	svc  ProfileService
	user model.User

	mode mode
	form *huh.Form
	fb   *formBindings

	submitting bool
	errMsg     string
	notice     string

	width  int
	height int
}

// New creates the profile view.
func New(svc ProfileService, width, height int) Model {
	return Model{
		svc:    svc,
		width:  width,
		height: height,
	}
}

// Open resets the view onto the given account.
func (m *Model) Open(user model.User) {
	m.user = user
	m.mode = modeView
	m.form = nil
	m.errMsg = ""
	m.notice = ""
}

// InForm reports whether a form is active, so the root model routes esc
// here instead of leaving the view.
func (m Model) InForm() bool { return m.mode != modeView }

// Back abandons the active form. Returns false when already at the summary.
func (m *Model) Back() bool {
	if m.mode == modeView {
		return false
	}
	m.mode = modeView
	m.form = nil
	return true
}

// Update handles messages for the profile view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProfileUpdatedMsg:
		m.submitting = false
		if msg.Err != nil {
			m.errMsg = api.UserMessage(msg.Err, "could not update profile")
			m.mode = modeView
			return m, nil
		}
		m.user = *msg.User
		m.notice = "profile updated"
		m.mode = modeView
		return m, nil

	case passwordChangedMsg:
		m.submitting = false
		m.mode = modeView
		if msg.err != nil {
			m.errMsg = api.UserMessage(msg.err, "could not change password")
			return m, nil
		}
		m.notice = "password changed"
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeView {
			switch msg.String() {
			case "E":
				m.startEditForm()
				return m, m.form.Init()
			case "P":
				m.startPasswordForm()
				return m, m.form.Init()
			}
			return m, nil
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
		m.errMsg = ""
		m.notice = ""
		if m.mode == modeEdit {
			return m, m.submitEdit()
		}
		return m, m.submitPassword()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeView
		m.form = nil
	}

	return m, cmd
}

func (m *Model) startEditForm() {
	m.mode = modeEdit
	m.fb = &formBindings{name: m.user.Name, email: m.user.Email}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Name").
			Value(&m.fb.name).
			Validate(required("Name")),
		huh.NewInput().
			Title("Email").
			Value(&m.fb.email).
			Validate(required("Email")),
	)).WithWidth(m.formWidth())
}

func (m *Model) startPasswordForm() {
	m.mode = modePassword
	m.fb = &formBindings{}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Current password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.currentPassword).
			Validate(required("Current password")),
		huh.NewInput().
			Title("New password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.newPassword).
			Validate(required("New password")),
	)).WithWidth(m.formWidth())
}

func (m Model) submitEdit() tea.Cmd {
	svc := m.svc
	name := strings.TrimSpace(m.fb.name)
	email := strings.TrimSpace(m.fb.email)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		user, err := svc.UpdateProfile(ctx, model.UserUpdate{
			Name:  &name,
			Email: &email,
		})
		return ProfileUpdatedMsg{User: user, Err: err}
	}
}

func (m Model) submitPassword() tea.Cmd {
	svc := m.svc
	current := m.fb.currentPassword
	newPassword := m.fb.newPassword

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		err := svc.ChangePassword(ctx, current, newPassword)
		return passwordChangedMsg{err: err}
	}
}

// View renders the profile view.
func (m Model) View() string {
	if m.mode != modeView {
		if m.submitting {
			return theme.ListItemStyle.Render("Saving...")
		}
		if m.form != nil {
			return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
		}
		return ""
	}

	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(title.Render("Profile"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Name:   %s\n", m.user.Name))
	b.WriteString(fmt.Sprintf("Email:  %s\n", m.user.Email))
	b.WriteString("Role:   " + theme.RoleStyle(m.user.Role).Render(m.user.Role) + "\n")
	if m.user.CreatedAt != nil {
		b.WriteString(fmt.Sprintf("Joined: %s\n", m.user.CreatedAt.Format("2006-01-02")))
	}

	if m.notice != "" {
		b.WriteString("\n" + theme.ProgressStyle(100).Render(m.notice))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + theme.ErrorStyle.Render(m.errMsg))
	}

	b.WriteString("\n\n" + theme.HelpStyle.Render("E edit profile, P change password"))

	return theme.DetailPanelStyle.Width(m.width - 4).Render(b.String())
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

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func required(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
