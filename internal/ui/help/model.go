// Package help renders the shortcut overlay, grouped the way the
// application is used: moving around, working through a course, the
// notification panel, and account/admin actions.
package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/teamup-platform/teamup-cli/internal/keys"
	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// section is one titled group of bindings. It satisfies bubbles'
// help.KeyMap so each group renders through the help widget.
type section struct {
	title    string
	bindings []key.Binding
}

func (s section) ShortHelp() []key.Binding  { return s.bindings }
func (s section) FullHelp() [][]key.Binding { return [][]key.Binding{s.bindings} }

// Model is the shortcut overlay.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates the overlay over the application keymap.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   k,
		help:   h,
		width:  width,
		height: height,
	}
}

// sections orders the groups as they appear on screen.
func (m Model) sections() []section {
	k := m.keys
	return []section{
		{"Navigate", []key.Binding{
			k.Up, k.Down, k.Select, k.Back,
			k.Dashboard, k.Assignments, k.Profile, k.Quit,
		}},
		{"Courses", []key.Binding{
			k.Enroll, k.Complete, k.Quiz, k.Submit, k.Refresh,
		}},
		{"Notifications", []key.Binding{
			k.Notifications, k.MarkAllRead, k.ClearAll,
		}},
		{"Account & admin", []key.Binding{
			k.Logout, k.Admin, k.New, k.Edit, k.Delete, k.Grade, k.Help,
		}},
	}
}

// Update handles messages for the overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the grouped shortcut overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue)

	m.help.Width = m.width - 4

	parts := []string{titleStyle.Render("Keyboard Shortcuts")}
	for _, s := range m.sections() {
		parts = append(parts,
			sectionStyle.Render(s.title),
			m.help.View(s),
			"",
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
