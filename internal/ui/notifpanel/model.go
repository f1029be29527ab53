package notifpanel

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/teamup-platform/teamup-cli/internal/keys"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/notify"
	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// NavigateMsg is sent when the user opens a notification that points at
// an entity. The root model routes to the matching view.
type NavigateMsg struct {
	EntityType string
	EntityID   string
}

// Model is the notification panel. It renders the synchronizer's state
// and forwards mutations back to it; it holds no inbox state of its own.
type Model struct {
	sync   *notify.Synchronizer
	keys   *keys.KeyMap
	cursor int
	width  int
	height int
}

// New creates the panel over the given synchronizer.
func New(sync *notify.Synchronizer, k *keys.KeyMap, width, height int) Model {
	return Model{
		sync:   sync,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Open starts the refresh session and returns its subscription command.
func (m *Model) Open() tea.Cmd {
	m.cursor = 0
	return m.sync.Open()
}

// Close stops the refresh session.
func (m *Model) Close() {
	m.sync.Close()
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	state := m.sync.State()

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(state.Items)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.Select):
		if m.cursor < len(state.Items) {
			n := state.Items[m.cursor]
			cmds := []tea.Cmd{m.sync.MarkRead(n.ID)}
			if n.EntityType != "" && n.EntityID != "" {
				entityType := n.EntityType
				entityID := n.EntityID
				cmds = append(cmds, func() tea.Msg {
					return NavigateMsg{EntityType: entityType, EntityID: entityID}
				})
			}
			return m, tea.Batch(cmds...)
		}

	case key.Matches(keyMsg, m.keys.MarkAllRead):
		return m, m.sync.MarkAllRead()

	case key.Matches(keyMsg, m.keys.ClearAll):
		m.cursor = 0
		return m, m.sync.Clear()

	case key.Matches(keyMsg, m.keys.Refresh):
		return m, m.sync.LoadCmd()
	}

	return m, nil
}

// View renders the panel from the synchronizer's current state.
func (m Model) View() string {
	state := m.sync.State()

	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(title.Render("Notifications"))
	if state.UnreadCount > 0 {
		b.WriteString("  " + theme.UnreadStyle.Render(fmt.Sprintf("%d unread", state.UnreadCount)))
	}
	b.WriteString("\n\n")

	if state.Loading && len(state.Items) == 0 {
		b.WriteString(theme.HelpStyle.Render("Loading..."))
	} else if len(state.Items) == 0 {
		b.WriteString(theme.HelpStyle.Render("No notifications"))
	} else {
		visible := m.height - 8
		if visible < 1 {
			visible = 1
		}
		start := 0
		if m.cursor >= visible {
			start = m.cursor - visible + 1
		}
		end := start + visible
		if end > len(state.Items) {
			end = len(state.Items)
		}

		for i := start; i < end; i++ {
			b.WriteString(m.renderItem(state.Items[i], i == m.cursor))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("enter open, m mark all read, x clear, esc close"))

	return theme.BorderStyle.
		Width(m.width - 4).
		Padding(0, 1).
		Render(b.String())
}

func (m Model) renderItem(n model.Notification, selected bool) string {
	marker := "  "
	if !n.IsRead {
		marker = theme.UnreadStyle.Render("● ")
	}

	style := theme.ReadStyle
	if !n.IsRead {
		style = lipgloss.NewStyle().Foreground(theme.ColorWhite)
	}
	if selected {
		style = style.Bold(true).Foreground(theme.ColorBlue)
	}

	line := marker + style.Render(n.Title)
	if n.Body != "" {
		line += "  " + theme.HelpStyle.Render(firstLine(n.Body))
	}
	if ts := relativeTime(n.CreatedAt); ts != "" {
		line += "  " + theme.HelpStyle.Render(ts)
	}
	return line
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// relativeTime renders a timestamp as a rough age.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
