package admin

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

// UsersLoadedMsg carries the admin account listing.
type UsersLoadedMsg struct {
	Users []model.User
	Err   error
}

// userSavedMsg reports the outcome of a user edit or delete.
type userSavedMsg struct {
	user *model.User
	err  error
}

const loadTimeout = 30 * time.Second

type userItem struct {
	user model.User
}

func (i userItem) FilterValue() string { return i.user.Name + " " + i.user.Email }

func (i userItem) Title() string {
	return fmt.Sprintf("%s  %s", i.user.Name, theme.RoleStyle(i.user.Role).Render(i.user.Role))
}

func (i userItem) Description() string { return i.user.Email }

type userBindings struct {
	name  string
	email string
}

type usersMode int

const (
	usersList usersMode = iota
	usersEdit
	usersConfirmDelete
)

// usersModel is the admin account management section.
type usersModel struct {
	list list.Model
	svc  AdminService
	keys *keys.KeyMap

	mode     usersMode
	selected model.User
	form     *huh.Form
	fb       *userBindings

	loading bool
	errMsg  string
	width   int
	height  int
}

func newUsersModel(svc AdminService, k *keys.KeyMap, width, height int) usersModel {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-2)
	l.Title = "Users"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return usersModel{
		list:   l,
		svc:    svc,
		keys:   k,
		width:  width,
		height: height,
	}
}

func (m *usersModel) open() tea.Cmd {
	m.mode = usersList
	m.loading = true
	m.errMsg = ""
	return m.load()
}

func (m usersModel) load() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		users, err := svc.Users(ctx, "")
		return UsersLoadedMsg{Users: users, Err: err}
	}
}

func (m usersModel) update(msg tea.Msg) (usersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case UsersLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load users"
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.Users))
		for _, u := range msg.Users {
			items = append(items, userItem{user: u})
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case userSavedMsg:
		m.mode = usersList
		if msg.err != nil {
			m.errMsg = "could not save user"
			return m, nil
		}
		m.loading = true
		return m, m.load()

	case tea.KeyMsg:
		switch m.mode {
		case usersList:
			switch {
			case key.Matches(msg, m.keys.Edit):
				if item, ok := m.list.SelectedItem().(userItem); ok {
					m.selected = item.user
					m.startEditForm()
					return m, m.form.Init()
				}
			case key.Matches(msg, m.keys.Delete):
				if item, ok := m.list.SelectedItem().(userItem); ok {
					m.selected = item.user
					m.mode = usersConfirmDelete
					return m, nil
				}
			case key.Matches(msg, m.keys.Refresh):
				m.loading = true
				return m, m.load()
			}

		case usersConfirmDelete:
			switch msg.String() {
			case "y":
				m.mode = usersList
				return m, m.deleteSelected()
			case "n", "esc":
				m.mode = usersList
				return m, nil
			}
			return m, nil
		}
	}

	switch m.mode {
	case usersList:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case usersEdit:
		if m.form == nil {
			return m, nil
		}
		mdl, cmd := m.form.Update(msg)
		if f, ok := mdl.(*huh.Form); ok {
			m.form = f
		}
		if m.form.State == huh.StateCompleted {
			m.errMsg = ""
			return m, m.submitEdit()
		}
		if m.form.State == huh.StateAborted {
			m.mode = usersList
			m.form = nil
		}
		return m, cmd
	}

	return m, nil
}

func (m *usersModel) startEditForm() {
	m.mode = usersEdit
	m.fb = &userBindings{name: m.selected.Name, email: m.selected.Email}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Name").Value(&m.fb.name),
		huh.NewInput().Title("Email").Value(&m.fb.email),
	)).WithWidth(m.width - 4)
}

func (m *usersModel) submitEdit() tea.Cmd {
	svc := m.svc
	userID := m.selected.ID
	name := strings.TrimSpace(m.fb.name)
	email := strings.TrimSpace(m.fb.email)
	m.mode = usersList
	m.form = nil

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		user, err := svc.UpdateUser(ctx, userID, model.UserUpdate{
			Name:  &name,
			Email: &email,
		})
		return userSavedMsg{user: user, err: err}
	}
}

func (m usersModel) deleteSelected() tea.Cmd {
	svc := m.svc
	userID := m.selected.ID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		err := svc.DeleteUser(ctx, userID)
		return userSavedMsg{err: err}
	}
}

func (m usersModel) view() string {
	if m.loading {
		return theme.ListItemStyle.Render("Loading users...")
	}

	switch m.mode {
	case usersEdit:
		if m.form != nil {
			return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
		}
		return ""
	case usersConfirmDelete:
		prompt := fmt.Sprintf("Delete account %q (%s)? y/n", m.selected.Name, m.selected.Email)
		return theme.DetailPanelStyle.Render(theme.ErrorStyle.Render(prompt))
	}

	view := m.list.View()
	if m.errMsg != "" {
		view += "\n" + theme.ErrorStyle.Render(m.errMsg)
	}
	view += "\n" + theme.HelpStyle.Render("E edit, D delete, r refresh, esc back")
	return view
}

func (m *usersModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
