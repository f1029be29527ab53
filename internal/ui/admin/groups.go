package admin

import (
	"context"
	"fmt"
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

// GroupsLoadedMsg carries the admin group listing.
type GroupsLoadedMsg struct {
	Groups []model.GroupSummary
	Err    error
}

// GroupLoadedMsg carries one group's detail.
type GroupLoadedMsg struct {
	Group *model.GroupDetail
	Err   error
}

// groupMutatedMsg reports the outcome of a group mutation. When the
// server returns the updated detail it rides along.
type groupMutatedMsg struct {
	group *model.GroupDetail
	err   error
}

type groupItem struct {
	group model.GroupSummary
}

func (i groupItem) FilterValue() string { return i.group.Name }

func (i groupItem) Title() string {
	name := i.group.Name
	if i.group.Status == "archived" {
		name += "  " + theme.ReadStyle.Render("archived")
	}
	return name
}

func (i groupItem) Description() string {
	return fmt.Sprintf("%d members, %d courses", i.group.MemberCount, i.group.CourseCount)
}

type groupBindings struct {
	name        string
	description string
	memberEmail string
	courseID    string
}

type groupsMode int

const (
	groupsList groupsMode = iota
	groupsDetail
	groupsForm
	groupsConfirmArchive
)

type groupFormKind int

const (
	groupFormCreate groupFormKind = iota
	groupFormEdit
	groupFormAddMember
	groupFormEnroll
)

// groupsModel is the admin study-group management section.
type groupsModel struct {
	list list.Model
	svc  AdminService
	keys *keys.KeyMap

	mode     groupsMode
	formKind groupFormKind
	detail   *model.GroupDetail
	form     *huh.Form
	fb       *groupBindings

	loading bool
	errMsg  string
	width   int
	height  int
}

func newGroupsModel(svc AdminService, k *keys.KeyMap, width, height int) groupsModel {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-2)
	l.Title = "Groups"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return groupsModel{
		list:   l,
		svc:    svc,
		keys:   k,
		width:  width,
		height: height,
	}
}

func (m *groupsModel) open() tea.Cmd {
	m.mode = groupsList
	m.detail = nil
	m.loading = true
	m.errMsg = ""
	return m.load()
}

func (m groupsModel) inDetail() bool { return m.mode != groupsList }

func (m *groupsModel) back() (tea.Cmd, bool) {
	switch m.mode {
	case groupsForm, groupsConfirmArchive:
		m.form = nil
		if m.detail != nil && m.formKind != groupFormCreate {
			m.mode = groupsDetail
		} else {
			m.mode = groupsList
		}
		return nil, true
	case groupsDetail:
		m.mode = groupsList
		m.detail = nil
		m.loading = true
		return m.load(), true
	}
	return nil, false
}

func (m groupsModel) load() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		groups, err := svc.Groups(ctx, api.GroupFilter{})
		return GroupsLoadedMsg{Groups: groups, Err: err}
	}
}

func (m groupsModel) loadDetail(groupID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		group, err := svc.Group(ctx, groupID)
		return GroupLoadedMsg{Group: group, Err: err}
	}
}

func (m groupsModel) update(msg tea.Msg) (groupsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case GroupsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load groups"
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.Groups))
		for _, g := range msg.Groups {
			items = append(items, groupItem{group: g})
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case GroupLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load group"
			m.mode = groupsList
			return m, nil
		}
		m.detail = msg.Group
		m.mode = groupsDetail
		return m, nil

	case groupMutatedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = api.UserMessage(msg.err, "could not update group")
			return m, nil
		}
		if msg.group != nil {
			m.detail = msg.group
			m.mode = groupsDetail
			return m, nil
		}
		m.mode = groupsList
		m.detail = nil
		m.loading = true
		return m, m.load()

	case tea.KeyMsg:
		switch m.mode {
		case groupsList:
			switch {
			case key.Matches(msg, m.keys.Select):
				if item, ok := m.list.SelectedItem().(groupItem); ok {
					m.loading = true
					return m, m.loadDetail(item.group.ID)
				}
			case key.Matches(msg, m.keys.New):
				m.startForm(groupFormCreate)
				return m, m.form.Init()
			case key.Matches(msg, m.keys.Refresh):
				m.loading = true
				return m, m.load()
			}

		case groupsDetail:
			switch {
			case key.Matches(msg, m.keys.Edit):
				m.startForm(groupFormEdit)
				return m, m.form.Init()
			case msg.String() == "a":
				m.startForm(groupFormAddMember)
				return m, m.form.Init()
			case key.Matches(msg, m.keys.Enroll):
				m.startForm(groupFormEnroll)
				return m, m.form.Init()
			case key.Matches(msg, m.keys.Delete):
				m.mode = groupsConfirmArchive
				return m, nil
			}

		case groupsConfirmArchive:
			switch msg.String() {
			case "y":
				return m, m.archive()
			case "n", "esc":
				m.mode = groupsDetail
				return m, nil
			}
			return m, nil
		}
	}

	switch m.mode {
	case groupsList:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case groupsForm:
		if m.form == nil {
			return m, nil
		}
		mdl, cmd := m.form.Update(msg)
		if f, ok := mdl.(*huh.Form); ok {
			m.form = f
		}
		if m.form.State == huh.StateCompleted {
			m.errMsg = ""
			return m, m.submitForm()
		}
		if m.form.State == huh.StateAborted {
			if _, ok := m.back(); ok {
				return m, nil
			}
		}
		return m, cmd
	}

	return m, nil
}

func (m *groupsModel) startForm(kind groupFormKind) {
	m.mode = groupsForm
	m.formKind = kind
	m.fb = &groupBindings{}

	var fields []huh.Field
	switch kind {
	case groupFormCreate:
		fields = []huh.Field{
			huh.NewInput().Title("Group name").Value(&m.fb.name),
			huh.NewText().Title("Description").Value(&m.fb.description),
		}
	case groupFormEdit:
		m.fb.name = m.detail.Name
		if m.detail.Description != nil {
			m.fb.description = *m.detail.Description
		}
		fields = []huh.Field{
			huh.NewInput().Title("Group name").Value(&m.fb.name),
			huh.NewText().Title("Description").Value(&m.fb.description),
		}
	case groupFormAddMember:
		fields = []huh.Field{
			huh.NewInput().
				Title("Member email").
				Placeholder("student@example.com").
				Value(&m.fb.memberEmail),
		}
	case groupFormEnroll:
		fields = []huh.Field{
			huh.NewInput().
				Title("Course id").
				Value(&m.fb.courseID),
		}
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(m.width - 4)
}

func (m *groupsModel) submitForm() tea.Cmd {
	svc := m.svc
	kind := m.formKind
	fb := *m.fb
	var groupID string
	if m.detail != nil {
		groupID = m.detail.ID
	}
	m.form = nil
	m.loading = true

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		switch kind {
		case groupFormCreate:
			group, err := svc.CreateGroup(ctx, model.GroupCreate{
				Name:        strings.TrimSpace(fb.name),
				Description: strings.TrimSpace(fb.description),
			})
			return groupMutatedMsg{group: group, err: err}

		case groupFormEdit:
			name := strings.TrimSpace(fb.name)
			description := strings.TrimSpace(fb.description)
			group, err := svc.UpdateGroup(ctx, groupID, model.GroupUpdate{
				Name:        &name,
				Description: &description,
			})
			return groupMutatedMsg{group: group, err: err}

		case groupFormAddMember:
			group, err := svc.AddGroupMember(ctx, groupID, model.GroupMemberAdd{
				Email: strings.TrimSpace(fb.memberEmail),
			})
			return groupMutatedMsg{group: group, err: err}

		case groupFormEnroll:
			group, err := svc.EnrollGroup(ctx, groupID, strings.TrimSpace(fb.courseID))
			return groupMutatedMsg{group: group, err: err}
		}
		return nil
	}
}

func (m *groupsModel) archive() tea.Cmd {
	svc := m.svc
	groupID := m.detail.ID
	m.mode = groupsList
	m.detail = nil
	m.loading = true

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		err := svc.ArchiveGroup(ctx, groupID)
		return groupMutatedMsg{err: err}
	}
}

func (m groupsModel) view() string {
	if m.loading {
		return theme.ListItemStyle.Render("Loading groups...")
	}

	switch m.mode {
	case groupsDetail:
		return m.viewDetail()
	case groupsForm:
		if m.form != nil {
			return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
		}
		return ""
	case groupsConfirmArchive:
		prompt := fmt.Sprintf("Archive group %q? y/n", m.detail.Name)
		return theme.DetailPanelStyle.Render(theme.ErrorStyle.Render(prompt))
	}

	view := m.list.View()
	if m.errMsg != "" {
		view += "\n" + theme.ErrorStyle.Render(m.errMsg)
	}
	view += "\n" + theme.HelpStyle.Render("enter open, N new group, r refresh, esc back")
	return view
}

func (m groupsModel) viewDetail() string {
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(title.Render(m.detail.Name))
	if m.detail.Status == "archived" {
		b.WriteString("  " + theme.ReadStyle.Render("archived"))
	}
	b.WriteString("\n")
	if m.detail.Description != nil && *m.detail.Description != "" {
		b.WriteString(*m.detail.Description + "\n")
	}

	b.WriteString("\nMembers:\n")
	for _, member := range m.detail.Members {
		b.WriteString(fmt.Sprintf("  %s <%s>\n", member.Name, member.Email))
	}
	if len(m.detail.Members) == 0 {
		b.WriteString(theme.HelpStyle.Render("  none") + "\n")
	}

	b.WriteString("\nCourses:\n")
	for _, course := range m.detail.Courses {
		b.WriteString("  " + course.Title + "\n")
	}
	if len(m.detail.Courses) == 0 {
		b.WriteString(theme.HelpStyle.Render("  none") + "\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n" + theme.ErrorStyle.Render(m.errMsg))
	}
	b.WriteString("\n" + theme.HelpStyle.Render("E edit, a add member, e enroll in course, D archive, esc back"))
	return theme.DetailPanelStyle.Width(m.width - 4).Render(b.String())
}

func (m *groupsModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
