package chapter

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/teamup-platform/teamup-cli/internal/keys"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// ChapterService is the slice of the API client this view depends on.
type ChapterService interface {
	Chapter(ctx context.Context, courseID, chapterID string) (*model.Chapter, error)
	CompleteChapter(ctx context.Context, courseID, chapterID string) error
}

// ChapterLoadedMsg carries a freshly fetched chapter.
type ChapterLoadedMsg struct {
	Chapter *model.Chapter
	Err     error
}

// CompletedMsg is sent after the chapter has been recorded as finished.
type CompletedMsg struct {
	CourseID  string
	ChapterID string
	Err       error
}

// StartQuizMsg is sent when the user launches the chapter quiz.
type StartQuizMsg struct {
	CourseID  string
	ChapterID string
	Questions []model.Quiz
}

const loadTimeout = 30 * time.Second

// Model is the chapter reading view.
type Model struct {
	viewport  viewport.Model
	svc       ChapterService
	keys      *keys.KeyMap
	courseID  string
	chapterID string
	chapter   *model.Chapter
	loading   bool
	completing bool
	errMsg    string
	width     int
	height    int
}

// New creates the chapter view.
func New(svc ChapterService, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-4)
	return Model{
		viewport: vp,
		svc:      svc,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Open resets the view onto the given chapter and returns its load command.
func (m *Model) Open(courseID, chapterID string) tea.Cmd {
	m.courseID = courseID
	m.chapterID = chapterID
	m.chapter = nil
	m.loading = true
	m.errMsg = ""
	m.viewport.SetContent("")
	m.viewport.GotoTop()
	return m.load()
}

func (m Model) load() tea.Cmd {
	svc := m.svc
	courseID := m.courseID
	chapterID := m.chapterID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		ch, err := svc.Chapter(ctx, courseID, chapterID)
		if err != nil {
			return ChapterLoadedMsg{Err: err}
		}
		return ChapterLoadedMsg{Chapter: ch}
	}
}

func (m Model) complete() tea.Cmd {
	svc := m.svc
	courseID := m.courseID
	chapterID := m.chapterID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		err := svc.CompleteChapter(ctx, courseID, chapterID)
		return CompletedMsg{CourseID: courseID, ChapterID: chapterID, Err: err}
	}
}

// Update handles messages for the chapter view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChapterLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load chapter"
			return m, nil
		}
		m.chapter = msg.Chapter
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case CompletedMsg:
		m.completing = false
		if msg.Err != nil {
			m.errMsg = "could not mark chapter complete"
			return m, nil
		}
		if m.chapter != nil {
			m.chapter.Completed = true
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Complete):
			if m.chapter != nil && !m.chapter.Completed && !m.completing {
				m.completing = true
				m.errMsg = ""
				return m, m.complete()
			}

		case key.Matches(msg, m.keys.Quiz):
			if m.chapter != nil && len(m.chapter.Quiz) > 0 {
				courseID := m.courseID
				chapterID := m.chapterID
				questions := m.chapter.Quiz
				return m, func() tea.Msg {
					return StartQuizMsg{
						CourseID:  courseID,
						ChapterID: chapterID,
						Questions: questions,
					}
				}
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the chapter view.
func (m Model) View() string {
	if m.loading {
		return theme.ListItemStyle.Render("Loading chapter...")
	}
	if m.errMsg != "" && m.chapter == nil {
		return theme.ErrorStyle.Render(m.errMsg)
	}

	footer := ""
	if m.errMsg != "" {
		footer = "\n" + theme.ErrorStyle.Render(m.errMsg)
	}
	return m.viewport.View() + footer
}

func (m Model) renderContent() string {
	if m.chapter == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	status := ""
	if m.chapter.Completed {
		status = "  " + theme.ProgressStyle(100).Render("completed")
	}

	body := titleStyle.Render(m.chapter.Title) + status + "\n\n" + m.chapter.Content
	if len(m.chapter.Quiz) > 0 {
		body += "\n\n" + theme.HelpStyle.Render(
			fmt.Sprintf("this chapter has a quiz with %d questions, press z to start", len(m.chapter.Quiz)),
		)
	}
	return lipgloss.NewStyle().Width(m.width - 4).Render(body)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 4
	if m.chapter != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
