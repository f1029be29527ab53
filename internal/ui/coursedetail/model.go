package coursedetail

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/teamup-platform/teamup-cli/internal/keys"
	"github.com/teamup-platform/teamup-cli/internal/model"
	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// CourseService is the slice of the API client this view depends on.
type CourseService interface {
	Course(ctx context.Context, courseID string) (*model.Course, error)
	CourseAssignments(ctx context.Context, courseID string) ([]model.AssignmentShort, error)
}

// CourseLoadedMsg carries a freshly fetched course detail.
type CourseLoadedMsg struct {
	Course      *model.Course
	Assignments []model.AssignmentShort
	Err         error
}

// SelectedChapterMsg is sent when the user opens a chapter.
type SelectedChapterMsg struct {
	CourseID  string
	ChapterID string
}

// SelectedAssignmentMsg is sent when the user opens an assignment.
type SelectedAssignmentMsg struct {
	AssignmentID string
}

const loadTimeout = 30 * time.Second

type rowKind int

const (
	rowChapter rowKind = iota
	rowAssignment
)

// row is a list entry: either a chapter or an assignment of the course.
type row struct {
	kind       rowKind
	chapter    model.Chapter
	assignment model.AssignmentShort
}

func (r row) FilterValue() string {
	if r.kind == rowChapter {
		return r.chapter.Title
	}
	return r.assignment.Title
}

func (r row) Title() string {
	if r.kind == rowChapter {
		marker := "[ ]"
		if r.chapter.Completed {
			marker = theme.ProgressStyle(100).Render("[x]")
		}
		return fmt.Sprintf("%s %s", marker, r.chapter.Title)
	}
	return "[a] " + r.assignment.Title
}

func (r row) Description() string {
	if r.kind == rowChapter {
		if len(r.chapter.Quiz) > 0 {
			return fmt.Sprintf("chapter with %d quiz questions", len(r.chapter.Quiz))
		}
		return "chapter"
	}
	if r.assignment.DueDate != nil {
		return "assignment, due " + *r.assignment.DueDate
	}
	return "assignment"
}

// Model is the course detail view listing chapters and assignments.
type Model struct {
	list     list.Model
	svc      CourseService
	keys     *keys.KeyMap
	courseID string
	course   *model.Course
	loading  bool
	errMsg   string
	width    int
	height   int
}

// New creates the course detail view.
func New(svc CourseService, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-4)
	l.SetShowStatusBar(false)
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

// Open resets the view onto the given course and returns its load command.
func (m *Model) Open(courseID string) tea.Cmd {
	m.courseID = courseID
	m.course = nil
	m.loading = true
	m.errMsg = ""
	m.list.SetItems(nil)
	return m.load()
}

// CourseID returns the currently displayed course id.
func (m Model) CourseID() string { return m.courseID }

func (m Model) load() tea.Cmd {
	svc := m.svc
	courseID := m.courseID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		course, err := svc.Course(ctx, courseID)
		if err != nil {
			return CourseLoadedMsg{Err: err}
		}
		// Assignment listing is best effort; the chapter list still
		// renders when it fails.
		assignments, err := svc.CourseAssignments(ctx, courseID)
		if err != nil {
			assignments = nil
		}
		return CourseLoadedMsg{Course: course, Assignments: assignments}
	}
}

// Update handles messages for the course detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case CourseLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = "could not load course"
			return m, nil
		}
		m.course = msg.Course
		m.list.Title = msg.Course.Title

		items := make([]list.Item, 0, len(msg.Course.Chapters)+len(msg.Assignments))
		for _, ch := range msg.Course.Chapters {
			items = append(items, row{kind: rowChapter, chapter: ch})
		}
		for _, a := range msg.Assignments {
			items = append(items, row{kind: rowAssignment, assignment: a})
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			if r, ok := m.list.SelectedItem().(row); ok {
				if r.kind == rowChapter {
					courseID := m.courseID
					chapterID := r.chapter.ID
					return m, func() tea.Msg {
						return SelectedChapterMsg{CourseID: courseID, ChapterID: chapterID}
					}
				}
				assignmentID := r.assignment.ID
				return m, func() tea.Msg {
					return SelectedAssignmentMsg{AssignmentID: assignmentID}
				}
			}

		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the course detail view.
func (m Model) View() string {
	if m.loading {
		return theme.ListItemStyle.Render("Loading course...")
	}
	if m.errMsg != "" {
		return theme.ErrorStyle.Render(m.errMsg)
	}
	if m.course == nil {
		return ""
	}

	header := ""
	if m.course.Progress > 0 || m.course.Enrolled {
		header = theme.ProgressStyle(m.course.Progress).
			Render(fmt.Sprintf("progress: %.0f%%", m.course.Progress)) + "\n"
	}
	return header + m.list.View()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-4)
}
