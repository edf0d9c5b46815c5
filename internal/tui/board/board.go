// Package board renders todos as a read-only kanban board grouped by
// status.
package board

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tradocflow/tradocflow/internal/core/project"
	"github.com/tradocflow/tradocflow/internal/core/styles"
)

// TodoLister loads the todos shown on the board.
type TodoLister interface {
	List(ctx context.Context, filter project.TodoFilter) ([]project.Todo, error)
}

// columnOrder fixes the left-to-right status columns.
var columnOrder = []project.TodoStatus{
	project.StatusOpen,
	project.StatusInProgress,
	project.StatusCompleted,
	project.StatusCancelled,
}

var columnTitles = map[project.TodoStatus]string{
	project.StatusOpen:       "Open",
	project.StatusInProgress: "In Progress",
	project.StatusCompleted:  "Completed",
	project.StatusCancelled:  "Cancelled",
}

type todosLoadedMsg struct {
	todos []project.Todo
}

type loadFailedMsg struct {
	err error
}

// Model is the board TUI model.
type Model struct {
	lister TodoLister

	columns  map[project.TodoStatus][]project.Todo
	focus    int            // index into columnOrder
	selected map[int]int    // per-column cursor
	detail   *project.Todo  // non-nil while the detail overlay is open
	err      error

	width  int
	height int
}

// New creates a board over the given todo source.
func New(lister TodoLister) Model {
	return Model{
		lister:   lister,
		columns:  map[project.TodoStatus][]project.Todo{},
		selected: map[int]int{},
	}
}

// Init loads the todos.
func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		todos, err := m.lister.List(context.Background(), project.TodoFilter{})
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return todosLoadedMsg{todos: todos}
	}
}

// Update handles key and load messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case todosLoadedMsg:
		m.err = nil
		m.columns = map[project.TodoStatus][]project.Todo{}
		for _, todo := range msg.todos {
			m.columns[todo.Status] = append(m.columns[todo.Status], todo)
		}
		m.clampCursors()
		return m, nil

	case loadFailedMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail != nil {
		switch msg.String() {
		case "esc", "enter", "q":
			m.detail = nil
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.load()
	case "left", "h":
		if m.focus > 0 {
			m.focus--
		}
	case "right", "l":
		if m.focus < len(columnOrder)-1 {
			m.focus++
		}
	case "up", "k":
		if m.selected[m.focus] > 0 {
			m.selected[m.focus]--
		}
	case "down", "j":
		if m.selected[m.focus] < len(m.focusedColumn())-1 {
			m.selected[m.focus]++
		}
	case "enter":
		column := m.focusedColumn()
		if idx := m.selected[m.focus]; idx < len(column) {
			todo := column[idx]
			m.detail = &todo
		}
	}

	return m, nil
}

func (m Model) focusedColumn() []project.Todo {
	return m.columns[columnOrder[m.focus]]
}

func (m *Model) clampCursors() {
	for i, status := range columnOrder {
		if max := len(m.columns[status]) - 1; m.selected[i] > max {
			if max < 0 {
				max = 0
			}
			m.selected[i] = max
		}
	}
}

// View renders the four columns, or the detail overlay when open.
func (m Model) View() string {
	if m.err != nil {
		return styles.ErrorStyle.Render("load failed: "+m.err.Error()) + "\n" +
			styles.HelpStyle.Render("r reload · q quit")
	}

	if m.detail != nil {
		return m.detailView()
	}

	columnWidth := 28
	if m.width > 0 {
		if w := m.width/len(columnOrder) - 4; w > 16 {
			columnWidth = w
		}
	}

	rendered := make([]string, 0, len(columnOrder))
	for i, status := range columnOrder {
		rendered = append(rendered, m.columnView(i, status, columnWidth))
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	help := styles.HelpStyle.Render("←/→ column · ↑/↓ card · enter details · r reload · q quit")
	return board + "\n" + help
}

func (m Model) columnView(index int, status project.TodoStatus, width int) string {
	todos := m.columns[status]

	var b strings.Builder
	b.WriteString(styles.ColumnTitleStyle.Render(fmt.Sprintf("%s (%d)", columnTitles[status], len(todos))))
	b.WriteString("\n")

	for i, todo := range todos {
		card := fmt.Sprintf("%s %s", priorityMark(todo.Priority), truncate(todo.Title, width-4))
		if index == m.focus && i == m.selected[index] {
			card = styles.CardSelectedStyle.Render(card)
		} else {
			card = styles.CardStyle.Render(card)
		}
		b.WriteString(card)
		b.WriteString("\n")
	}
	if len(todos) == 0 {
		b.WriteString(styles.HelpStyle.Render("empty"))
	}

	style := styles.ColumnStyle
	if index == m.focus {
		style = styles.ColumnFocusedStyle
	}
	return style.Width(width).Render(b.String())
}

func (m Model) detailView() string {
	todo := *m.detail

	var b strings.Builder
	b.WriteString(styles.DetailTitleStyle.Render(todo.Title))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", styles.LabelStyle.Render("id"), todo.ID)
	fmt.Fprintf(&b, "%s %s / %s / %s\n", styles.LabelStyle.Render("state"), todo.Status, todo.Priority, todo.TodoType)
	fmt.Fprintf(&b, "%s %s\n", styles.LabelStyle.Render("context"), todo.Context.String())
	fmt.Fprintf(&b, "%s %s\n", styles.LabelStyle.Render("creator"), todo.CreatedBy)
	if todo.AssignedTo != "" {
		fmt.Fprintf(&b, "%s %s\n", styles.LabelStyle.Render("assignee"), todo.AssignedTo)
	}
	if todo.DueDate != nil {
		fmt.Fprintf(&b, "%s %s\n", styles.LabelStyle.Render("due"), todo.DueDate.Format("2006-01-02"))
	}
	if todo.Description != "" {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(todo.Description))
		b.WriteString("\n")
	}
	if todo.Resolution != "" {
		fmt.Fprintf(&b, "\n%s %s\n", styles.LabelStyle.Render("resolution"), todo.Resolution)
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("esc close"))

	detail := styles.DetailStyle.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, detail)
	}
	return detail
}

func priorityMark(priority project.Priority) string {
	switch priority {
	case project.PriorityCritical, project.PriorityHigh:
		return styles.PriorityHighStyle.Render("▲")
	case project.PriorityMedium:
		return styles.PriorityMediumStyle.Render("■")
	default:
		return styles.PriorityLowStyle.Render("▼")
	}
}

func truncate(s string, max int) string {
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
