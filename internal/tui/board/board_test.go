package board

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradocflow/tradocflow/internal/core/project"
)

type staticLister struct {
	todos []project.Todo
	err   error
}

func (l *staticLister) List(context.Context, project.TodoFilter) ([]project.Todo, error) {
	return l.todos, l.err
}

func sampleTodos() []project.Todo {
	return []project.Todo{
		{ID: "t1", Title: "Translate intro", Status: project.StatusOpen, Priority: project.PriorityHigh, TodoType: project.TypeTranslation},
		{ID: "t2", Title: "Review chapter 2", Status: project.StatusOpen, Priority: project.PriorityMedium, TodoType: project.TypeReview},
		{ID: "t3", Title: "Check terminology", Status: project.StatusInProgress, Priority: project.PriorityLow, TodoType: project.TypeTerminology},
		{ID: "t4", Title: "Old screenshot task", Status: project.StatusCompleted, Priority: project.PriorityMedium, TodoType: project.TypeScreenshot},
	}
}

func loaded(t *testing.T, todos []project.Todo) Model {
	t.Helper()

	m := New(&staticLister{todos: todos})
	updated, _ := m.Update(todosLoadedMsg{todos: todos})

	model, ok := updated.(Model)
	require.True(t, ok)
	return model
}

func key(m Model, s string) Model {
	var msg tea.KeyMsg
	switch s {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestBoard_GroupsByStatus(t *testing.T) {
	t.Parallel()

	m := loaded(t, sampleTodos())

	assert.Len(t, m.columns[project.StatusOpen], 2)
	assert.Len(t, m.columns[project.StatusInProgress], 1)
	assert.Len(t, m.columns[project.StatusCompleted], 1)
	assert.Empty(t, m.columns[project.StatusCancelled])
}

func TestBoard_Navigation(t *testing.T) {
	t.Parallel()

	m := loaded(t, sampleTodos())
	assert.Equal(t, 0, m.focus)

	m = key(m, "l")
	assert.Equal(t, 1, m.focus)

	m = key(m, "h")
	m = key(m, "h") // already leftmost
	assert.Equal(t, 0, m.focus)

	m = key(m, "j")
	assert.Equal(t, 1, m.selected[0])
	m = key(m, "j") // already at the last card
	assert.Equal(t, 1, m.selected[0])

	m = key(m, "k")
	assert.Equal(t, 0, m.selected[0])
}

func TestBoard_DetailOverlay(t *testing.T) {
	t.Parallel()

	m := loaded(t, sampleTodos())
	m = key(m, "j")
	m = key(m, "enter")

	require.NotNil(t, m.detail)
	assert.Equal(t, "t2", m.detail.ID)
	assert.Contains(t, m.View(), "Review chapter 2")

	m = key(m, "esc")
	assert.Nil(t, m.detail)
}

func TestBoard_QuitAndReload(t *testing.T) {
	t.Parallel()

	m := loaded(t, sampleTodos())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	m = updated.(Model)
	_, reload := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, reload)
}

func TestBoard_ViewListsColumns(t *testing.T) {
	t.Parallel()

	m := loaded(t, sampleTodos())
	view := m.View()

	assert.Contains(t, view, "Open (2)")
	assert.Contains(t, view, "In Progress (1)")
	assert.Contains(t, view, "Completed (1)")
	assert.Contains(t, view, "Cancelled (0)")
}

func TestBoard_LoadFailure(t *testing.T) {
	t.Parallel()

	m := New(&staticLister{err: assert.AnError})
	updated, _ := m.Update(loadFailedMsg{err: assert.AnError})
	m = updated.(Model)

	assert.Contains(t, m.View(), "load failed")
}
