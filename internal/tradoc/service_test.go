package tradoc

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradocflow/tradocflow/internal/core/config"
	"github.com/tradocflow/tradocflow/internal/core/project"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := &config.Config{
		User:     "admin1",
		Admins:   []string{"admin1"},
		GitPath:  "git",
		RepoPath: t.TempDir(),
		DataDir:  t.TempDir(),
		Commit:   config.CommitConfig{Disabled: true},
	}

	app := NewApp(cfg, zerolog.Nop())
	t.Cleanup(app.Stop)
	return app
}

func TestNewApp_ServicesWired(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	assert.NotNil(t, app.Tasks)
	assert.NotNil(t, app.Progress)
	assert.NotNil(t, app.Scan)
	assert.NotNil(t, app.Notifications)
	assert.NotNil(t, app.Kanban)
	assert.NotNil(t, app.Store)
	assert.NotNil(t, app.Bus)
}

// The kanban collaborator wired into App must be usable for assignment
// sync, the same instance the commit bridge listens on.
func TestNewApp_KanbanAssignmentSync(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	ctx := context.Background()

	todo, err := app.Tasks.Create(ctx, CreateTodoRequest{
		Title:    "Wire the board",
		TodoType: project.TypeTranslation,
		Priority: project.PriorityMedium,
		Context:  project.ProjectContext(),
	})
	require.NoError(t, err)

	assigned, err := app.Tasks.Assign(ctx, todo.ID, "translator1", app.Kanban)
	require.NoError(t, err)
	assert.Equal(t, "translator1", assigned.AssignedTo)
}
