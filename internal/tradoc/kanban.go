package tradoc

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tradocflow/tradocflow/internal/core/eventbus"
)

// Kanban is the collaborator interface for an external kanban board.
// Both calls are best-effort from the caller's perspective: a failing
// board never fails a task operation.
type Kanban interface {
	// SyncTodoAssignment mirrors an assignee change onto the board.
	SyncTodoAssignment(ctx context.Context, todoID, assignee string) error

	// HandleGitCommit lets the board react to a recorded task commit,
	// for boards that move cards based on commit messages.
	HandleGitCommit(ctx context.Context, title, message string) error
}

// LogKanban is the default Kanban collaborator: it only logs what a
// real board integration would receive.
type LogKanban struct {
	log zerolog.Logger
}

var _ Kanban = (*LogKanban)(nil)

// NewLogKanban creates a logging kanban collaborator.
func NewLogKanban(log zerolog.Logger) *LogKanban {
	return &LogKanban{log: log.With().Str("component", "kanban").Logger()}
}

func (k *LogKanban) SyncTodoAssignment(ctx context.Context, todoID, assignee string) error {
	k.log.Debug().
		Str("todo_id", todoID).
		Str("assignee", assignee).
		Msg("kanban assignment sync")
	return nil
}

func (k *LogKanban) HandleGitCommit(ctx context.Context, title, message string) error {
	k.log.Debug().
		Str("title", title).
		Msg("kanban commit notification")
	return nil
}

// RegisterKanbanBridge forwards commit.created events to the kanban
// collaborator. Failures are logged and swallowed so a broken board
// never disturbs the task pipeline.
func RegisterKanbanBridge(bus *eventbus.EventBus, kanban Kanban, log zerolog.Logger) {
	bridgeLog := log.With().Str("component", "kanban-bridge").Logger()

	bus.SubscribeCommitCreated(func(p eventbus.CommitCreatedPayload) {
		if err := kanban.HandleGitCommit(context.Background(), p.Title, p.Message); err != nil {
			bridgeLog.Warn().Err(err).Str("title", p.Title).Msg("kanban commit handling failed")
		}
	})
}
