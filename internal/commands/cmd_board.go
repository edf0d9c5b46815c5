package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/tradocflow/tradocflow/internal/tui/board"
)

// BoardCmd implements the tradocflow board command.
type BoardCmd struct {
	flags *Flags
}

// NewBoardCmd creates a new board command.
func NewBoardCmd(flags *Flags) *BoardCmd {
	return &BoardCmd{flags: flags}
}

// Register adds the board command to the application.
func (cmd *BoardCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "board",
		Usage: "Open the read-only kanban board",
		Description: `Shows todos in four status columns. Navigate with the arrow keys or
hjkl, press enter for details, r to reload, q to quit.`,
		Action: cmd.runBoard,
	})

	return app
}

func (cmd *BoardCmd) runBoard(ctx context.Context, c *cli.Command) error {
	// Keep the todo cache honest while the board is open: external shard
	// writes evict stale entries.
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := cmd.flags.App.WatchShards(watchCtx, log.Logger); err != nil && watchCtx.Err() == nil {
			log.Warn().Err(err).Msg("shard watcher stopped")
		}
	}()

	m := board.New(cmd.flags.App.Tasks)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run board: %w", err)
	}

	return nil
}
