package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/tradocflow/tradocflow/internal/core/notify"
	"github.com/tradocflow/tradocflow/pkg/iojson"
)

// NotifyCmd implements the tradocflow notify command group.
type NotifyCmd struct {
	flags *Flags

	unread bool
	all    bool
	json   bool
}

// NewNotifyCmd creates a new notify command.
func NewNotifyCmd(flags *Flags) *NotifyCmd {
	return &NotifyCmd{flags: flags}
}

// Register adds the notify command to the application.
func (cmd *NotifyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "notify",
		Usage: "Read and manage notifications",
		Commands: []*cli.Command{
			cmd.listCmd(),
			cmd.readCmd(),
			cmd.clearCmd(),
		},
	})

	return app
}

func (cmd *NotifyCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List your notifications",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "unread", Aliases: []string{"u"}, Usage: "only unread notifications", Destination: &cmd.unread},
			&cli.BoolFlag{Name: "all", Usage: "include notifications addressed to other users", Destination: &cmd.all},
			&cli.BoolFlag{Name: "json", Usage: "output as JSON lines", Destination: &cmd.json},
		},
		Action: cmd.runList,
	}
}

func (cmd *NotifyCmd) readCmd() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Mark a notification as read",
		UsageText: "tradocflow notify read <id>",
		Action:    cmd.runRead,
	}
}

func (cmd *NotifyCmd) clearCmd() *cli.Command {
	return &cli.Command{
		Name:   "clear",
		Usage:  "Remove all notifications",
		Action: cmd.runClear,
	}
}

func (cmd *NotifyCmd) runList(ctx context.Context, c *cli.Command) error {
	store := cmd.flags.App.Notifications

	var notifications []notify.Notification
	var err error
	if cmd.all {
		notifications, err = store.List(ctx)
	} else {
		notifications, err = store.ListForRecipient(ctx, cmd.flags.App.Config.User, cmd.unread)
	}
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	if cmd.json {
		for _, n := range notifications {
			if err := iojson.WriteLine(c.Root().Writer, n); err != nil {
				return err
			}
		}
		return nil
	}

	writeNotificationTable(c.Root().Writer, notifications)
	return nil
}

func (cmd *NotifyCmd) runRead(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tradocflow notify read <id>")
	}

	id, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid notification id %q", c.Args().Get(0))
	}

	if err := cmd.flags.App.Notifications.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "marked %d read\n", id)
	return nil
}

func (cmd *NotifyCmd) runClear(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.App.Notifications.Clear(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "notifications cleared")
	return nil
}
