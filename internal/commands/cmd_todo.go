package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tradocflow/tradocflow/internal/core/project"
	"github.com/tradocflow/tradocflow/internal/tradoc"
	"github.com/tradocflow/tradocflow/pkg/iojson"
)

// TodoCmd implements the tradocflow todo command group.
type TodoCmd struct {
	flags *Flags

	reader iojson.FileReader[tradoc.CreateTodoRequest]

	// create flags
	createTitle       string
	createDescription string
	createType        string
	createPriority    string
	createContext     string
	createUnit        string
	createLanguage    string
	createAssignee    string
	createDue         string

	// list flags
	listAssignee     string
	listCreator      string
	listStatus       string
	listPriority     string
	listType         string
	listContext      string
	listDueBefore    string
	listCreatedAfter string
	listMine         bool
	listOverdue      bool
	listJSON         bool

	// complete/cancel flags
	resolution string
}

// NewTodoCmd creates a new todo command.
func NewTodoCmd(flags *Flags) *TodoCmd {
	return &TodoCmd{flags: flags}
}

// Register adds the todo command to the application.
func (cmd *TodoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "todo",
		Usage: "Manage translation project todos",
		Description: `Todo commands for the translation workflow.

Every mutation is persisted into the project's TOML files and recorded
as a git commit with structured trailers.

Examples:
  tradocflow todo create --title "Review intro" --type review --context chapter
  tradocflow todo list --mine
  tradocflow todo complete <id> --resolution "Done in review round 2"`,
		Commands: []*cli.Command{
			cmd.createCmd(),
			cmd.listCmd(),
			cmd.getCmd(),
			cmd.completeCmd(),
			cmd.cancelCmd(),
			cmd.assignCmd(),
			cmd.deleteCmd(),
		},
	})

	return app
}

func (cmd *TodoCmd) createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a todo",
		UsageText: "tradocflow todo create --title <title> --type <type> [--context <scope>] [flags]\n   tradocflow todo create -f request.json",
		Description: `Creates a todo in the scope its context names.

Unit-scoped todos (--context paragraph|translation) require --unit; the
owning chapter is inferred from the unit id prefix.

With -f (or piped stdin) the request is read as JSON instead of flags.

Examples:
  tradocflow todo create --title "Fix terminology" --type terminology
  tradocflow todo create --title "Translate p3" --type translation \
      --context translation --unit intro_p003 --language de --assignee translator-de
  cat request.json | tradocflow todo create`,
		Flags: []cli.Flag{
			cmd.reader.Flag(),
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "todo title",
				Destination: &cmd.createTitle,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "optional description",
				Destination: &cmd.createDescription,
			},
			&cli.StringFlag{
				Name:        "type",
				Usage:       "todo type (translation, review, terminology, revision, screenshot, formatting, research)",
				Destination: &cmd.createType,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "priority (low, medium, high, critical)",
				Destination: &cmd.createPriority,
			},
			&cli.StringFlag{
				Name:        "context",
				Usage:       "scope (project, chapter, paragraph, translation)",
				Value:       "project",
				Destination: &cmd.createContext,
			},
			&cli.StringFlag{
				Name:        "unit",
				Usage:       "unit id for paragraph/translation scope",
				Destination: &cmd.createUnit,
			},
			&cli.StringFlag{
				Name:        "language",
				Aliases:     []string{"l"},
				Usage:       "language code for translation scope",
				Destination: &cmd.createLanguage,
			},
			&cli.StringFlag{
				Name:        "assignee",
				Aliases:     []string{"a"},
				Usage:       "user id to assign the todo to",
				Destination: &cmd.createAssignee,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date (YYYY-MM-DD or RFC 3339)",
				Destination: &cmd.createDue,
			},
		},
		Action: cmd.runCreate,
	}
}

func (cmd *TodoCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List todos",
		UsageText: "tradocflow todo list [filter flags] [--json]",
		Description: `Lists todos across the project and every chapter.

All filters are ANDed together.

Examples:
  tradocflow todo list --mine
  tradocflow todo list --status open --priority high
  tradocflow todo list --overdue --json`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "assignee", Usage: "filter by assignee", Destination: &cmd.listAssignee},
			&cli.StringFlag{Name: "creator", Usage: "filter by creator", Destination: &cmd.listCreator},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "filter by status", Destination: &cmd.listStatus},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "filter by priority", Destination: &cmd.listPriority},
			&cli.StringFlag{Name: "type", Usage: "filter by todo type", Destination: &cmd.listType},
			&cli.StringFlag{Name: "context", Usage: "filter by context scope", Destination: &cmd.listContext},
			&cli.StringFlag{Name: "due-before", Usage: "due before date (YYYY-MM-DD)", Destination: &cmd.listDueBefore},
			&cli.StringFlag{Name: "created-after", Usage: "created after date (YYYY-MM-DD)", Destination: &cmd.listCreatedAfter},
			&cli.BoolFlag{Name: "mine", Usage: "only todos assigned to you", Destination: &cmd.listMine},
			&cli.BoolFlag{Name: "overdue", Usage: "only open todos past their due date", Destination: &cmd.listOverdue},
			&cli.BoolFlag{Name: "json", Usage: "output as JSON lines", Destination: &cmd.listJSON},
		},
		Action: cmd.runList,
	}
}

func (cmd *TodoCmd) getCmd() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one todo as JSON",
		UsageText: "tradocflow todo get <id>",
		Action:    cmd.runGet,
	}
}

func (cmd *TodoCmd) completeCmd() *cli.Command {
	return &cli.Command{
		Name:      "complete",
		Usage:     "Mark a todo completed",
		UsageText: "tradocflow todo complete <id> [--resolution <text>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "resolution",
				Aliases:     []string{"r"},
				Usage:       "resolution text (defaults to \"Completed\")",
				Destination: &cmd.resolution,
			},
		},
		Action: cmd.runComplete,
	}
}

func (cmd *TodoCmd) cancelCmd() *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "Cancel a todo",
		UsageText: "tradocflow todo cancel <id> [--resolution <reason>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "resolution",
				Aliases:     []string{"r"},
				Usage:       "cancellation reason",
				Destination: &cmd.resolution,
			},
		},
		Action: cmd.runCancel,
	}
}

func (cmd *TodoCmd) assignCmd() *cli.Command {
	return &cli.Command{
		Name:      "assign",
		Usage:     "Assign a todo to a user",
		UsageText: "tradocflow todo assign <id> <user>",
		Action:    cmd.runAssign,
	}
}

func (cmd *TodoCmd) deleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a todo (soft delete)",
		UsageText: "tradocflow todo delete <id>",
		Description: `Soft-deletes a todo: the record stays in its shard as cancelled.

Only the creator or an admin may delete.`,
		Action: cmd.runDelete,
	}
}

func (cmd *TodoCmd) runCreate(ctx context.Context, c *cli.Command) error {
	var req tradoc.CreateTodoRequest

	if cmd.createTitle == "" {
		// No flags given: read the request as JSON from -f or stdin.
		var err error
		req, err = cmd.reader.Read()
		if err != nil {
			return err
		}
	} else {
		req = tradoc.CreateTodoRequest{
			Title:       cmd.createTitle,
			Description: cmd.createDescription,
			TodoType:    project.TodoType(cmd.createType),
			Priority:    project.Priority(cmd.createPriority),
			AssignedTo:  cmd.createAssignee,
			Context:     buildTodoContext(cmd.createContext, cmd.createUnit, cmd.createLanguage),
		}
		if cmd.createDue != "" {
			due, err := parseDate(cmd.createDue)
			if err != nil {
				return fmt.Errorf("parse --due: %w", err)
			}
			req.DueDate = &due
		}
	}

	todo, err := cmd.flags.App.Tasks.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, todo)
}

func (cmd *TodoCmd) runList(ctx context.Context, c *cli.Command) error {
	filter, err := cmd.buildFilter()
	if err != nil {
		return err
	}

	todos, err := cmd.flags.App.Tasks.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("list todos: %w", err)
	}

	if cmd.listJSON {
		for _, todo := range todos {
			if err := iojson.WriteLine(c.Root().Writer, todo); err != nil {
				return err
			}
		}
		return nil
	}

	writeTodoTable(c.Root().Writer, todos)
	return nil
}

func (cmd *TodoCmd) buildFilter() (project.TodoFilter, error) {
	var filter project.TodoFilter

	assignee := cmd.listAssignee
	if cmd.listMine {
		assignee = cmd.flags.App.Tasks.Actor()
	}
	if assignee != "" {
		filter.AssignedTo = &assignee
	}
	if cmd.listCreator != "" {
		filter.CreatedBy = &cmd.listCreator
	}
	if cmd.listStatus != "" {
		status := project.TodoStatus(cmd.listStatus)
		filter.Status = &status
	}
	if cmd.listPriority != "" {
		priority := project.Priority(cmd.listPriority)
		filter.Priority = &priority
	}
	if cmd.listType != "" {
		todoType := project.TodoType(cmd.listType)
		filter.TodoType = &todoType
	}
	if cmd.listContext != "" {
		contextType := project.ContextType(cmd.listContext)
		filter.ContextType = &contextType
	}
	if cmd.listDueBefore != "" {
		due, err := parseDate(cmd.listDueBefore)
		if err != nil {
			return filter, fmt.Errorf("parse --due-before: %w", err)
		}
		filter.DueBefore = &due
	}
	if cmd.listCreatedAfter != "" {
		created, err := parseDate(cmd.listCreatedAfter)
		if err != nil {
			return filter, fmt.Errorf("parse --created-after: %w", err)
		}
		filter.CreatedAfter = &created
	}
	if cmd.listOverdue {
		now := time.Now().UTC()
		status := project.StatusOpen
		filter.Status = &status
		filter.DueBefore = &now
	}

	return filter, nil
}

func (cmd *TodoCmd) runGet(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tradocflow todo get <id>")
	}

	todo, err := cmd.flags.App.Tasks.Get(ctx, c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("get todo: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, todo)
}

func (cmd *TodoCmd) runComplete(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tradocflow todo complete <id>")
	}

	todo, err := cmd.flags.App.Tasks.Complete(ctx, c.Args().Get(0), cmd.resolution)
	if err != nil {
		return fmt.Errorf("complete todo: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "completed %s\n", todo.ID)
	return nil
}

func (cmd *TodoCmd) runCancel(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tradocflow todo cancel <id>")
	}

	todo, err := cmd.flags.App.Tasks.Cancel(ctx, c.Args().Get(0), cmd.resolution)
	if err != nil {
		return fmt.Errorf("cancel todo: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "cancelled %s\n", todo.ID)
	return nil
}

func (cmd *TodoCmd) runAssign(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: tradocflow todo assign <id> <user>")
	}

	todo, err := cmd.flags.App.Tasks.Assign(ctx, c.Args().Get(0), c.Args().Get(1), cmd.flags.App.Kanban)
	if err != nil {
		return fmt.Errorf("assign todo: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "assigned %s to %s\n", todo.ID, todo.AssignedTo)
	return nil
}

func (cmd *TodoCmd) runDelete(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tradocflow todo delete <id>")
	}

	id := c.Args().Get(0)
	if err := cmd.flags.App.Tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "deleted %s\n", id)
	return nil
}

// buildTodoContext maps the context flags onto a todo context. Unknown
// scopes pass through so validation produces the error message.
func buildTodoContext(scope, unit, language string) project.TodoContext {
	switch strings.ToLower(scope) {
	case "", "project":
		return project.ProjectContext()
	case "chapter":
		return project.ChapterContext()
	case "paragraph":
		return project.ParagraphContext(unit)
	case "translation":
		return project.TranslationContext(unit, language)
	default:
		return project.TodoContext{Type: project.ContextType(scope), UnitID: unit, Language: language}
	}
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", s)
	}
	return t.UTC(), nil
}
