package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tradocflow/tradocflow/internal/core/project"
	"github.com/tradocflow/tradocflow/internal/tradoc"
	"github.com/tradocflow/tradocflow/pkg/iojson"
)

// CommentCmd implements the tradocflow comment command group.
type CommentCmd struct {
	flags *Flags

	// add flags
	addType     string
	addContext  string
	addChapter  string
	addUnit     string
	addLanguage string
	addThread   string

	// reply flags
	replyTo string

	listJSON bool
}

// NewCommentCmd creates a new comment command.
func NewCommentCmd(flags *Flags) *CommentCmd {
	return &CommentCmd{flags: flags}
}

// Register adds the comment command to the application.
func (cmd *CommentCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "comment",
		Usage: "Add and resolve review comments",
		Description: `Comments attach feedback to the project, a chapter, or one
language's translation of a paragraph.

Examples:
  tradocflow comment add "Terminology looks off" --type terminology
  tradocflow comment add "Wrong register here" --context translation \
      --unit intro_p002 --language de --type issue
  tradocflow comment resolve <id>`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.replyCmd(),
			cmd.resolveCmd(),
			cmd.listCmd(),
		},
	})

	return app
}

func (cmd *CommentCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a comment",
		UsageText: "tradocflow comment add <content> [--context <scope>] [flags]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "type",
				Aliases:     []string{"t"},
				Usage:       "comment type (suggestion, question, approval, issue, context, terminology)",
				Value:       string(project.CommentSuggestion),
				Destination: &cmd.addType,
			},
			&cli.StringFlag{
				Name:        "context",
				Usage:       "scope (project, chapter, translation)",
				Value:       "project",
				Destination: &cmd.addContext,
			},
			&cli.StringFlag{
				Name:        "chapter",
				Aliases:     []string{"c"},
				Usage:       "chapter slug for chapter scope",
				Destination: &cmd.addChapter,
			},
			&cli.StringFlag{
				Name:        "unit",
				Usage:       "unit id for translation scope",
				Destination: &cmd.addUnit,
			},
			&cli.StringFlag{
				Name:        "language",
				Aliases:     []string{"l"},
				Usage:       "language code for translation scope",
				Destination: &cmd.addLanguage,
			},
			&cli.StringFlag{
				Name:        "thread",
				Usage:       "thread id linking related comments",
				Destination: &cmd.addThread,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *CommentCmd) replyCmd() *cli.Command {
	return &cli.Command{
		Name:      "reply",
		Usage:     "Reply to a comment",
		UsageText: "tradocflow comment reply <id> <content> [--to <author>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "to",
				Usage:       "author being answered",
				Destination: &cmd.replyTo,
			},
		},
		Action: cmd.runReply,
	}
}

func (cmd *CommentCmd) resolveCmd() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Mark a comment resolved",
		UsageText: "tradocflow comment resolve <id>",
		Action:    cmd.runResolve,
	}
}

func (cmd *CommentCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List comments across the project",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "output as JSON lines", Destination: &cmd.listJSON},
		},
		Action: cmd.runList,
	}
}

func (cmd *CommentCmd) runAdd(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tradocflow comment add <content>")
	}

	req := tradocAddCommentRequest(
		strings.Join(c.Args().Slice(), " "),
		cmd.addType, cmd.addContext, cmd.addChapter, cmd.addUnit, cmd.addLanguage, cmd.addThread,
	)

	comment, err := cmd.flags.App.Tasks.AddComment(ctx, req)
	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, comment)
}

func (cmd *CommentCmd) runReply(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: tradocflow comment reply <id> <content>")
	}

	comment, err := cmd.flags.App.Tasks.Reply(ctx, c.Args().Get(0), strings.Join(c.Args().Slice()[1:], " "), cmd.replyTo)
	if err != nil {
		return fmt.Errorf("reply: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "replied to %s (%d replies)\n", comment.ID, len(comment.Replies))
	return nil
}

func (cmd *CommentCmd) runResolve(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tradocflow comment resolve <id>")
	}

	comment, err := cmd.flags.App.Tasks.ResolveComment(ctx, c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("resolve comment: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "resolved %s\n", comment.ID)
	return nil
}

// tradocAddCommentRequest maps the add flags onto a request. Unknown
// scopes pass through so validation produces the error message.
func tradocAddCommentRequest(content, commentType, scope, chapter, unit, language, thread string) tradoc.AddCommentRequest {
	req := tradoc.AddCommentRequest{
		Content:  content,
		Type:     project.CommentType(commentType),
		Chapter:  chapter,
		ThreadID: thread,
	}

	switch strings.ToLower(scope) {
	case "", "project":
		req.Context = project.ProjectCommentContext()
	case "chapter":
		req.Context = project.ChapterCommentContext()
	case "translation":
		req.Context = project.TranslationCommentContext(unit, language)
	default:
		req.Context = project.CommentContext{Type: project.ContextType(scope), Paragraph: unit, Language: language}
	}

	return req
}

func (cmd *CommentCmd) runList(ctx context.Context, c *cli.Command) error {
	comments, err := cmd.flags.App.Tasks.ListComments(ctx)
	if err != nil {
		return fmt.Errorf("list comments: %w", err)
	}

	if cmd.listJSON {
		for _, comment := range comments {
			if err := iojson.WriteLine(c.Root().Writer, comment); err != nil {
				return err
			}
		}
		return nil
	}

	writeCommentTable(c.Root().Writer, comments)
	return nil
}
