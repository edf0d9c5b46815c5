package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tradocflow/tradocflow/internal/core/notify"
	"github.com/tradocflow/tradocflow/internal/core/project"
)

const maxTitleWidth = 48

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func formatDue(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func writeTodoTable(w io.Writer, todos []project.Todo) {
	if len(todos) == 0 {
		_, _ = fmt.Fprintln(w, "no todos")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tTYPE\tCONTEXT\tASSIGNEE\tDUE\tTITLE")
	for _, todo := range todos {
		assignee := todo.AssignedTo
		if assignee == "" {
			assignee = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			todo.ID,
			todo.Status,
			todo.Priority,
			todo.TodoType,
			todo.Context.String(),
			assignee,
			formatDue(todo.DueDate),
			truncate(todo.Title, maxTitleWidth),
		)
	}
	_ = tw.Flush()
}

func writeCommentTable(w io.Writer, comments []project.Comment) {
	if len(comments) == 0 {
		_, _ = fmt.Fprintln(w, "no comments")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTYPE\tCONTEXT\tAUTHOR\tRESOLVED\tCONTENT")
	for _, comment := range comments {
		resolved := "no"
		if comment.Resolved {
			resolved = "yes"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			comment.ID,
			comment.Type,
			comment.Context.String(),
			comment.Author,
			resolved,
			truncate(strings.ReplaceAll(comment.Content, "\n", " "), maxTitleWidth),
		)
	}
	_ = tw.Flush()
}

func writeNotificationTable(w io.Writer, notifications []notify.Notification) {
	if len(notifications) == 0 {
		_, _ = fmt.Fprintln(w, "no notifications")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tLEVEL\tREAD\tCREATED\tMESSAGE")
	for _, n := range notifications {
		read := " "
		if !n.Read {
			read = "*"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			n.ID,
			n.Level,
			read,
			n.CreatedAt.Local().Format("2006-01-02 15:04"),
			truncate(n.Message, 64),
		)
	}
	_ = tw.Flush()
}
