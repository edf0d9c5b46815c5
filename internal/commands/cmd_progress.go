package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/tradocflow/tradocflow/internal/core/styles"
	"github.com/tradocflow/tradocflow/internal/tradoc"
	"github.com/tradocflow/tradocflow/pkg/iojson"
)

const progressBarWidth = 30

// ProgressCmd implements the tradocflow progress command.
type ProgressCmd struct {
	flags *Flags

	json bool
}

// NewProgressCmd creates a new progress command.
func NewProgressCmd(flags *Flags) *ProgressCmd {
	return &ProgressCmd{flags: flags}
}

// Register adds the progress command to the application.
func (cmd *ProgressCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "progress",
		Usage: "Show the translation progress report",
		Description: `Computes completion per language and chapter, team workload,
and a projected completion timeline from the current shards.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "output the full report as JSON", Destination: &cmd.json},
		},
		Action: cmd.runProgress,
	})

	return app
}

func (cmd *ProgressCmd) runProgress(ctx context.Context, c *cli.Command) error {
	report, err := cmd.flags.App.Progress.Progress(ctx)
	if err != nil {
		return fmt.Errorf("compute progress: %w", err)
	}

	if cmd.json {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report)
	}

	writeProgressReport(c.Root().Writer, report)
	return nil
}

func writeProgressReport(w io.Writer, report tradoc.ProjectProgress) {
	_, _ = fmt.Fprintln(w, styles.TitleStyle.Render(report.ProjectName))
	_, _ = fmt.Fprintf(w, "%s %s %.0f%%\n\n",
		styles.LabelStyle.Render("overall"),
		progressBar(report.OverallCompletion),
		report.OverallCompletion*100,
	)

	// Languages, sorted for stable output.
	langs := make([]string, 0, len(report.Languages))
	for lang := range report.Languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render("Languages"))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LANG\tDONE\tAPPROVED\tTOTAL\tREMAINING\tPROGRESS")
	for _, lang := range langs {
		lp := report.Languages[lang]
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1fh\t%s %.0f%%\n",
			lang, lp.TranslatedUnits, lp.ApprovedUnits, lp.TotalUnits,
			lp.EstimatedRemainingHours, progressBar(lp.Completion), lp.Completion*100)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintln(w)

	if len(report.Chapters) > 0 {
		_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render("Chapters"))
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "NUM\tSLUG\tUNITS\tSTATUS")
		for _, ch := range report.Chapters {
			parts := make([]string, 0, len(ch.Status))
			for _, lang := range langs {
				if status, ok := ch.Status[lang]; ok {
					parts = append(parts, fmt.Sprintf("%s=%s", lang, status))
				}
			}
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", ch.Number, ch.Slug, ch.Units, strings.Join(parts, " "))
		}
		_ = tw.Flush()
		_, _ = fmt.Fprintln(w)
	}

	if len(report.Team.Members) > 0 {
		members := make([]string, 0, len(report.Team.Members))
		for member := range report.Team.Members {
			members = append(members, member)
		}
		sort.Strings(members)

		_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render("Team"))
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "MEMBER\tASSIGNED\tCOMPLETED\tOPEN\tPRODUCTIVITY")
		for _, member := range members {
			stats := report.Team.Members[member]
			_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.0f%%\n",
				member, stats.Assigned, stats.Completed, stats.Open, stats.Productivity*100)
		}
		_ = tw.Flush()
		if n := len(report.Team.Overdue); n > 0 {
			_, _ = fmt.Fprintln(w, styles.WarningStyle.Render(fmt.Sprintf("%d overdue todos", n)))
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render("Timeline"))
	_, _ = fmt.Fprintf(w, "%s %.1f todos/week\n", styles.LabelStyle.Render("velocity"), report.Timeline.VelocityPerWeek)
	_, _ = fmt.Fprintf(w, "%s %.1f weeks (%s)\n",
		styles.LabelStyle.Render("remaining"),
		report.Timeline.WeeksRemaining,
		report.Timeline.ProjectedCompletion.Format("2006-01-02"),
	)
	for _, m := range report.Timeline.Milestones {
		mark := styles.MutedStyle.Render("○")
		if m.Reached {
			mark = styles.SuccessStyle.Render("●")
		}
		_, _ = fmt.Fprintf(w, "  %s %s (%.0f%%)\n", mark, m.Name, m.TargetPercent*100)
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "%s %d total, %d completed, %d remaining\n",
		styles.LabelStyle.Render("todos"),
		report.Todos.Total, report.Todos.Completed, report.Todos.Remaining)
}

// progressBar renders a fixed-width unicode bar for a 0..1 ratio.
func progressBar(ratio float64) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio*progressBarWidth + 0.5)
	return styles.BarFilledStyle.Render(strings.Repeat("█", filled)) +
		styles.BarEmptyStyle.Render(strings.Repeat("░", progressBarWidth-filled))
}
