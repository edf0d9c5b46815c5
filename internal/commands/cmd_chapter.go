package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/tradocflow/tradocflow/internal/core/project"
	"github.com/tradocflow/tradocflow/internal/core/styles"
	"github.com/tradocflow/tradocflow/pkg/iojson"
)

// ChapterCmd implements the tradocflow chapter command group.
type ChapterCmd struct {
	flags *Flags

	listJSON  bool
	showWidth int
}

// NewChapterCmd creates a new chapter command.
func NewChapterCmd(flags *Flags) *ChapterCmd {
	return &ChapterCmd{flags: flags}
}

// Register adds the chapter command to the application.
func (cmd *ChapterCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "chapter",
		Usage: "Inspect chapter shards",
		Commands: []*cli.Command{
			cmd.listCmd(),
			cmd.showCmd(),
		},
	})

	return app
}

func (cmd *ChapterCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List chapters",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "output as JSON lines", Destination: &cmd.listJSON},
		},
		Action: cmd.runList,
	}
}

func (cmd *ChapterCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Render one chapter with per-language translation status",
		UsageText: "tradocflow chapter show <slug>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "width",
				Usage:       "wrap width for rendered output",
				Value:       100,
				Destination: &cmd.showWidth,
			},
		},
		Action: cmd.runShow,
	}
}

func (cmd *ChapterCmd) runList(ctx context.Context, c *cli.Command) error {
	app := cmd.flags.App

	data, err := app.Store.LoadProject(ctx)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	slugs, err := app.Store.ChapterSlugs(ctx)
	if err != nil {
		return fmt.Errorf("list chapters: %w", err)
	}

	type row struct {
		Number int               `json:"number"`
		Slug   string            `json:"slug"`
		Status project.ChapterStatus `json:"status"`
		Units  int               `json:"units"`
		Title  string            `json:"title"`
	}

	rows := make([]row, 0, len(slugs))
	for _, slug := range slugs {
		chapter, err := app.Store.LoadChapter(ctx, slug)
		if err != nil {
			return fmt.Errorf("load chapter %s: %w", slug, err)
		}
		rows = append(rows, row{
			Number: chapter.Chapter.Number,
			Slug:   chapter.Chapter.Slug,
			Status: chapter.Chapter.Status,
			Units:  len(chapter.Units),
			Title:  chapterTitle(chapter, data.Project.Languages.Source),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Number < rows[j].Number })

	if cmd.listJSON {
		for _, r := range rows {
			if err := iojson.WriteLine(c.Root().Writer, r); err != nil {
				return err
			}
		}
		return nil
	}

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(c.Root().Writer, "no chapters")
		return nil
	}

	tw := tabwriter.NewWriter(c.Root().Writer, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NUM\tSLUG\tSTATUS\tUNITS\tTITLE")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", r.Number, r.Slug, r.Status, r.Units, truncate(r.Title, maxTitleWidth))
	}
	return tw.Flush()
}

func (cmd *ChapterCmd) runShow(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tradocflow chapter show <slug>")
	}

	app := cmd.flags.App
	slug := c.Args().Get(0)

	data, err := app.Store.LoadProject(ctx)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	chapter, err := app.Store.LoadChapter(ctx, slug)
	if err != nil {
		return fmt.Errorf("load chapter %s: %w", slug, err)
	}

	md := renderChapterMarkdown(chapter, data)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(cmd.showWidth),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render chapter: %w", err)
	}

	_, _ = fmt.Fprint(c.Root().Writer, out)
	return nil
}

// renderChapterMarkdown builds the markdown document for chapter show:
// the source-language title, chapter metadata, then every unit's source
// text followed by per-language status badges.
func renderChapterMarkdown(chapter project.ChapterData, data project.ProjectData) string {
	var b strings.Builder

	source := data.Project.Languages.Source
	fmt.Fprintf(&b, "# %d. %s\n\n", chapter.Chapter.Number, chapterTitle(chapter, source))
	fmt.Fprintf(&b, "`%s` · status **%s** · %d units\n\n", chapter.Chapter.Slug, chapter.Chapter.Status, len(chapter.Units))

	for _, unit := range chapter.Units {
		fmt.Fprintf(&b, "## %s\n\n", unit.ID)
		fmt.Fprintf(&b, "%s\n\n", unit.SourceText)

		badges := make([]string, 0, len(data.Project.Languages.Targets))
		for _, lang := range data.Project.Languages.Targets {
			status := project.TranslationDraft
			if version, ok := unit.Translations[lang]; ok {
				status = version.Status
			}
			badges = append(badges, fmt.Sprintf("`%s: %s`", lang, status))
		}
		if len(badges) > 0 {
			fmt.Fprintf(&b, "%s\n\n", strings.Join(badges, " "))
		}
	}

	return b.String()
}

func chapterTitle(chapter project.ChapterData, sourceLanguage string) string {
	if title, ok := chapter.Chapter.Title[sourceLanguage]; ok && title != "" {
		return title
	}
	for _, title := range chapter.Chapter.Title {
		if title != "" {
			return title
		}
	}
	return chapter.Chapter.Slug
}
