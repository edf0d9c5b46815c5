package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/tradocflow/tradocflow/internal/core/detect"
	"github.com/tradocflow/tradocflow/internal/core/styles"
	"github.com/tradocflow/tradocflow/internal/store/jsonfile"
	"github.com/tradocflow/tradocflow/internal/tradoc"
	"github.com/tradocflow/tradocflow/pkg/iojson"
)

// ScanCmd implements the tradocflow scan command.
type ScanCmd struct {
	flags *Flags

	json          bool
	last          bool
	recursive     bool
	maxDepth      int
	extensions    []string
	minConfidence float64
	required      []string
}

// NewScanCmd creates a new scan command.
func NewScanCmd(flags *Flags) *ScanCmd {
	return &ScanCmd{flags: flags}
}

// Register adds the scan command to the application.
func (cmd *ScanCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "scan",
		Usage:     "Scan a folder for translated documents",
		UsageText: "tradocflow scan <dir> [flags]\n   tradocflow scan --last",
		Description: `Detects document languages from filenames, groups files that share a
base name into language sets, and reports which sets are missing
translations. Results are kept in scan history.

Examples:
  tradocflow scan ./documents
  tradocflow scan ./documents --required en,de --json
  tradocflow scan --last`,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "output the full result as JSON", Destination: &cmd.json},
			&cli.BoolFlag{Name: "last", Usage: "show the most recent saved scan instead of scanning", Destination: &cmd.last},
			&cli.BoolFlag{Name: "recursive", Usage: "descend into subdirectories", Value: true, Destination: &cmd.recursive},
			&cli.IntFlag{Name: "max-depth", Usage: "recursion depth limit", Destination: &cmd.maxDepth},
			&cli.StringSliceFlag{Name: "ext", Usage: "file extensions to include", Destination: &cmd.extensions},
			&cli.FloatFlag{Name: "min-confidence", Usage: "minimum detection confidence", Destination: &cmd.minConfidence},
			&cli.StringSliceFlag{Name: "required", Usage: "languages a complete set needs", Destination: &cmd.required},
		},
		Action: cmd.runScan,
	})

	return app
}

func (cmd *ScanCmd) runScan(ctx context.Context, c *cli.Command) error {
	var result *detect.FolderScanResult

	if cmd.last {
		latest, err := cmd.flags.App.Scan.Latest(ctx)
		if errors.Is(err, jsonfile.ErrNoScans) {
			return fmt.Errorf("no saved scans; run tradocflow scan <dir> first")
		}
		if err != nil {
			return fmt.Errorf("load last scan: %w", err)
		}
		result = &latest
	} else {
		if c.NArg() < 1 {
			return fmt.Errorf("usage: tradocflow scan <dir>")
		}

		opts := tradoc.ScanOptions{
			MaxDepth:          cmd.maxDepth,
			Extensions:        cmd.extensions,
			MinConfidence:     cmd.minConfidence,
			RequiredLanguages: cmd.required,
		}
		if c.IsSet("recursive") {
			opts.Recursive = &cmd.recursive
		}

		var err error
		result, err = cmd.flags.App.Scan.Scan(ctx, c.Args().Get(0), opts)
		if err != nil {
			return err
		}
	}

	if cmd.json {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, result)
	}

	writeScanResult(c.Root().Writer, result)
	return nil
}

func writeScanResult(w io.Writer, result *detect.FolderScanResult) {
	_, _ = fmt.Fprintln(w, styles.TitleStyle.Render("scan "+result.Root))
	_, _ = fmt.Fprintf(w, "%d files, %d supported, %d complete sets, %d incomplete (%.0f%% avg confidence)\n\n",
		result.Stats.TotalFiles,
		result.Stats.SupportedFiles,
		result.Stats.CompleteSets,
		result.Stats.IncompleteSets,
		result.Stats.AverageConfidence*100,
	)

	if len(result.Sets) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "SET\tFILES\tLANGUAGES\tMISSING")
		for _, set := range result.Sets {
			langs := make([]string, 0, len(set.Documents))
			for lang := range set.Documents {
				langs = append(langs, lang)
			}
			sort.Strings(langs)

			missing := "-"
			if m := result.Missing[set.BaseName]; len(m) > 0 {
				missing = strings.Join(m, ",")
			}
			_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
				set.BaseName, set.FileCount, strings.Join(langs, ","), missing)
		}
		_ = tw.Flush()
	}

	if len(result.Unclassified) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n", styles.MutedStyle.Render(fmt.Sprintf("%d unclassified files", len(result.Unclassified))))
	}

	for _, warning := range result.Warnings {
		_, _ = fmt.Fprintln(w, styles.WarningStyle.Render("warning: "+warning))
	}
	for _, scanErr := range result.Errors {
		_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render("error: "+scanErr))
	}
}
