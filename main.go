package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/tradocflow/tradocflow/internal/commands"
	"github.com/tradocflow/tradocflow/internal/core/config"
	"github.com/tradocflow/tradocflow/internal/core/logging"
	"github.com/tradocflow/tradocflow/internal/tradoc"
	"github.com/tradocflow/tradocflow/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var logCloser func()

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "tradocflow",
		Usage:     "Manage translation projects backed by TOML shards and git",
		UsageText: "tradocflow [global options] command [command options]",
		Description: `Tradocflow tracks translation todos, review comments, and per-language
progress in TOML files inside the translation repository. Every mutation
is recorded as a git commit with structured trailers, so the project
history doubles as an audit log.

Run 'tradocflow init' to set up a repository, then 'tradocflow board'
for the interactive kanban view.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TRADOCFLOW_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/tradocflow.log)",
				Sources:     cli.EnvVars("TRADOCFLOW_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TRADOCFLOW_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "path to the translation repository",
				Sources:     cli.EnvVars("TRADOCFLOW_PROJECT"),
				Value:       ".",
				Destination: &flags.RepoPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TRADOCFLOW_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "user",
				Aliases:     []string{"u"},
				Usage:       "acting user id (overrides config)",
				Sources:     cli.EnvVars("TRADOCFLOW_USER"),
				Destination: &flags.User,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; stdout stays clean for command output.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "tradocflow.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.RepoPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.User != "" {
				cfg.User = flags.User
			}
			if cfg.User == "" {
				cfg.User = os.Getenv("USER")
			}
			flags.Config = cfg

			flags.App = tradoc.NewApp(cfg, logging.Component("tradocflow"))

			return logging.WithUserID(ctx, cfg.User), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if flags.App != nil {
				flags.App.Stop()
			}
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewInitCmd(flags).Register(app)
	app = commands.NewTodoCmd(flags).Register(app)
	app = commands.NewCommentCmd(flags).Register(app)
	app = commands.NewChapterCmd(flags).Register(app)
	app = commands.NewProgressCmd(flags).Register(app)
	app = commands.NewScanCmd(flags).Register(app)
	app = commands.NewNotifyCmd(flags).Register(app)
	app = commands.NewBoardCmd(flags).Register(app)

	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'tradocflow --help' for usage", c.Args().First())
		}
		return cli.ShowSubcommandHelp(c)
	}

	exitCode := 0
	if runErr := app.Run(ctx, os.Args); runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
