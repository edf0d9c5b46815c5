package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/tradocflow/tradocflow/internal/core/config"
	"github.com/tradocflow/tradocflow/internal/core/git"
	"github.com/tradocflow/tradocflow/internal/core/project"
	"github.com/tradocflow/tradocflow/internal/core/styles"
	"github.com/tradocflow/tradocflow/internal/store/tomlfile"
	"github.com/tradocflow/tradocflow/pkg/executil"
)

// InitCmd implements the tradocflow init command.
type InitCmd struct {
	flags *Flags

	yes   bool
	force bool
}

// NewInitCmd creates a new init command.
func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

// Register adds the init command to the application.
func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "init",
		Usage: "Initialize a translation project in the current repository",
		Description: `Runs an interactive wizard that writes tradocflow.yml and scaffolds
content/project.toml. Optionally initializes a git repository and makes
the initial commit.

Examples:
  tradocflow init
  tradocflow init --yes`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip prompts and use defaults",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "overwrite an existing config",
				Destination: &cmd.force,
			},
		},
		Action: cmd.runInit,
	})

	return app
}

type initAnswers struct {
	Name        string
	Description string
	Source      string
	Targets     []string
	Editor      string
	EnableGit   bool
}

func (cmd *InitCmd) runInit(ctx context.Context, c *cli.Command) error {
	w := c.Root().Writer
	repoPath := cmd.flags.RepoPath
	configPath := filepath.Join(repoPath, DefaultConfigFile)

	if _, err := os.Stat(configPath); err == nil && !cmd.force {
		if cmd.yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", configPath)
		}

		var overwrite bool
		err := huh.NewConfirm().
			Title("Config file already exists").
			Description(configPath + "\nOverwrite?").
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			_, _ = fmt.Fprintln(w, "init cancelled")
			return nil
		}
	}

	answers := initAnswers{
		Name:      project.DefaultProjectName,
		Source:    "en",
		Targets:   []string{"de", "es", "fr", "nl"},
		Editor:    cmd.flags.User,
		EnableGit: true,
	}
	if !cmd.yes {
		if err := cmd.prompt(&answers); err != nil {
			return err
		}
	}
	if answers.Editor == "" {
		answers.Editor = os.Getenv("USER")
	}

	cfg := config.DefaultConfig()
	cfg.User = answers.Editor
	cfg.Admins = []string{answers.Editor}
	cfg.Commit.Disabled = !answers.EnableGit
	cfg.Scan.RequiredLanguages = append([]string{answers.Source}, answers.Targets...)

	if err := writeConfigFile(configPath, cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("created "+configPath))

	projectID := slugify(answers.Name)
	store := tomlfile.NewStore(repoPath, projectID)
	data := project.NewProjectData(
		projectID,
		answers.Name,
		answers.Description,
		answers.Source,
		answers.Targets,
		answers.Editor,
	)
	if err := store.SaveProject(ctx, data); err != nil {
		return fmt.Errorf("scaffold project shard: %w", err)
	}
	_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("created "+store.ProjectPath()))

	if answers.EnableGit {
		exec := git.NewExecutor(cfg.GitPath, &executil.RealExecutor{})
		if err := exec.IsValidRepo(ctx, repoPath); err != nil {
			if err := exec.Init(ctx, repoPath); err != nil {
				return fmt.Errorf("git init: %w", err)
			}
			_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("initialized git repository"))
		}

		hash, err := exec.CommitAll(ctx, repoPath, "chore: initialize translation project\n\nCreated-By: "+answers.Editor)
		if err != nil {
			_, _ = fmt.Fprintln(w, styles.WarningStyle.Render("initial commit failed: "+err.Error()))
		} else if hash != "" {
			_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("initial commit "+shortHash(hash)))
		}
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "next steps:")
	_, _ = fmt.Fprintln(w, "  tradocflow scan <documents-dir>")
	_, _ = fmt.Fprintln(w, "  tradocflow todo create --title \"First review\" --type review")
	return nil
}

func (cmd *InitCmd) prompt(answers *initAnswers) error {
	targetOptions := []huh.Option[string]{
		huh.NewOption("German (de)", "de").Selected(true),
		huh.NewOption("Spanish (es)", "es").Selected(true),
		huh.NewOption("French (fr)", "fr").Selected(true),
		huh.NewOption("Dutch (nl)", "nl").Selected(true),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&answers.Name),
			huh.NewInput().
				Title("Description").
				Value(&answers.Description),
			huh.NewInput().
				Title("Source language").
				Description("ISO code of the language documents are written in").
				Value(&answers.Source),
			huh.NewMultiSelect[string]().
				Title("Target languages").
				Options(targetOptions...).
				Value(&answers.Targets),
			huh.NewInput().
				Title("Editor user id").
				Description("Acting user; becomes the first admin").
				Value(&answers.Editor),
			huh.NewConfirm().
				Title("Record mutations as git commits?").
				Value(&answers.EnableGit),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	answers.Name = strings.TrimSpace(answers.Name)
	answers.Source = strings.ToLower(strings.TrimSpace(answers.Source))
	return nil
}

func writeConfigFile(path string, cfg config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// slugify lowercases the name and collapses runs of non-alphanumerics
// into single dashes.
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
