package config

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/hay-kot/criterio"

	"github.com/tradocflow/tradocflow/pkg/tmpl"
)

// HookTemplateData defines available fields for commit.post_hook templates.
type HookTemplateData struct {
	Message string // first line of the commit message
	SHA     string // resulting commit SHA
	Shard   string // shard the mutation touched ("project" or chapter slug)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("git_path", c.GitPath, required),
		criterio.Run("repo_path", c.RepoPath, required),
		criterio.Run("data_dir", c.DataDir, required),
		criterio.Run("scan.max_depth", c.Scan.MaxDepth, atLeastOne),
		criterio.Run("scan.min_confidence", c.Scan.MinConfidence, unitInterval),
		c.validateLanguages(),
	)
}

// ValidateDeep performs comprehensive validation including file
// accessibility, the git executable, and hook template syntax. The
// configPath argument specifies the config file location to validate
// (empty string skips the config file check). This calls Validate()
// first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("git_path", c.GitPath, gitExecutableExists),
		criterio.Run("repo_path", c.RepoPath, isDirectoryOrNotExist),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		c.validateHookTemplate(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Commit.Disabled {
		warnings = append(warnings, ValidationWarning{
			Category: "Commit",
			Message:  "commits are disabled; mutations will not be recorded in git history",
		})
	}
	if c.Commit.Disabled && c.Commit.PostHook != "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Commit",
			Item:     "post_hook",
			Message:  "post_hook is ignored while commit.disabled is set",
		})
	}
	if len(c.Admins) == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Permissions",
			Message:  "no admins configured; only the project editor can manage every todo",
		})
	}

	return warnings
}

func required(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func atLeastOne(n int) error {
	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}

func unitInterval(f float64) error {
	if f < 0 || f > 1 {
		return fmt.Errorf("must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLanguages() error {
	var errs criterio.FieldErrorsBuilder
	for i, lang := range c.Scan.Languages {
		field := fmt.Sprintf("scan.languages[%d]", i)
		if lang.Code == "" {
			errs = errs.Append(field+".code", fmt.Errorf("cannot be empty"))
		}
		if len(lang.Patterns) == 0 && len(lang.ISOCodes) == 0 && len(lang.FullNames) == 0 {
			errs = errs.Append(field, fmt.Errorf("needs at least one pattern, iso code, or full name"))
		}
	}
	return errs.ToError()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// gitExecutableExists validates that the git path is executable.
func gitExecutableExists(path string) error {
	if path == "" {
		return nil
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("executable not found: %s", path)
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func (c *Config) validateHookTemplate() error {
	if c.Commit.PostHook == "" {
		return nil
	}

	testData := HookTemplateData{
		Message: "task: create translation todo 'test'",
		SHA:     "0000000",
		Shard:   "project",
	}
	if _, err := tmpl.Render(c.Commit.PostHook, testData); err != nil {
		return criterio.NewFieldErrors("commit.post_hook", err)
	}
	return nil
}
