// Package commands implements the tradocflow CLI commands.
package commands

import (
	"os"
	"path/filepath"

	"github.com/tradocflow/tradocflow/internal/core/config"
	"github.com/tradocflow/tradocflow/internal/tradoc"
)

// Flags holds global flag values plus the state the Before hook builds
// for every command.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	RepoPath   string
	DataDir    string
	User       string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// App is the wired service graph
	App *tradoc.App
}

// DefaultConfigFile is the repo-local config file name written by init.
const DefaultConfigFile = "tradocflow.yml"

// DefaultConfigPath returns the repo-local config file if present,
// otherwise the XDG config path.
func DefaultConfigPath() string {
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tradocflow", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tradocflow")
}
