// Package config handles configuration loading and validation for tradocflow.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	User    string       `yaml:"user"`     // acting user id; flags override
	Admins  []string     `yaml:"admins"`   // user ids with unrestricted permissions
	GitPath string       `yaml:"git_path"` // path to the git binary
	Commit  CommitConfig `yaml:"commit"`
	Scan    ScanConfig   `yaml:"scan"`

	// Set by the caller, not from the config file.
	RepoPath string `yaml:"-"` // translation repository root
	DataDir  string `yaml:"-"` // application state directory
}

// CommitConfig controls the git commit made after each mutation.
type CommitConfig struct {
	// Disabled skips the commit step entirely. Mutations still persist.
	Disabled bool `yaml:"disabled"`
	// PostHook is a shell command template run after each successful
	// mutation commit. See HookTemplateData for available fields.
	PostHook string `yaml:"post_hook"`
}

// ScanConfig holds document scan defaults.
type ScanConfig struct {
	Recursive         bool              `yaml:"recursive"`
	MaxDepth          int               `yaml:"max_depth"`
	Extensions        []string          `yaml:"extensions"`
	MinConfidence     float64           `yaml:"min_confidence"`
	RequiredLanguages []string          `yaml:"required_languages"`
	Exclude           []string          `yaml:"exclude"` // glob patterns, matched against relative paths
	Languages         []LanguagePattern `yaml:"languages"`
}

// LanguagePattern declares a custom language for filename detection,
// extending the built-in set.
type LanguagePattern struct {
	Code      string   `yaml:"code"`
	Name      string   `yaml:"name"`
	Patterns  []string `yaml:"patterns"`
	ISOCodes  []string `yaml:"iso_codes"`
	FullNames []string `yaml:"full_names"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Admins:  []string{},
		GitPath: "git",
		Scan: ScanConfig{
			Recursive:         true,
			MaxDepth:          3,
			Extensions:        []string{"docx", "doc"},
			MinConfidence:     0.5,
			RequiredLanguages: []string{"en", "de", "es", "fr", "nl"},
		},
	}
}

// Load reads configuration from the given path and sets the repository
// root and data directory. If configPath is empty or doesn't exist,
// returns defaults with the provided paths.
func Load(configPath, repoPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.RepoPath = repoPath
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set caller paths since Unmarshal may have cleared them
			cfg.RepoPath = repoPath
			cfg.DataDir = dataDir
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Scan.MaxDepth == 0 {
		c.Scan.MaxDepth = defaults.Scan.MaxDepth
	}
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = defaults.Scan.Extensions
	}
	if c.Scan.MinConfidence == 0 {
		c.Scan.MinConfidence = defaults.Scan.MinConfidence
	}
	if len(c.Scan.RequiredLanguages) == 0 {
		c.Scan.RequiredLanguages = defaults.Scan.RequiredLanguages
	}
}

// ContentDir returns the directory holding the TOML shards.
func (c *Config) ContentDir() string {
	return filepath.Join(c.RepoPath, "content")
}

// NotificationsFile returns the path to the notifications JSON file.
func (c *Config) NotificationsFile() string {
	return filepath.Join(c.DataDir, "notifications.json")
}

// ScansFile returns the path to the scan results JSON file.
func (c *Config) ScansFile() string {
	return filepath.Join(c.DataDir, "scans.json")
}
