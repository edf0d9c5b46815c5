// Package project defines the translation project domain model: the
// project and chapter shard structures, todos, comments, notes, and the
// contexts that bind them to a scope.
package project

import "time"

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectArchived  ProjectStatus = "archived"
	ProjectCompleted ProjectStatus = "completed"
)

// Default settings applied when a project shard is created from scratch.
const (
	DefaultProjectID        = "translation-project"
	DefaultProjectName      = "Translation Project"
	DefaultProjectVersion   = "1.0.0"
	DefaultSourceLanguage   = "en"
	DefaultAutoSaveInterval = 300
	DefaultQualityThreshold = 8.0
	DefaultGitStrategy      = "feature_branch"
)

// DefaultTargetLanguages returns the target languages assigned to a
// project created without explicit configuration.
func DefaultTargetLanguages() []string {
	return []string{"de", "fr", "es"}
}

// ProjectData is the root structure of the project shard
// (content/project.toml).
type ProjectData struct {
	Project ProjectMetadata `toml:"project" json:"project"`
	Todos   []Todo          `toml:"todos,omitempty" json:"todos,omitempty"`
	// Comments holds project-scoped comments. Absent in legacy shards,
	// omitted when empty so those files round-trip unchanged.
	Comments []Comment `toml:"comments,omitempty" json:"comments,omitempty"`
}

// ProjectMetadata describes the project itself.
type ProjectMetadata struct {
	ID          string            `toml:"id" json:"id"`
	Name        string            `toml:"name" json:"name"`
	Description string            `toml:"description" json:"description"`
	Version     string            `toml:"version" json:"version"`
	CreatedAt   time.Time         `toml:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `toml:"updated_at" json:"updated_at"`
	Status      ProjectStatus     `toml:"status" json:"status"`
	Languages   ProjectLanguages  `toml:"languages" json:"languages"`
	Team        ProjectTeam       `toml:"team" json:"team"`
	Settings    ProjectSettings   `toml:"settings" json:"settings"`
	Extra       map[string]string `toml:"metadata,omitempty" json:"metadata,omitempty"`
}

// ProjectLanguages holds the source language and translation targets.
type ProjectLanguages struct {
	Source  string   `toml:"source" json:"source"`
	Targets []string `toml:"targets" json:"targets"`
}

// ProjectTeam maps roles to user ids. Translators and Reviewers are keyed
// by language code.
type ProjectTeam struct {
	Editor       string            `toml:"editor" json:"editor"`
	Translators  map[string]string `toml:"translators" json:"translators"`
	Reviewers    map[string]string `toml:"reviewers" json:"reviewers"`
	Contributors []string          `toml:"contributors,omitempty" json:"contributors,omitempty"`
}

// ProjectSettings holds tunable project behavior.
type ProjectSettings struct {
	AutoSaveInterval int     `toml:"auto_save_interval" json:"auto_save_interval"`
	QualityThreshold float64 `toml:"quality_threshold" json:"quality_threshold"`
	RequireReview    bool    `toml:"require_review" json:"require_review"`
	ExportOnApproval bool    `toml:"export_on_approval" json:"export_on_approval"`
	GitStrategy      string  `toml:"git_strategy,omitempty" json:"git_strategy,omitempty"`
}

// NewProjectData builds a project shard with the given identity and
// default settings. Empty arguments fall back to the package defaults.
func NewProjectData(id, name, description, sourceLanguage string, targets []string, editor string) ProjectData {
	now := time.Now().UTC()

	if name == "" {
		name = DefaultProjectName
	}
	if sourceLanguage == "" {
		sourceLanguage = DefaultSourceLanguage
	}
	if len(targets) == 0 {
		targets = DefaultTargetLanguages()
	}

	return ProjectData{
		Project: ProjectMetadata{
			ID:          id,
			Name:        name,
			Description: description,
			Version:     DefaultProjectVersion,
			CreatedAt:   now,
			UpdatedAt:   now,
			Status:      ProjectActive,
			Languages: ProjectLanguages{
				Source:  sourceLanguage,
				Targets: targets,
			},
			Team: ProjectTeam{
				Editor:      editor,
				Translators: map[string]string{},
				Reviewers:   map[string]string{},
			},
			Settings: ProjectSettings{
				AutoSaveInterval: DefaultAutoSaveInterval,
				QualityThreshold: DefaultQualityThreshold,
				RequireReview:    true,
				GitStrategy:      DefaultGitStrategy,
			},
		},
	}
}
