package tomlfile

import (
	"context"
	"fmt"

	"github.com/tradocflow/tradocflow/internal/core/project"
)

const projectLockKey = "project"

// defaultProject builds the shard used when project.toml does not exist
// yet.
func (s *Store) defaultProject() project.ProjectData {
	id := s.projectID
	if id == "" {
		id = project.DefaultProjectID
	}

	return project.NewProjectData(
		id,
		"",
		"Git-integrated translation project",
		"",
		nil,
		"editor",
	)
}

// LoadProject reads content/project.toml, falling back to a default
// shard when the file is absent.
func (s *Store) LoadProject(ctx context.Context) (project.ProjectData, error) {
	mu := s.lock(projectLockKey)
	mu.Lock()
	defer mu.Unlock()

	return s.loadProjectLocked()
}

func (s *Store) loadProjectLocked() (project.ProjectData, error) {
	var data project.ProjectData

	exists, err := readShard(s.ProjectPath(), &data)
	if err != nil {
		return project.ProjectData{}, err
	}
	if !exists {
		return s.defaultProject(), nil
	}
	return data, nil
}

// SaveProject validates the shard and writes content/project.toml
// atomically. Invalid data never reaches disk.
func (s *Store) SaveProject(ctx context.Context, data project.ProjectData) error {
	if err := data.Validate(); err != nil {
		return fmt.Errorf("validate project shard: %w", err)
	}

	mu := s.lock(projectLockKey)
	mu.Lock()
	defer mu.Unlock()

	return writeShard(s.ProjectPath(), data)
}

// UpdateProject runs fn against the current project shard and persists
// the result, all under the project shard lock.
func (s *Store) UpdateProject(ctx context.Context, fn func(*project.ProjectData) error) error {
	mu := s.lock(projectLockKey)
	mu.Lock()
	defer mu.Unlock()

	data, err := s.loadProjectLocked()
	if err != nil {
		return err
	}

	if err := fn(&data); err != nil {
		return err
	}

	if err := data.Validate(); err != nil {
		return fmt.Errorf("validate project shard: %w", err)
	}

	return writeShard(s.ProjectPath(), data)
}
