// Package tomlfile persists project and chapter shards as TOML files
// under the repository's content directory.
package tomlfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/tradocflow/tradocflow/internal/core/project"
)

// Store implements project.Store on top of content/project.toml and
// content/chapters/<slug>.toml. Each shard has its own lock so
// load-mutate-save sequences never interleave.
type Store struct {
	repoPath  string
	projectID string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ project.Store = (*Store)(nil)

// NewStore creates a shard store rooted at the given repository path.
// The project id seeds the default project shard when none exists yet.
func NewStore(repoPath, projectID string) *Store {
	return &Store{
		repoPath:  repoPath,
		projectID: projectID,
		locks:     map[string]*sync.Mutex{},
	}
}

// ProjectPath returns the absolute path of the project shard.
func (s *Store) ProjectPath() string {
	return filepath.Join(s.repoPath, "content", "project.toml")
}

// ChaptersDir returns the absolute path of the chapter shard directory.
func (s *Store) ChaptersDir() string {
	return filepath.Join(s.repoPath, "content", "chapters")
}

// ChapterPath returns the absolute path of one chapter shard.
func (s *Store) ChapterPath(slug string) string {
	return filepath.Join(s.ChaptersDir(), slug+".toml")
}

// lock returns the mutex guarding one shard key, creating it on first
// use.
func (s *Store) lock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

// validSlug rejects slugs that would escape the chapters directory.
func validSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("chapter slug is empty")
	}
	if strings.ContainsAny(slug, "/\\") || slug == "." || slug == ".." {
		return fmt.Errorf("invalid chapter slug %q", slug)
	}
	return nil
}

// readShard decodes a shard file into v. The bool reports whether the
// file existed.
func readShard(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read shard: %w", err)
	}

	if err := toml.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("%w %s: %v", project.ErrMalformedShard, filepath.Base(path), err)
	}
	return true, nil
}

// writeShard encodes v and writes it to path atomically.
func writeShard(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create shard dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode shard: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write shard: %w", err)
	}

	return os.Rename(tmp, path)
}
