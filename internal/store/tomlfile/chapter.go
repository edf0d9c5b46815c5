package tomlfile

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tradocflow/tradocflow/internal/core/project"
)

// defaultChapter builds the shard used when a chapter file does not
// exist yet. On-demand chapters start at number 1 with a title derived
// from the slug.
func defaultChapter(slug string) project.ChapterData {
	title := map[string]string{project.DefaultSourceLanguage: titleFromSlug(slug)}
	ch := project.NewChapterData(1, slug, title)
	ch.Chapter.Metadata.Difficulty = project.DifficultyBeginner
	return ch
}

// titleFromSlug turns "safety_notes" into "Safety notes".
func titleFromSlug(slug string) string {
	words := strings.NewReplacer("_", " ", "-", " ").Replace(slug)
	if words == "" {
		return words
	}
	return strings.ToUpper(words[:1]) + words[1:]
}

// LoadChapter reads one chapter shard, falling back to a default draft
// chapter when the file is absent.
func (s *Store) LoadChapter(ctx context.Context, slug string) (project.ChapterData, error) {
	if err := validSlug(slug); err != nil {
		return project.ChapterData{}, err
	}

	mu := s.lock("chapter:" + slug)
	mu.Lock()
	defer mu.Unlock()

	return s.loadChapterLocked(slug)
}

func (s *Store) loadChapterLocked(slug string) (project.ChapterData, error) {
	var data project.ChapterData

	exists, err := readShard(s.ChapterPath(slug), &data)
	if err != nil {
		return project.ChapterData{}, err
	}
	if !exists {
		return defaultChapter(slug), nil
	}
	return data, nil
}

// SaveChapter validates the shard and writes it atomically. Invalid
// data never reaches disk.
func (s *Store) SaveChapter(ctx context.Context, slug string, data project.ChapterData) error {
	if err := validSlug(slug); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return fmt.Errorf("validate chapter shard %q: %w", slug, err)
	}

	mu := s.lock("chapter:" + slug)
	mu.Lock()
	defer mu.Unlock()

	return writeShard(s.ChapterPath(slug), data)
}

// UpdateChapter runs fn against one chapter shard and persists the
// result, all under that shard's lock.
func (s *Store) UpdateChapter(ctx context.Context, slug string, fn func(*project.ChapterData) error) error {
	if err := validSlug(slug); err != nil {
		return err
	}

	mu := s.lock("chapter:" + slug)
	mu.Lock()
	defer mu.Unlock()

	data, err := s.loadChapterLocked(slug)
	if err != nil {
		return err
	}

	if err := fn(&data); err != nil {
		return err
	}

	if err := data.Validate(); err != nil {
		return fmt.Errorf("validate chapter shard %q: %w", slug, err)
	}

	return writeShard(s.ChapterPath(slug), data)
}

// ChapterSlugs lists chapter shards on disk in sorted order.
func (s *Store) ChapterSlugs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.ChaptersDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var slugs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".toml") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(name, ".toml"))
	}

	sort.Strings(slugs)
	return slugs, nil
}
