package project

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a todo does not exist in any shard.
	ErrNotFound = errors.New("todo not found")
	// ErrCommentNotFound is returned when a comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrUnitNotFound is returned when a context names a translation
	// unit absent from its chapter shard.
	ErrUnitNotFound = errors.New("translation unit not found")
	// ErrInvalidContext is returned when an operation does not support
	// the given context variant.
	ErrInvalidContext = errors.New("operation not supported for this context")
	// ErrMalformedShard is returned when a shard file exists but cannot
	// be decoded.
	ErrMalformedShard = errors.New("malformed shard")
)

// Store defines the interface for shard persistence. The TOML files on
// disk are the ground truth; implementations must serialize
// load-mutate-save sequences per shard so concurrent writers cannot
// clobber each other's changes.
type Store interface {
	// LoadProject reads the project shard. A missing file yields a
	// default-initialized project, not an error.
	LoadProject(ctx context.Context) (ProjectData, error)

	// SaveProject writes the project shard atomically.
	SaveProject(ctx context.Context, data ProjectData) error

	// UpdateProject applies fn to the project shard under the shard
	// lock and persists the result. An error from fn aborts without
	// writing.
	UpdateProject(ctx context.Context, fn func(*ProjectData) error) error

	// LoadChapter reads one chapter shard by slug. A missing file
	// yields a default draft chapter, not an error.
	LoadChapter(ctx context.Context, slug string) (ChapterData, error)

	// SaveChapter writes one chapter shard atomically.
	SaveChapter(ctx context.Context, slug string, data ChapterData) error

	// UpdateChapter applies fn to one chapter shard under the shard
	// lock and persists the result. An error from fn aborts without
	// writing.
	UpdateChapter(ctx context.Context, slug string, fn func(*ChapterData) error) error

	// ChapterSlugs lists the chapter shards present on disk in sorted
	// order. A missing chapters directory yields an empty list.
	ChapterSlugs(ctx context.Context) ([]string, error)
}
