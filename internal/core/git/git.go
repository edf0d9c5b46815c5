// Package git provides an abstraction for git operations.
package git

import (
	"context"
	"errors"
)

// ErrCommitFailed is returned when a mutation could not be recorded as
// a git commit. Callers treat this as a signal to roll the mutation
// back.
var ErrCommitFailed = errors.New("git commit failed")

// Git defines the git operations the translation workspace needs.
type Git interface {
	// Init initializes a repository in dir.
	Init(ctx context.Context, dir string) error
	// IsValidRepo returns nil if dir is inside a git work tree.
	IsValidRepo(ctx context.Context, dir string) error
	// IsClean returns true if there are no uncommitted changes in dir.
	IsClean(ctx context.Context, dir string) (bool, error)
	// Branch returns the current branch name, or short commit SHA if in detached HEAD state.
	Branch(ctx context.Context, dir string) (string, error)
	// Head returns the commit SHA of HEAD.
	Head(ctx context.Context, dir string) (string, error)
	// CommitAll stages every change in dir and commits it with message,
	// returning the resulting commit SHA. A tree with nothing to commit
	// returns the current HEAD without creating a commit.
	CommitAll(ctx context.Context, dir, message string) (string, error)
	// DiffStats returns the number of lines added and deleted compared to HEAD.
	DiffStats(ctx context.Context, dir string) (additions, deletions int, err error)
}

// Noop is a Git that records nothing. It stands in when the workspace
// is not a repository so mutations still succeed, uncommitted.
type Noop struct{}

func (Noop) Init(context.Context, string) error                 { return nil }
func (Noop) IsValidRepo(context.Context, string) error          { return nil }
func (Noop) IsClean(context.Context, string) (bool, error)      { return true, nil }
func (Noop) Branch(context.Context, string) (string, error)     { return "", nil }
func (Noop) Head(context.Context, string) (string, error)       { return "", nil }
func (Noop) CommitAll(context.Context, string, string) (string, error) {
	return "", nil
}
func (Noop) DiffStats(context.Context, string) (int, int, error) { return 0, 0, nil }

var _ Git = Noop{}
