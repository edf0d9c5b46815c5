package git

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradocflow/tradocflow/pkg/executil"
)

func subcommands(exec *executil.RecordingExecutor) []string {
	var out []string
	for _, cmd := range exec.Commands {
		if len(cmd.Args) > 0 {
			out = append(out, cmd.Args[0])
		}
	}
	return out
}

func TestExecutor_CommitAll(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git status":    []byte(" M content/project.toml\n"),
			"git rev-parse": []byte("4f3a2b1c\n"),
		},
	}
	e := NewExecutor("git", exec)

	sha, err := e.CommitAll(context.Background(), "/repo", "task: create translation todo 'x'")
	require.NoError(t, err)
	assert.Equal(t, "4f3a2b1c", sha)

	assert.Equal(t, []string{"add", "status", "commit", "rev-parse"}, subcommands(exec))
	assert.Equal(t, "/repo", exec.Commands[0].Dir)
	assert.Equal(t, []string{"commit", "-m", "task: create translation todo 'x'"}, exec.Commands[2].Args)
}

func TestExecutor_CommitAllCleanTree(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git status":    []byte("\n"),
			"git rev-parse": []byte("4f3a2b1c\n"),
		},
	}
	e := NewExecutor("git", exec)

	sha, err := e.CommitAll(context.Background(), "/repo", "msg")
	require.NoError(t, err)
	assert.Equal(t, "4f3a2b1c", sha)

	assert.NotContains(t, subcommands(exec), "commit", "clean tree must not create a commit")
}

func TestExecutor_CommitAllStageFails(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Errors: map[string]error{
			"git add": errors.New("index locked"),
		},
	}
	e := NewExecutor("git", exec)

	_, err := e.CommitAll(context.Background(), "/repo", "msg")
	assert.ErrorIs(t, err, ErrCommitFailed)
}

func TestExecutor_CommitAllCommitFails(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git status": []byte(" M content/project.toml\n"),
		},
		Errors: map[string]error{
			"git commit": errors.New("hook rejected"),
		},
	}
	e := NewExecutor("git", exec)

	_, err := e.CommitAll(context.Background(), "/repo", "msg")
	assert.ErrorIs(t, err, ErrCommitFailed)
}

func TestExecutor_Branch(t *testing.T) {
	t.Run("named branch", func(t *testing.T) {
		exec := &executil.RecordingExecutor{
			Outputs: map[string][]byte{
				"git branch": []byte("main\n"),
			},
		}
		e := NewExecutor("git", exec)

		branch, err := e.Branch(context.Background(), "/repo")
		require.NoError(t, err)
		assert.Equal(t, "main", branch)
	})

	t.Run("detached HEAD falls back to short SHA", func(t *testing.T) {
		exec := &executil.RecordingExecutor{
			Outputs: map[string][]byte{
				"git branch":    []byte("\n"),
				"git rev-parse": []byte("4f3a2b1\n"),
			},
		}
		e := NewExecutor("git", exec)

		branch, err := e.Branch(context.Background(), "/repo")
		require.NoError(t, err)
		assert.Equal(t, "4f3a2b1", branch)
	})
}

func TestExecutor_IsValidRepo(t *testing.T) {
	t.Run("inside work tree", func(t *testing.T) {
		exec := &executil.RecordingExecutor{
			Outputs: map[string][]byte{
				"git rev-parse": []byte("true\n"),
			},
		}
		e := NewExecutor("git", exec)

		assert.NoError(t, e.IsValidRepo(context.Background(), "/repo"))
	})

	t.Run("not a repository", func(t *testing.T) {
		exec := &executil.RecordingExecutor{
			Errors: map[string]error{
				"git rev-parse": errors.New("exit status 128"),
			},
		}
		e := NewExecutor("git", exec)

		assert.Error(t, e.IsValidRepo(context.Background(), "/tmp"))
	})
}

func TestExecutor_IsClean(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git status": []byte("  \n"),
		},
	}
	e := NewExecutor("git", exec)

	clean, err := e.IsClean(context.Background(), "/repo")
	require.NoError(t, err)
	assert.True(t, clean)
}

func TestParseDiffStats(t *testing.T) {
	tests := []struct {
		name          string
		output        string
		wantAdditions int
		wantDeletions int
	}{
		{
			name:          "insertions and deletions",
			output:        " 3 files changed, 10 insertions(+), 5 deletions(-)",
			wantAdditions: 10,
			wantDeletions: 5,
		},
		{
			name:          "insertions only",
			output:        " 1 file changed, 7 insertions(+)",
			wantAdditions: 7,
			wantDeletions: 0,
		},
		{
			name:          "deletions only",
			output:        " 2 files changed, 4 deletions(-)",
			wantAdditions: 0,
			wantDeletions: 4,
		},
		{
			name:          "singular insertion",
			output:        " 1 file changed, 1 insertion(+), 1 deletion(-)",
			wantAdditions: 1,
			wantDeletions: 1,
		},
		{
			name:          "empty output",
			output:        "",
			wantAdditions: 0,
			wantDeletions: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			additions, deletions, err := parseDiffStats(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdditions, additions)
			assert.Equal(t, tt.wantDeletions, deletions)
		})
	}
}
