package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradocflow/tradocflow/internal/core/project"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	got, err := parseDate("2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = parseDate("2026-09-01T12:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Hour())

	_, err = parseDate("next tuesday")
	require.Error(t, err)
}

func TestBuildTodoContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, project.ProjectContext(), buildTodoContext("", "", ""))
	assert.Equal(t, project.ProjectContext(), buildTodoContext("project", "", ""))
	assert.Equal(t, project.ChapterContext(), buildTodoContext("Chapter", "", ""))
	assert.Equal(t, project.ParagraphContext("intro_p001"), buildTodoContext("paragraph", "intro_p001", ""))
	assert.Equal(t, project.TranslationContext("intro_p001", "de"), buildTodoContext("translation", "intro_p001", "de"))

	// Unknown scopes pass through so Validate rejects them with context.
	bogus := buildTodoContext("galaxy", "u1", "de")
	assert.Equal(t, project.ContextType("galaxy"), bogus.Type)
}

func TestAddCommentRequestScopes(t *testing.T) {
	t.Parallel()

	req := tradocAddCommentRequest("looks good", "approval", "translation", "", "intro_p002", "de", "")
	assert.Equal(t, project.CommentApproval, req.Type)
	assert.Equal(t, project.TranslationCommentContext("intro_p002", "de"), req.Context)

	req = tradocAddCommentRequest("rename this chapter", "suggestion", "chapter", "intro", "", "", "")
	assert.Equal(t, project.ChapterCommentContext(), req.Context)
	assert.Equal(t, "intro", req.Chapter)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user-manual-2024", slugify("User Manual  2024!"))
	assert.Equal(t, "translation-project", slugify("Translation Project"))
	assert.Equal(t, "abc", slugify("--abc--"))
}

func TestWriteTodoTable(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	todos := []project.Todo{
		{
			ID:       "td-1",
			Title:    "Review the introduction chapter before the translation kickoff meeting happens",
			Status:   project.StatusOpen,
			Priority: project.PriorityHigh,
			TodoType: project.TypeReview,
			Context:  project.ChapterContext(),
			DueDate:  &due,
		},
	}

	var buf bytes.Buffer
	writeTodoTable(&buf, todos)

	out := buf.String()
	assert.Contains(t, out, "td-1")
	assert.Contains(t, out, "2026-09-15")
	assert.Contains(t, out, "…") // long title truncated
	assert.Contains(t, out, "ID")

	buf.Reset()
	writeTodoTable(&buf, nil)
	assert.Contains(t, buf.String(), "no todos")
}
