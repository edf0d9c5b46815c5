package tradoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommitMessage_SummaryOnly(t *testing.T) {
	t.Parallel()

	msg := NewCommitMessage("task: create %s todo '%s'", "review", "Check intro")
	assert.Equal(t, "task: create review todo 'Check intro'", msg.Summary())
	assert.Equal(t, "task: create review todo 'Check intro'", msg.String())
}

func TestCommitMessage_Full(t *testing.T) {
	t.Parallel()

	msg := NewCommitMessage("task: create review todo 'Check intro'").
		Line("Created a new review todo in chapter scope.").
		Line("Assigned to reviewer-de.").
		Trailer("Created-By", "editor1").
		Trailer("Todo-ID", "abc-123").
		Trailer("Context", "chapter")

	want := "task: create review todo 'Check intro'\n" +
		"\n" +
		"Created a new review todo in chapter scope.\n" +
		"Assigned to reviewer-de.\n" +
		"\n" +
		"Created-By: editor1\n" +
		"Todo-ID: abc-123\n" +
		"Context: chapter"

	assert.Equal(t, want, msg.String())
}

func TestCommitMessage_TrailersWithoutBody(t *testing.T) {
	t.Parallel()

	msg := NewCommitMessage("comment: resolve comment").
		Trailer("Updated-By", "editor1")

	assert.Equal(t, "comment: resolve comment\n\nUpdated-By: editor1", msg.String())
}
