package tradoc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradocflow/tradocflow/internal/core/eventbus"
	"github.com/tradocflow/tradocflow/internal/core/project"
)

func TestAddComment_ProjectScope(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	comment, err := f.svc.AddComment(ctx, AddCommentRequest{
		Content: "Terminology needs a second pass.",
		Type:    project.CommentSuggestion,
		Context: project.ProjectCommentContext(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, "admin1", comment.Author)
	assert.False(t, comment.Resolved)

	data, err := f.store.LoadProject(ctx)
	require.NoError(t, err)
	require.Len(t, data.Comments, 1)
	assert.Equal(t, comment.ID, data.Comments[0].ID)

	f.bus.AssertPublished(t, eventbus.EventCommentAdded)
}

func TestAddComment_ChapterScope(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	seedChapter(t, f.store)

	comment, err := f.svc.AddComment(ctx, AddCommentRequest{
		Content: "Chapter intro reads awkwardly.",
		Type:    project.CommentQuestion,
		Context: project.ChapterCommentContext(),
		Chapter: "intro",
	})
	require.NoError(t, err)

	ch, err := f.store.LoadChapter(ctx, "intro")
	require.NoError(t, err)
	require.Len(t, ch.Comments, 1)
	assert.Equal(t, comment.ID, ch.Comments[0].ID)
}

func TestAddComment_TranslationScopeAttachesToUnit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	seedChapter(t, f.store)

	comment, err := f.svc.AddComment(ctx, AddCommentRequest{
		Content: "German phrasing is too formal here.",
		Type:    project.CommentSuggestion,
		Context: project.TranslationCommentContext("intro_p001", "de"),
	})
	require.NoError(t, err)

	ch, err := f.store.LoadChapter(ctx, "intro")
	require.NoError(t, err)
	unit := ch.Unit("intro_p001")
	require.NotNil(t, unit)
	require.Len(t, unit.Comments, 1)
	assert.Equal(t, comment.ID, unit.Comments[0].ID)
	assert.Empty(t, ch.Comments)
}

func TestAddComment_UnitNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	seedChapter(t, f.store)

	_, err := f.svc.AddComment(ctx, AddCommentRequest{
		Content: "Lost comment",
		Type:    project.CommentQuestion,
		Context: project.TranslationCommentContext("intro_p999", "de"),
	})
	assert.ErrorIs(t, err, project.ErrUnitNotFound)
}

func TestAddComment_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddComment(ctx, AddCommentRequest{
		Type:    project.CommentQuestion,
		Context: project.ProjectCommentContext(),
	})
	assert.Error(t, err, "empty content")

	_, err = f.svc.AddComment(ctx, AddCommentRequest{
		Content: "x",
		Type:    "bogus",
		Context: project.ProjectCommentContext(),
	})
	assert.Error(t, err, "invalid type")
}

func TestReply(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	seedChapter(t, f.store)

	comment, err := f.svc.AddComment(ctx, AddCommentRequest{
		Content: "Too literal.",
		Type:    project.CommentSuggestion,
		Context: project.TranslationCommentContext("intro_p001", "de"),
	})
	require.NoError(t, err)

	updated, err := f.svc.Reply(ctx, comment.ID, "Agreed, rewording.", comment.Author)
	require.NoError(t, err)

	require.Len(t, updated.Replies, 1)
	assert.Equal(t, "Agreed, rewording.", updated.Replies[0].Content)
	assert.Equal(t, comment.Author, updated.Replies[0].ReplyTo)

	// Persisted on the unit's comment.
	ch, err := f.store.LoadChapter(ctx, "intro")
	require.NoError(t, err)
	require.Len(t, ch.Unit("intro_p001").Comments, 1)
	assert.Len(t, ch.Unit("intro_p001").Comments[0].Replies, 1)

	f.bus.AssertPublished(t, eventbus.EventCommentReplied)
}

func TestReply_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.Reply(context.Background(), "missing", "hello", "")
	assert.ErrorIs(t, err, project.ErrCommentNotFound)
}

func TestResolveComment(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	comment, err := f.svc.AddComment(ctx, AddCommentRequest{
		Content: "Resolved eventually.",
		Type:    project.CommentQuestion,
		Context: project.ProjectCommentContext(),
	})
	require.NoError(t, err)

	resolved, err := f.svc.ResolveComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)

	data, err := f.store.LoadProject(ctx)
	require.NoError(t, err)
	require.Len(t, data.Comments, 1)
	assert.True(t, data.Comments[0].Resolved)

	f.bus.AssertPublished(t, eventbus.EventCommentResolved)
}

func TestListComments(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	seedChapter(t, f.store)

	_, err := f.svc.AddComment(ctx, AddCommentRequest{
		Content: "Project-wide note.",
		Type:    project.CommentQuestion,
		Context: project.ProjectCommentContext(),
	})
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, AddCommentRequest{
		Content: "Unit note.",
		Type:    project.CommentQuestion,
		Context: project.TranslationCommentContext("intro_p001", "de"),
	})
	require.NoError(t, err)

	all, err := f.svc.ListComments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Project-wide note.", all[0].Content, "project comments come first")
}
