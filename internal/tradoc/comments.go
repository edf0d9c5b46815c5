package tradoc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tradocflow/tradocflow/internal/core/eventbus"
	"github.com/tradocflow/tradocflow/internal/core/project"
)

// AddCommentRequest carries the fields for a new comment. Chapter names
// the target chapter for chapter-scoped comments and is ignored for the
// other contexts; an empty chapter falls back to the default chapter.
type AddCommentRequest struct {
	Content  string                 `json:"content"`
	Type     project.CommentType    `json:"type"`
	Context  project.CommentContext `json:"context"`
	Chapter  string                 `json:"chapter,omitempty"`
	ThreadID string                 `json:"thread_id,omitempty"`
}

// AddComment persists a comment into the shard its context maps to:
// translation comments onto the unit, chapter comments onto the chapter,
// project comments onto the project shard. The mutation is committed
// and comment.added published.
func (s *TaskService) AddComment(ctx context.Context, req AddCommentRequest) (project.Comment, error) {
	if req.Content == "" {
		return project.Comment{}, fmt.Errorf("comment content cannot be empty")
	}
	if !req.Type.IsValid() {
		return project.Comment{}, fmt.Errorf("invalid comment type %q", req.Type)
	}
	if !req.Context.IsValid() {
		return project.Comment{}, fmt.Errorf("%w: %s", project.ErrInvalidContext, req.Context)
	}

	comment := project.Comment{
		ID:        uuid.NewString(),
		Author:    s.actor,
		Content:   req.Content,
		Type:      req.Type,
		Context:   req.Context,
		CreatedAt: time.Now().UTC(),
		ThreadID:  req.ThreadID,
	}

	sh := shardForCommentContext(req.Context, req.Chapter)

	msg := NewCommitMessage("comment: add %s comment", comment.Type).
		Line("New %s comment by %s in %s scope.", comment.Type, comment.Author, comment.Context).
		Trailer("Created-By", s.actor).
		Trailer("Comment-ID", comment.ID).
		Trailer("Context", comment.Context.String())

	err := s.mutateShard(ctx, sh, msg, appendComment(comment))
	if err != nil {
		return project.Comment{}, fmt.Errorf("add comment: %w", err)
	}

	s.bus.PublishCommentAdded(eventbus.CommentAddedPayload{Comment: comment})

	s.log.Info().
		Str("comment_id", comment.ID).
		Str("type", string(comment.Type)).
		Str("context", comment.Context.String()).
		Msg("comment added")

	return comment, nil
}

// Reply appends a threaded reply to an existing comment, wherever it
// lives. replyTo optionally names the author being answered.
func (s *TaskService) Reply(ctx context.Context, commentID, content, replyTo string) (project.Comment, error) {
	if content == "" {
		return project.Comment{}, fmt.Errorf("reply content cannot be empty")
	}

	reply := project.CommentReply{
		Author:    s.actor,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		ReplyTo:   replyTo,
	}

	updated, err := s.mutateComment(ctx, commentID,
		NewCommitMessage("comment: reply to comment").
			Line("Reply by %s.", s.actor).
			Trailer("Created-By", s.actor).
			Trailer("Comment-ID", commentID),
		func(c *project.Comment) {
			c.Replies = append(c.Replies, reply)
		})
	if err != nil {
		return project.Comment{}, fmt.Errorf("reply to comment: %w", err)
	}

	s.bus.PublishCommentReplied(eventbus.CommentRepliedPayload{CommentID: commentID, Reply: reply})

	return updated, nil
}

// ResolveComment marks a comment resolved.
func (s *TaskService) ResolveComment(ctx context.Context, commentID string) (project.Comment, error) {
	updated, err := s.mutateComment(ctx, commentID,
		NewCommitMessage("comment: resolve comment").
			Line("Resolved by %s.", s.actor).
			Trailer("Updated-By", s.actor).
			Trailer("Comment-ID", commentID),
		func(c *project.Comment) {
			c.Resolved = true
		})
	if err != nil {
		return project.Comment{}, fmt.Errorf("resolve comment: %w", err)
	}

	s.bus.PublishCommentResolved(eventbus.CommentResolvedPayload{CommentID: commentID, ResolvedBy: s.actor})

	return updated, nil
}

// ListComments returns every comment: project comments first, then each
// chapter's comments and unit comments in slug order.
func (s *TaskService) ListComments(ctx context.Context) ([]project.Comment, error) {
	data, err := s.store.LoadProject(ctx)
	if err != nil {
		return nil, err
	}
	all := append([]project.Comment{}, data.Comments...)

	slugs, err := s.store.ChapterSlugs(ctx)
	if err != nil {
		return nil, err
	}

	for _, slug := range slugs {
		ch, err := s.store.LoadChapter(ctx, slug)
		if err != nil {
			s.log.Warn().Err(err).Str("chapter", slug).Msg("skipping unreadable chapter during comment listing")
			continue
		}
		all = append(all, ch.Comments...)
		for _, unit := range ch.Units {
			all = append(all, unit.Comments...)
		}
	}

	return all, nil
}

// shardForCommentContext maps a comment context onto its owning shard.
func shardForCommentContext(c project.CommentContext, chapter string) shard {
	switch c.Type {
	case project.ContextProject:
		return shard{}
	case project.ContextChapter:
		if chapter == "" {
			chapter = project.DefaultChapter
		}
		return shard{slug: chapter}
	default:
		return shard{slug: project.ChapterForUnit(c.Paragraph)}
	}
}

// appendComment adds a comment to its shard. Translation comments
// attach to their unit; a missing unit aborts with ErrUnitNotFound.
func appendComment(comment project.Comment) shardMutation {
	return shardMutation{
		project: func(data *project.ProjectData) error {
			data.Comments = append(data.Comments, comment)
			data.Project.UpdatedAt = time.Now().UTC()
			return nil
		},
		chapter: func(data *project.ChapterData) error {
			if comment.Context.Type == project.ContextTranslation {
				unit := data.Unit(comment.Context.Paragraph)
				if unit == nil {
					return fmt.Errorf("%w: %s", project.ErrUnitNotFound, comment.Context.Paragraph)
				}
				unit.Comments = append(unit.Comments, comment)
			} else {
				data.Comments = append(data.Comments, comment)
			}
			data.Chapter.UpdatedAt = time.Now().UTC()
			return nil
		},
	}
}

// mutateComment locates a comment by id and applies fn to it under its
// shard's lock. Search order is deterministic: project comments, then
// each chapter's comments and unit comments in slug order.
func (s *TaskService) mutateComment(ctx context.Context, commentID string, msg *CommitMessage, fn func(*project.Comment)) (project.Comment, error) {
	sh, found, err := s.locateComment(ctx, commentID)
	if err != nil {
		return project.Comment{}, err
	}
	if !found {
		return project.Comment{}, fmt.Errorf("%w: %s", project.ErrCommentNotFound, commentID)
	}

	var updated project.Comment
	mutateIn := func(comments []project.Comment) bool {
		for i := range comments {
			if comments[i].ID == commentID {
				fn(&comments[i])
				updated = comments[i]
				return true
			}
		}
		return false
	}

	err = s.mutateShard(ctx, sh, msg, shardMutation{
		project: func(data *project.ProjectData) error {
			if !mutateIn(data.Comments) {
				return fmt.Errorf("%w: %s", project.ErrCommentNotFound, commentID)
			}
			data.Project.UpdatedAt = time.Now().UTC()
			return nil
		},
		chapter: func(data *project.ChapterData) error {
			if mutateIn(data.Comments) {
				data.Chapter.UpdatedAt = time.Now().UTC()
				return nil
			}
			for i := range data.Units {
				if mutateIn(data.Units[i].Comments) {
					data.Chapter.UpdatedAt = time.Now().UTC()
					return nil
				}
			}
			return fmt.Errorf("%w: %s", project.ErrCommentNotFound, commentID)
		},
	})
	if err != nil {
		return project.Comment{}, err
	}

	return updated, nil
}

// locateComment finds which shard holds a comment.
func (s *TaskService) locateComment(ctx context.Context, commentID string) (shard, bool, error) {
	contains := func(comments []project.Comment) bool {
		for _, c := range comments {
			if c.ID == commentID {
				return true
			}
		}
		return false
	}

	data, err := s.store.LoadProject(ctx)
	if err != nil {
		return shard{}, false, err
	}
	if contains(data.Comments) {
		return shard{}, true, nil
	}

	slugs, err := s.store.ChapterSlugs(ctx)
	if err != nil {
		return shard{}, false, err
	}

	for _, slug := range slugs {
		ch, err := s.store.LoadChapter(ctx, slug)
		if err != nil {
			s.log.Warn().Err(err).Str("chapter", slug).Msg("skipping unreadable chapter during comment lookup")
			continue
		}
		if contains(ch.Comments) {
			return shard{slug: slug}, true, nil
		}
		for _, unit := range ch.Units {
			if contains(unit.Comments) {
				return shard{slug: slug}, true, nil
			}
		}
	}

	return shard{}, false, nil
}
