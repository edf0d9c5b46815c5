// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within tradocflow.
package eventbus

import (
	"github.com/tradocflow/tradocflow/internal/core/notify"
	"github.com/tradocflow/tradocflow/internal/core/project"
)

// Event names one bus event type.
type Event string

// Bus event names.
const (
	// Keep list sorted A-Z
	EventChapterAdded          Event = "chapter.added"
	EventCommentAdded          Event = "comment.added"
	EventCommentReplied        Event = "comment.replied"
	EventCommentResolved       Event = "comment.resolved"
	EventCommitCreated         Event = "commit.created"
	EventNotificationPublished Event = "notification.published"
	EventScanCompleted         Event = "scan.completed"
	EventShardChanged          Event = "shard.changed"
	EventTodoAssigned          Event = "todo.assigned"
	EventTodoCancelled         Event = "todo.cancelled"
	EventTodoCompleted         Event = "todo.completed"
	EventTodoCreated           Event = "todo.created"
	EventTodoUpdated           Event = "todo.updated"
)

// ChapterAddedPayload is emitted when a new chapter shard is created.
type ChapterAddedPayload struct {
	Slug   string
	Number int
}

// CommentAddedPayload is emitted when a comment is added.
type CommentAddedPayload struct {
	Comment project.Comment
}

// CommentRepliedPayload is emitted when a reply is added to a comment.
type CommentRepliedPayload struct {
	CommentID string
	Reply     project.CommentReply
}

// CommentResolvedPayload is emitted when a comment is resolved.
type CommentResolvedPayload struct {
	CommentID  string
	ResolvedBy string
}

// CommitCreatedPayload is emitted after a task operation is committed
// to Git.
type CommitCreatedPayload struct {
	Title   string
	Message string
}

// NotificationPublishedPayload carries a user-facing notification. An
// empty Recipient means broadcast.
type NotificationPublishedPayload struct {
	Level     notify.Level
	Message   string
	Recipient string
}

// ScanCompletedPayload is emitted when a folder scan finishes.
type ScanCompletedPayload struct {
	Root           string
	Documents      int
	CompleteSets   int
	IncompleteSets int
}

// ShardChangedPayload is emitted when a shard file changes on disk
// outside the store's own writes. Name is "project" or a chapter slug.
type ShardChangedPayload struct {
	Name string
}

// TodoAssignedPayload is emitted when a todo's assignee changes.
type TodoAssignedPayload struct {
	Todo     project.Todo
	Assignee string
}

// TodoCancelledPayload is emitted when a todo is cancelled.
type TodoCancelledPayload struct {
	Todo project.Todo
}

// TodoCompletedPayload is emitted when a todo is completed.
type TodoCompletedPayload struct {
	Todo project.Todo
}

// TodoCreatedPayload is emitted when a new todo is created.
type TodoCreatedPayload struct {
	Todo project.Todo
}

// TodoUpdatedPayload is emitted when a todo is updated. Changes holds
// one human-readable entry per changed field.
type TodoUpdatedPayload struct {
	Todo    project.Todo
	Changes []string
}
