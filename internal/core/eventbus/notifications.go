package eventbus

import (
	"fmt"

	"github.com/tradocflow/tradocflow/internal/core/notify"
	"github.com/tradocflow/tradocflow/internal/core/project"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification
// mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeTodoCreated(func(p TodoCreatedPayload) {
		if p.Todo.AssignedTo != "" {
			r.notifyf(notify.LevelInfo, p.Todo.AssignedTo, "todo %q assigned to you", p.Todo.Title)
		}
		if creator := p.Todo.CreatedBy; creator != "" && creator != p.Todo.AssignedTo {
			r.notifyf(notify.LevelInfo, creator, "new %s todo %q created", p.Todo.TodoType, p.Todo.Title)
		}
	})

	r.bus.SubscribeTodoAssigned(func(p TodoAssignedPayload) {
		if p.Assignee == "" {
			return
		}
		r.notifyf(notify.LevelInfo, p.Assignee, "todo %q reassigned to you", p.Todo.Title)
	})

	r.bus.SubscribeTodoUpdated(func(p TodoUpdatedPayload) {
		if len(p.Changes) == 0 {
			return
		}
		r.fanOut(p.Todo, "todo %q updated", p.Todo.Title)
	})

	r.bus.SubscribeTodoCompleted(func(p TodoCompletedPayload) {
		r.fanOut(p.Todo, "todo %q completed", p.Todo.Title)
	})

	r.bus.SubscribeTodoCancelled(func(p TodoCancelledPayload) {
		r.fanOut(p.Todo, "todo %q cancelled", p.Todo.Title)
	})

	r.bus.SubscribeCommentAdded(func(p CommentAddedPayload) {
		r.notifyf(notify.LevelInfo, "", "new %s comment by %s on %s", p.Comment.Type, p.Comment.Author, p.Comment.Context)
	})

	r.bus.SubscribeCommentResolved(func(p CommentResolvedPayload) {
		r.notifyf(notify.LevelInfo, "", "comment %s resolved by %s", p.CommentID, p.ResolvedBy)
	})

	r.bus.SubscribeScanCompleted(func(p ScanCompletedPayload) {
		if p.IncompleteSets > 0 {
			r.notifyf(notify.LevelWarning, "", "scan of %s: %d documents, %d complete sets, %d incomplete", p.Root, p.Documents, p.CompleteSets, p.IncompleteSets)
			return
		}
		r.notifyf(notify.LevelInfo, "", "scan of %s: %d documents, %d complete sets", p.Root, p.Documents, p.CompleteSets)
	})
}

// fanOut notifies the assignee and, when different, the creator.
func (r *NotificationRouter) fanOut(todo project.Todo, format string, args ...any) {
	if todo.AssignedTo != "" {
		r.notifyf(notify.LevelInfo, todo.AssignedTo, format, args...)
	}
	if todo.CreatedBy != "" && todo.CreatedBy != todo.AssignedTo {
		r.notifyf(notify.LevelInfo, todo.CreatedBy, format, args...)
	}
}

func (r *NotificationRouter) notifyf(level notify.Level, recipient, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
		Recipient: recipient,
	})
}
