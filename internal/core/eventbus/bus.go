package eventbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// envelope pairs an event with its payload on the dispatch channel.
type envelope struct {
	event   Event
	payload any
}

// EventBus is a buffered publish/subscribe bus. Publishing never
// blocks: when the buffer is full the event is dropped and OnDrop hooks
// fire. Subscribers run on the Start goroutine in registration order.
type EventBus struct {
	ch chan envelope

	mu   sync.RWMutex
	subs map[Event][]func(any)

	hooks struct {
		mu          sync.RWMutex
		onPublish   []func(Event, any)
		onDrop      []func(Event, any)
		onSubscribe []func(Event)
		onPanic     []func(Event, any, any)
	}
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: map[Event][]func(any){},
	}
}

// Start dispatches events to subscribers until ctx is cancelled.
// Subscriber panics are recovered and reported through OnPanic hooks.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

// send enqueues an event and fires the publish or drop hooks.
func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		bus.runHooks2(&bus.hooks.onPublish, event, payload)
	default:
		bus.runHooks2(&bus.hooks.onDrop, event, payload)
	}
}

// subscribe registers an untyped handler. The typed Subscribe* methods
// wrap their handlers so payloads arrive already asserted.
func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()

	bus.hooks.mu.RLock()
	hooks := make([]func(Event), len(bus.hooks.onSubscribe))
	copy(hooks, bus.hooks.onSubscribe)
	bus.hooks.mu.RUnlock()
	for _, hook := range hooks {
		hook(event)
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		bus.invoke(env, fn)
	}
}

func (bus *EventBus) invoke(env envelope, fn func(any)) {
	defer func() {
		if recovered := recover(); recovered != nil {
			bus.runPanicHooks(env.event, env.payload, recovered)
		}
	}()
	fn(env.payload)
}

// OnPublish registers a hook that fires after an event is enqueued.
func (bus *EventBus) OnPublish(fn func(Event, any)) {
	bus.hooks.mu.Lock()
	bus.hooks.onPublish = append(bus.hooks.onPublish, fn)
	bus.hooks.mu.Unlock()
}

// OnDrop registers a hook that fires when an event is dropped because
// the buffer is full.
func (bus *EventBus) OnDrop(fn func(Event, any)) {
	bus.hooks.mu.Lock()
	bus.hooks.onDrop = append(bus.hooks.onDrop, fn)
	bus.hooks.mu.Unlock()
}

// OnSubscribe registers a hook that fires after a subscriber is added.
func (bus *EventBus) OnSubscribe(fn func(Event)) {
	bus.hooks.mu.Lock()
	bus.hooks.onSubscribe = append(bus.hooks.onSubscribe, fn)
	bus.hooks.mu.Unlock()
}

// OnPanic registers a hook that fires when a subscriber panics.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) {
	bus.hooks.mu.Lock()
	bus.hooks.onPanic = append(bus.hooks.onPanic, fn)
	bus.hooks.mu.Unlock()
}

// runHooks2 copies and runs two-argument hooks outside the hook lock.
func (bus *EventBus) runHooks2(list *[]func(Event, any), event Event, payload any) {
	bus.hooks.mu.RLock()
	hooks := make([]func(Event, any), len(*list))
	copy(hooks, *list)
	bus.hooks.mu.RUnlock()
	for _, fn := range hooks {
		fn(event, payload)
	}
}

func (bus *EventBus) runPanicHooks(event Event, payload any, recovered any) {
	bus.hooks.mu.RLock()
	hooks := make([]func(Event, any, any), len(bus.hooks.onPanic))
	copy(hooks, bus.hooks.onPanic)
	bus.hooks.mu.RUnlock()
	for _, fn := range hooks {
		func() {
			defer func() { recover() }() //nolint:errcheck
			fn(event, payload, recovered)
		}()
	}
}

// RegisterDebugLogger registers bus hooks that log all event activity
// at debug level, plus warnings for drops and subscriber panics.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, _ any) {
		logger.Debug().Str("event", string(event)).Msg("event fired")
	})

	bus.OnDrop(func(event Event, _ any) {
		logger.Warn().Str("event", string(event)).Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

// Typed publish/subscribe pairs, one per event.

// PublishChapterAdded publishes a chapter.added event.
func (bus *EventBus) PublishChapterAdded(p ChapterAddedPayload) { bus.send(EventChapterAdded, p) }

// SubscribeChapterAdded subscribes to chapter.added events.
func (bus *EventBus) SubscribeChapterAdded(fn func(ChapterAddedPayload)) {
	bus.subscribe(EventChapterAdded, func(v any) { fn(v.(ChapterAddedPayload)) })
}

// PublishCommentAdded publishes a comment.added event.
func (bus *EventBus) PublishCommentAdded(p CommentAddedPayload) { bus.send(EventCommentAdded, p) }

// SubscribeCommentAdded subscribes to comment.added events.
func (bus *EventBus) SubscribeCommentAdded(fn func(CommentAddedPayload)) {
	bus.subscribe(EventCommentAdded, func(v any) { fn(v.(CommentAddedPayload)) })
}

// PublishCommentReplied publishes a comment.replied event.
func (bus *EventBus) PublishCommentReplied(p CommentRepliedPayload) {
	bus.send(EventCommentReplied, p)
}

// SubscribeCommentReplied subscribes to comment.replied events.
func (bus *EventBus) SubscribeCommentReplied(fn func(CommentRepliedPayload)) {
	bus.subscribe(EventCommentReplied, func(v any) { fn(v.(CommentRepliedPayload)) })
}

// PublishCommentResolved publishes a comment.resolved event.
func (bus *EventBus) PublishCommentResolved(p CommentResolvedPayload) {
	bus.send(EventCommentResolved, p)
}

// SubscribeCommentResolved subscribes to comment.resolved events.
func (bus *EventBus) SubscribeCommentResolved(fn func(CommentResolvedPayload)) {
	bus.subscribe(EventCommentResolved, func(v any) { fn(v.(CommentResolvedPayload)) })
}

// PublishCommitCreated publishes a commit.created event.
func (bus *EventBus) PublishCommitCreated(p CommitCreatedPayload) { bus.send(EventCommitCreated, p) }

// SubscribeCommitCreated subscribes to commit.created events.
func (bus *EventBus) SubscribeCommitCreated(fn func(CommitCreatedPayload)) {
	bus.subscribe(EventCommitCreated, func(v any) { fn(v.(CommitCreatedPayload)) })
}

// PublishNotificationPublished publishes a notification.published event.
func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

// SubscribeNotificationPublished subscribes to notification.published events.
func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(v any) { fn(v.(NotificationPublishedPayload)) })
}

// PublishScanCompleted publishes a scan.completed event.
func (bus *EventBus) PublishScanCompleted(p ScanCompletedPayload) { bus.send(EventScanCompleted, p) }

// SubscribeScanCompleted subscribes to scan.completed events.
func (bus *EventBus) SubscribeScanCompleted(fn func(ScanCompletedPayload)) {
	bus.subscribe(EventScanCompleted, func(v any) { fn(v.(ScanCompletedPayload)) })
}

// PublishShardChanged publishes a shard.changed event.
func (bus *EventBus) PublishShardChanged(p ShardChangedPayload) { bus.send(EventShardChanged, p) }

// SubscribeShardChanged subscribes to shard.changed events.
func (bus *EventBus) SubscribeShardChanged(fn func(ShardChangedPayload)) {
	bus.subscribe(EventShardChanged, func(v any) { fn(v.(ShardChangedPayload)) })
}

// PublishTodoAssigned publishes a todo.assigned event.
func (bus *EventBus) PublishTodoAssigned(p TodoAssignedPayload) { bus.send(EventTodoAssigned, p) }

// SubscribeTodoAssigned subscribes to todo.assigned events.
func (bus *EventBus) SubscribeTodoAssigned(fn func(TodoAssignedPayload)) {
	bus.subscribe(EventTodoAssigned, func(v any) { fn(v.(TodoAssignedPayload)) })
}

// PublishTodoCancelled publishes a todo.cancelled event.
func (bus *EventBus) PublishTodoCancelled(p TodoCancelledPayload) { bus.send(EventTodoCancelled, p) }

// SubscribeTodoCancelled subscribes to todo.cancelled events.
func (bus *EventBus) SubscribeTodoCancelled(fn func(TodoCancelledPayload)) {
	bus.subscribe(EventTodoCancelled, func(v any) { fn(v.(TodoCancelledPayload)) })
}

// PublishTodoCompleted publishes a todo.completed event.
func (bus *EventBus) PublishTodoCompleted(p TodoCompletedPayload) { bus.send(EventTodoCompleted, p) }

// SubscribeTodoCompleted subscribes to todo.completed events.
func (bus *EventBus) SubscribeTodoCompleted(fn func(TodoCompletedPayload)) {
	bus.subscribe(EventTodoCompleted, func(v any) { fn(v.(TodoCompletedPayload)) })
}

// PublishTodoCreated publishes a todo.created event.
func (bus *EventBus) PublishTodoCreated(p TodoCreatedPayload) { bus.send(EventTodoCreated, p) }

// SubscribeTodoCreated subscribes to todo.created events.
func (bus *EventBus) SubscribeTodoCreated(fn func(TodoCreatedPayload)) {
	bus.subscribe(EventTodoCreated, func(v any) { fn(v.(TodoCreatedPayload)) })
}

// PublishTodoUpdated publishes a todo.updated event.
func (bus *EventBus) PublishTodoUpdated(p TodoUpdatedPayload) { bus.send(EventTodoUpdated, p) }

// SubscribeTodoUpdated subscribes to todo.updated events.
func (bus *EventBus) SubscribeTodoUpdated(fn func(TodoUpdatedPayload)) {
	bus.subscribe(EventTodoUpdated, func(v any) { fn(v.(TodoUpdatedPayload)) })
}
