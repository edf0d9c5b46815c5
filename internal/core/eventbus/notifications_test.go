package eventbus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradocflow/tradocflow/internal/core/eventbus"
	"github.com/tradocflow/tradocflow/internal/core/eventbus/testbus"
	"github.com/tradocflow/tradocflow/internal/core/notify"
	"github.com/tradocflow/tradocflow/internal/core/project"
)

func latestNotificationPayload(tb *testbus.Bus, t *testing.T) eventbus.NotificationPublishedPayload {
	t.Helper()
	tb.AssertPublished(t, eventbus.EventNotificationPublished)

	var payload eventbus.NotificationPublishedPayload
	for _, e := range tb.Events() {
		if e.Event != eventbus.EventNotificationPublished {
			continue
		}
		p, ok := e.Payload.(eventbus.NotificationPublishedPayload)
		require.True(t, ok)
		payload = p
	}

	return payload
}

func TestNotificationRouter_TodoCreatedWithAssignee(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishTodoCreated(eventbus.TodoCreatedPayload{
		Todo: project.Todo{ID: "todo-1", Title: "Translate intro", AssignedTo: "tina"},
	})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelInfo, p.Level)
	assert.Equal(t, "tina", p.Recipient)
	assert.Contains(t, p.Message, "Translate intro")
}

func TestNotificationRouter_TodoCreatedUnassigned_doesNotPublish(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishTodoCreated(eventbus.TodoCreatedPayload{
		Todo: project.Todo{ID: "todo-1", Title: "Translate intro"},
	})

	tb.AssertNotPublished(t, eventbus.EventNotificationPublished, 100*time.Millisecond)
}

func TestNotificationRouter_TodoCreated_fanOutToAssigneeAndCreator(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishTodoCreated(eventbus.TodoCreatedPayload{
		Todo: project.Todo{
			ID:         "todo-1",
			Title:      "Translate intro",
			TodoType:   project.TypeTranslation,
			CreatedBy:  "erik",
			AssignedTo: "tina",
		},
	})
	tb.AssertPublished(t, eventbus.EventNotificationPublished)
	time.Sleep(50 * time.Millisecond) // let the second fan-out notification land

	recipients := make([]string, 0, 2)
	for _, e := range tb.Events() {
		if e.Event != eventbus.EventNotificationPublished {
			continue
		}
		p, ok := e.Payload.(eventbus.NotificationPublishedPayload)
		require.True(t, ok)
		recipients = append(recipients, p.Recipient)
	}

	assert.ElementsMatch(t, []string{"tina", "erik"}, recipients)
}

func TestNotificationRouter_TodoCompleted_selfAssigned_singleNotification(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishTodoCompleted(eventbus.TodoCompletedPayload{
		Todo: project.Todo{ID: "todo-1", Title: "Translate intro", CreatedBy: "tina", AssignedTo: "tina"},
	})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, "tina", p.Recipient)

	time.Sleep(50 * time.Millisecond)
	count := 0
	for _, e := range tb.Events() {
		if e.Event == eventbus.EventNotificationPublished {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestNotificationRouter_TodoCompleted(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishTodoCompleted(eventbus.TodoCompletedPayload{
		Todo: project.Todo{ID: "todo-1", Title: "Translate intro", CreatedBy: "erik"},
	})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelInfo, p.Level)
	assert.Equal(t, "erik", p.Recipient)
	assert.Contains(t, p.Message, "completed")
}

func TestNotificationRouter_TodoAssigned(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishTodoAssigned(eventbus.TodoAssignedPayload{
		Todo:     project.Todo{ID: "todo-1", Title: "Translate intro"},
		Assignee: "tina",
	})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, "tina", p.Recipient)
	assert.Contains(t, p.Message, "reassigned")
}

func TestNotificationRouter_CommentAdded_broadcast(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishCommentAdded(eventbus.CommentAddedPayload{
		Comment: project.Comment{
			ID:      "comment-1",
			Author:  "rita",
			Type:    project.CommentQuestion,
			Context: project.TranslationCommentContext("intro_p001", "de"),
		},
	})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelInfo, p.Level)
	assert.Empty(t, p.Recipient)
	assert.Contains(t, p.Message, "rita")
	assert.Contains(t, p.Message, "question")
}

func TestNotificationRouter_ScanCompletedIncomplete_publishesWarning(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishScanCompleted(eventbus.ScanCompletedPayload{
		Root:           "/docs",
		Documents:      7,
		CompleteSets:   1,
		IncompleteSets: 1,
	})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelWarning, p.Level)
	assert.Contains(t, p.Message, "incomplete")
}

func TestNotificationRouter_ShardChanged_doesNotPublish(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishShardChanged(eventbus.ShardChangedPayload{Name: "intro"})
	tb.AssertNotPublished(t, eventbus.EventNotificationPublished, 100*time.Millisecond)
}
