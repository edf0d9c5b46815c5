package notify

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a notification id does not exist.
var ErrNotFound = errors.New("notification not found")

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event. Recipient is a
// user id, or empty for broadcast notifications visible to everyone.
type Notification struct {
	ID        int64     `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Recipient string    `json:"recipient,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists notifications to durable storage.
type Store interface {
	// Save persists a notification and returns its assigned id.
	Save(ctx context.Context, n Notification) (int64, error)

	// List returns all notifications, newest first.
	List(ctx context.Context) ([]Notification, error)

	// ListForRecipient returns notifications addressed to the user or
	// broadcast, newest first. With unreadOnly set, read notifications
	// are skipped.
	ListForRecipient(ctx context.Context, recipient string, unreadOnly bool) ([]Notification, error)

	// MarkRead flags one notification as read.
	// Returns ErrNotFound if the id does not exist.
	MarkRead(ctx context.Context, id int64) error

	// UnreadCount returns how many unread notifications the user has.
	UnreadCount(ctx context.Context, recipient string) (int64, error)

	// Clear removes all notifications.
	Clear(ctx context.Context) error
}
