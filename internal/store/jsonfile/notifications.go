// Package jsonfile provides JSON-file-backed stores for small,
// append-mostly state kept outside the TOML shards.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tradocflow/tradocflow/internal/core/notify"
)

// maxNotifications bounds the on-disk notification log.
const maxNotifications = 500

// NotificationFile is the root JSON structure stored on disk.
type NotificationFile struct {
	LastID        int64                 `json:"last_id"`
	Notifications []notify.Notification `json:"notifications"`
}

// NotificationStore implements notify.Store using a JSON file for
// persistence.
type NotificationStore struct {
	path string
	mu   sync.RWMutex
}

var _ notify.Store = (*NotificationStore)(nil)

// NewNotificationStore creates a JSON file notification store at the
// given path.
func NewNotificationStore(path string) *NotificationStore {
	return &NotificationStore{path: path}
}

// Save persists a notification, assigning the next id and pruning the
// oldest entries beyond the store cap. Entries are kept newest first.
func (s *NotificationStore) Save(ctx context.Context, n notify.Notification) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return 0, err
	}

	file.LastID++
	n.ID = file.LastID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	file.Notifications = append([]notify.Notification{n}, file.Notifications...)
	if len(file.Notifications) > maxNotifications {
		file.Notifications = file.Notifications[:maxNotifications]
	}

	if err := s.save(file); err != nil {
		return 0, err
	}
	return n.ID, nil
}

// List returns all notifications, newest first.
func (s *NotificationStore) List(ctx context.Context) ([]notify.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	return file.Notifications, nil
}

// ListForRecipient returns the user's notifications plus broadcasts,
// newest first.
func (s *NotificationStore) ListForRecipient(ctx context.Context, recipient string, unreadOnly bool) ([]notify.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	var out []notify.Notification
	for _, n := range file.Notifications {
		if n.Recipient != "" && n.Recipient != recipient {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// MarkRead flags one notification as read.
func (s *NotificationStore) MarkRead(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	for i := range file.Notifications {
		if file.Notifications[i].ID == id {
			file.Notifications[i].Read = true
			return s.save(file)
		}
	}

	return notify.ErrNotFound
}

// UnreadCount returns how many unread notifications the user has,
// broadcasts included.
func (s *NotificationStore) UnreadCount(ctx context.Context, recipient string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return 0, err
	}

	var count int64
	for _, n := range file.Notifications {
		if n.Read {
			continue
		}
		if n.Recipient != "" && n.Recipient != recipient {
			continue
		}
		count++
	}
	return count, nil
}

// Clear removes all notifications, keeping the id counter so later
// saves never reuse an id.
func (s *NotificationStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	return s.save(NotificationFile{LastID: file.LastID})
}

// load reads the notification file from disk.
// Returns an empty NotificationFile if the file doesn't exist.
func (s *NotificationStore) load() (NotificationFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NotificationFile{}, nil
		}
		return NotificationFile{}, err
	}

	if len(data) == 0 {
		return NotificationFile{}, nil
	}

	var file NotificationFile
	if err := json.Unmarshal(data, &file); err != nil {
		return NotificationFile{}, err
	}

	return file, nil
}

// save writes the notification file to disk atomically.
func (s *NotificationStore) save(file NotificationFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
