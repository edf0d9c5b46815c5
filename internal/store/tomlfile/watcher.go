package tomlfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	debounceDelay   = 50 * time.Millisecond
	eventBufferSize = 100
)

// ProjectShard names the project-level shard in ShardEvent.Shard.
// Chapter shards are named by their slug.
const ProjectShard = "project"

// ShardEvent reports that a shard file changed on disk.
type ShardEvent struct {
	Shard     string
	Timestamp time.Time
}

// ShardWatcher watches the project file and chapter directory for
// out-of-band edits using fsnotify.
type ShardWatcher struct {
	contentDir  string
	chaptersDir string
	watcher     *fsnotify.Watcher

	mu          sync.RWMutex
	subscribers map[string][]chan<- ShardEvent // shard name ("" or "*" for all) -> channels
	debounce    map[string]*time.Timer         // shard -> debounce timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewShardWatcher creates a watcher over the store's shard files.
// Both watched directories are created if they don't exist.
func NewShardWatcher(store *Store) (*ShardWatcher, error) {
	contentDir := filepath.Dir(store.ProjectPath())
	chaptersDir := store.ChaptersDir()

	for _, dir := range []string{contentDir, chaptersDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{contentDir, chaptersDir} {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sw := &ShardWatcher{
		contentDir:  contentDir,
		chaptersDir: chaptersDir,
		watcher:     watcher,
		subscribers: make(map[string][]chan<- ShardEvent),
		debounce:    make(map[string]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
	}

	sw.wg.Add(1)
	go sw.run()

	return sw, nil
}

// Watch returns a channel that receives events when the named shard
// changes. An empty name or "*" subscribes to every shard.
func (sw *ShardWatcher) Watch(ctx context.Context, shard string) (<-chan ShardEvent, error) {
	ch := make(chan ShardEvent, eventBufferSize)

	sw.mu.Lock()
	sw.subscribers[shard] = append(sw.subscribers[shard], ch)
	sw.mu.Unlock()

	// Handle context cancellation to unsubscribe
	go func() {
		select {
		case <-ctx.Done():
			sw.unsubscribe(shard, ch)
		case <-sw.ctx.Done():
			// Watcher is closing, channel will be closed by Close()
		}
	}()

	return ch, nil
}

// Close stops watching and closes all subscriber channels.
func (sw *ShardWatcher) Close() error {
	sw.cancel()

	sw.mu.Lock()
	for _, timer := range sw.debounce {
		timer.Stop()
	}
	for _, subs := range sw.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	sw.subscribers = make(map[string][]chan<- ShardEvent)
	sw.mu.Unlock()

	err := sw.watcher.Close()
	sw.wg.Wait()
	return err
}

// unsubscribe removes a channel from the subscriber list and closes it.
func (sw *ShardWatcher) unsubscribe(shard string, ch chan<- ShardEvent) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	subs := sw.subscribers[shard]
	for i, sub := range subs {
		if sub == ch {
			sw.subscribers[shard] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(sw.subscribers[shard]) == 0 {
		delete(sw.subscribers, shard)
	}
}

// run processes filesystem events from fsnotify.
func (sw *ShardWatcher) run() {
	defer sw.wg.Done()

	for {
		select {
		case <-sw.ctx.Done():
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handleEvent(event)
		case _, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// handleEvent maps a filesystem event onto a shard name and debounces it.
func (sw *ShardWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	shard, ok := sw.shardFor(event.Name)
	if !ok {
		return
	}

	sw.mu.Lock()
	if timer, exists := sw.debounce[shard]; exists {
		timer.Stop()
	}
	sw.debounce[shard] = time.AfterFunc(debounceDelay, func() {
		sw.notifySubscribers(shard)
	})
	sw.mu.Unlock()
}

// shardFor resolves a changed path to a shard name. Temp and lock
// files written during atomic saves never count as shard changes.
func (sw *ShardWatcher) shardFor(path string) (string, bool) {
	filename := filepath.Base(path)
	if !strings.HasSuffix(filename, ".toml") ||
		strings.HasSuffix(filename, ".tmp") ||
		strings.HasSuffix(filename, ".lock") {
		return "", false
	}

	if filepath.Dir(path) == sw.chaptersDir {
		return strings.TrimSuffix(filename, ".toml"), true
	}
	if filename == "project.toml" {
		return ProjectShard, true
	}
	return "", false
}

// notifySubscribers sends an event to all matching subscribers.
func (sw *ShardWatcher) notifySubscribers(shard string) {
	event := ShardEvent{
		Shard:     shard,
		Timestamp: time.Now(),
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	for name, subs := range sw.subscribers {
		if name != "" && name != "*" && name != shard {
			continue
		}
		for _, ch := range subs {
			select {
			case ch <- event:
			default:
				// Channel full, drop event to prevent blocking
			}
		}
	}

	delete(sw.debounce, shard)
}
