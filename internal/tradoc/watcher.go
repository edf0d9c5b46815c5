package tradoc

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tradocflow/tradocflow/internal/core/eventbus"
	"github.com/tradocflow/tradocflow/internal/store/tomlfile"
)

// RunShardBridge subscribes to the shard watcher and, for every
// out-of-band shard change, evicts the affected cache entries and
// publishes shard.changed. Blocks until ctx is cancelled or the
// watcher closes.
func RunShardBridge(ctx context.Context, watcher *tomlfile.ShardWatcher, tasks *TaskService, bus *eventbus.EventBus, log zerolog.Logger) error {
	bridgeLog := log.With().Str("component", "shard-bridge").Logger()

	events, err := watcher.Watch(ctx, "*")
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			evicted := tasks.EvictShard(event.Shard)
			bus.PublishShardChanged(eventbus.ShardChangedPayload{Name: event.Shard})
			bridgeLog.Debug().
				Str("shard", event.Shard).
				Int("evicted", evicted).
				Msg("shard changed on disk")
		}
	}
}
