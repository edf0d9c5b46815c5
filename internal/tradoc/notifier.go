package tradoc

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradocflow/tradocflow/internal/core/eventbus"
	"github.com/tradocflow/tradocflow/internal/core/notify"
)

// RegisterNotificationSink persists every notification.published event
// into the notification store. Persistence failures are logged and
// dropped; notifications are advisory, never part of a mutation.
func RegisterNotificationSink(bus *eventbus.EventBus, store notify.Store, log zerolog.Logger) {
	sinkLog := log.With().Str("component", "notification-sink").Logger()

	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		_, err := store.Save(context.Background(), notify.Notification{
			Level:     p.Level,
			Message:   p.Message,
			Recipient: p.Recipient,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			sinkLog.Warn().Err(err).Str("message", p.Message).Msg("failed to persist notification")
		}
	})
}
