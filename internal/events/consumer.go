package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
)

// LogEvents drains topic and writes one log line per event until ctx ends.
// It backs the in-process publisher so events stay visible without a broker.
func LogEvents(ctx context.Context, sub message.Subscriber, topic string, logger *slog.Logger) error {
	msgs, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	go func() {
		for msg := range msgs {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logger.Warn("Dropping malformed event", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			logger.Info("Event",
				"event_id", event.ID,
				"event_type", event.Type,
				"timestamp", event.Timestamp,
				"data", event.Data,
			)
			msg.Ack()
		}
	}()
	return nil
}
