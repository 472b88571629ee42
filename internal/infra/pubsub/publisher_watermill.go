package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// WatermillPublisher publishes reminder events as JSON messages on any
// watermill transport.
type WatermillPublisher struct {
	publisher message.Publisher
}

func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) PublishReminderDispatched(ctx context.Context, event ReminderDispatchedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", TopicReminderDispatched)
	msg.Metadata.Set("task_id", event.TaskID)
	msg.Metadata.Set("user_id", event.UserID)

	if err := p.publisher.Publish(TopicReminderDispatched, msg); err != nil {
		slog.Error("failed to publish reminder dispatched event",
			slog.String("task_id", event.TaskID),
			slog.String("error", err.Error()),
		)

		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("published reminder dispatched event",
		slog.String("task_id", event.TaskID),
		slog.String("message_id", msg.UUID),
	)

	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) PublishReminderDispatched(context.Context, ReminderDispatchedEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
