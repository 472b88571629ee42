package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const reminderStreamName = "REMINDER_EVENTS"

type NATSPublisherConfig struct {
	URL string
}

// NewNATSPublisher provisions the reminder event stream on JetStream and
// returns a publisher bound to it.
func NewNATSPublisher(ctx context.Context, cfg NATSPublisherConfig) (*WatermillPublisher, error) {
	conn, err := nc.Connect(cfg.URL, nc.Timeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer conn.Close()

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        reminderStreamName,
		Description: "Stream for reminder dispatch events",
		Subjects:    []string{TopicReminderDispatched},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      24 * time.Hour,
		MaxBytes:    100 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	slog.Info("NATS JetStream stream configured",
		slog.String("stream", reminderStreamName),
		slog.String("subject", TopicReminderDispatched),
	)

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.URL,
			NatsOptions: []nc.Option{nc.Timeout(10 * time.Second)},
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
			Marshaler: &nats.NATSMarshaler{},
		},
		watermill.NewSlogLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	return NewWatermillPublisher(publisher), nil
}
