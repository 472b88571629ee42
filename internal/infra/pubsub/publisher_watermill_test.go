package pubsub_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-reminder/internal/infra/pubsub"
)

func TestPublishReminderDispatchedSuccess(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	channel := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	messages, err := channel.Subscribe(ctx, pubsub.TopicReminderDispatched)
	require.NoError(t, err)

	publisher := pubsub.NewWatermillPublisher(channel)
	defer publisher.Close()

	sentAt := time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)
	event := pubsub.ReminderDispatchedEvent{
		UserID:       "user-1",
		TaskID:       "task-1",
		ScheduledAt:  sentAt.Add(55 * time.Minute),
		NotifyAt:     sentAt.Add(-5 * time.Minute),
		SentAt:       sentAt,
		DevicesTried: 2,
		Delivered:    1,
		Deactivated:  1,
	}

	require.NoError(t, publisher.PublishReminderDispatched(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()

		assert.Equal(t, pubsub.TopicReminderDispatched, msg.Metadata.Get("event_type"))
		assert.Equal(t, "task-1", msg.Metadata.Get("task_id"))
		assert.Equal(t, "user-1", msg.Metadata.Get("user_id"))

		var got pubsub.ReminderDispatchedEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, event.TaskID, got.TaskID)
		assert.True(t, event.SentAt.Equal(got.SentAt))
		assert.Equal(t, 1, got.Deactivated)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishReminderDispatchedError(t *testing.T) {
	channel := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := pubsub.NewWatermillPublisher(channel)
	require.NoError(t, publisher.Close())

	err := publisher.PublishReminderDispatched(context.Background(), pubsub.ReminderDispatchedEvent{TaskID: "task-1"})
	assert.Error(t, err)
}

func TestNoopPublisherSuccess(t *testing.T) {
	var publisher pubsub.Publisher = pubsub.NoopPublisher{}

	assert.NoError(t, publisher.PublishReminderDispatched(context.Background(), pubsub.ReminderDispatchedEvent{}))
	assert.NoError(t, publisher.Close())
}
