package pubsub

import (
	"context"
	"io"
	"time"
)

//go:generate mockgen -source=publisher.go -destination=publisher_mock.go -package=pubsub

const TopicReminderDispatched = "reminder.dispatched"

type ReminderDispatchedEvent struct {
	UserID       string    `json:"userId"`
	TaskID       string    `json:"taskId"`
	ScheduledAt  time.Time `json:"scheduledAt"`
	NotifyAt     time.Time `json:"notifyAt"`
	SentAt       time.Time `json:"sentAt"`
	DevicesTried int       `json:"devicesTried"`
	Delivered    int       `json:"delivered"`
	Deactivated  int       `json:"deactivated"`
}

type Publisher interface {
	PublishReminderDispatched(ctx context.Context, event ReminderDispatchedEvent) error
	io.Closer
}
