package domain

import (
	"context"
	"time"
)

type NotificationContent struct {
	Title  string
	Body   string
	TaskID TaskID
}

type DeliveredNotification struct {
	Handle SchedulingHandle
	TaskID TaskID
}

// LocalScheduler arranges on-device notifications. Every call may fail and
// callers treat failures as recoverable on the next reconciliation pass.
type LocalScheduler interface {
	Schedule(ctx context.Context, content NotificationContent, firesAt time.Time) (SchedulingHandle, error)
	ScheduleImmediate(ctx context.Context, content NotificationContent) (SchedulingHandle, error)
	Cancel(ctx context.Context, handle SchedulingHandle) error
	QueryDelivered(ctx context.Context) ([]DeliveredNotification, error)
	HasPermission(ctx context.Context) (bool, error)
}
