package scheduler

import (
	"context"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

// Noop stands in when the host has no local notification capability.
type Noop struct{}

func (Noop) Schedule(context.Context, domain.NotificationContent, time.Time) (domain.SchedulingHandle, error) {
	return "", domain.ErrUnsupported
}

func (Noop) ScheduleImmediate(context.Context, domain.NotificationContent) (domain.SchedulingHandle, error) {
	return "", domain.ErrUnsupported
}

func (Noop) Cancel(context.Context, domain.SchedulingHandle) error {
	return nil
}

func (Noop) QueryDelivered(context.Context) ([]domain.DeliveredNotification, error) {
	return nil, domain.ErrUnsupported
}

func (Noop) HasPermission(context.Context) (bool, error) {
	return false, nil
}
