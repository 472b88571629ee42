package memstore

import (
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

// Stored entities are copied on the way in and out so callers never share
// mutable state with the store.

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := *t

	return &v
}

func cloneJob(j *domain.ReminderJob) *domain.ReminderJob {
	return domain.ReconstituteReminderJob(
		j.UserID(),
		j.TaskID(),
		j.Title(),
		j.ScheduledAt(),
		j.NotifyAt(),
		j.VersionTs(),
		j.Status(),
		cloneTime(j.SentAt()),
		j.CreatedAt(),
		j.UpdatedAt(),
	)
}

func cloneDevice(d *domain.PushDevice) *domain.PushDevice {
	return domain.ReconstitutePushDevice(
		d.UserID(),
		d.Token(),
		d.Platform(),
		d.DeviceID(),
		d.CreatedAt(),
		d.UpdatedAt(),
		d.IsActive(),
	)
}

func cloneRecord(r *domain.NotificationRecord) *domain.NotificationRecord {
	return domain.ReconstituteNotificationRecord(
		r.ID(),
		r.UserID(),
		r.TaskID(),
		r.NotifyAt(),
		cloneTime(r.SentAt()),
		cloneTime(r.ReadAt()),
		r.Handle(),
		r.CreatedAt(),
		r.UpdatedAt(),
	)
}
