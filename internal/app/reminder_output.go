package app

import (
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type SyncUserJobsOutput struct {
	PendingJobs int
}

type DispatchDueOutput struct {
	// Skipped is set when another dispatch pass was still running.
	Skipped   bool
	DueJobs   int
	SentCount int
}

type PushDeviceOutput struct {
	UserID        string
	ExpoPushToken string
	Platform      string
	DeviceID      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	IsActive      bool
}

func FromDevice(device *domain.PushDevice) PushDeviceOutput {
	return PushDeviceOutput{
		UserID:        device.UserID().String(),
		ExpoPushToken: device.Token(),
		Platform:      string(device.Platform()),
		DeviceID:      device.DeviceID(),
		CreatedAt:     device.CreatedAt(),
		UpdatedAt:     device.UpdatedAt(),
		IsActive:      device.IsActive(),
	}
}

type NotificationRecordOutput struct {
	ID        string
	TaskID    string
	NotifyAt  time.Time
	SentAt    *time.Time
	ReadAt    *time.Time
	Unread    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func FromRecord(record *domain.NotificationRecord) NotificationRecordOutput {
	return NotificationRecordOutput{
		ID:        record.ID().String(),
		TaskID:    record.TaskID().String(),
		NotifyAt:  record.NotifyAt(),
		SentAt:    record.SentAt(),
		ReadAt:    record.ReadAt(),
		Unread:    record.IsSent() && !record.IsRead(),
		CreatedAt: record.CreatedAt(),
		UpdatedAt: record.UpdatedAt(),
	}
}

func FromRecords(records []*domain.NotificationRecord) []NotificationRecordOutput {
	outputs := make([]NotificationRecordOutput, 0, len(records))
	for _, r := range records {
		outputs = append(outputs, FromRecord(r))
	}

	return outputs
}
