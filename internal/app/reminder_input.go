package app

import "time"

type SyncUserJobsInput struct {
	UserID string
	Tasks  []TaskSnapshotInput
}

type TaskSnapshotInput struct {
	TaskID      string
	Title       string
	ScheduledAt time.Time
	NotifyAt    time.Time
	UpdatedAt   time.Time
	IsCompleted bool
}

type DispatchDueInput struct {
	Secret string
}

type RegisterTokenInput struct {
	UserID        string
	ExpoPushToken string
	Platform      string
	DeviceID      string
}
