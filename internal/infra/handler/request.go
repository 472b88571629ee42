package handler

import (
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/app"
)

type SyncUserRequest struct {
	UserID string              `json:"userId" binding:"required"`
	Tasks  []TaskSnapshotField `json:"tasks" binding:"required,dive"`
}

type TaskSnapshotField struct {
	TaskID      string     `json:"taskId" binding:"required"`
	Title       string     `json:"title"`
	ScheduledAt *time.Time `json:"scheduledAt" binding:"required"`
	NotifyAt    *time.Time `json:"notifyAt"`
	UpdatedAt   *time.Time `json:"updatedAt" binding:"required"`
	IsCompleted *bool      `json:"isCompleted" binding:"required"`
}

func (r SyncUserRequest) ToInput() app.SyncUserJobsInput {
	tasks := make([]app.TaskSnapshotInput, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		in := app.TaskSnapshotInput{
			TaskID:      t.TaskID,
			Title:       t.Title,
			ScheduledAt: *t.ScheduledAt,
			UpdatedAt:   *t.UpdatedAt,
			IsCompleted: *t.IsCompleted,
		}
		if t.NotifyAt != nil {
			in.NotifyAt = *t.NotifyAt
		}

		tasks = append(tasks, in)
	}

	return app.SyncUserJobsInput{
		UserID: r.UserID,
		Tasks:  tasks,
	}
}

type RegisterTokenRequest struct {
	UserID        string `json:"userId" binding:"required"`
	ExpoPushToken string `json:"expoPushToken" binding:"required"`
	Platform      string `json:"platform"`
	DeviceID      string `json:"deviceId"`
}

func (r RegisterTokenRequest) ToInput() app.RegisterTokenInput {
	return app.RegisterTokenInput{
		UserID:        r.UserID,
		ExpoPushToken: r.ExpoPushToken,
		Platform:      r.Platform,
		DeviceID:      r.DeviceID,
	}
}
