package domain

import "time"

// Task is a read-only view of a task owned by the task store.
type Task struct {
	ID          TaskID
	Title       string
	ScheduledAt time.Time
	UpdatedAt   time.Time
	IsCompleted bool
}

// TaskSnapshot is the client's mirror of a task pushed to the server for job sync.
type TaskSnapshot struct {
	TaskID      TaskID
	Title       string
	ScheduledAt time.Time
	NotifyAt    time.Time
	UpdatedAt   time.Time
	IsCompleted bool
}

func SnapshotOf(task Task) TaskSnapshot {
	return TaskSnapshot{
		TaskID:      task.ID,
		Title:       task.Title,
		ScheduledAt: task.ScheduledAt,
		NotifyAt:    NotifyAtFor(task.ScheduledAt),
		UpdatedAt:   task.UpdatedAt,
		IsCompleted: task.IsCompleted,
	}
}
