package repository

import (
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type ReminderJobModel struct {
	UserID      string     `gorm:"column:user_id;type:varchar(255);primaryKey"`
	TaskID      string     `gorm:"column:task_id;type:varchar(255);primaryKey"`
	Title       string     `gorm:"column:title;type:text;not null;default:''"`
	ScheduledAt time.Time  `gorm:"column:scheduled_at;type:timestamptz;not null"`
	NotifyAt    time.Time  `gorm:"column:notify_at;type:timestamptz;not null;index:idx_reminder_jobs_due,priority:2"`
	VersionTs   time.Time  `gorm:"column:version_ts;type:timestamptz;not null"`
	Status      string     `gorm:"column:status;type:varchar(16);not null;index:idx_reminder_jobs_due,priority:1"`
	SentAt      *time.Time `gorm:"column:sent_at;type:timestamptz"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (ReminderJobModel) TableName() string {
	return "reminder_jobs"
}

func (m *ReminderJobModel) ToEntity() (*domain.ReminderJob, error) {
	userID, err := domain.UserIDFromString(m.UserID)
	if err != nil {
		return nil, err
	}

	taskID, err := domain.TaskIDFromString(m.TaskID)
	if err != nil {
		return nil, err
	}

	status, err := domain.NewJobStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return domain.ReconstituteReminderJob(
		userID,
		taskID,
		m.Title,
		m.ScheduledAt.UTC(),
		m.NotifyAt.UTC(),
		m.VersionTs.UTC(),
		status,
		utcPtr(m.SentAt),
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	), nil
}

func ReminderJobFromEntity(e *domain.ReminderJob) *ReminderJobModel {
	return &ReminderJobModel{
		UserID:      e.UserID().String(),
		TaskID:      e.TaskID().String(),
		Title:       e.Title(),
		ScheduledAt: e.ScheduledAt(),
		NotifyAt:    e.NotifyAt(),
		VersionTs:   e.VersionTs(),
		Status:      string(e.Status()),
		SentAt:      e.SentAt(),
		CreatedAt:   e.CreatedAt(),
		UpdatedAt:   e.UpdatedAt(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := t.UTC()

	return &v
}
