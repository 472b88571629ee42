package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/repository"
)

func TestReminderJobModelToEntitySuccess(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	scheduledAt := time.Date(2024, 1, 1, 19, 0, 0, 0, tokyo)
	sentAt := time.Date(2024, 1, 1, 18, 5, 0, 0, tokyo)

	m := repository.ReminderJobModel{
		UserID:      "u1",
		TaskID:      "t1",
		Title:       "Standup",
		ScheduledAt: scheduledAt,
		NotifyAt:    scheduledAt.Add(-time.Hour),
		VersionTs:   scheduledAt.Add(-24 * time.Hour),
		Status:      "sent",
		SentAt:      &sentAt,
		CreatedAt:   scheduledAt.Add(-48 * time.Hour),
		UpdatedAt:   sentAt,
	}

	job, err := m.ToEntity()
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusSent, job.Status())
	assert.Equal(t, time.UTC, job.ScheduledAt().Location())
	assert.True(t, job.ScheduledAt().Equal(scheduledAt))
	require.NotNil(t, job.SentAt())
	assert.True(t, job.SentAt().Equal(sentAt))

	back := repository.ReminderJobFromEntity(job)
	assert.Equal(t, "sent", back.Status)
	assert.Equal(t, m.UserID, back.UserID)
	assert.Equal(t, m.TaskID, back.TaskID)
}

func TestReminderJobModelToEntityError(t *testing.T) {
	tests := []struct {
		name  string
		model repository.ReminderJobModel
	}{
		{
			name:  "blank user id",
			model: repository.ReminderJobModel{UserID: " ", TaskID: "t1", Status: "pending"},
		},
		{
			name:  "blank task id",
			model: repository.ReminderJobModel{UserID: "u1", TaskID: "", Status: "pending"},
		},
		{
			name:  "unknown status",
			model: repository.ReminderJobModel{UserID: "u1", TaskID: "t1", Status: "queued"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.model.ToEntity()
			assert.Error(t, err)
		})
	}
}

func TestPushDeviceModelToEntitySuccess(t *testing.T) {
	m := repository.PushDeviceModel{
		UserID:   "u1",
		Token:    "ExponentPushToken[a]",
		Platform: "blackberry",
		IsActive: true,
	}

	device, err := m.ToEntity()
	require.NoError(t, err)

	assert.Equal(t, domain.PlatformUnknown, device.Platform())
	assert.True(t, device.IsActive())
}
