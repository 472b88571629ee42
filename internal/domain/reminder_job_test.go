package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

func newSnapshot(scheduledAt, updatedAt time.Time) domain.TaskSnapshot {
	return domain.TaskSnapshot{
		TaskID:      domain.MustTaskID("t1"),
		Title:       "Standup",
		ScheduledAt: scheduledAt,
		NotifyAt:    domain.NotifyAtFor(scheduledAt),
		UpdatedAt:   updatedAt,
	}
}

func TestJobKeySuccess(t *testing.T) {
	assert.Equal(t, "u1:t1", domain.JobKey(mustUserID(t, "u1"), domain.MustTaskID("t1")))
}

func TestReminderJobIsDueSuccess(t *testing.T) {
	scheduledAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		cancel   bool
		expected bool
	}{
		{
			name:     "inside window",
			now:      time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "task already started",
			now:      time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "before window",
			now:      time.Date(2024, 1, 1, 8, 59, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "canceled job is never due",
			now:      time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC),
			cancel:   true,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := domain.NewPendingJob(mustUserID(t, "u1"), newSnapshot(scheduledAt, created), created, created)
			if tt.cancel {
				require.NoError(t, job.Cancel(created))
			}

			assert.Equal(t, tt.expected, job.IsDue(tt.now))
		})
	}
}

func TestReminderJobIsStaleForSuccess(t *testing.T) {
	scheduledAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	v1 := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		snapshot domain.TaskSnapshot
		sent     bool
		expected bool
	}{
		{
			name:     "unchanged snapshot",
			snapshot: newSnapshot(scheduledAt, v1),
			expected: false,
		},
		{
			name:     "version bumped",
			snapshot: newSnapshot(scheduledAt, v1.Add(time.Minute)),
			expected: true,
		},
		{
			name:     "notify time moved",
			snapshot: newSnapshot(scheduledAt.Add(time.Hour), v1),
			expected: true,
		},
		{
			name:     "already sent",
			snapshot: newSnapshot(scheduledAt, v1),
			sent:     true,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := domain.NewPendingJob(mustUserID(t, "u1"), newSnapshot(scheduledAt, v1), v1, v1)
			if tt.sent {
				require.NoError(t, job.MarkSent(v1.Add(2*time.Hour)))
			}

			assert.Equal(t, tt.expected, job.IsStaleFor(tt.snapshot))
		})
	}
}

func TestReminderJobTransitionsError(t *testing.T) {
	now := time.Now()
	job := domain.NewPendingJob(mustUserID(t, "u1"), newSnapshot(now.Add(2*time.Hour), now), now, now)

	require.NoError(t, job.MarkSent(now))
	require.NotNil(t, job.SentAt())
	assert.Equal(t, domain.JobStatusSent, job.Status())

	assert.ErrorIs(t, job.MarkSent(now), domain.ErrJobNotPending)
	assert.ErrorIs(t, job.Cancel(now), domain.ErrJobNotPending)
}

func TestNewJobStatusError(t *testing.T) {
	_, err := domain.NewJobStatus("done")

	assert.Error(t, err)
}
