package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

func TestNotifyAtForSuccess(t *testing.T) {
	scheduledAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), domain.NotifyAtFor(scheduledAt))
}

func TestInDueWindowSuccess(t *testing.T) {
	scheduledAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	notifyAt := domain.NotifyAtFor(scheduledAt)

	tests := []struct {
		name     string
		now      time.Time
		expected bool
	}{
		{
			name:     "before notify time",
			now:      notifyAt.Add(-time.Second),
			expected: false,
		},
		{
			name:     "exactly at notify time",
			now:      notifyAt,
			expected: true,
		},
		{
			name:     "inside window",
			now:      time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "exactly at scheduled time",
			now:      scheduledAt,
			expected: false,
		},
		{
			name:     "after scheduled time",
			now:      time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.InDueWindow(notifyAt, scheduledAt, tt.now))
		})
	}
}
