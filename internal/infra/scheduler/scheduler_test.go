package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/scheduler"
)

func content(taskID string) domain.NotificationContent {
	return domain.NotificationContent{
		Title:  "Upcoming Task",
		Body:   "Write report starts in 1 hour.",
		TaskID: domain.MustTaskID(taskID),
	}
}

func TestTimerScheduleImmediateSuccess(t *testing.T) {
	presented := make(chan scheduler.Presented, 1)
	timer := scheduler.NewTimer(func(p scheduler.Presented) { presented <- p })
	defer timer.Close()

	ctx := context.Background()

	handle, err := timer.ScheduleImmediate(ctx, content("t1"))
	require.NoError(t, err)
	assert.False(t, handle.IsZero())

	select {
	case p := <-presented:
		assert.Equal(t, handle, p.Handle)
		assert.Equal(t, "t1", p.Content.TaskID.String())
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not presented")
	}

	delivered, err := timer.QueryDelivered(ctx)
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, "t1", delivered[0].TaskID.String())
	assert.Equal(t, 0, timer.Pending())
}

func TestTimerCancelSuccess(t *testing.T) {
	presented := make(chan scheduler.Presented, 1)
	timer := scheduler.NewTimer(func(p scheduler.Presented) { presented <- p })
	defer timer.Close()

	ctx := context.Background()

	handle, err := timer.Schedule(ctx, content("t1"), time.Now().Add(100*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 1, timer.Pending())

	require.NoError(t, timer.Cancel(ctx, handle))
	require.NoError(t, timer.Cancel(ctx, "unknown"))
	assert.Equal(t, 0, timer.Pending())

	select {
	case <-presented:
		t.Fatal("canceled notification was presented")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestTimerForgetsSupersededDeliveries(t *testing.T) {
	presented := make(chan scheduler.Presented, 2)
	timer := scheduler.NewTimer(func(p scheduler.Presented) { presented <- p })
	defer timer.Close()

	ctx := context.Background()

	_, err := timer.ScheduleImmediate(ctx, content("t1"))
	require.NoError(t, err)
	h2, err := timer.ScheduleImmediate(ctx, content("t2"))
	require.NoError(t, err)

	for range 2 {
		select {
		case <-presented:
		case <-time.After(2 * time.Second):
			t.Fatal("notification was not presented")
		}
	}

	delivered, err := timer.QueryDelivered(ctx)
	require.NoError(t, err)
	require.Len(t, delivered, 2)

	// rescheduling t1 makes its earlier presentation stale
	_, err = timer.Schedule(ctx, content("t1"), time.Now().Add(time.Hour))
	require.NoError(t, err)

	delivered, err = timer.QueryDelivered(ctx)
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, h2, delivered[0].Handle)

	require.NoError(t, timer.Cancel(ctx, h2))

	delivered, err = timer.QueryDelivered(ctx)
	require.NoError(t, err)
	assert.Empty(t, delivered)
	assert.Equal(t, 1, timer.Pending())
}

func TestTimerCloseError(t *testing.T) {
	timer := scheduler.NewTimer(nil)

	_, err := timer.Schedule(context.Background(), content("t1"), time.Now().Add(time.Hour))
	require.NoError(t, err)

	timer.Close()
	assert.Equal(t, 0, timer.Pending())

	_, err = timer.ScheduleImmediate(context.Background(), content("t2"))
	assert.ErrorIs(t, err, domain.ErrUnsupported)
}

func TestNoopSuccess(t *testing.T) {
	var s domain.LocalScheduler = scheduler.Noop{}
	ctx := context.Background()

	granted, err := s.HasPermission(ctx)
	require.NoError(t, err)
	assert.False(t, granted)

	_, err = s.Schedule(ctx, content("t1"), time.Now())
	assert.ErrorIs(t, err, domain.ErrUnsupported)

	_, err = s.QueryDelivered(ctx)
	assert.ErrorIs(t, err, domain.ErrUnsupported)

	assert.NoError(t, s.Cancel(ctx, "h"))
}
