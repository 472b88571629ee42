package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-task-reminder/internal/app"
	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/memstore"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/pubsub"
)

var (
	dispatchScheduledAt = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	dispatchNow         = time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)
)

type dispatchFixture struct {
	useCase   app.DispatchUseCase
	jobs      *memstore.ReminderJobStore
	devices   *memstore.PushDeviceStore
	sender    *domain.MockPushSender
	publisher *pubsub.MockPublisher
	clock     *testClock
}

func setupDispatchTest(t *testing.T, secret string) *dispatchFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &dispatchFixture{
		jobs:      memstore.NewReminderJobStore(),
		devices:   memstore.NewPushDeviceStore(),
		sender:    domain.NewMockPushSender(ctrl),
		publisher: pubsub.NewMockPublisher(ctrl),
		clock:     &testClock{now: dispatchNow},
	}

	f.useCase = app.NewDispatchUseCase(
		f.jobs,
		f.devices,
		f.sender,
		f.publisher,
		app.DispatchConfig{Secret: secret, PushTimeout: time.Second},
		app.WithClock(f.clock.Now),
	)

	return f
}

func (f *dispatchFixture) addJob(t *testing.T, user, task string, scheduledAt time.Time) {
	t.Helper()

	userID, err := domain.UserIDFromString(user)
	require.NoError(t, err)

	job := domain.NewPendingJob(userID, domain.TaskSnapshot{
		TaskID:      domain.MustTaskID(task),
		Title:       "Standup",
		ScheduledAt: scheduledAt,
		NotifyAt:    domain.NotifyAtFor(scheduledAt),
		UpdatedAt:   scheduledAt.Add(-24 * time.Hour),
	}, dispatchNow.Add(-time.Hour), dispatchNow.Add(-time.Hour))

	require.NoError(t, f.jobs.Save(context.Background(), job))
}

func (f *dispatchFixture) addDevice(t *testing.T, user, token string) {
	t.Helper()

	userID, err := domain.UserIDFromString(user)
	require.NoError(t, err)

	device, err := domain.NewPushDevice(userID, token, domain.PlatformIOS, "", dispatchNow.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, f.devices.Upsert(context.Background(), device))
}

func (f *dispatchFixture) job(t *testing.T, user, task string) *domain.ReminderJob {
	t.Helper()

	return findJob(t, f.jobs, user, task)
}

func TestDispatchDueWindowSelection(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		wantDue  int
		wantSent int
	}{
		{
			name:     "inside due window",
			now:      time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC),
			wantDue:  1,
			wantSent: 1,
		},
		{
			name:    "before notify time",
			now:     time.Date(2024, 1, 1, 8, 55, 0, 0, time.UTC),
			wantDue: 0,
		},
		{
			name:    "after scheduled time",
			now:     time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC),
			wantDue: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupDispatchTest(t, "")
			f.clock.Set(tt.now)
			f.addJob(t, "u1", "t1", dispatchScheduledAt)
			f.addDevice(t, "u1", "ExponentPushToken[a]")

			if tt.wantDue > 0 {
				f.sender.EXPECT().
					Send(gomock.Any(), gomock.Any()).
					Return([]domain.PushTicket{{Status: domain.PushStatusOK}}, nil)
				f.publisher.EXPECT().PublishReminderDispatched(gomock.Any(), gomock.Any()).Return(nil)
			}

			out, err := f.useCase.DispatchDue(context.Background(), app.DispatchDueInput{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantDue, out.DueJobs)
			assert.Equal(t, tt.wantSent, out.SentCount)
		})
	}
}

func TestDispatchAtLeastOneDeviceMarksSent(t *testing.T) {
	f := setupDispatchTest(t, "")
	f.addJob(t, "u1", "t1", dispatchScheduledAt)
	f.addDevice(t, "u1", "ExponentPushToken[a]")
	f.addDevice(t, "u1", "ExponentPushToken[b]")

	var sent []domain.PushMessage

	f.sender.EXPECT().
		Send(gomock.Any(), gomock.Len(2)).
		DoAndReturn(func(_ context.Context, messages []domain.PushMessage) ([]domain.PushTicket, error) {
			sent = messages

			tickets := make([]domain.PushTicket, len(messages))
			for i, m := range messages {
				tickets[i] = domain.PushTicket{Status: domain.PushStatusOK}
				if m.To == "ExponentPushToken[b]" {
					tickets[i] = domain.PushTicket{
						Status:    domain.PushStatusError,
						ErrorCode: domain.PushErrorDeviceNotRegistered,
					}
				}
			}

			return tickets, nil
		})

	f.publisher.EXPECT().
		PublishReminderDispatched(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event pubsub.ReminderDispatchedEvent) error {
			assert.Equal(t, "t1", event.TaskID)
			assert.Equal(t, 2, event.DevicesTried)
			assert.Equal(t, 1, event.Delivered)
			assert.Equal(t, 1, event.Deactivated)

			return nil
		})

	out, err := f.useCase.DispatchDue(context.Background(), app.DispatchDueInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.DueJobs)
	assert.Equal(t, 1, out.SentCount)

	job := f.job(t, "u1", "t1")
	assert.Equal(t, domain.JobStatusSent, job.Status())
	require.NotNil(t, job.SentAt())
	assert.True(t, job.SentAt().Equal(dispatchNow))

	userID, _ := domain.UserIDFromString("u1")
	active, err := f.devices.ListActiveByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "ExponentPushToken[a]", active[0].Token())

	require.Len(t, sent, 2)
	assert.Equal(t, "🔔 Reminder: 1 Hour Left", sent[0].Title)
	assert.Equal(t, "Up next: Standup", sent[0].Subtitle)
	assert.Equal(t, "Heads up - starts at 10:00 AM.", sent[0].Body)
	assert.Equal(t, "default", sent[0].Sound)
	assert.Equal(t, "t1", sent[0].TaskID.String())
}

func TestDispatchLeavesJobPending(t *testing.T) {
	tests := []struct {
		name    string
		devices []string
		setup   func(f *dispatchFixture)
	}{
		{
			name:    "no active devices",
			devices: nil,
			setup:   func(*dispatchFixture) {},
		},
		{
			name:    "transport failure",
			devices: []string{"ExponentPushToken[a]"},
			setup: func(f *dispatchFixture) {
				f.sender.EXPECT().
					Send(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("push service returned 503"))
			},
		},
		{
			name:    "every ticket failed",
			devices: []string{"ExponentPushToken[a]"},
			setup: func(f *dispatchFixture) {
				f.sender.EXPECT().
					Send(gomock.Any(), gomock.Any()).
					Return([]domain.PushTicket{{Status: domain.PushStatusError, ErrorCode: "MessageRateExceeded"}}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupDispatchTest(t, "")
			f.addJob(t, "u1", "t1", dispatchScheduledAt)

			for _, token := range tt.devices {
				f.addDevice(t, "u1", token)
			}

			tt.setup(f)

			out, err := f.useCase.DispatchDue(context.Background(), app.DispatchDueInput{})
			require.NoError(t, err)
			assert.Equal(t, 1, out.DueJobs)
			assert.Equal(t, 0, out.SentCount)
			assert.True(t, f.job(t, "u1", "t1").IsPending())
		})
	}
}

func TestDispatchTransportFailureOnlyAffectsOneJob(t *testing.T) {
	f := setupDispatchTest(t, "")
	f.addJob(t, "u1", "t1", dispatchScheduledAt)
	f.addJob(t, "u2", "t2", dispatchScheduledAt.Add(2*time.Minute))
	f.addDevice(t, "u1", "ExponentPushToken[a]")
	f.addDevice(t, "u2", "ExponentPushToken[b]")

	f.sender.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []domain.PushMessage) ([]domain.PushTicket, error) {
			if messages[0].To == "ExponentPushToken[a]" {
				return nil, context.DeadlineExceeded
			}

			return []domain.PushTicket{{Status: domain.PushStatusOK}}, nil
		}).
		Times(2)
	f.publisher.EXPECT().PublishReminderDispatched(gomock.Any(), gomock.Any()).Return(nil)

	out, err := f.useCase.DispatchDue(context.Background(), app.DispatchDueInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.DueJobs)
	assert.Equal(t, 1, out.SentCount)
	assert.True(t, f.job(t, "u1", "t1").IsPending())
	assert.Equal(t, domain.JobStatusSent, f.job(t, "u2", "t2").Status())
}

func TestDispatchSkipsMarkWhenJobReplaced(t *testing.T) {
	f := setupDispatchTest(t, "")
	f.addJob(t, "u1", "t1", dispatchScheduledAt)
	f.addDevice(t, "u1", "ExponentPushToken[a]")

	f.sender.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, []domain.PushMessage) ([]domain.PushTicket, error) {
			// a sync lands while the push is in flight
			f.addJob(t, "u1", "t1", dispatchScheduledAt.Add(2*time.Hour))

			return []domain.PushTicket{{Status: domain.PushStatusOK}}, nil
		})

	out, err := f.useCase.DispatchDue(context.Background(), app.DispatchDueInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.SentCount)

	job := f.job(t, "u1", "t1")
	assert.True(t, job.IsPending())
	assert.True(t, job.ScheduledAt().Equal(dispatchScheduledAt.Add(2*time.Hour)))
}

func TestDispatchPublishFailureIsTolerated(t *testing.T) {
	f := setupDispatchTest(t, "")
	f.addJob(t, "u1", "t1", dispatchScheduledAt)
	f.addDevice(t, "u1", "ExponentPushToken[a]")

	f.sender.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return([]domain.PushTicket{{Status: domain.PushStatusOK}}, nil)
	f.publisher.EXPECT().
		PublishReminderDispatched(gomock.Any(), gomock.Any()).
		Return(errors.New("nats unavailable"))

	out, err := f.useCase.DispatchDue(context.Background(), app.DispatchDueInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.SentCount)
}

func TestDispatchDropsOverlappingPass(t *testing.T) {
	f := setupDispatchTest(t, "")
	f.addJob(t, "u1", "t1", dispatchScheduledAt)
	f.addDevice(t, "u1", "ExponentPushToken[a]")

	entered := make(chan struct{})
	release := make(chan struct{})

	f.sender.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, []domain.PushMessage) ([]domain.PushTicket, error) {
			close(entered)
			<-release

			return []domain.PushTicket{{Status: domain.PushStatusOK}}, nil
		}).
		Times(1)
	f.publisher.EXPECT().PublishReminderDispatched(gomock.Any(), gomock.Any()).Return(nil)

	first := make(chan app.DispatchDueOutput, 1)

	go func() {
		out, err := f.useCase.DispatchDue(context.Background(), app.DispatchDueInput{})
		assert.NoError(t, err)
		first <- out
	}()

	<-entered

	out, err := f.useCase.DispatchDue(context.Background(), app.DispatchDueInput{})
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Zero(t, out.DueJobs)
	assert.Zero(t, out.SentCount)

	close(release)

	firstOut := <-first
	assert.False(t, firstOut.Skipped)
	assert.Equal(t, 1, firstOut.DueJobs)
	assert.Equal(t, 1, firstOut.SentCount)
	assert.Equal(t, domain.JobStatusSent, f.job(t, "u1", "t1").Status())

	out, err = f.useCase.DispatchDue(context.Background(), app.DispatchDueInput{})
	require.NoError(t, err)
	assert.False(t, out.Skipped)
	assert.Zero(t, out.DueJobs)
}

func TestDispatchSecretSuccess(t *testing.T) {
	f := setupDispatchTest(t, "s3cret")

	out, err := f.useCase.DispatchDue(context.Background(), app.DispatchDueInput{Secret: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.DueJobs)
}

func TestDispatchSecretError(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{name: "missing secret", secret: ""},
		{name: "wrong secret", secret: "guess"},
		{name: "prefix of secret", secret: "s3c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupDispatchTest(t, "s3cret")
			f.addJob(t, "u1", "t1", dispatchScheduledAt)
			f.addDevice(t, "u1", "ExponentPushToken[a]")

			_, err := f.useCase.DispatchDue(context.Background(), app.DispatchDueInput{Secret: tt.secret})

			assert.ErrorIs(t, err, app.ErrUnauthorized)
			assert.True(t, f.job(t, "u1", "t1").IsPending())
		})
	}
}
