package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-reminder/internal/agent"
	"github.com/KasumiMercury/primind-task-reminder/internal/app"
	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/memstore"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/scheduler"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/tasksource"
)

type fakeSyncer struct {
	mu    sync.Mutex
	calls [][]domain.Task
	err   error
}

func (s *fakeSyncer) SyncUser(_ context.Context, _ string, tasks []domain.Task) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, tasks)
	if s.err != nil {
		return 0, s.err
	}

	return len(tasks), nil
}

func (s *fakeSyncer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

func writeTasks(t *testing.T, path string, ids ...string) {
	t.Helper()

	type entry struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		ScheduledAt time.Time `json:"scheduledAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
		IsCompleted bool      `json:"isCompleted"`
	}

	now := time.Now().UTC()
	entries := make([]entry, 0, len(ids))

	for i, id := range ids {
		entries = append(entries, entry{
			ID:          id,
			Title:       "Task " + id,
			ScheduledAt: now.Add(time.Duration(i+3) * time.Hour),
			UpdatedAt:   now.Add(-time.Minute),
		})
	}

	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))
}

type agentFixture struct {
	agent     *agent.Agent
	reconcile app.ReconcileUseCase
	syncer    *fakeSyncer
	path      string
}

func setupAgent(t *testing.T) *agentFixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tasks.json")
	tasks := tasksource.NewFile(path)

	f := &agentFixture{
		reconcile: app.NewReconcileUseCase(memstore.NewNotificationRecordStore(), scheduler.Noop{}, tasks),
		syncer:    &fakeSyncer{},
		path:      path,
	}

	a, err := agent.New(agent.Config{
		UserID:    "u1",
		TasksFile: path,
		Debounce:  20 * time.Millisecond,
	}, f.reconcile, tasks, f.syncer)
	require.NoError(t, err)

	f.agent = a

	return f
}

func (f *agentFixture) recordCount(t *testing.T) int {
	t.Helper()

	records, err := f.reconcile.ListRecords(context.Background(), "u1")
	require.NoError(t, err)

	return len(records)
}

func TestRunPassSuccess(t *testing.T) {
	tests := []struct {
		name        string
		ids         []string
		syncErr     error
		wantCreated int
	}{
		{
			name:        "creates records and syncs",
			ids:         []string{"t1", "t2"},
			wantCreated: 2,
		},
		{
			name:        "sync failure does not fail the pass",
			ids:         []string{"t1"},
			syncErr:     errors.New("connection refused"),
			wantCreated: 1,
		},
		{
			name:        "empty task list",
			ids:         nil,
			wantCreated: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupAgent(t)
			f.syncer.err = tt.syncErr
			writeTasks(t, f.path, tt.ids...)

			out, err := f.agent.RunPass(context.Background(), agent.TriggerForeground)

			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, out.Created)
			assert.Equal(t, tt.wantCreated, f.recordCount(t))
			require.Equal(t, 1, f.syncer.count())
			assert.Len(t, f.syncer.calls[0], len(tt.ids))
		})
	}
}

func TestRunPassError(t *testing.T) {
	f := setupAgent(t)
	require.NoError(t, os.WriteFile(f.path, []byte("{not json"), 0o600))

	_, err := f.agent.RunPass(context.Background(), agent.TriggerStart)

	assert.Error(t, err)
	assert.Zero(t, f.syncer.count())
}

func TestNewError(t *testing.T) {
	_, err := agent.New(agent.Config{UserID: "  "}, nil, nil, nil)

	assert.Error(t, err)
}

func TestRunTriggersSuccess(t *testing.T) {
	f := setupAgent(t)
	writeTasks(t, f.path, "t1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- f.agent.Run(ctx)
	}()

	assert.Eventually(t, func() bool { return f.syncer.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, f.recordCount(t))

	writeTasks(t, f.path, "t1", "t2", "t3")

	assert.Eventually(t, func() bool { return f.recordCount(t) == 3 }, 2*time.Second, 10*time.Millisecond)

	before := f.syncer.count()
	f.agent.Trigger(agent.TriggerForeground)

	assert.Eventually(t, func() bool { return f.syncer.count() > before }, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not stop")
	}
}

func TestPresentedHandlerSuccess(t *testing.T) {
	taskID, err := domain.TaskIDFromString("t1")
	require.NoError(t, err)

	firedAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		ackErr error
	}{
		{name: "acknowledged"},
		{name: "acknowledge failure is swallowed", ackErr: errors.New("db locked")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			var gotAt time.Time

			notify := agent.PresentedHandler(func(_ context.Context, id string, at time.Time) error {
				gotID, gotAt = id, at

				return tt.ackErr
			})

			notify(scheduler.Presented{
				Handle:  "h1",
				Content: domain.NotificationContent{Title: "Upcoming Task", TaskID: taskID},
				FiredAt: firedAt,
			})

			assert.Equal(t, "t1", gotID)
			assert.True(t, firedAt.Equal(gotAt))
		})
	}
}
