package recordstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/recordstore"
)

var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *recordstore.SQLiteStore {
	t.Helper()

	store, err := recordstore.Open(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func mustUser(t *testing.T, s string) domain.UserID {
	t.Helper()

	id, err := domain.UserIDFromString(s)
	require.NoError(t, err)

	return id
}

func TestSaveAndFindSuccess(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	record := domain.NewNotificationRecord(mustUser(t, "u1"), domain.MustTaskID("t1"), base.Add(time.Hour), base)
	require.NoError(t, record.AttachHandle("handle-1", base))
	require.NoError(t, store.Save(ctx, record))

	found, err := store.FindByTaskID(ctx, domain.MustTaskID("t1"))
	require.NoError(t, err)

	assert.True(t, found.ID().Equals(record.ID()))
	assert.True(t, found.NotifyAt().Equal(base.Add(time.Hour)))
	assert.Equal(t, domain.SchedulingHandle("handle-1"), found.Handle())
	assert.Nil(t, found.SentAt())
	assert.Nil(t, found.ReadAt())
}

func TestSaveReplacesByTaskID(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	record := domain.NewNotificationRecord(mustUser(t, "u1"), domain.MustTaskID("t1"), base, base)
	require.NoError(t, store.Save(ctx, record))

	replacement := domain.NewNotificationRecord(mustUser(t, "u1"), domain.MustTaskID("t1"), base.Add(time.Hour), base.Add(time.Minute))
	require.NoError(t, replacement.MarkSent(base.Add(2*time.Minute)))
	require.NoError(t, store.Save(ctx, replacement))

	found, err := store.FindByTaskID(ctx, domain.MustTaskID("t1"))
	require.NoError(t, err)

	assert.True(t, found.ID().Equals(record.ID()))
	assert.True(t, found.CreatedAt().Equal(base))
	assert.True(t, found.NotifyAt().Equal(base.Add(time.Hour)))
	require.NotNil(t, found.SentAt())
	assert.True(t, found.SentAt().Equal(base.Add(2*time.Minute)))
	assert.False(t, found.HasHandle())

	records, err := store.ListByUser(ctx, mustUser(t, "u1"))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestListByUserOrdering(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	notifyTimes := []time.Time{
		base,
		base.Add(500 * time.Millisecond),
		base.Add(time.Hour),
	}

	for i, at := range notifyTimes {
		taskID := domain.MustTaskID([]string{"a", "b", "c"}[i])
		require.NoError(t, store.Save(ctx, domain.NewNotificationRecord(mustUser(t, "u1"), taskID, at, base)))
	}

	require.NoError(t, store.Save(ctx, domain.NewNotificationRecord(mustUser(t, "u2"), domain.MustTaskID("z"), base, base)))

	records, err := store.ListByUser(ctx, mustUser(t, "u1"))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "c", records[0].TaskID().String())
	assert.Equal(t, "b", records[1].TaskID().String())
	assert.Equal(t, "a", records[2].TaskID().String())
}

func TestDeleteByTaskIDSuccess(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewNotificationRecord(mustUser(t, "u1"), domain.MustTaskID("t1"), base, base)))
	require.NoError(t, store.DeleteByTaskID(ctx, domain.MustTaskID("t1")))
	require.NoError(t, store.DeleteByTaskID(ctx, domain.MustTaskID("t1")))

	_, err := store.FindByTaskID(ctx, domain.MustTaskID("t1"))
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestOpenFileReopensWithData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "records.db")
	ctx := context.Background()

	store, err := recordstore.Open(path)
	require.NoError(t, err)

	record := domain.NewNotificationRecord(mustUser(t, "u1"), domain.MustTaskID("t1"), base, base)
	record.MarkRead(base.Add(time.Minute))
	require.NoError(t, store.Save(ctx, record))
	require.NoError(t, store.Close())

	reopened, err := recordstore.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	found, err := reopened.FindByTaskID(ctx, domain.MustTaskID("t1"))
	require.NoError(t, err)
	require.NotNil(t, found.ReadAt())
	assert.True(t, found.ReadAt().Equal(base.Add(time.Minute)))
}
