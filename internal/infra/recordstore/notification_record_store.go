package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

// fixed width so lexical order on the column matches time order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type recordRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	TaskID    string         `db:"task_id"`
	NotifyAt  string         `db:"notify_at"`
	SentAt    sql.NullString `db:"sent_at"`
	ReadAt    sql.NullString `db:"read_at"`
	Handle    sql.NullString `db:"scheduling_handle"`
	CreatedAt string         `db:"created_at"`
	UpdatedAt string         `db:"updated_at"`
}

const selectColumns = `id, user_id, task_id, notify_at, sent_at, read_at, scheduling_handle, created_at, updated_at`

func (s *SQLiteStore) ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.NotificationRecord, error) {
	var rows []recordRow

	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+selectColumns+` FROM task_notifications WHERE user_id = ? ORDER BY notify_at DESC`,
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing notification records: %w", err)
	}

	records := make([]*domain.NotificationRecord, 0, len(rows))

	for _, row := range rows {
		record, err := row.toEntity()
		if err != nil {
			return nil, fmt.Errorf("decoding record %s: %w", row.ID, err)
		}

		records = append(records, record)
	}

	return records, nil
}

func (s *SQLiteStore) FindByTaskID(ctx context.Context, taskID domain.TaskID) (*domain.NotificationRecord, error) {
	var row recordRow

	err := s.db.GetContext(ctx, &row,
		`SELECT `+selectColumns+` FROM task_notifications WHERE task_id = ?`,
		taskID.String(),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, fmt.Errorf("finding notification record: %w", err)
	}

	return row.toEntity()
}

// Save upserts on task_id. The stored id and created_at survive a replace.
func (s *SQLiteStore) Save(ctx context.Context, record *domain.NotificationRecord) error {
	row := fromEntity(record)

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO task_notifications (
			id, user_id, task_id, notify_at, sent_at, read_at,
			scheduling_handle, created_at, updated_at
		) VALUES (
			:id, :user_id, :task_id, :notify_at, :sent_at, :read_at,
			:scheduling_handle, :created_at, :updated_at
		)
		ON CONFLICT(task_id) DO UPDATE SET
			user_id = excluded.user_id,
			notify_at = excluded.notify_at,
			sent_at = excluded.sent_at,
			read_at = excluded.read_at,
			scheduling_handle = excluded.scheduling_handle,
			updated_at = excluded.updated_at`,
		row,
	)
	if err != nil {
		return fmt.Errorf("saving notification record: %w", err)
	}

	return nil
}

func (s *SQLiteStore) DeleteByTaskID(ctx context.Context, taskID domain.TaskID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM task_notifications WHERE task_id = ?`,
		taskID.String(),
	); err != nil {
		return fmt.Errorf("deleting notification record: %w", err)
	}

	return nil
}

func fromEntity(r *domain.NotificationRecord) recordRow {
	return recordRow{
		ID:        r.ID().String(),
		UserID:    r.UserID().String(),
		TaskID:    r.TaskID().String(),
		NotifyAt:  formatTime(r.NotifyAt()),
		SentAt:    formatNullTime(r.SentAt()),
		ReadAt:    formatNullTime(r.ReadAt()),
		Handle:    sql.NullString{String: string(r.Handle()), Valid: !r.Handle().IsZero()},
		CreatedAt: formatTime(r.CreatedAt()),
		UpdatedAt: formatTime(r.UpdatedAt()),
	}
}

func (row recordRow) toEntity() (*domain.NotificationRecord, error) {
	id, err := domain.RecordIDFromString(row.ID)
	if err != nil {
		return nil, err
	}

	userID, err := domain.UserIDFromString(row.UserID)
	if err != nil {
		return nil, err
	}

	taskID, err := domain.TaskIDFromString(row.TaskID)
	if err != nil {
		return nil, err
	}

	notifyAt, err := parseTime(row.NotifyAt)
	if err != nil {
		return nil, err
	}

	sentAt, err := parseNullTime(row.SentAt)
	if err != nil {
		return nil, err
	}

	readAt, err := parseNullTime(row.ReadAt)
	if err != nil {
		return nil, err
	}

	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return nil, err
	}

	updatedAt, err := parseTime(row.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return domain.ReconstituteNotificationRecord(
		id,
		userID,
		taskID,
		notifyAt,
		sentAt,
		readAt,
		domain.SchedulingHandle(row.Handle.String),
		createdAt,
		updatedAt,
	), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}

	return t.UTC(), nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil //nolint:nilnil
	}

	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
