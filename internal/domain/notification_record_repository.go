package domain

import "context"

type NotificationRecordRepository interface {
	ListByUser(ctx context.Context, userID UserID) ([]*NotificationRecord, error)
	FindByTaskID(ctx context.Context, taskID TaskID) (*NotificationRecord, error)
	// Save inserts the record or replaces the one holding the same task ID.
	Save(ctx context.Context, record *NotificationRecord) error
	DeleteByTaskID(ctx context.Context, taskID TaskID) error
}
