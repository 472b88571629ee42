package domain

import (
	"context"
	"time"
)

type ReminderJobRepository interface {
	// Save writes the job into its key slot, replacing whatever was there.
	Save(ctx context.Context, job *ReminderJob) error
	Find(ctx context.Context, userID UserID, taskID TaskID) (*ReminderJob, error)
	ListByUser(ctx context.Context, userID UserID) ([]*ReminderJob, error)
	FindDue(ctx context.Context, now time.Time) ([]*ReminderJob, error)
	WithTx(ctx context.Context, fn func(repo ReminderJobRepository) error) error
}
