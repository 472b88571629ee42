package app

import (
	"context"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type ReconcileOutput struct {
	// Skipped is set when another pass for the same user was already running.
	Skipped   bool
	Created   int
	Scheduled int
	Fired     int
	Deleted   int
}

type ReconcileUseCase interface {
	Reconcile(ctx context.Context, userID string) (ReconcileOutput, error)
	ReconcileTasks(ctx context.Context, userID string, tasks []domain.Task) (ReconcileOutput, error)
	ResetTask(ctx context.Context, taskID string) error
	AcknowledgeDelivery(ctx context.Context, taskID string, at time.Time) error
	MarkRead(ctx context.Context, taskID string, at time.Time) error
	ListRecords(ctx context.Context, userID string) ([]NotificationRecordOutput, error)
}
