package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/infra/scheduler"
)

const ackTimeout = 5 * time.Second

// AcknowledgeFunc records that the notification for a task reached the user.
type AcknowledgeFunc func(ctx context.Context, taskID string, at time.Time) error

// PresentedHandler logs each presented notification and acknowledges it.
func PresentedHandler(ack AcknowledgeFunc) scheduler.Notifier {
	return func(p scheduler.Presented) {
		ctx, cancel := context.WithTimeout(context.Background(), ackTimeout)
		defer cancel()

		slog.InfoContext(ctx, "notification presented",
			"task_id", p.Content.TaskID.String(),
			"title", p.Content.Title,
			"body", p.Content.Body,
			"handle", string(p.Handle),
		)

		if err := ack(ctx, p.Content.TaskID.String(), p.FiredAt); err != nil {
			slog.WarnContext(ctx, "failed to acknowledge delivery",
				"task_id", p.Content.TaskID.String(),
				"error", err.Error(),
			)
		}
	}
}
