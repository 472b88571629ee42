package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/pubsub"
)

const (
	dispatchTracerName = "primind-task-reminder/dispatch"
	dispatchPassKey    = "dispatch"
)

type dispatchUseCaseImpl struct {
	jobs      domain.ReminderJobRepository
	devices   domain.PushDeviceRepository
	sender    domain.PushSender
	publisher pubsub.Publisher
	cfg       DispatchConfig
	clock     Clock
	tracer    trace.Tracer
	guard     *inFlightGuard
}

func NewDispatchUseCase(
	jobs domain.ReminderJobRepository,
	devices domain.PushDeviceRepository,
	sender domain.PushSender,
	publisher pubsub.Publisher,
	cfg DispatchConfig,
	opts ...Option,
) DispatchUseCase {
	o := buildOptions(opts)

	if publisher == nil {
		publisher = pubsub.NoopPublisher{}
	}

	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = DefaultPushTimeout
	}

	return &dispatchUseCaseImpl{
		jobs:      jobs,
		devices:   devices,
		sender:    sender,
		publisher: publisher,
		cfg:       cfg,
		clock:     o.clock,
		tracer:    otel.Tracer(dispatchTracerName),
		guard:     newInFlightGuard(),
	}
}

// jobOutcome summarizes one job's dispatch attempt.
type jobOutcome struct {
	sent        bool
	tried       int
	delivered   int
	deactivated int
}

func (uc *dispatchUseCaseImpl) DispatchDue(ctx context.Context, input DispatchDueInput) (DispatchDueOutput, error) {
	if err := uc.authorize(input.Secret); err != nil {
		slog.WarnContext(ctx, "dispatch rejected",
			"reason", err.Error(),
		)

		return DispatchDueOutput{}, err
	}

	// a pass already pushing would race this one to the same due jobs
	if !uc.guard.tryAcquire(dispatchPassKey) {
		slog.InfoContext(ctx, "dispatch pass already running, dropping trigger")

		return DispatchDueOutput{Skipped: true}, nil
	}
	defer uc.guard.release(dispatchPassKey)

	now := uc.clock()

	ctx, span := uc.tracer.Start(ctx, "DispatchDue")
	defer span.End()

	due, err := uc.jobs.FindDue(ctx, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find due jobs")

		slog.ErrorContext(ctx, "failed to find due reminder jobs",
			"error", err,
		)

		return DispatchDueOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	span.SetAttributes(attribute.Int("reminder.due_jobs", len(due)))

	if uc.cfg.Metrics != nil {
		uc.cfg.Metrics.RecordDue(ctx, len(due))
	}

	var sentCount int

	for _, job := range due {
		outcome, err := uc.dispatchJob(ctx, job, now)
		if err != nil {
			// only this job is affected; it stays pending for the next pass
			slog.WarnContext(ctx, "reminder job dispatch failed",
				"error", err,
				"user_id", job.UserID().String(),
				"task_id", job.TaskID().String(),
			)

			continue
		}

		if outcome.sent {
			sentCount++
		}
	}

	span.SetAttributes(attribute.Int("reminder.sent_jobs", sentCount))

	slog.InfoContext(ctx, "dispatch pass completed",
		"due_jobs", len(due),
		"sent_count", sentCount,
	)

	return DispatchDueOutput{
		DueJobs:   len(due),
		SentCount: sentCount,
	}, nil
}

func (uc *dispatchUseCaseImpl) authorize(secret string) error {
	if uc.cfg.Secret == "" {
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(secret), []byte(uc.cfg.Secret)) != 1 {
		return NewAuthorizationError("dispatch secret mismatch")
	}

	return nil
}

func (uc *dispatchUseCaseImpl) dispatchJob(ctx context.Context, job *domain.ReminderJob, now time.Time) (jobOutcome, error) {
	ctx, span := uc.tracer.Start(ctx, "DispatchJob", trace.WithAttributes(
		attribute.String("reminder.user_id", job.UserID().String()),
		attribute.String("reminder.task_id", job.TaskID().String()),
	))
	defer span.End()

	var outcome jobOutcome

	devices, err := uc.devices.ListActiveByUser(ctx, job.UserID())
	if err != nil {
		uc.recordFailure(ctx, span, "devices", err)

		return outcome, fmt.Errorf("list active devices: %w", err)
	}

	if len(devices) == 0 {
		slog.DebugContext(ctx, "no active devices, leaving job pending",
			"user_id", job.UserID().String(),
			"task_id", job.TaskID().String(),
		)

		return outcome, nil
	}

	messages := buildPushMessages(job, devices)
	outcome.tried = len(messages)

	sendCtx, cancel := context.WithTimeout(ctx, uc.cfg.PushTimeout)
	tickets, err := uc.sender.Send(sendCtx, messages)
	cancel()

	if err != nil {
		uc.recordFailure(ctx, span, "transport", err)

		return outcome, fmt.Errorf("push send: %w", err)
	}

	for i, ticket := range tickets {
		if ticket.OK() {
			outcome.delivered++

			continue
		}

		if !ticket.IsDeviceNotRegistered() || i >= len(messages) {
			slog.DebugContext(ctx, "push ticket reported error",
				"task_id", job.TaskID().String(),
				"error_code", ticket.ErrorCode,
				"message", ticket.Message,
			)

			continue
		}

		affected, err := uc.devices.DeactivateToken(ctx, messages[i].To, now)
		if err != nil {
			slog.WarnContext(ctx, "failed to deactivate unregistered push token",
				"error", err,
				"user_id", job.UserID().String(),
			)

			continue
		}

		outcome.deactivated++

		if uc.cfg.Metrics != nil {
			uc.cfg.Metrics.RecordDeactivated(ctx, affected)
		}

		slog.InfoContext(ctx, "push token deactivated",
			"user_id", job.UserID().String(),
			"affected", affected,
		)
	}

	span.SetAttributes(
		attribute.Int("push.tried", outcome.tried),
		attribute.Int("push.delivered", outcome.delivered),
		attribute.Int("push.deactivated", outcome.deactivated),
	)

	if outcome.delivered == 0 {
		if uc.cfg.Metrics != nil {
			uc.cfg.Metrics.RecordFailed(ctx, "undelivered")
		}

		return outcome, nil
	}

	marked, err := uc.markSent(ctx, job, now)
	if err != nil {
		uc.recordFailure(ctx, span, "mark_sent", err)

		return outcome, fmt.Errorf("mark sent: %w", err)
	}

	outcome.sent = marked
	if !marked {
		slog.InfoContext(ctx, "job replaced during dispatch, not marking sent",
			"user_id", job.UserID().String(),
			"task_id", job.TaskID().String(),
		)

		return outcome, nil
	}

	if uc.cfg.Metrics != nil {
		uc.cfg.Metrics.RecordSent(ctx)
	}

	uc.publish(ctx, job, now, outcome)

	return outcome, nil
}

// markSent marks the stored job sent unless a sync replaced or cancelled it
// while the push was in flight.
func (uc *dispatchUseCaseImpl) markSent(ctx context.Context, job *domain.ReminderJob, now time.Time) (bool, error) {
	var marked bool

	err := uc.jobs.WithTx(ctx, func(repo domain.ReminderJobRepository) error {
		current, err := repo.Find(ctx, job.UserID(), job.TaskID())
		if err != nil {
			if errors.Is(err, domain.ErrJobNotFound) {
				return nil
			}

			return err
		}

		if !current.IsPending() || !current.SameVersion(job) {
			return nil
		}

		if err := current.MarkSent(now); err != nil {
			return err
		}

		if err := repo.Save(ctx, current); err != nil {
			return err
		}

		marked = true

		return nil
	})

	return marked, err
}

func (uc *dispatchUseCaseImpl) publish(ctx context.Context, job *domain.ReminderJob, now time.Time, outcome jobOutcome) {
	event := pubsub.ReminderDispatchedEvent{
		UserID:       job.UserID().String(),
		TaskID:       job.TaskID().String(),
		ScheduledAt:  job.ScheduledAt(),
		NotifyAt:     job.NotifyAt(),
		SentAt:       now,
		DevicesTried: outcome.tried,
		Delivered:    outcome.delivered,
		Deactivated:  outcome.deactivated,
	}

	if err := uc.publisher.PublishReminderDispatched(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish reminder dispatched event",
			"error", err,
			"task_id", event.TaskID,
		)
	}
}

func (uc *dispatchUseCaseImpl) recordFailure(ctx context.Context, span trace.Span, reason string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)

	if uc.cfg.Metrics != nil {
		uc.cfg.Metrics.RecordFailed(ctx, reason)
	}
}

func buildPushMessages(job *domain.ReminderJob, devices []*domain.PushDevice) []domain.PushMessage {
	messages := make([]domain.PushMessage, 0, len(devices))

	for _, device := range devices {
		messages = append(messages, domain.PushMessage{
			To:       device.Token(),
			Title:    "🔔 Reminder: 1 Hour Left",
			Subtitle: fmt.Sprintf("Up next: %s", job.Title()),
			Body:     fmt.Sprintf("Heads up - starts at %s.", job.ScheduledAt().UTC().Format("3:04 PM")),
			Sound:    "default",
			TaskID:   job.TaskID(),
		})
	}

	return messages
}
