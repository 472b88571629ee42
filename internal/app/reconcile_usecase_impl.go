package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type reconcileUseCaseImpl struct {
	records   domain.NotificationRecordRepository
	scheduler domain.LocalScheduler
	tasks     domain.TaskSource
	guard     *inFlightGuard
	clock     Clock
}

func NewReconcileUseCase(
	records domain.NotificationRecordRepository,
	scheduler domain.LocalScheduler,
	tasks domain.TaskSource,
	opts ...Option,
) ReconcileUseCase {
	o := buildOptions(opts)

	return &reconcileUseCaseImpl{
		records:   records,
		scheduler: scheduler,
		tasks:     tasks,
		guard:     newInFlightGuard(),
		clock:     o.clock,
	}
}

// reconcilePass carries what one pass learned up front from the scheduler.
type reconcilePass struct {
	userID     domain.UserID
	now        time.Time
	permission bool
	delivered  map[string]struct{}

	// invalidated holds tasks restarted this pass; their deliveries are stale.
	invalidated map[string]struct{}
	out         ReconcileOutput
}

func (p *reconcilePass) deliveredFor(taskID domain.TaskID) bool {
	if _, ok := p.invalidated[taskID.String()]; ok {
		return false
	}

	_, ok := p.delivered[taskID.String()]

	return ok
}

func (uc *reconcileUseCaseImpl) Reconcile(ctx context.Context, userID string) (ReconcileOutput, error) {
	return uc.guarded(ctx, userID, func(id domain.UserID) ([]domain.Task, error) {
		tasks, err := uc.tasks.List(ctx, id)
		if err != nil {
			slog.Error("failed to list tasks",
				"error", err,
				"user_id", id.String(),
			)

			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}

		return tasks, nil
	})
}

func (uc *reconcileUseCaseImpl) ReconcileTasks(ctx context.Context, userID string, tasks []domain.Task) (ReconcileOutput, error) {
	return uc.guarded(ctx, userID, func(domain.UserID) ([]domain.Task, error) {
		return tasks, nil
	})
}

func (uc *reconcileUseCaseImpl) guarded(
	ctx context.Context,
	rawUserID string,
	load func(domain.UserID) ([]domain.Task, error),
) (ReconcileOutput, error) {
	userID, err := domain.UserIDFromString(rawUserID)
	if err != nil {
		return ReconcileOutput{}, NewValidationError("userId", err.Error())
	}

	if !uc.guard.tryAcquire(userID.String()) {
		slog.Debug("reconciliation already in flight, dropping trigger",
			"user_id", userID.String(),
		)

		return ReconcileOutput{Skipped: true}, nil
	}
	defer uc.guard.release(userID.String())

	tasks, err := load(userID)
	if err != nil {
		return ReconcileOutput{}, err
	}

	return uc.reconcile(ctx, userID, tasks)
}

func (uc *reconcileUseCaseImpl) reconcile(ctx context.Context, userID domain.UserID, tasks []domain.Task) (ReconcileOutput, error) {
	slog.Debug("reconciling notifications",
		"user_id", userID.String(),
		"tasks_count", len(tasks),
	)

	pass := &reconcilePass{
		userID:      userID,
		now:         uc.clock(),
		permission:  uc.hasPermission(ctx),
		delivered:   uc.deliveredTaskIDs(ctx),
		invalidated: make(map[string]struct{}),
	}

	existing, err := uc.records.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("failed to load notification records",
			"error", err,
			"user_id", userID.String(),
		)

		return pass.out, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	present := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		present[task.ID.String()] = struct{}{}
	}

	byTask := make(map[string]*domain.NotificationRecord, len(existing))

	for _, record := range existing {
		if _, ok := present[record.TaskID().String()]; ok {
			byTask[record.TaskID().String()] = record

			continue
		}

		uc.cancelHandle(ctx, record.Handle())

		if err := uc.records.DeleteByTaskID(ctx, record.TaskID()); err != nil {
			return pass.out, uc.storeFailure("delete orphaned record", record.TaskID(), err)
		}

		pass.out.Deleted++
	}

	for _, task := range tasks {
		record := byTask[task.ID.String()]

		if task.IsCompleted {
			err = uc.reconcileCompleted(ctx, pass, task, record)
		} else {
			err = uc.reconcileActive(ctx, pass, task, record)
		}

		if err != nil {
			return pass.out, err
		}
	}

	slog.Debug("notifications reconciled",
		"user_id", userID.String(),
		"created", pass.out.Created,
		"scheduled", pass.out.Scheduled,
		"fired", pass.out.Fired,
		"deleted", pass.out.Deleted,
	)

	return pass.out, nil
}

func (uc *reconcileUseCaseImpl) reconcileCompleted(
	ctx context.Context,
	pass *reconcilePass,
	task domain.Task,
	record *domain.NotificationRecord,
) error {
	if record == nil {
		return nil
	}

	uc.cancelHandle(ctx, record.Handle())

	// the reminder is moot if it never reached its notify time
	if pass.now.Before(record.NotifyAt()) {
		if err := uc.records.DeleteByTaskID(ctx, task.ID); err != nil {
			return uc.storeFailure("delete completed task record", task.ID, err)
		}

		pass.out.Deleted++

		return nil
	}

	if !record.HasHandle() {
		return nil
	}

	record.ClearHandle(pass.now)

	if err := uc.records.Save(ctx, record); err != nil {
		return uc.storeFailure("clear handle", task.ID, err)
	}

	return nil
}

func (uc *reconcileUseCaseImpl) reconcileActive(
	ctx context.Context,
	pass *reconcilePass,
	task domain.Task,
	record *domain.NotificationRecord,
) error {
	notifyAt := domain.NotifyAtFor(task.ScheduledAt)

	switch {
	case record == nil:
		record = domain.NewNotificationRecord(pass.userID, task.ID, notifyAt, pass.now)

		if err := uc.records.Save(ctx, record); err != nil {
			return uc.storeFailure("create record", task.ID, err)
		}

		pass.out.Created++

	case !record.NotifyAt().Equal(notifyAt) || task.UpdatedAt.After(record.UpdatedAt()):
		// schedule moved or task edited since the last decision: start over
		uc.cancelHandle(ctx, record.Handle())
		record.Invalidate(notifyAt, pass.now)

		if err := uc.records.Save(ctx, record); err != nil {
			return uc.storeFailure("invalidate record", task.ID, err)
		}

		pass.invalidated[task.ID.String()] = struct{}{}
	}

	if !task.ScheduledAt.After(pass.now) {
		return nil
	}

	if record.IsSent() {
		return nil
	}

	if domain.InDueWindow(notifyAt, task.ScheduledAt, pass.now) {
		return uc.fireDue(ctx, pass, task, record)
	}

	if !pass.permission || record.HasHandle() {
		return nil
	}

	handle, err := uc.scheduler.Schedule(ctx, contentFor(task), notifyAt)
	if err != nil {
		slog.Warn("failed to schedule notification, will retry next pass",
			"error", err,
			"task_id", task.ID.String(),
			"notify_at", notifyAt,
		)

		return nil
	}

	if err := record.AttachHandle(handle, pass.now); err != nil {
		slog.Warn("scheduler returned unusable handle",
			"error", err,
			"task_id", task.ID.String(),
		)

		return nil
	}

	if err := uc.records.Save(ctx, record); err != nil {
		// the alarm exists but its handle would be lost
		uc.cancelHandle(ctx, handle)

		return uc.storeFailure("attach handle", task.ID, err)
	}

	pass.out.Scheduled++

	return nil
}

func (uc *reconcileUseCaseImpl) fireDue(
	ctx context.Context,
	pass *reconcilePass,
	task domain.Task,
	record *domain.NotificationRecord,
) error {
	if pass.deliveredFor(task.ID) {
		if err := record.MarkSent(pass.now); err != nil {
			return nil
		}

		if err := uc.records.Save(ctx, record); err != nil {
			return uc.storeFailure("mark delivered record sent", task.ID, err)
		}

		slog.Debug("notification already delivered, marked sent",
			"task_id", task.ID.String(),
		)

		return nil
	}

	if !pass.permission {
		return nil
	}

	handle, err := uc.scheduler.ScheduleImmediate(ctx, contentFor(task))
	if err != nil {
		slog.Warn("failed to present notification, will retry next pass",
			"error", err,
			"task_id", task.ID.String(),
		)

		return nil
	}

	if err := record.MarkSent(pass.now); err != nil {
		return nil
	}

	if err := uc.records.Save(ctx, record); err != nil {
		return uc.storeFailure("mark fired record sent", task.ID, err)
	}

	pass.out.Fired++

	slog.Info("notification fired",
		"task_id", task.ID.String(),
		"handle", string(handle),
	)

	return nil
}

func (uc *reconcileUseCaseImpl) ResetTask(ctx context.Context, taskID string) error {
	record, err := uc.findRecord(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}

		return err
	}

	uc.cancelHandle(ctx, record.Handle())
	record.Invalidate(record.NotifyAt(), uc.clock())

	if err := uc.records.Save(ctx, record); err != nil {
		return uc.storeFailure("reset record", record.TaskID(), err)
	}

	slog.Debug("notification reset",
		"task_id", taskID,
	)

	return nil
}

func (uc *reconcileUseCaseImpl) AcknowledgeDelivery(ctx context.Context, taskID string, at time.Time) error {
	record, err := uc.findRecord(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}

		return err
	}

	if record.IsSent() {
		return nil
	}

	if err := record.MarkSent(at); err != nil {
		return nil
	}

	if err := uc.records.Save(ctx, record); err != nil {
		return uc.storeFailure("acknowledge delivery", record.TaskID(), err)
	}

	slog.Debug("notification delivery acknowledged",
		"task_id", taskID,
	)

	return nil
}

func (uc *reconcileUseCaseImpl) MarkRead(ctx context.Context, taskID string, at time.Time) error {
	record, err := uc.findRecord(ctx, taskID)
	if err != nil {
		return err
	}

	record.MarkRead(at)

	if err := uc.records.Save(ctx, record); err != nil {
		return uc.storeFailure("mark read", record.TaskID(), err)
	}

	return nil
}

func (uc *reconcileUseCaseImpl) ListRecords(ctx context.Context, userID string) ([]NotificationRecordOutput, error) {
	id, err := domain.UserIDFromString(userID)
	if err != nil {
		return nil, NewValidationError("userId", err.Error())
	}

	records, err := uc.records.ListByUser(ctx, id)
	if err != nil {
		slog.Error("failed to list notification records",
			"error", err,
			"user_id", userID,
		)

		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return FromRecords(records), nil
}

func (uc *reconcileUseCaseImpl) findRecord(ctx context.Context, rawTaskID string) (*domain.NotificationRecord, error) {
	taskID, err := domain.TaskIDFromString(rawTaskID)
	if err != nil {
		return nil, NewValidationError("taskId", err.Error())
	}

	record, err := uc.records.FindByTaskID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}

		slog.Error("failed to find notification record",
			"error", err,
			"task_id", rawTaskID,
		)

		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return record, nil
}

func (uc *reconcileUseCaseImpl) cancelHandle(ctx context.Context, handle domain.SchedulingHandle) {
	if handle.IsZero() {
		return
	}

	if err := uc.scheduler.Cancel(ctx, handle); err != nil {
		slog.Warn("failed to cancel scheduled notification",
			"error", err,
			"handle", string(handle),
		)
	}
}

func (uc *reconcileUseCaseImpl) hasPermission(ctx context.Context) bool {
	granted, err := uc.scheduler.HasPermission(ctx)
	if err != nil {
		slog.Warn("failed to query notification permission",
			"error", err,
		)

		return false
	}

	return granted
}

func (uc *reconcileUseCaseImpl) deliveredTaskIDs(ctx context.Context) map[string]struct{} {
	ids := make(map[string]struct{})

	delivered, err := uc.scheduler.QueryDelivered(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrUnsupported) {
			slog.Warn("failed to query delivered notifications",
				"error", err,
			)
		}

		return ids
	}

	for _, d := range delivered {
		if !d.TaskID.IsZero() {
			ids[d.TaskID.String()] = struct{}{}
		}
	}

	return ids
}

func (uc *reconcileUseCaseImpl) storeFailure(op string, taskID domain.TaskID, err error) error {
	slog.Error("notification record store failure",
		"error", err,
		"op", op,
		"task_id", taskID.String(),
	)

	return fmt.Errorf("%w: %v", ErrInternalError, err)
}

func contentFor(task domain.Task) domain.NotificationContent {
	return domain.NotificationContent{
		Title:  "Upcoming Task",
		Body:   fmt.Sprintf("%s starts in 1 hour.", task.Title),
		TaskID: task.ID,
	}
}
