package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type reminderJobUseCaseImpl struct {
	repo  domain.ReminderJobRepository
	clock Clock
}

func NewReminderJobUseCase(repo domain.ReminderJobRepository, opts ...Option) ReminderJobUseCase {
	o := buildOptions(opts)

	return &reminderJobUseCaseImpl{
		repo:  repo,
		clock: o.clock,
	}
}

func (uc *reminderJobUseCaseImpl) SyncUserJobs(ctx context.Context, input SyncUserJobsInput) (SyncUserJobsOutput, error) {
	userID, err := domain.UserIDFromString(input.UserID)
	if err != nil {
		return SyncUserJobsOutput{}, NewValidationError("userId", err.Error())
	}

	snapshots, err := toSnapshots(input.Tasks)
	if err != nil {
		return SyncUserJobsOutput{}, err
	}

	var pending int

	err = uc.repo.WithTx(ctx, func(repo domain.ReminderJobRepository) error {
		var txErr error

		pending, txErr = uc.syncJobs(ctx, repo, userID, snapshots)

		return txErr
	})
	if err != nil {
		slog.Error("failed to sync reminder jobs",
			"error", err,
			"user_id", userID.String(),
		)

		return SyncUserJobsOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	slog.Info("reminder jobs synced",
		"user_id", userID.String(),
		"tasks_count", len(snapshots),
		"pending_jobs", pending,
	)

	return SyncUserJobsOutput{PendingJobs: pending}, nil
}

func (uc *reminderJobUseCaseImpl) syncJobs(
	ctx context.Context,
	repo domain.ReminderJobRepository,
	userID domain.UserID,
	snapshots []domain.TaskSnapshot,
) (int, error) {
	now := uc.clock()

	existing, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	present := make(map[string]struct{}, len(snapshots))
	for _, s := range snapshots {
		present[s.TaskID.String()] = struct{}{}
	}

	jobs := make(map[string]*domain.ReminderJob, len(existing))

	for _, job := range existing {
		jobs[job.TaskID().String()] = job

		if _, ok := present[job.TaskID().String()]; ok || !job.IsPending() {
			continue
		}

		if err := job.Cancel(now); err != nil {
			return 0, err
		}

		if err := repo.Save(ctx, job); err != nil {
			return 0, err
		}
	}

	for _, snapshot := range snapshots {
		job := jobs[snapshot.TaskID.String()]

		if snapshot.IsCompleted || !snapshot.ScheduledAt.After(now) {
			if job == nil || !job.IsPending() {
				continue
			}

			if err := job.Cancel(now); err != nil {
				return 0, err
			}

			if err := repo.Save(ctx, job); err != nil {
				return 0, err
			}

			continue
		}

		if job != nil && !job.IsStaleFor(snapshot) {
			continue
		}

		createdAt := now
		if job != nil {
			createdAt = job.CreatedAt()
		}

		replacement := domain.NewPendingJob(userID, snapshot, createdAt, now)
		if err := repo.Save(ctx, replacement); err != nil {
			return 0, err
		}

		jobs[snapshot.TaskID.String()] = replacement
	}

	var pending int

	for _, job := range jobs {
		if job.IsPending() {
			pending++
		}
	}

	return pending, nil
}

func toSnapshots(tasks []TaskSnapshotInput) ([]domain.TaskSnapshot, error) {
	snapshots := make([]domain.TaskSnapshot, 0, len(tasks))

	for i, t := range tasks {
		taskID, err := domain.TaskIDFromString(t.TaskID)
		if err != nil {
			return nil, NewValidationError(fmt.Sprintf("tasks[%d].taskId", i), err.Error())
		}

		if t.ScheduledAt.IsZero() {
			return nil, NewValidationError(fmt.Sprintf("tasks[%d].scheduledAt", i), "scheduledAt is required")
		}

		notifyAt := t.NotifyAt
		if notifyAt.IsZero() {
			notifyAt = domain.NotifyAtFor(t.ScheduledAt)
		}

		snapshots = append(snapshots, domain.TaskSnapshot{
			TaskID:      taskID,
			Title:       strings.TrimSpace(t.Title),
			ScheduledAt: storedTime(t.ScheduledAt),
			NotifyAt:    storedTime(notifyAt),
			UpdatedAt:   storedTime(t.UpdatedAt),
			IsCompleted: t.IsCompleted,
		})
	}

	return snapshots, nil
}

// storedTime rounds down to timestamptz resolution so a replayed snapshot
// compares equal to the job read back from postgres.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
