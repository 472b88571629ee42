package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type reminderJobRepositoryImpl struct {
	db *gorm.DB
	// inTx makes Find lock the row it reads.
	inTx bool
}

func NewReminderJobRepository(db *gorm.DB) domain.ReminderJobRepository {
	return &reminderJobRepositoryImpl{
		db: db,
	}
}

func (r *reminderJobRepositoryImpl) Save(ctx context.Context, job *domain.ReminderJob) error {
	m := ReminderJobFromEntity(job)

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title",
			"scheduled_at",
			"notify_at",
			"version_ts",
			"status",
			"sent_at",
			"created_at",
			"updated_at",
		}),
	}).Create(m)
	if result.Error != nil {
		slog.Error("failed to save reminder job",
			"user_id", m.UserID,
			"task_id", m.TaskID,
			"error", result.Error,
		)

		return result.Error
	}

	slog.Debug("reminder job saved",
		"user_id", m.UserID,
		"task_id", m.TaskID,
		"status", m.Status,
	)

	return nil
}

func (r *reminderJobRepositoryImpl) Find(ctx context.Context, userID domain.UserID, taskID domain.TaskID) (*domain.ReminderJob, error) {
	var m ReminderJobModel

	query := r.db.WithContext(ctx)
	if r.inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	result := query.
		Where("user_id = ? AND task_id = ?", userID.String(), taskID.String()).
		First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}

		slog.Error("failed to find reminder job",
			"user_id", userID.String(),
			"task_id", taskID.String(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	return m.ToEntity()
}

func (r *reminderJobRepositoryImpl) ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.ReminderJob, error) {
	var models []ReminderJobModel

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID.String()).
		Order("notify_at ASC").
		Find(&models)
	if result.Error != nil {
		slog.Error("failed to list reminder jobs",
			"user_id", userID.String(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	return toJobs(models)
}

func (r *reminderJobRepositoryImpl) FindDue(ctx context.Context, now time.Time) ([]*domain.ReminderJob, error) {
	var models []ReminderJobModel

	result := r.db.WithContext(ctx).
		Where("status = ? AND notify_at <= ? AND scheduled_at > ?", string(domain.JobStatusPending), now, now).
		Order("notify_at ASC").
		Find(&models)
	if result.Error != nil {
		slog.Error("failed to find due reminder jobs",
			"now", now,
			"error", result.Error,
		)

		return nil, result.Error
	}

	slog.Debug("due reminder jobs found",
		"count", len(models),
	)

	return toJobs(models)
}

func (r *reminderJobRepositoryImpl) WithTx(ctx context.Context, fn func(repo domain.ReminderJobRepository) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		slog.Error("failed to begin transaction",
			"error", tx.Error,
		)

		return tx.Error
	}

	txRepo := &reminderJobRepositoryImpl{db: tx, inTx: true}

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			slog.Error("failed to rollback transaction",
				"error", rbErr,
				"original_error", err,
			)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		slog.Error("failed to commit transaction",
			"error", err,
		)

		return err
	}

	return nil
}

func toJobs(models []ReminderJobModel) ([]*domain.ReminderJob, error) {
	jobs := make([]*domain.ReminderJob, 0, len(models))

	for _, m := range models {
		job, err := m.ToEntity()
		if err != nil {
			slog.Error("failed to convert model to entity",
				"user_id", m.UserID,
				"task_id", m.TaskID,
				"error", err,
			)

			return nil, err
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
