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

type pushDeviceRepositoryImpl struct {
	db *gorm.DB
}

func NewPushDeviceRepository(db *gorm.DB) domain.PushDeviceRepository {
	return &pushDeviceRepositoryImpl{
		db: db,
	}
}

func (r *pushDeviceRepositoryImpl) Upsert(ctx context.Context, device *domain.PushDevice) error {
	m := PushDeviceFromEntity(device)

	// created_at is kept from the first registration
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"platform", "device_id", "is_active", "updated_at"}),
	}).Create(m)
	if result.Error != nil {
		slog.Error("failed to upsert push device",
			"user_id", m.UserID,
			"error", result.Error,
		)

		return result.Error
	}

	return nil
}

func (r *pushDeviceRepositoryImpl) FindByUserAndToken(ctx context.Context, userID domain.UserID, token string) (*domain.PushDevice, error) {
	var m PushDeviceModel

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID.String(), token).
		First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDeviceNotFound
		}

		slog.Error("failed to find push device",
			"user_id", userID.String(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	return m.ToEntity()
}

func (r *pushDeviceRepositoryImpl) ListActiveByUser(ctx context.Context, userID domain.UserID) ([]*domain.PushDevice, error) {
	var models []PushDeviceModel

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID.String(), true).
		Order("token ASC").
		Find(&models)
	if result.Error != nil {
		slog.Error("failed to list active push devices",
			"user_id", userID.String(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	devices := make([]*domain.PushDevice, 0, len(models))

	for _, m := range models {
		device, err := m.ToEntity()
		if err != nil {
			return nil, err
		}

		devices = append(devices, device)
	}

	return devices, nil
}

func (r *pushDeviceRepositoryImpl) DeactivateToken(ctx context.Context, token string, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&PushDeviceModel{}).
		Where("token = ? AND is_active = ?", token, true).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": now,
		})
	if result.Error != nil {
		slog.Error("failed to deactivate push token",
			"error", result.Error,
		)

		return 0, result.Error
	}

	slog.Debug("push token deactivated",
		"rows", result.RowsAffected,
	)

	return result.RowsAffected, nil
}
