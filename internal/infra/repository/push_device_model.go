package repository

import (
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type PushDeviceModel struct {
	UserID    string    `gorm:"column:user_id;type:varchar(255);primaryKey"`
	Token     string    `gorm:"column:token;type:varchar(512);primaryKey;index:idx_push_devices_token"`
	Platform  string    `gorm:"column:platform;type:varchar(16);not null"`
	DeviceID  string    `gorm:"column:device_id;type:varchar(255);not null;default:''"`
	IsActive  bool      `gorm:"column:is_active;type:boolean;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (PushDeviceModel) TableName() string {
	return "push_devices"
}

func (m *PushDeviceModel) ToEntity() (*domain.PushDevice, error) {
	userID, err := domain.UserIDFromString(m.UserID)
	if err != nil {
		return nil, err
	}

	return domain.ReconstitutePushDevice(
		userID,
		m.Token,
		domain.NewPlatform(m.Platform),
		m.DeviceID,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
		m.IsActive,
	), nil
}

func PushDeviceFromEntity(e *domain.PushDevice) *PushDeviceModel {
	return &PushDeviceModel{
		UserID:    e.UserID().String(),
		Token:     e.Token(),
		Platform:  string(e.Platform()),
		DeviceID:  e.DeviceID(),
		IsActive:  e.IsActive(),
		CreatedAt: e.CreatedAt(),
		UpdatedAt: e.UpdatedAt(),
	}
}
