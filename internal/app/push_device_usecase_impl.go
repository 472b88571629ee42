package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type pushDeviceUseCaseImpl struct {
	repo  domain.PushDeviceRepository
	clock Clock
}

func NewPushDeviceUseCase(repo domain.PushDeviceRepository, opts ...Option) PushDeviceUseCase {
	o := buildOptions(opts)

	return &pushDeviceUseCaseImpl{
		repo:  repo,
		clock: o.clock,
	}
}

func (uc *pushDeviceUseCaseImpl) RegisterToken(ctx context.Context, input RegisterTokenInput) (PushDeviceOutput, error) {
	userID, err := domain.UserIDFromString(input.UserID)
	if err != nil {
		return PushDeviceOutput{}, NewValidationError("userId", err.Error())
	}

	token := strings.TrimSpace(input.ExpoPushToken)
	if token == "" {
		return PushDeviceOutput{}, NewValidationError("expoPushToken", domain.ErrEmptyPushToken.Error())
	}

	now := uc.clock()
	platform := domain.NewPlatform(input.Platform)
	deviceID := strings.TrimSpace(input.DeviceID)

	device, err := uc.repo.FindByUserAndToken(ctx, userID, token)

	switch {
	case err == nil:
		device.Reregister(platform, deviceID, now)
	case errors.Is(err, domain.ErrDeviceNotFound):
		device, err = domain.NewPushDevice(userID, token, platform, deviceID, now)
		if err != nil {
			return PushDeviceOutput{}, NewValidationError("expoPushToken", err.Error())
		}
	default:
		slog.Error("failed to look up push device",
			"error", err,
			"user_id", userID.String(),
		)

		return PushDeviceOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := uc.repo.Upsert(ctx, device); err != nil {
		slog.Error("failed to register push device",
			"error", err,
			"user_id", userID.String(),
		)

		return PushDeviceOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	stored, err := uc.repo.FindByUserAndToken(ctx, userID, token)
	if err != nil {
		slog.Error("failed to reload push device",
			"error", err,
			"user_id", userID.String(),
		)

		return PushDeviceOutput{}, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	slog.Info("push device registered",
		"user_id", userID.String(),
		"platform", string(stored.Platform()),
		"device_id", stored.DeviceID(),
	)

	return FromDevice(stored), nil
}

func (uc *pushDeviceUseCaseImpl) DeactivateToken(ctx context.Context, token string) (int64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, NewValidationError("expoPushToken", domain.ErrEmptyPushToken.Error())
	}

	affected, err := uc.repo.DeactivateToken(ctx, token, uc.clock())
	if err != nil {
		slog.Error("failed to deactivate push token",
			"error", err,
		)

		return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return affected, nil
}

func (uc *pushDeviceUseCaseImpl) ActiveDevices(ctx context.Context, userID string) ([]PushDeviceOutput, error) {
	id, err := domain.UserIDFromString(userID)
	if err != nil {
		return nil, NewValidationError("userId", err.Error())
	}

	devices, err := uc.repo.ListActiveByUser(ctx, id)
	if err != nil {
		slog.Error("failed to list active push devices",
			"error", err,
			"user_id", userID,
		)

		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	outputs := make([]PushDeviceOutput, 0, len(devices))
	for _, d := range devices {
		outputs = append(outputs, FromDevice(d))
	}

	return outputs, nil
}
