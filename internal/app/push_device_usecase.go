package app

import "context"

type PushDeviceUseCase interface {
	RegisterToken(ctx context.Context, input RegisterTokenInput) (PushDeviceOutput, error)
	DeactivateToken(ctx context.Context, token string) (int64, error)
	ActiveDevices(ctx context.Context, userID string) ([]PushDeviceOutput, error)
}
