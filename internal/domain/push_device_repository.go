package domain

import (
	"context"
	"time"
)

type PushDeviceRepository interface {
	// Upsert stores the device keyed by (user, token). An existing row keeps its createdAt.
	Upsert(ctx context.Context, device *PushDevice) error
	FindByUserAndToken(ctx context.Context, userID UserID, token string) (*PushDevice, error)
	ListActiveByUser(ctx context.Context, userID UserID) ([]*PushDevice, error)
	// DeactivateToken flags the token inactive under every user that registered it.
	DeactivateToken(ctx context.Context, token string, now time.Time) (int64, error)
}
