package app

import (
	"context"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/observability/metrics"
)

const DefaultPushTimeout = 10 * time.Second

type DispatchConfig struct {
	// Secret guards DispatchDue when non-empty.
	Secret      string
	PushTimeout time.Duration
	Metrics     *metrics.DispatchMetrics
}

type DispatchUseCase interface {
	DispatchDue(ctx context.Context, input DispatchDueInput) (DispatchDueOutput, error)
}
