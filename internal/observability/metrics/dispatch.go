package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DispatchMetrics counts what each dispatch pass did.
type DispatchMetrics struct {
	due         metric.Int64Counter
	sent        metric.Int64Counter
	failed      metric.Int64Counter
	deactivated metric.Int64Counter
}

func NewDispatchMetrics(meter metric.Meter) (*DispatchMetrics, error) {
	due, err := meter.Int64Counter("reminder.dispatch.due",
		metric.WithDescription("Due reminder jobs examined"),
	)
	if err != nil {
		return nil, err
	}

	sent, err := meter.Int64Counter("reminder.dispatch.sent",
		metric.WithDescription("Reminder jobs delivered to at least one device"),
	)
	if err != nil {
		return nil, err
	}

	failed, err := meter.Int64Counter("reminder.dispatch.failed",
		metric.WithDescription("Reminder jobs left pending after a dispatch attempt"),
	)
	if err != nil {
		return nil, err
	}

	deactivated, err := meter.Int64Counter("push.devices.deactivated",
		metric.WithDescription("Push tokens deactivated after the transport rejected them"),
	)
	if err != nil {
		return nil, err
	}

	return &DispatchMetrics{
		due:         due,
		sent:        sent,
		failed:      failed,
		deactivated: deactivated,
	}, nil
}

func (m *DispatchMetrics) RecordDue(ctx context.Context, n int) {
	m.due.Add(ctx, int64(n))
}

func (m *DispatchMetrics) RecordSent(ctx context.Context) {
	m.sent.Add(ctx, 1)
}

func (m *DispatchMetrics) RecordFailed(ctx context.Context, reason string) {
	m.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *DispatchMetrics) RecordDeactivated(ctx context.Context, n int64) {
	if n == 0 {
		return
	}

	m.deactivated.Add(ctx, n)
}
