package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests served"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requests: requests,
		duration: duration,
	}, nil
}

func (m *HTTPMetrics) Record(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}
