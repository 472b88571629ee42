package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Reader is optional; without one measurements are aggregated but never exported.
	Reader sdkmetric.Reader
}

type Provider struct {
	mp *sdkmetric.MeterProvider
}

// NewProvider installs a meter provider as the global one.
func NewProvider(cfg Config) *Provider {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	)

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if cfg.Reader != nil {
		opts = append(opts, sdkmetric.WithReader(cfg.Reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	return &Provider{mp: mp}
}

func (p *Provider) Meter(name string) metric.Meter {
	return p.mp.Meter(name)
}

func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}
