package exporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Kind string

const (
	KindNone   Kind = "none"
	KindStdout Kind = "stdout"
	KindGCloud Kind = "gcloud"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindNone, KindStdout, KindGCloud:
		return Kind(s), nil
	case "":
		return KindNone, nil
	default:
		return "", fmt.Errorf("unknown telemetry exporter %q", s)
	}
}

type Config struct {
	Kind           Kind
	ExportInterval time.Duration
	GCPProjectID   string
	// Writer receives stdout exports; os.Stdout when nil.
	Writer io.Writer
}

// Exporters feeds metrics.Config.Reader and tracing.Config.Exporter.
// Both fields are nil for KindNone.
type Exporters struct {
	Reader sdkmetric.Reader
	Spans  sdktrace.SpanExporter
}

func New(ctx context.Context, cfg Config) (*Exporters, error) {
	switch cfg.Kind {
	case KindNone, "":
		return &Exporters{}, nil
	case KindStdout:
		return newStdout(cfg)
	case KindGCloud:
		return newGCloud(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown telemetry exporter %q", cfg.Kind)
	}
}

func newStdout(cfg Config) (*Exporters, error) {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("stdout metric exporter: %w", err)
	}

	spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("stdout span exporter: %w", err)
	}

	return &Exporters{
		Reader: periodicReader(metricExporter, cfg.ExportInterval),
		Spans:  spanExporter,
	}, nil
}

func periodicReader(exp sdkmetric.Exporter, interval time.Duration) sdkmetric.Reader {
	if interval <= 0 {
		return sdkmetric.NewPeriodicReader(exp)
	}

	return sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))
}
