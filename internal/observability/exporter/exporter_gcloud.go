//go:build gcloud

package exporter

import (
	"context"
	"fmt"

	mexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
)

func newGCloud(_ context.Context, cfg Config) (*Exporters, error) {
	metricExporter, err := mexporter.New(mexporter.WithProjectID(cfg.GCPProjectID))
	if err != nil {
		return nil, fmt.Errorf("cloud monitoring exporter: %w", err)
	}

	spanExporter, err := texporter.New(texporter.WithProjectID(cfg.GCPProjectID))
	if err != nil {
		return nil, fmt.Errorf("cloud trace exporter: %w", err)
	}

	return &Exporters{
		Reader: periodicReader(metricExporter, cfg.ExportInterval),
		Spans:  spanExporter,
	}, nil
}
