//go:build !gcloud

package exporter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KasumiMercury/primind-task-reminder/internal/observability/exporter"
)

func TestNewGCloudWithoutBuildTagError(t *testing.T) {
	_, err := exporter.New(context.Background(), exporter.Config{Kind: exporter.KindGCloud})

	assert.ErrorIs(t, err, exporter.ErrGCloudNotBuilt)
}
