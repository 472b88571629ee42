//go:build !gcloud

package exporter

import (
	"context"
	"errors"
)

var ErrGCloudNotBuilt = errors.New("gcloud exporter requires building with -tags gcloud")

func newGCloud(context.Context, Config) (*Exporters, error) {
	return nil, ErrGCloudNotBuilt
}
