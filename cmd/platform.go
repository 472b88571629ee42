package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-task-reminder/internal/config"
	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/memstore"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/repository"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/exporter"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/tracing"
)

const slowQueryThreshold = 200 * time.Millisecond

func initPublisher(ctx context.Context, cfg *config.Config) (pubsub.Publisher, error) {
	if cfg.PubSub.NatsURL == "" {
		slog.Warn("NATS_URL not set, event publishing disabled")

		return nil, nil
	}

	publisher, err := pubsub.NewNATSPublisher(ctx, pubsub.NATSPublisherConfig{
		URL: cfg.PubSub.NatsURL,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("NATS publisher initialized", "url", cfg.PubSub.NatsURL)

	return publisher, nil
}

type stores struct {
	jobs    domain.ReminderJobRepository
	devices domain.PushDeviceRepository
	close   func() error
}

// initStores picks postgres when a DSN is configured and process memory otherwise.
func initStores(cfg *config.Config) (*stores, error) {
	if cfg.Database.DSN == "" {
		slog.Warn("POSTGRES_DSN not set, jobs and devices are kept in memory")

		return &stores{
			jobs:    memstore.NewReminderJobStore(),
			devices: memstore.NewPushDeviceStore(),
			close:   func() error { return nil },
		}, nil
	}

	db, err := initDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if err := repository.AutoMigrate(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	return &stores{
		jobs:    repository.NewReminderJobRepository(db),
		devices: repository.NewPushDeviceRepository(db),
		close:   sqlDB.Close,
	}, nil
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: logging.NewGormLogger(slowQueryThreshold, logging.ParseLevel(cfg.Log.Level)),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

type observability struct {
	metrics *metrics.Provider
	tracing *tracing.Provider
}

func initObservability(ctx context.Context, cfg *config.Config) (*observability, error) {
	kind, err := exporter.ParseKind(cfg.Observability.Exporter)
	if err != nil {
		return nil, err
	}

	exps, err := exporter.New(ctx, exporter.Config{
		Kind:           kind,
		ExportInterval: cfg.Observability.ExportInterval,
		GCPProjectID:   cfg.Observability.GCPProjectID,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("telemetry initialized",
		"exporter", string(kind),
		"service_name", cfg.Observability.ServiceName,
	)

	return &observability{
		metrics: metrics.NewProvider(metrics.Config{
			ServiceName:    cfg.Observability.ServiceName,
			ServiceVersion: Version,
			Environment:    cfg.Observability.Environment,
			Reader:         exps.Reader,
		}),
		tracing: tracing.NewProvider(tracing.Config{
			ServiceName:    cfg.Observability.ServiceName,
			ServiceVersion: Version,
			Environment:    cfg.Observability.Environment,
			SamplingRate:   cfg.Observability.TraceSamplingRate,
			Exporter:       exps.Spans,
		}),
	}, nil
}

func (o *observability) Shutdown(ctx context.Context) error {
	return errors.Join(
		o.tracing.Shutdown(ctx),
		o.metrics.Shutdown(ctx),
	)
}
