package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KasumiMercury/primind-task-reminder/internal/app"
	"github.com/KasumiMercury/primind-task-reminder/internal/config"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/handler"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/pushclient"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/middleware"
)

const (
	shutdownTimeout   = 30 * time.Second
	serviceTracerName = "primind-task-reminder/http"
	dispatchDuePath   = "/api/reminders/dispatch-due"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reminder HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	obs, err := initObservability(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shutdown telemetry", "error", err)
		}
	}()

	st, err := initStores(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer st.close()

	publisher, err := initPublisher(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize publisher: %w", err)
	}

	if publisher != nil {
		defer publisher.Close()
	}

	meter := obs.metrics.Meter("primind-task-reminder")

	dispatchMetrics, err := metrics.NewDispatchMetrics(meter)
	if err != nil {
		return fmt.Errorf("failed to create dispatch metrics: %w", err)
	}

	httpMetrics, err := metrics.NewHTTPMetrics(meter)
	if err != nil {
		return fmt.Errorf("failed to create http metrics: %w", err)
	}

	sender := pushclient.NewExpoClient(pushclient.Config{
		URL:         cfg.Push.URL,
		AccessToken: cfg.Push.AccessToken,
	})

	jobUseCase := app.NewReminderJobUseCase(st.jobs)
	deviceUseCase := app.NewPushDeviceUseCase(st.devices)
	dispatchUseCase := app.NewDispatchUseCase(st.jobs, st.devices, sender, publisher, app.DispatchConfig{
		Secret:      cfg.Dispatch.Secret,
		PushTimeout: cfg.Push.RequestTimeout,
		Metrics:     dispatchMetrics,
	})

	router := setupRouter(
		handler.NewReminderHandler(jobUseCase, dispatchUseCase),
		handler.NewPushHandler(deviceUseCase),
		httpMetrics,
	)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "address", cfg.Server.Address())

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		return nil
	})

	if cfg.Dispatch.Interval > 0 {
		g.Go(func() error {
			runDispatchTicker(gctx, dispatchUseCase, cfg.Dispatch)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("server exited properly")

	return nil
}

func runDispatchTicker(ctx context.Context, dispatch app.DispatchUseCase, cfg config.DispatchConfig) {
	ctx = logging.WithModule(ctx, logging.ModuleDispatch)

	slog.InfoContext(ctx, "dispatch ticker started", "interval", cfg.Interval.String())

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			out, err := dispatch.DispatchDue(ctx, app.DispatchDueInput{Secret: cfg.Secret})
			if err != nil {
				slog.ErrorContext(ctx, "scheduled dispatch failed", "error", err.Error())

				continue
			}

			if out.DueJobs > 0 {
				slog.InfoContext(ctx, "scheduled dispatch finished",
					"due_jobs", out.DueJobs,
					"sent_count", out.SentCount,
				)
			}
		}
	}
}

func setupRouter(reminderHandler *handler.ReminderHandler, pushHandler *handler.PushHandler, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	router := gin.New()

	router.Use(middleware.PanicRecoveryGin())
	router.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:      []string{"/ping"},
		ModuleResolver: moduleFor,
		JobPaths:       []string{dispatchDuePath},
		TracerName:     serviceTracerName,
		HTTPMetrics:    httpMetrics,
	}))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := router.Group("/api")
	reminderHandler.RegisterRoutes(api)
	pushHandler.RegisterRoutes(api)

	return router
}

func moduleFor(c *gin.Context) logging.Module {
	path := c.Request.URL.Path

	switch {
	case path == dispatchDuePath:
		return logging.ModuleDispatch
	case strings.HasPrefix(path, "/api/reminders"):
		return logging.ModuleReminder
	case strings.HasPrefix(path, "/api/push"):
		return logging.ModulePush
	default:
		return ""
	}
}
