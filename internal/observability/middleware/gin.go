package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/KasumiMercury/primind-task-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/tracing"
)

const RequestIDHeader = "x-request-id"

type GinConfig struct {
	// SkipPaths bypass logging, tracing and metrics entirely.
	SkipPaths      []string
	ModuleResolver func(*gin.Context) logging.Module
	// JobPaths are logged as job runs (start and finish) rather than plain requests.
	JobPaths    []string
	TracerName  string
	HTTPMetrics *metrics.HTTPMetrics
}

func Gin(cfg GinConfig) gin.HandlerFunc {
	skipSet := toSet(cfg.SkipPaths)
	jobSet := toSet(cfg.JobPaths)

	return func(c *gin.Context) {
		if _, skip := skipSet[c.Request.URL.Path]; skip {
			c.Next()

			return
		}

		start := time.Now()

		requestID := logging.ValidateAndExtractRequestID(c.Request.Header.Get(RequestIDHeader))
		ctx := logging.WithRequestID(c.Request.Context(), requestID)

		if cfg.ModuleResolver != nil {
			if module := cfg.ModuleResolver(c); module != "" {
				ctx = logging.WithModule(ctx, module)
			}
		}

		ctx = tracing.ExtractFromHTTPRequest(ctx, c.Request)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ctx, span := otel.Tracer(cfg.TracerName).Start(ctx, fmt.Sprintf("%s %s", c.Request.Method, route))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		_, isJob := jobSet[c.Request.URL.Path]
		finishEvent, finishMessage := "http.request.finish", "request completed"

		if isJob {
			finishEvent, finishMessage = "job.finish", "job finished"

			slog.LogAttrs(ctx, slog.LevelInfo, "job started",
				slog.String("event", "job.start"),
				slog.String("job_name", route),
				slog.String("remote_addr", c.ClientIP()),
			)
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)

		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}

		if cfg.HTTPMetrics != nil {
			cfg.HTTPMetrics.Record(ctx, c.Request.Method, route, status, duration)
		}

		slog.LogAttrs(ctx, levelFor(status), finishMessage,
			slog.String("event", finishEvent),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("remote_addr", c.ClientIP()),
			slog.Int("status", status),
			slog.Duration("duration", duration),
		)
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}

	return set
}
