package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	Level       slog.Level
	ServiceName string
	Environment string
}

// ParseLevel maps LOG_LEVEL values onto slog levels, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the JSON logger used by every command.
func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	base := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.Level,
	})

	logger := slog.New(&ContextHandler{Handler: base})

	if cfg.ServiceName != "" {
		logger = logger.With(slog.String("service", cfg.ServiceName))
	}

	if cfg.Environment != "" {
		logger = logger.With(slog.String("env", cfg.Environment))
	}

	return logger
}

// ContextHandler copies request and trace identifiers from the context onto
// every record.
type ContextHandler struct {
	slog.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if requestID := RequestIDFrom(ctx); requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}

	if module := ModuleFrom(ctx); module != "" {
		r.AddAttrs(slog.String("module", string(module)))
	}

	r.AddAttrs(traceAttrs(ctx)...)

	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}

func traceAttrs(ctx context.Context) []slog.Attr {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}

	return []slog.Attr{
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
		slog.Bool("trace_sampled", sc.IsSampled()),
	}
}
