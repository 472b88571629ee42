package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes gorm's query log through slog so queries carry the
// request and trace identifiers of the calling request.
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
}

func NewGormLogger(slowThreshold time.Duration, level slog.Level) *GormLogger {
	return &GormLogger{
		SlowThreshold: slowThreshold,
		LogLevel:      gormLevelFor(level),
	}
}

func gormLevelFor(level slog.Level) gormlogger.LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return gormlogger.Info
	case level <= slog.LevelWarn:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.LogLevel = level

	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, gormlogger.Info, slog.LevelInfo, msg, args...)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, gormlogger.Warn, slog.LevelWarn, msg, args...)
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, gormlogger.Error, slog.LevelError, msg, args...)
}

func (l *GormLogger) log(ctx context.Context, min gormlogger.LogLevel, level slog.Level, msg string, args ...any) {
	if l.LogLevel < min {
		return
	}

	slog.Log(ctx, level, fmt.Sprintf(msg, args...),
		slog.String("event", "db.log"),
	)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	attrs := []slog.Attr{
		slog.Duration("duration", elapsed),
		slog.String("sql", sql),
		slog.Int64("rows", rows),
	}

	switch {
	case err != nil && l.LogLevel >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		attrs = append(attrs,
			slog.String("event", "db.query.fail"),
			slog.String("error", err.Error()),
		)
		slog.LogAttrs(ctx, slog.LevelError, "query error", attrs...)
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		attrs = append(attrs,
			slog.String("event", "db.query.slow"),
			slog.Duration("threshold", l.SlowThreshold),
		)
		slog.LogAttrs(ctx, slog.LevelWarn, "slow query", attrs...)
	case l.LogLevel >= gormlogger.Info:
		attrs = append(attrs, slog.String("event", "db.query"))
		slog.LogAttrs(ctx, slog.LevelDebug, "query executed", attrs...)
	}
}
