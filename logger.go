package xmcdata

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with xmcdata-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithSplit adds a split field to the logger.
func (l *Logger) WithSplit(split string) *Logger {
	return &Logger{
		Logger: l.Logger.With("split", split),
	}
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogCacheHit logs a split served from cache.
func (l *Logger) LogCacheHit(ctx context.Context, rows, featureCols, labelCols int, duration time.Duration) {
	l.InfoContext(ctx, "cache hit",
		"rows", rows,
		"feature_cols", featureCols,
		"label_cols", labelCols,
		"duration", duration,
	)
}

// LogCacheMiss logs why a split has to be rebuilt. A nil reason means the
// cache was absent or a refresh was forced.
func (l *Logger) LogCacheMiss(ctx context.Context, reason error) {
	if reason != nil {
		l.WarnContext(ctx, "cache unusable, rebuilding",
			"error", reason,
		)
	} else {
		l.InfoContext(ctx, "cache miss")
	}
}

// LogParse logs a parse of the source text.
func (l *Logger) LogParse(ctx context.Context, path string, rows, skipped int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "parse failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "parse completed",
			"path", path,
			"rows", rows,
			"skipped", skipped,
		)
	}
}

// LogTrim logs the effect of trimming.
func (l *Logger) LogTrim(ctx context.Context, rowsBefore, rowsAfter, featureCols, labelCols int) {
	l.InfoContext(ctx, "trim completed",
		"rows_before", rowsBefore,
		"rows_after", rowsAfter,
		"dropped", rowsBefore-rowsAfter,
		"feature_cols", featureCols,
		"label_cols", labelCols,
	)
}

// LogSave logs a cache write.
func (l *Logger) LogSave(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cache save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "cache saved",
			"name", name,
			"bytes", bytes,
		)
	}
}
