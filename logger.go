package crosscat

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/crosscat/kernel"
)

// Logger wraps slog.Logger with crosscat-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithStep adds a step field to the logger.
func (l *Logger) WithStep(step uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("step", step),
	}
}

// WithKinds adds a kind count field to the logger.
func (l *Logger) WithKinds(kinds int) *Logger {
	return &Logger{
		Logger: l.Logger.With("kinds", kinds),
	}
}

// WithFeatures adds a feature count field to the logger.
func (l *Logger) WithFeatures(features int) *Logger {
	return &Logger{
		Logger: l.Logger.With("features", features),
	}
}

// WithRows adds a row count field to the logger.
func (l *Logger) WithRows(rows int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", rows),
	}
}

// LogStep logs one inference step.
func (l *Logger) LogStep(ctx context.Context, step uint64, c kernel.Counters, duration time.Duration) {
	l.DebugContext(ctx, "step completed",
		"step", step,
		"moved", c.Changed,
		"born", c.Born,
		"died", c.Died,
		"duration", duration,
	)
}

// LogProgress logs throttled run progress.
func (l *Logger) LogProgress(ctx context.Context, step uint64, kinds, moved int) {
	l.InfoContext(ctx, "run progress",
		"step", step,
		"kinds", kinds,
		"moved", moved,
	)
}

// LogCheckpoint logs a checkpoint save operation.
func (l *Logger) LogCheckpoint(ctx context.Context, name string, step uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "checkpoint failed",
			"name", name,
			"step", step,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "checkpoint saved",
			"name", name,
			"step", step,
		)
	}
}

// LogRestore logs a checkpoint restore operation.
func (l *Logger) LogRestore(ctx context.Context, name string, step uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "checkpoint restored",
			"name", name,
			"step", step,
		)
	}
}
