package bigarray

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with bigarray-specific helpers.
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
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithKind adds a storage kind field ("heap" or "offheap").
func (l *Logger) WithKind(kind string) *Logger {
	return &Logger{
		Logger: l.Logger.With("kind", kind),
	}
}

// LogAllocate logs the construction of an array.
func (l *Logger) LogAllocate(ctx context.Context, kind string, size int64, segments int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "allocation failed",
			"kind", kind,
			"size", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "array allocated",
			"kind", kind,
			"size", size,
			"segments", segments,
		)
	}
}

// LogFree logs the release of off-heap memory.
func (l *Logger) LogFree(ctx context.Context, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "free failed",
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "off-heap memory released",
			"bytes", bytes,
		)
	}
}

// LogResize logs a Resize operation.
func (l *Logger) LogResize(ctx context.Context, oldSize, newSize int64) {
	l.DebugContext(ctx, "array resized",
		"old_size", oldSize,
		"new_size", newSize,
	)
}

// LogTransfer logs a bulk stream transfer.
func (l *Logger) LogTransfer(ctx context.Context, direction string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "transfer failed",
			"direction", direction,
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "transfer completed",
			"direction", direction,
			"bytes", bytes,
		)
	}
}
