package phrasego

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with decoder-specific context.
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

// WithSentence adds the translation id to the logger.
func (l *Logger) WithSentence(id int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("sentence", id),
	}
}

// WithAlgorithm adds the search algorithm to the logger.
func (l *Logger) WithAlgorithm(a Algorithm) *Logger {
	return &Logger{
		Logger: l.Logger.With("algorithm", a.String()),
	}
}

// LogDecode logs the outcome of one sentence.
func (l *Logger) LogDecode(ctx context.Context, r *Result, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "decode failed",
			"duration", duration,
			"error", err,
		)
		return
	}
	if !r.Found {
		l.WarnContext(ctx, "no translation",
			"duration", duration,
			"hypotheses", r.Stats.Hypotheses,
		)
		return
	}
	l.DebugContext(ctx, "decode completed",
		"duration", duration,
		"score", r.Score,
		"hypotheses", r.Stats.Hypotheses,
		"expansions", r.Stats.Expansions,
		"pruned", r.Stats.Pruned,
		"recombined", r.Stats.Recombined,
		"cached", r.Cached,
	)
}

// LogNBest logs an n-best extraction.
func (l *Logger) LogNBest(ctx context.Context, requested, returned int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "n-best extraction failed",
			"requested", requested,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "n-best extraction completed",
			"requested", requested,
			"returned", returned,
		)
	}
}

// LogBatch logs a TranslateAll call.
func (l *Logger) LogBatch(ctx context.Context, count, failed int, duration time.Duration) {
	if failed > 0 {
		l.WarnContext(ctx, "batch completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
			"duration", duration,
		)
	} else {
		l.InfoContext(ctx, "batch completed",
			"count", count,
			"duration", duration,
		)
	}
}
