package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

// WithLogger returns ctx carrying logger. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger carried by ctx, or the default.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	return Default()
}

// WithField returns ctx whose logger adds key=value to every entry.
func WithField(ctx context.Context, key string, value any) context.Context {
	var l zerolog.Logger
	switch v := value.(type) {
	case string:
		l = FromContext(ctx).With().Str(key, v).Logger()
	case int:
		l = FromContext(ctx).With().Int(key, v).Logger()
	case bool:
		l = FromContext(ctx).With().Bool(key, v).Logger()
	case error:
		l = FromContext(ctx).With().AnErr(key, v).Logger()
	default:
		l = FromContext(ctx).With().Interface(key, v).Logger()
	}
	return WithLogger(ctx, &l)
}

// WithSection tags entries with the section being processed.
func WithSection(ctx context.Context, section string) context.Context {
	return WithField(ctx, "section", section)
}

// WithFile tags entries with a workspace path.
func WithFile(ctx context.Context, path string) context.Context {
	return WithField(ctx, "file", path)
}

// WithOperation tags entries with the pipeline step (merge, import, ...).
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}

// WithRun tags entries with the run ID recorded in the store lock.
func WithRun(ctx context.Context, runID string) context.Context {
	return WithField(ctx, "run_id", runID)
}
