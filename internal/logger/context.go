package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithLogger attaches l to ctx so it can be retrieved with FromContext.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the Logger attached to ctx, or Default if none was attached.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(contextKey{}).(Logger); ok && l != nil {
		return l
	}
	return Default
}

func fromContextConcrete(ctx context.Context) (*logger, bool) {
	l, ok := ctx.Value(contextKey{}).(*logger)
	return l, ok
}

// Debug logs at debug level using the Logger attached to ctx.
func Debug(ctx context.Context, msg string, args ...any) {
	if l, ok := fromContextConcrete(ctx); ok {
		l.logDepth(callerSkip, slog.LevelDebug, msg, args...)
		return
	}
	FromContext(ctx).Debug(msg, args...)
}

// Info logs at info level using the Logger attached to ctx.
func Info(ctx context.Context, msg string, args ...any) {
	if l, ok := fromContextConcrete(ctx); ok {
		l.logDepth(callerSkip, slog.LevelInfo, msg, args...)
		return
	}
	FromContext(ctx).Info(msg, args...)
}

// Warn logs at warn level using the Logger attached to ctx.
func Warn(ctx context.Context, msg string, args ...any) {
	if l, ok := fromContextConcrete(ctx); ok {
		l.logDepth(callerSkip, slog.LevelWarn, msg, args...)
		return
	}
	FromContext(ctx).Warn(msg, args...)
}

// Error logs at error level using the Logger attached to ctx.
func Error(ctx context.Context, msg string, args ...any) {
	if l, ok := fromContextConcrete(ctx); ok {
		l.logDepth(callerSkip, slog.LevelError, msg, args...)
		return
	}
	FromContext(ctx).Error(msg, args...)
}

// Debugf logs a formatted message at debug level using the Logger attached to ctx.
func Debugf(ctx context.Context, format string, args ...any) {
	if l, ok := fromContextConcrete(ctx); ok {
		l.logDepth(callerSkip, slog.LevelDebug, sprintf(format, args...))
		return
	}
	FromContext(ctx).Debugf(format, args...)
}

// Infof logs a formatted message at info level using the Logger attached to ctx.
func Infof(ctx context.Context, format string, args ...any) {
	if l, ok := fromContextConcrete(ctx); ok {
		l.logDepth(callerSkip, slog.LevelInfo, sprintf(format, args...))
		return
	}
	FromContext(ctx).Infof(format, args...)
}

// Warnf logs a formatted message at warn level using the Logger attached to ctx.
func Warnf(ctx context.Context, format string, args ...any) {
	if l, ok := fromContextConcrete(ctx); ok {
		l.logDepth(callerSkip, slog.LevelWarn, sprintf(format, args...))
		return
	}
	FromContext(ctx).Warnf(format, args...)
}

// Errorf logs a formatted message at error level using the Logger attached to ctx.
func Errorf(ctx context.Context, format string, args ...any) {
	if l, ok := fromContextConcrete(ctx); ok {
		l.logDepth(callerSkip, slog.LevelError, sprintf(format, args...))
		return
	}
	FromContext(ctx).Errorf(format, args...)
}
