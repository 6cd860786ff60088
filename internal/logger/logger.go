// Package logger provides the structured logger used throughout the engine.
// It wraps log/slog, fans out to multiple sinks via github.com/samber/slog-multi,
// and reports the caller's source location rather than its own.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

// Logger is the engine's logging surface. Every method reports the source
// location of its caller, not of the method itself.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger
}

type logger struct {
	handler slog.Handler
}

// NewLogger builds a Logger from the given Options.
func NewLogger(opts ...Option) Logger {
	o := &options{format: "text"}
	for _, opt := range opts {
		opt(o)
	}

	var sinks []io.Writer
	switch {
	case o.writer != nil:
		sinks = append(sinks, o.writer)
	case o.quiet:
		// suppress the console sink
	default:
		sinks = append(sinks, os.Stdout)
	}
	if o.logFile != nil {
		sinks = append(sinks, o.logFile)
	}
	if len(sinks) == 0 {
		sinks = append(sinks, io.Discard)
	}

	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{AddSource: true, Level: level}

	handlers := make([]slog.Handler, 0, len(sinks))
	for _, w := range sinks {
		if o.format == "json" {
			handlers = append(handlers, slog.NewJSONHandler(w, handlerOpts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(w, handlerOpts))
		}
	}

	var h slog.Handler
	if len(handlers) == 1 {
		h = handlers[0]
	} else {
		h = slogmulti.Fanout(handlers...)
	}

	return &logger{handler: h}
}

// Default is used wherever no workflow-specific logger has been configured.
var Default Logger = NewLogger()

func (l *logger) logDepth(skip int, level slog.Level, msg string, args ...any) {
	ctx := context.Background()
	if !l.handler.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(skip, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.handler.Handle(ctx, r)
}

const callerSkip = 3

func (l *logger) Debug(msg string, args ...any) { l.logDepth(callerSkip, slog.LevelDebug, msg, args...) }
func (l *logger) Info(msg string, args ...any)   { l.logDepth(callerSkip, slog.LevelInfo, msg, args...) }
func (l *logger) Warn(msg string, args ...any)   { l.logDepth(callerSkip, slog.LevelWarn, msg, args...) }
func (l *logger) Error(msg string, args ...any)  { l.logDepth(callerSkip, slog.LevelError, msg, args...) }

func (l *logger) Debugf(format string, args ...any) {
	l.logDepth(callerSkip, slog.LevelDebug, sprintf(format, args...))
}
func (l *logger) Infof(format string, args ...any) {
	l.logDepth(callerSkip, slog.LevelInfo, sprintf(format, args...))
}
func (l *logger) Warnf(format string, args ...any) {
	l.logDepth(callerSkip, slog.LevelWarn, sprintf(format, args...))
}
func (l *logger) Errorf(format string, args ...any) {
	l.logDepth(callerSkip, slog.LevelError, sprintf(format, args...))
}

func (l *logger) With(args ...any) Logger {
	return &logger{handler: l.handler.WithAttrs(argsToAttrs(args))}
}

func (l *logger) WithGroup(name string) Logger {
	return &logger{handler: l.handler.WithGroup(name)}
}
