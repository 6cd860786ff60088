package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

type options struct {
	debug   bool
	format  string
	quiet   bool
	writer  io.Writer
	logFile *os.File
}

// Option configures a Logger built by NewLogger.
type Option func(*options)

// WithDebug enables debug-level logging.
func WithDebug() Option { return func(o *options) { o.debug = true } }

// WithFormat selects the output encoding ("text" or "json").
func WithFormat(format string) Option { return func(o *options) { o.format = format } }

// WithQuiet suppresses the default stdout sink.
func WithQuiet() Option { return func(o *options) { o.quiet = true } }

// WithWriter directs log output to w instead of stdout.
func WithWriter(w io.Writer) Option { return func(o *options) { o.writer = w } }

// WithLogFile additionally tees log output into f.
func WithLogFile(f *os.File) Option { return func(o *options) { o.logFile = f } }

func sprintf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

func argsToAttrs(args []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", args[i])
		}
		attrs = append(attrs, slog.Any(key, args[i+1]))
	}
	return attrs
}
