// Package logging builds the structured logger used across gymbook.
//
// Records are JSON. Every record at or above the configured level goes to info.log,
// error records are also written to error.log, and outside production a human readable
// copy goes to the console.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "gymbook"

// Logger wraps slog.Logger and owns the log files it writes to.
type Logger struct {
	*slog.Logger
	closers []io.Closer
}

type Options struct {
	Level string
	// Dir receives info.log and error.log. Empty disables file output.
	Dir     string
	Console bool
	// ConsoleWriter defaults to os.Stderr.
	ConsoleWriter io.Writer
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func New(opts Options) *Logger {
	level := ParseLevel(opts.Level)
	l := &Logger{}

	var handlers []slog.Handler
	if opts.Dir != "" {
		info := rotating(filepath.Join(opts.Dir, "info.log"))
		errs := rotating(filepath.Join(opts.Dir, "error.log"))
		l.closers = append(l.closers, info, errs)
		handlers = append(handlers,
			slog.NewJSONHandler(info, &slog.HandlerOptions{Level: level}),
			slog.NewJSONHandler(errs, &slog.HandlerOptions{Level: slog.LevelError}),
		)
	}
	if opts.Console {
		w := opts.ConsoleWriter
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}

	var h slog.Handler
	switch len(handlers) {
	case 0:
		h = slog.NewJSONHandler(io.Discard, nil)
	case 1:
		h = handlers[0]
	default:
		h = slogmulti.Fanout(handlers...)
	}
	l.Logger = slog.New(h).With("service", serviceName)
	return l
}

// Default returns a console-only logger at info level.
func Default() *Logger {
	return New(Options{Level: "info", Console: true})
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return New(Options{})
}

// With returns a child logger carrying args. Closing the child is a no-op.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Close flushes and closes the log files.
func (l *Logger) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func rotating(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
	}
}
