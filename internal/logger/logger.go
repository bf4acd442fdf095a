package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Level  string
	Format string
	File   string
}

func level(option string) (slog.Leveler, bool) {
	switch strings.ToLower(option) {
	case "":
		return nil, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return nil, false
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a logger writing to stderr, or appending to File. Logs never
// share stdout with the command output. The returned closer releases the
// log file and must be called once the logger is no longer used.
func New(options *Options) (*slog.Logger, io.Closer) {
	return newWithOutput(options, os.Stderr)
}

func newWithOutput(options *Options, stderr io.Writer) (*slog.Logger, io.Closer) {
	level, ok := level(options.Level)
	if !ok {
		options.Level = ""
		logger, closer := newWithOutput(options, stderr)
		logger.Warn("could not parse logger level")
		return logger, closer
	}
	opts := slog.HandlerOptions{Level: level}

	var newHandler func(io.Writer, *slog.HandlerOptions) slog.Handler
	switch strings.ToLower(options.Format) {
	case "", "text":
		newHandler = func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, o) }
	case "json":
		newHandler = func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewJSONHandler(w, o) }
	default:
		options.Format = "text"
		logger, closer := newWithOutput(options, stderr)
		logger.Warn("could not parse logger format")
		return logger, closer
	}

	switch options.File {
	case "", "-":
		return slog.New(newHandler(stderr, &opts)), nopCloser{}
	case os.DevNull:
		return slog.New(slog.DiscardHandler), nopCloser{}
	}

	f, err := os.OpenFile(options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		options.File = ""
		logger, closer := newWithOutput(options, stderr)
		logger.Warn("could not open logger output", "err", err)
		return logger, closer
	}
	return slog.New(newHandler(f, &opts)), f
}
