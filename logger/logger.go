// Package logger builds the *slog.Logger instances the SDK's components
// accept. The CLI uses the pretty charmbracelet handler, services use the
// JSON handler, and libraries default to a text handler.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	charm "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	writers []io.Writer
}

// Option configures a Logger created with New.
type Option func(*config)

// WithDebug sets the log level to Debug when true, Info otherwise.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		} else {
			c.level = slog.LevelInfo
		}
	}
}

// WithPretty enables the charmbracelet/log handler for colorized,
// human-friendly CLI output.
func WithPretty(pretty bool) Option {
	return func(c *config) {
		c.pretty = pretty
	}
}

// WithJSON enables slog's JSON handler for structured service logs.
func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithWriter overrides the output writer. Defaults to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writers = []io.Writer{w}
	}
}

// WithWriters sets multiple output writers (combined via io.MultiWriter).
func WithWriters(w ...io.Writer) Option {
	return func(c *config) {
		c.writers = w
	}
}

// WithSource includes source file:line in log output.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}

// New builds a *slog.Logger from the given options.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.writers) == 0 {
		c.writers = []io.Writer{os.Stderr}
	}
	w := io.MultiWriter(c.writers...)

	var h slog.Handler
	switch {
	case c.pretty:
		h = charm.NewWithOptions(w, charm.Options{
			Level:           charmLevel(c.level),
			ReportTimestamp: true,
			ReportCaller:    c.source,
			TimeFormat:      time.Kitchen,
		})
	case c.json:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		})
	default:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		})
	}
	return slog.New(h)
}

// Discard returns a logger that drops everything. It is the default for
// library components constructed without WithLogger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func charmLevel(l slog.Level) charm.Level {
	switch {
	case l <= slog.LevelDebug:
		return charm.DebugLevel
	case l <= slog.LevelInfo:
		return charm.InfoLevel
	case l <= slog.LevelWarn:
		return charm.WarnLevel
	default:
		return charm.ErrorLevel
	}
}
