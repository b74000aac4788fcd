package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New constructs the service logger. Development gets a console writer at
// debug level; every other environment logs JSON at info unless level
// overrides it.
func New(env, level string) zerolog.Logger {
	return NewWithWriter(os.Stdout, env, level)
}

// Bootstrap returns a production logger for failures that happen before the
// configuration is loaded
func Bootstrap() *zerolog.Logger {
	logger := New("production", "")
	return &logger
}

// NewWithWriter is New with an explicit sink
func NewWithWriter(w io.Writer, env, level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	if env == "development" {
		lvl = zerolog.DebugLevel
	}
	if level != "" {
		if parsed, err := zerolog.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}

	out := w
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
