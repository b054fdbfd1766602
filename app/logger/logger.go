// Package logger builds the service-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"postsapi/app/config"

	"github.com/rs/zerolog"
)

const serviceName = "postsapi"

// New returns a logger writing JSON to out, or a console format when
// cfg.Pretty is set. An unknown level falls back to info. A nil out means
// stdout.
func New(cfg config.LogConfig, env string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var w io.Writer = out
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("env", env).
		Logger()
}
