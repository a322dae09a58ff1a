package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger aliases zerolog.Logger so packages outside infra can accept a logger
// without importing the third-party module directly.
type Logger = zerolog.Logger

// NewLogger builds the process logger. Development gets a human-readable
// console writer at debug level; every other environment logs JSON at info.
// The "cli" environment writes to stderr so command output stays clean.
func NewLogger(appEnv, service string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if appEnv == "cli" {
		out = os.Stderr
	}

	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if service != "" {
		ctx = ctx.Str("service", service)
	}
	return ctx.Logger()
}
