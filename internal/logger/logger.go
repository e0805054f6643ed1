package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the package-level zerolog logger used throughout the application.
var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init sets up the global zerolog logger with structured JSON output.
// Level is parsed from the given string (e.g. "debug", "info", "warn", "error").
func Init(level, service string) {
	InitWithWriter(os.Stdout, level, service)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(w io.Writer, level, service string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.DurationFieldInteger = true

	Log = zerolog.New(w).With().
		Timestamp().
		Str("service", service).
		Logger()
}
