// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup sets the global level and output. Unknown levels fall back to info.
// pretty selects the human-readable console writer.
func Setup(level string, pretty bool) {
	SetupWithWriter(level, pretty, os.Stderr)
}

// SetupWithWriter is Setup with an explicit destination.
func SetupWithWriter(level string, pretty bool, w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
