// Package logging configures the process-wide zerolog logger.
//
// Workflow steps emit structured events at each state transition; human-readable
// narration is a presentation concern handled by the console writer in
// development mode.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets up the global logger. In development the output is a colorized
// console stream; otherwise newline-delimited JSON on stdout.
func Init(env string, level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl := parseLevel(level)
	zerolog.SetGlobalLevel(lvl)

	if strings.EqualFold(env, "development") {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Str("service", "ecwcoder").Logger()
		return
	}

	log.Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "ecwcoder").
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
