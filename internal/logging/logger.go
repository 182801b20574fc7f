package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Default level is warn so normal CLI output stays clean; --verbose drops it
// to debug for the whole process.
func init() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	zerolog.TimeFieldFormat = time.RFC3339
}

// SetVerbose switches the global level to debug.
func SetVerbose(on bool) {
	if on {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// NewLogger returns a console logger tagged with a component name.
func NewLogger(component string) zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).With().
		Timestamp().
		Str("component", component).
		Logger()
}

// Nop returns a logger that discards everything (for tests).
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
