// Package telemetry provides logging and metric instrumentation.
package telemetry

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger creates the service logger.
func NewLogger(service, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	return zerolog.New(os.Stderr).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
