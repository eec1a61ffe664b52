// Package logging provides structured logging for hfrsync using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise, so the
// same binary is readable interactively and parseable under a scheduler.
//
// Example usage:
//
//	ctx = logging.WithFeed(ctx, "facility")
//	logging.Anomaly(logging.FromContext(ctx), "tag_mismatch").
//	    Str("code", code).
//	    Msg("Location found by code carries a different tag")
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvPrefix prefixes the environment variables read by the default logger.
// HFRSYNC_LOG_LEVEL and HFRSYNC_LOG_FORMAT win over LOG_LEVEL and LOG_FORMAT.
const EnvPrefix = "HFRSYNC_"

// App is attached to every entry of the default logger.
const App = "hfrsync"

var defaultLogger zerolog.Logger

func init() {
	defaultLogger = createDefaultLogger()
}

func createDefaultLogger() zerolog.Logger {
	var writer io.Writer = os.Stderr
	if isatty() && env("LOG_FORMAT") != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	level := ParseLevel(EnvLogLevel())
	if EnvLogLevel() == "" && os.Getenv("DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("app", App).
		Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// EnvLogLevel returns the log level requested through the environment, or
// "" when none is set.
func EnvLogLevel() string {
	return env("LOG_LEVEL")
}

// env reads EnvPrefix+key, falling back to the bare key.
func env(key string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return os.Getenv(key)
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Warn starts a new warning level log event on the default logger.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// Anomaly starts a warning event tagged anomaly=<kind>. Skipped records and
// levels are logged through it so a run's anomalies can be filtered by kind.
func Anomaly(logger *zerolog.Logger, kind string) *zerolog.Event {
	if logger == nil {
		logger = Default()
	}
	return logger.Warn().Str("anomaly", kind)
}

func isatty() bool {
	fileInfo, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
