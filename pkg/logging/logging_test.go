package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moh-tz/hfrsync/pkg/logging"
)

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	t.Run("json to file with default fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sync.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "debug",
			Format: "json",
			Output: path,
			Fields: map[string]string{"service": "hfrsync"},
		})
		logger.Info().Msg("index built")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "index built")
		assert.Contains(t, string(content), `"service":"hfrsync"`)
	})

	t.Run("console format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sync.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:   "info",
			Format:  "console",
			Output:  path,
			NoColor: true,
		})
		logger.Info().Str("feed", "facility").Msg("page processed")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "INF")
		assert.Contains(t, string(content), "page processed")
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		assert.NotPanics(t, func() { logging.NewLoggerFromConfig(nil) })
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), "level %q", in)
	}
}

func TestContextLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithRunID(ctx, "run-1")
	ctx = logging.WithFeed(ctx, "hierarchy")
	ctx = logging.WithPage(ctx, 3)

	logging.Anomaly(logging.FromContext(ctx), "tag_mismatch").Msg("mismatch")

	entries := tl.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "run-1", entries[0]["run_id"])
	assert.Equal(t, "hierarchy", entries[0]["feed"])
	assert.EqualValues(t, 3, entries[0]["page"])
	assert.Equal(t, "run-1", logging.RunID(ctx))
	assert.Equal(t, 1, tl.CountField("anomaly", "tag_mismatch"))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	assert.Empty(t, logging.RunID(context.Background()))
}

func TestCaptureLoggingForTest(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)
	logging.Warn().Msg("captured")
	tl.AssertContains(t, "captured")
	tl.AssertNotContains(t, "absent")
}

func TestAnomalyNilLoggerUsesDefault(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)
	logging.Anomaly(nil, "orphan").Str("code", "W1").Msg("skipped")

	entries := tl.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "orphan", entries[0]["anomaly"])
	assert.Equal(t, "warn", entries[0]["level"])
}

func TestEnvPrefixWins(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("HFRSYNC_LOG_LEVEL", "debug")
	assert.Equal(t, zerolog.DebugLevel, logging.ParseLevel(logging.EnvLogLevel()))

	t.Setenv("HFRSYNC_LOG_LEVEL", "")
	assert.Equal(t, zerolog.ErrorLevel, logging.ParseLevel(logging.EnvLogLevel()))
}
