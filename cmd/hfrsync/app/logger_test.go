package app

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"default", Config{}, "info"},
		{"verbose", Config{Verbose: true}, "debug"},
		{"quiet", Config{Quiet: true}, "warn"},
		{"verbose and quiet", Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit wins", Config{Verbose: true, LogLevel: "error"}, "error"},
		{"invalid explicit", Config{LogLevel: "loud"}, "info"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(&tt.config))
		})
	}
}

func TestNewLoggerDiscard(t *testing.T) {
	old := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(old) })

	logger := NewLogger(&Config{LogOutput: "discard", LogFormat: "json", Quiet: true})
	assert.Equal(t, "warn", logger.GetLevel().String())
}
