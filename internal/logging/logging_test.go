package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byteguard/internal/config"
)

func TestConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, closer := New(config.LogConfig{Level: "warn"}, &buf)
	defer closer.Close()

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, closer := New(config.LogConfig{Level: "chatty"}, &buf)
	defer closer.Close()

	log.Debug().Msg("debug line")
	log.Info().Msg("info line")
	assert.Contains(t, buf.String(), "unknown log level")
	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	var buf bytes.Buffer
	log, closer := New(config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1}, &buf)

	log.Debug().Str("guild", "g1").Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"guild":"g1"`)
	assert.Contains(t, string(data), `"message":"to file"`)
}
