// Package logging builds the process logger: human-readable console output,
// plus a size-rotated JSON file when a path is configured.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"byteguard/internal/config"
)

// New returns a logger configured by cfg and a closer for the log file.
// An unknown level falls back to info.
func New(cfg config.LogConfig, console io.Writer) (zerolog.Logger, io.Closer) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.DateTime}}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, file)
		closer = file
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	if err != nil && cfg.Level != "" {
		log.Warn().Str("level", cfg.Level).Msg("unknown log level, using info")
	}
	return log, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
