package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"byteguard/internal/app"
	"byteguard/internal/config"
	"byteguard/internal/logging"
)

func main() {
	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log, closer := logging.New(cfg.Log, os.Stderr)
	defer closer.Close()
	log.Info().Str("app", app.AppName).Msg("starting")

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		closer.Close()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("bot stopped with error")
		closer.Close()
		os.Exit(1)
	}
	log.Info().Msg("exited cleanly")
}
