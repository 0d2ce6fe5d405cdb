// Package app assembles the bot from configuration and runs its long-lived
// parts under one context.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"byteguard/internal/command/core"
	"byteguard/internal/command/modcmd"
	"byteguard/internal/config"
	"byteguard/internal/discord"
	"byteguard/internal/dispatch"
	"byteguard/internal/metrics"
	"byteguard/internal/middleware"
	"byteguard/internal/moderation"
	"byteguard/internal/scheduler"
	"byteguard/internal/storage"
	"byteguard/pkg/cmd"
	"byteguard/pkg/jobmgr"
)

const (
	AppName = "ByteGuard"

	guildCacheSize = 256
	guildCacheTTL  = 5 * time.Minute
)

// BuildRegistry registers every command with mws and seals the registry.
// A duplicate name is returned as an error.
func BuildRegistry(coreDeps *core.Deps, modDeps *modcmd.Deps, mws ...cmd.Middleware) (*cmd.Registry, error) {
	reg := cmd.NewRegistry()
	coreDeps.Registry = reg
	if err := core.Register(reg, coreDeps, mws...); err != nil {
		return nil, fmt.Errorf("register core commands: %w", err)
	}
	if err := modcmd.Register(reg, modDeps, mws...); err != nil {
		return nil, fmt.Errorf("register moderation commands: %w", err)
	}
	reg.Seal()
	return reg, nil
}

// Middlewares is the chain every command runs behind. Apply makes the last
// one outermost, so execution order is logger, guild check, group check,
// permission check.
func Middlewares(cfg *config.Config, store *storage.Storage, log zerolog.Logger) []cmd.Middleware {
	return []cmd.Middleware{
		middleware.WithUserPermissionCheck(cfg.DeveloperID),
		middleware.WithGroupAccessCheck(store),
		middleware.WithGuildOnly(),
		middleware.WithCommandLogger(store, log),
	}
}

// App is the assembled bot.
type App struct {
	cfg       *config.Config
	log       zerolog.Logger
	store     *storage.Storage
	pool      *jobmgr.Pool
	notifier  *moderation.Notifier
	scheduler *scheduler.Scheduler
	bot       *discord.Bot
}

// New builds every component. Nothing runs until Run.
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	store, err := storage.New(cfg.StoragePath, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	platform := discord.NewPlatform(session)
	directory := discord.NewDirectory(session, guildCacheSize, guildCacheTTL)

	pool := jobmgr.NewPool(cfg.ThreadPoolSize, cfg.QueueSize, log)
	pool.SetReporter(func(status, _ string, _ error) {
		metrics.PoolJobs.WithLabelValues(status).Inc()
	})

	notifier := moderation.NewNotifier(platform, log)
	executor := moderation.NewExecutor(platform, notifier, log)
	sched := scheduler.New(executor, pool, log)

	reg, err := BuildRegistry(
		&core.Deps{Store: store, Latency: session.HeartbeatLatency, AppName: AppName},
		&modcmd.Deps{
			Directory: directory,
			Executor:  executor,
			Scheduler: sched,
			Feature:   cfg.FeatureModeration,
			Log:       log,
		},
		Middlewares(cfg, store, log)...,
	)
	if err != nil {
		pool.Shutdown(0)
		_ = store.Close()
		return nil, err
	}
	log.Info().Int("commands", reg.Len()).Msg("command registry sealed")

	d := dispatch.New(reg, pool, log, dispatch.WithHandlerTimeout(cfg.HandlerTimeout))

	return &App{
		cfg:       cfg,
		log:       log,
		store:     store,
		pool:      pool,
		notifier:  notifier,
		scheduler: sched,
		bot:       discord.New(session, cfg, reg, d, directory, log),
	}, nil
}

// Run serves until ctx is done or a component fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.bot.Run(ctx) })
	g.Go(func() error {
		a.scheduler.Run(ctx)
		return nil
	})
	g.Go(func() error { return metrics.Serve(ctx, a.cfg.MetricsAddr, a.log) })

	err := g.Wait()
	a.shutdown()
	return err
}

func (a *App) shutdown() {
	a.scheduler.Stop()
	if left := a.pool.Shutdown(a.cfg.ShutdownGrace); len(left) > 0 {
		a.log.Warn().Strs("jobs", left).Msg("jobs still running at shutdown")
	}
	if !a.notifier.Wait(a.cfg.ShutdownGrace) {
		a.log.Warn().Msg("some notices were not delivered before shutdown")
	}
	if err := a.store.Close(); err != nil {
		a.log.Error().Err(err).Msg("failed to close storage")
	}
	a.log.Info().Msg("shutdown complete")
}
