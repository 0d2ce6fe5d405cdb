// Package discord connects the command core to the Discord gateway: it turns
// interactions into command events, keeps slash registrations in sync and
// provides the REST-backed moderation adapters.
package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"byteguard/internal/command"
	"byteguard/internal/config"
	"byteguard/internal/dispatch"
	"byteguard/pkg/cmd"
	"byteguard/pkg/retrylimit"
	"byteguard/pkg/util"
)

const (
	registerWorkers = 4
	// Discord expects an initial interaction response within three seconds.
	replyDeadline = 3 * time.Second
)

// Dispatcher routes command events.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *command.Event) dispatch.Outcome
}

// Bot owns the gateway session.
type Bot struct {
	s          *discordgo.Session
	cfg        *config.Config
	registry   *cmd.Registry
	dispatcher Dispatcher
	directory  *Directory
	log        zerolog.Logger

	cache   hashCache
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
	refresh chan refreshRequest

	mu  sync.RWMutex
	ctx context.Context
}

// NewSession creates an unopened session for token.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	return s, nil
}

// New wires a bot around s. The registry must be sealed.
func New(s *discordgo.Session, cfg *config.Config, registry *cmd.Registry, d Dispatcher, dir *Directory, log zerolog.Logger) *Bot {
	log = log.With().Str("component", "discord").Logger()
	return &Bot{
		s:          s,
		cfg:        cfg,
		registry:   registry,
		dispatcher: d,
		directory:  dir,
		log:        log,
		cache:      hashCache{dir: cfg.CommandCacheDir},
		limiter:    retrylimit.NewAdaptiveLimiter(10, 1, 40, 2, 0.5),
		retry:      retrylimit.DefaultConfig(log),
		refresh:    make(chan refreshRequest, 64),
		ctx:        context.Background(),
	}
}

// Run opens the session and serves until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	b.s.AddHandler(b.onReady)
	b.s.AddHandler(b.onGuildCreate)
	b.s.AddHandler(b.onInteractionCreate)
	b.s.AddHandler(b.onGuildRoleUpdate)
	b.s.AddHandler(b.onGuildRoleDelete)

	if err := b.s.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.s.Close()

	for {
		select {
		case <-ctx.Done():
			b.log.Info().Msg("shutdown signal received, closing session")
			return nil
		case req := <-b.refresh:
			if err := b.syncCommands(ctx, req); err != nil {
				b.log.Error().Err(err).Str("guild", req.GuildID).Msg("command sync failed")
			}
		}
	}
}

func (b *Bot) baseContext() context.Context {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ctx
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		if b.leaveIfBlacklisted(s, g.ID) {
			continue
		}
		if b.cfg.InitSlashCommands {
			b.RequestRefresh(g.ID, false)
		}
	}
	if !b.cfg.InitSlashCommands {
		b.log.Info().Msg("slash command registration skipped")
	}
	b.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.leaveIfBlacklisted(s, g.ID) {
		return
	}
	b.log.Debug().Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
	if b.cfg.InitSlashCommands {
		b.RequestRefresh(g.ID, false)
	}
}

func (b *Bot) onGuildRoleUpdate(_ *discordgo.Session, e *discordgo.GuildRoleUpdate) {
	b.directory.Invalidate(e.GuildID)
}

func (b *Bot) onGuildRoleDelete(_ *discordgo.Session, e *discordgo.GuildRoleDelete) {
	b.directory.Invalidate(e.GuildID)
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) bool {
	if !b.cfg.Blacklisted(guildID) {
		return false
	}
	b.log.Info().Str("guild", guildID).Msg("leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		b.log.Error().Err(err).Str("guild", guildID).Msg("failed to leave guild")
	}
	return true
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		b.log.Debug().Int("type", int(i.Type)).Msg("ignoring interaction")
		return
	}
	ev := eventFrom(i.Interaction, newResponder(s, i.Interaction))
	if g, err := s.State.Guild(ev.GuildID); err == nil {
		ev.GuildName = g.Name
	}

	ctx, cancel := context.WithTimeout(b.baseContext(), replyDeadline)
	defer cancel()
	out := b.dispatcher.Dispatch(ctx, ev)
	b.log.Debug().Str("command", out.Command).Str("status", string(out.Status)).Msg("interaction dispatched")
}

// definitions returns the slash definitions of every enabled command.
func (b *Bot) definitions() map[string]*discordgo.ApplicationCommand {
	defs := make(map[string]*discordgo.ApplicationCommand)
	for _, c := range b.registry.GetAll() {
		if !command.Enabled(c) {
			continue
		}
		def := command.Slash(c)
		if def == nil {
			continue
		}
		if def.Type == 0 {
			def.Type = discordgo.ChatApplicationCommand
		}
		defs[def.Name] = def
	}
	return defs
}

// syncCommands deletes registrations that no longer exist and creates the
// ones whose definition hash changed since the last sync.
func (b *Bot) syncCommands(ctx context.Context, req refreshRequest) error {
	if b.s.State.User == nil {
		return fmt.Errorf("session is not ready")
	}
	appID := b.s.State.User.ID
	log := b.log.With().Str("guild", req.GuildID).Logger()

	existing, err := b.s.ApplicationCommands(appID, req.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("list commands: %w", err)
	}
	hashes, err := b.cache.load(req.GuildID)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring command cache")
	}
	if req.Force {
		hashes = make(map[string]string)
	}

	wanted := b.definitions()
	registered := make(map[string]bool, len(existing))
	for _, old := range existing {
		if _, ok := wanted[old.Name]; ok {
			registered[old.Name] = true
			continue
		}
		log.Info().Str("command", old.Name).Msg("deleting obsolete command")
		if err := b.s.ApplicationCommandDelete(appID, req.GuildID, old.ID, discordgo.WithContext(ctx)); err != nil {
			log.Error().Err(err).Str("command", old.Name).Msg("failed to delete command")
		}
		delete(hashes, old.Name)
	}

	var changed []*discordgo.ApplicationCommand
	for name, def := range wanted {
		if !registered[name] || hashes[name] != hashCommand(def) {
			changed = append(changed, def)
		}
	}
	if len(changed) == 0 {
		return b.cache.save(req.GuildID, hashes)
	}
	log.Info().Int("changed", len(changed)).Msg("registering commands")

	var mu sync.Mutex
	err = util.Parallel(ctx, changed, registerWorkers, func(ctx context.Context, def *discordgo.ApplicationCommand) error {
		err := retrylimit.Do(ctx, b.limiter, b.retry, func(ctx context.Context) error {
			_, err := b.s.ApplicationCommandCreate(appID, req.GuildID, def, discordgo.WithContext(ctx))
			return err
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", def.Name, err)
		}
		mu.Lock()
		hashes[def.Name] = hashCommand(def)
		mu.Unlock()
		log.Debug().Str("command", def.Name).Float64("rate", b.limiter.Limit()).Msg("command registered")
		return nil
	})
	if saveErr := b.cache.save(req.GuildID, hashes); saveErr != nil {
		log.Warn().Err(saveErr).Msg("failed to save command cache")
	}
	return err
}
