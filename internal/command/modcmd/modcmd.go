// Package modcmd implements the moderation slash commands: ban (with optional
// temporary duration), kick, warn and unban.
package modcmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"byteguard/internal/command"
	"byteguard/internal/moderation"
	"byteguard/internal/scheduler"
	"byteguard/pkg/cmd"
)

const (
	group    = "moderation"
	category = "🛡️ Moderation"
	footer   = "Action performed by ByteGuard"

	colorRed    = 0xff0000
	colorOrange = 0xffc800
	colorYellow = 0xffff00
	colorGreen  = 0x00c853
)

// Executor applies moderation actions.
type Executor interface {
	Execute(ctx context.Context, req moderation.Request) moderation.Result
}

// Scheduler registers automatic unbans.
type Scheduler interface {
	Schedule(u scheduler.Unban) (scheduler.Handle, error)
}

// Deps is shared by every moderation command.
type Deps struct {
	Directory moderation.Directory
	Executor  Executor
	Scheduler Scheduler
	// Feature switches the whole moderation group on or off.
	Feature bool
	Log     zerolog.Logger
}

// Register adds all moderation commands to reg, each wrapped by mws.
func Register(reg *cmd.Registry, deps *Deps, mws ...cmd.Middleware) error {
	for _, c := range []cmd.Command{
		&BanCommand{base{deps: deps}},
		&KickCommand{base{deps: deps}},
		&WarnCommand{base{deps: deps}},
		&UnbanCommand{base{deps: deps}},
	} {
		if err := command.Register(reg, c, mws...); err != nil {
			return err
		}
	}
	return nil
}

// base carries the metadata shared by the moderation commands.
type base struct {
	deps *Deps
}

func (b *base) Group() string    { return group }
func (b *base) Category() string { return category }
func (b *base) Enabled() bool    { return b.deps.Feature }

// target resolves the "user" option to a guild member the actor may act on.
func (b *base) target(ctx context.Context, ev *command.Event, verb string) (moderation.Member, error) {
	u, ok := ev.Options.User("user")
	if !ok {
		return moderation.Member{}, command.InvalidInput("You must specify a user.")
	}
	target, err := b.deps.Directory.Member(ctx, ev.GuildID, u.ID)
	if errors.Is(err, moderation.ErrNotAMember) {
		return moderation.Member{}, command.NotAMember()
	}
	if err != nil {
		return moderation.Member{}, fmt.Errorf("lookup member %s: %w", u.ID, err)
	}
	self, err := b.deps.Directory.Self(ctx, ev.GuildID)
	if err != nil {
		return moderation.Member{}, fmt.Errorf("lookup bot member: %w", err)
	}
	// Interactions carry the actor's permissions but not role positions.
	actor := ev.Actor
	if m, err := b.deps.Directory.Member(ctx, ev.GuildID, ev.Actor.ID); err == nil {
		actor = m
	} else if !errors.Is(err, moderation.ErrNotAMember) {
		return moderation.Member{}, fmt.Errorf("lookup actor %s: %w", ev.Actor.ID, err)
	}
	if d := moderation.CanAct(actor, target, self); !d.Allowed {
		return moderation.Member{}, command.Reject(d.Message(verb))
	}
	return target, nil
}

func reasonOption(ev *command.Event) string {
	r, _ := ev.Options.String("reason")
	return moderation.NormalizeReason(r)
}

func userOption(desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: desc,
		Required:    true,
	}
}

func reasonOptionDef(desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: desc,
		MaxLength:   moderation.MaxReasonLength,
	}
}

func defaultPerms(c moderation.Capability) *int64 {
	v := int64(c)
	return &v
}

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

func now() string { return time.Now().Format(time.RFC3339) }
