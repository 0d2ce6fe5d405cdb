// Package command defines what a command handler sees: the Event built from an
// interaction, the Responder used to answer it and the user-facing error kinds.
package command

import (
	"context"
	"errors"
	"strings"

	"byteguard/internal/moderation"
	"byteguard/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// EmbedColor is the accent used on every embed the bot sends.
const EmbedColor = 0xb01e66

// Reply is an answer to an interaction.
type Reply struct {
	Content   string
	Embeds    []*discordgo.MessageEmbed
	Ephemeral bool
}

// Responder answers one interaction. Reply and Defer may be used once, and
// only before the interaction is acknowledged; EditOriginal after.
type Responder interface {
	Reply(ctx context.Context, r Reply) error
	Defer(ctx context.Context, ephemeral bool) error
	EditOriginal(ctx context.Context, r Reply) error
	Acknowledged() bool
}

// Options holds the parsed command options by name.
type Options struct {
	Strings map[string]string
	Users   map[string]moderation.User
}

// String returns the trimmed string option name, if set and non-blank.
func (o Options) String(name string) (string, bool) {
	v, ok := o.Strings[name]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// User returns the user option name.
func (o Options) User(name string) (moderation.User, bool) {
	u, ok := o.Users[name]
	return u, ok
}

// Event is one command invocation.
type Event struct {
	Name       string
	Subcommand string
	GuildID    string
	GuildName  string
	ChannelID  string
	Actor      moderation.Member
	Options    Options
	Responder  Responder
}

var errNoEvent = errors.New("invocation does not carry a command event")

// EventFrom extracts the Event from a command invocation.
func EventFrom(inv *cmd.Invocation) (*Event, error) {
	if inv == nil {
		return nil, errNoEvent
	}
	ev, ok := inv.Data.(*Event)
	if !ok || ev == nil {
		return nil, errNoEvent
	}
	return ev, nil
}

// Respond replies, or edits the original response if the interaction was
// already acknowledged.
func Respond(ctx context.Context, ev *Event, r Reply) error {
	if ev.Responder.Acknowledged() {
		return ev.Responder.EditOriginal(ctx, r)
	}
	return ev.Responder.Reply(ctx, r)
}

// RespondEmbed is Respond with a single embed.
func RespondEmbed(ctx context.Context, ev *Event, embed *discordgo.MessageEmbed, ephemeral bool) error {
	if embed.Color == 0 {
		embed.Color = EmbedColor
	}
	return Respond(ctx, ev, Reply{Embeds: []*discordgo.MessageEmbed{embed}, Ephemeral: ephemeral})
}
