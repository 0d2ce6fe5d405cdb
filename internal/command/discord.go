package command

import (
	"byteguard/internal/moderation"
	"byteguard/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// SlashProvider describes how a command is registered as a slash command.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// DiscordMeta is read by middleware and /help without depending on the
// concrete command type.
type DiscordMeta interface {
	Group() string
	Category() string
	// Permissions is the capability the actor needs; zero means none.
	Permissions() moderation.Capability
}

// Toggleable is implemented by commands that can be switched off globally.
type Toggleable interface {
	Enabled() bool
}

// Register adds c, wrapped by mws, to reg.
func Register(reg *cmd.Registry, c cmd.Command, mws ...cmd.Middleware) error {
	return reg.Register(cmd.Apply(c, mws...))
}

// Meta returns the DiscordMeta of a possibly wrapped command.
func Meta(c cmd.Command) (DiscordMeta, bool) {
	m, ok := cmd.Root(c).(DiscordMeta)
	return m, ok
}

// Slash returns the slash definition of a possibly wrapped command, or nil.
func Slash(c cmd.Command) *discordgo.ApplicationCommand {
	if sp, ok := cmd.Root(c).(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// Enabled reports whether a possibly wrapped command is switched on.
func Enabled(c cmd.Command) bool {
	if t, ok := cmd.Root(c).(Toggleable); ok {
		return t.Enabled()
	}
	return true
}
