package core

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"byteguard/internal/command"
	"byteguard/pkg/cmd"
)

type PingCommand struct{ base }

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check bot latency" }
func (c *PingCommand) Category() string    { return "🛠️ Maintenance" }

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *PingCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	ev, err := command.EventFrom(inv)
	if err != nil {
		return err
	}
	if err := ev.Responder.Defer(ctx, false); err != nil {
		return fmt.Errorf("defer ping: %w", err)
	}

	var latency int64
	if c.deps.Latency != nil {
		latency = c.deps.Latency().Milliseconds()
	}
	return ev.Responder.EditOriginal(ctx, command.Reply{Content: fmt.Sprintf("🏓 Pong! %dms", latency)})
}
