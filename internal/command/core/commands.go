package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"byteguard/internal/command"
	"byteguard/internal/moderation"
	"byteguard/pkg/cmd"
)

// CommandsCommand shows and toggles command groups for the guild.
type CommandsCommand struct{ base }

func (c *CommandsCommand) Name() string        { return "commands" }
func (c *CommandsCommand) Description() string { return "Check or toggle command groups on this server" }
func (c *CommandsCommand) Category() string    { return "⚙️ Settings" }
func (c *CommandsCommand) Permissions() moderation.Capability {
	return moderation.CapAdministrator
}

func (c *CommandsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, g := range Groups(c.deps.Registry) {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: g, Value: g})
	}
	perms := int64(moderation.CapAdministrator)

	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: &perms,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "status",
				Description: "Check which command groups are enabled or disabled",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "toggle",
				Description: "Enable or disable a group of commands",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "group",
						Description: "Command group",
						Required:    true,
						Choices:     choices,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "state",
						Description: "Enable or disable the group",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Enable", Value: "enable"},
							{Name: "Disable", Value: "disable"},
						},
					},
				},
			},
		},
	}
}

func (c *CommandsCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	ev, err := command.EventFrom(inv)
	if err != nil {
		return err
	}
	switch ev.Subcommand {
	case "status":
		return c.status(ctx, ev)
	case "toggle":
		return c.toggle(ctx, ev)
	}
	return command.InvalidInput("Unknown subcommand. Use `status` or `toggle`.")
}

func (c *CommandsCommand) status(ctx context.Context, ev *command.Event) error {
	disabled, err := c.deps.Store.DisabledGroups(ev.GuildID)
	if err != nil {
		return fmt.Errorf("read disabled groups: %w", err)
	}
	off := map[string]bool{}
	for _, g := range disabled {
		off[g] = true
	}

	var sb strings.Builder
	sb.WriteString("Commands status:\n\n")
	for _, g := range Groups(c.deps.Registry) {
		state := "✅ enabled"
		if off[g] {
			state = "🚫 disabled"
		}
		fmt.Fprintf(&sb, "`%s`: %s\n", g, state)
	}
	return command.Respond(ctx, ev, command.Reply{Content: sb.String(), Ephemeral: true})
}

func (c *CommandsCommand) toggle(ctx context.Context, ev *command.Event) error {
	g, _ := ev.Options.String("group")
	state, _ := ev.Options.String("state")

	known := false
	for _, k := range Groups(c.deps.Registry) {
		known = known || k == g
	}
	if !known {
		return command.InvalidInput(fmt.Sprintf("Unknown command group `%s`.", g))
	}

	switch state {
	case "disable":
		if g == group {
			return command.Reject("You can't disable the `core` group.")
		}
		if err := c.deps.Store.DisableGroup(ev.GuildID, g); err != nil {
			return fmt.Errorf("disable group %s: %w", g, err)
		}
		return command.Respond(ctx, ev, command.Reply{Content: fmt.Sprintf("Command group `%s` disabled.", g), Ephemeral: true})
	case "enable":
		if err := c.deps.Store.EnableGroup(ev.GuildID, g); err != nil {
			return fmt.Errorf("enable group %s: %w", g, err)
		}
		return command.Respond(ctx, ev, command.Reply{Content: fmt.Sprintf("Command group `%s` enabled.", g), Ephemeral: true})
	}
	return command.InvalidInput("State must be `enable` or `disable`.")
}

// Groups returns the distinct command groups in reg, sorted.
func Groups(reg *cmd.Registry) []string {
	seen := map[string]bool{}
	var groups []string
	for _, c := range reg.GetAll() {
		meta, ok := command.Meta(c)
		if !ok || meta.Group() == "" || seen[meta.Group()] {
			continue
		}
		seen[meta.Group()] = true
		groups = append(groups, meta.Group())
	}
	sort.Strings(groups)
	return groups
}
