package modcmd

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"byteguard/internal/command"
	"byteguard/internal/moderation"
	"byteguard/pkg/cmd"
)

// UnbanCommand lifts a ban by hand. A pending automatic unban for the same
// user still fires later and fails harmlessly.
type UnbanCommand struct{ base }

func (c *UnbanCommand) Name() string        { return "unban" }
func (c *UnbanCommand) Description() string { return "Lift a ban" }
func (c *UnbanCommand) Permissions() moderation.Capability {
	return moderation.CapBanMembers
}

func (c *UnbanCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: defaultPerms(c.Permissions()),
		Options: []*discordgo.ApplicationCommandOption{
			userOption("User to unban"),
			reasonOptionDef("Reason for unban"),
		},
	}
}

func (c *UnbanCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	ev, err := command.EventFrom(inv)
	if err != nil {
		return err
	}
	// Banned users are not members, so there is no hierarchy to check.
	u, ok := ev.Options.User("user")
	if !ok {
		return command.InvalidInput("You must specify a user.")
	}
	if u.ID == ev.Actor.ID {
		return command.Reject(moderation.Decision{Reason: moderation.ReasonSelf}.Message("unban"))
	}

	reason := reasonOption(ev)
	res := c.deps.Executor.Execute(ctx, moderation.Request{
		GuildID:   ev.GuildID,
		Target:    u,
		Action:    moderation.Unban(reason),
		Moderator: ev.Actor.ID,
	})
	if !res.OK() {
		return command.PlatformFailure("unban", res.Err)
	}

	return command.RespondEmbed(ctx, ev, &discordgo.MessageEmbed{
		Title: "🔓 User Unbanned",
		Color: colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			field("User", u.Tag(), true),
			field("Moderator", ev.Actor.Tag(), true),
			field("Reason", reason, false),
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: footer},
		Timestamp: now(),
	}, false)
}
