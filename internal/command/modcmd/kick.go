package modcmd

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"byteguard/internal/command"
	"byteguard/internal/moderation"
	"byteguard/pkg/cmd"
)

type KickCommand struct{ base }

func (c *KickCommand) Name() string        { return "kick" }
func (c *KickCommand) Description() string { return "Kick a user from the server" }
func (c *KickCommand) Permissions() moderation.Capability {
	return moderation.CapKickMembers
}

func (c *KickCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: defaultPerms(c.Permissions()),
		Options: []*discordgo.ApplicationCommandOption{
			userOption("User to kick"),
			reasonOptionDef("Reason for kick"),
		},
	}
}

func (c *KickCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	ev, err := command.EventFrom(inv)
	if err != nil {
		return err
	}
	target, err := c.target(ctx, ev, "kick")
	if err != nil {
		return err
	}

	reason := reasonOption(ev)
	res := c.deps.Executor.Execute(ctx, moderation.Request{
		GuildID:   ev.GuildID,
		Target:    target.User,
		Action:    moderation.Kick(reason),
		Moderator: ev.Actor.ID,
		Notice: &moderation.Notice{
			Title:  "👢 You have been kicked from " + ev.GuildName,
			Color:  colorYellow,
			Footer: "This action was performed by ByteGuard",
			Fields: []moderation.NoticeField{
				{Name: "Moderator", Value: ev.Actor.Tag(), Inline: true},
				{Name: "Reason", Value: reason},
			},
		},
	})
	if !res.OK() {
		return command.PlatformFailure("kick", res.Err)
	}

	return command.RespondEmbed(ctx, ev, &discordgo.MessageEmbed{
		Title: "👢 User Kicked",
		Color: colorYellow,
		Fields: []*discordgo.MessageEmbedField{
			field("User", target.Tag(), true),
			field("Moderator", ev.Actor.Tag(), true),
			field("Reason", reason, false),
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: footer},
		Timestamp: now(),
	}, false)
}
