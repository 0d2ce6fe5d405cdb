package modcmd

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"byteguard/internal/command"
	"byteguard/internal/moderation"
	"byteguard/pkg/cmd"
)

type WarnCommand struct{ base }

func (c *WarnCommand) Name() string        { return "warn" }
func (c *WarnCommand) Description() string { return "Issue a warning to a user" }
func (c *WarnCommand) Permissions() moderation.Capability {
	return moderation.CapModerateMembers
}

func (c *WarnCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: defaultPerms(c.Permissions()),
		Options: []*discordgo.ApplicationCommandOption{
			userOption("User to warn"),
			reasonOptionDef("Reason for the warning"),
		},
	}
}

// warningID is a short, unique reference shown to moderators.
func warningID() string {
	return "W" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (c *WarnCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	ev, err := command.EventFrom(inv)
	if err != nil {
		return err
	}
	target, err := c.target(ctx, ev, "warn")
	if err != nil {
		return err
	}

	reason := reasonOption(ev)
	id := warningID()
	c.deps.Executor.Execute(ctx, moderation.Request{
		GuildID:   ev.GuildID,
		Target:    target.User,
		Action:    moderation.Warn(reason),
		Moderator: ev.Actor.ID,
		Notice: &moderation.Notice{
			Title:  "⚠️ You have received a warning",
			Color:  colorOrange,
			Footer: "Please follow the server rules to avoid further warnings.",
			Fields: []moderation.NoticeField{
				{Name: "Server", Value: ev.GuildName, Inline: true},
				{Name: "Moderator", Value: ev.Actor.Tag(), Inline: true},
				{Name: "Reason", Value: reason},
			},
		},
	})

	return command.RespondEmbed(ctx, ev, &discordgo.MessageEmbed{
		Title: "⚠️ Warning Issued",
		Color: colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			field("User", target.Tag(), true),
			field("Moderator", ev.Actor.Tag(), true),
			field("Reason", reason, false),
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Warning ID: " + id},
		Timestamp: now(),
	}, false)
}
