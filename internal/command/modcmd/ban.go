package modcmd

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bwmarrin/discordgo"

	"byteguard/internal/command"
	"byteguard/internal/moderation"
	"byteguard/internal/scheduler"
	"byteguard/pkg/cmd"
	"byteguard/pkg/util"
)

// maxTempBanSeconds keeps FireAt representable as a time.Duration offset.
const maxTempBanSeconds = uint64(math.MaxInt64 / int64(time.Second))

const invalidDuration = "Invalid duration format! Use: `1d`, `2h`, `30m`, or combos like `1d2h30m`"

type BanCommand struct{ base }

func (c *BanCommand) Name() string        { return "ban" }
func (c *BanCommand) Description() string { return "Ban a user from the server" }
func (c *BanCommand) Permissions() moderation.Capability {
	return moderation.CapBanMembers
}

func (c *BanCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: defaultPerms(c.Permissions()),
		Options: []*discordgo.ApplicationCommandOption{
			userOption("User to ban"),
			reasonOptionDef("Reason for ban"),
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "duration",
				Description: "Duration for temp ban (e.g., 1d, 2h, 30m; optional)",
			},
		},
	}
}

func (c *BanCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	ev, err := command.EventFrom(inv)
	if err != nil {
		return err
	}

	durationText, temporary := ev.Options.String("duration")
	var seconds uint64
	if temporary {
		seconds, err = util.ParseDuration(durationText)
		if err != nil || seconds > maxTempBanSeconds {
			return command.InvalidInput(invalidDuration)
		}
	}

	target, err := c.target(ctx, ev, "ban")
	if err != nil {
		return err
	}

	reason := reasonOption(ev)
	action := moderation.Ban(reason)
	notice := &moderation.Notice{
		Title:  "🔨 You have been banned from " + ev.GuildName,
		Color:  colorRed,
		Footer: "This action was performed by ByteGuard",
		Fields: []moderation.NoticeField{
			{Name: "Moderator", Value: ev.Actor.Tag(), Inline: true},
			{Name: "Reason", Value: reason},
		},
	}
	if temporary {
		action = moderation.TempBan(reason, seconds)
		notice = &moderation.Notice{
			Title:  "🔨 You have been temporarily banned from " + ev.GuildName,
			Color:  colorOrange,
			Footer: "This action was performed by ByteGuard",
			Fields: []moderation.NoticeField{
				{Name: "Moderator", Value: ev.Actor.Tag(), Inline: true},
				{Name: "Duration", Value: durationText, Inline: true},
				{Name: "Reason", Value: reason},
				{Name: "You will be unbanned automatically", Value: "No further action needed"},
			},
		}
	}

	res := c.deps.Executor.Execute(ctx, moderation.Request{
		GuildID:   ev.GuildID,
		Target:    target.User,
		Action:    action,
		Moderator: ev.Actor.ID,
		Notice:    notice,
	})
	if !res.OK() {
		return command.PlatformFailure("ban", res.Err)
	}

	if !temporary {
		return command.RespondEmbed(ctx, ev, &discordgo.MessageEmbed{
			Title: "🔨 User Banned",
			Color: colorRed,
			Fields: []*discordgo.MessageEmbedField{
				field("User", target.Tag(), true),
				field("Moderator", ev.Actor.Tag(), true),
				field("Reason", reason, false),
			},
			Footer:    &discordgo.MessageEmbedFooter{Text: footer},
			Timestamp: now(),
		}, false)
	}

	fireAt := res.CompletedAt.Add(time.Duration(seconds) * time.Second)
	embed := &discordgo.MessageEmbed{
		Title: "🔨 User Temporarily Banned",
		Color: colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			field("User", target.Tag(), true),
			field("Moderator", ev.Actor.Tag(), true),
			field("Duration", durationText, true),
			field("Reason", reason, false),
			field("Unban Time", util.DiscordTimestamp(fireAt, "F"), false),
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: footer},
		Timestamp: now(),
	}

	if _, err := c.deps.Scheduler.Schedule(scheduler.Unban{
		GuildID: ev.GuildID,
		UserID:  target.ID,
		FireAt:  fireAt,
	}); err != nil {
		c.deps.Log.Warn().Err(err).Str("guild", ev.GuildID).Str("user", target.ID).Msg("temporary ban without automatic unban")
		embed.Fields = append(embed.Fields, field("⚠️ Warning", fmt.Sprintf("The automatic unban could not be scheduled: %v", err), false))
	}

	return command.RespondEmbed(ctx, ev, embed, false)
}
