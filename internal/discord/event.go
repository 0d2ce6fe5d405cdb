package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"byteguard/internal/command"
	"byteguard/internal/moderation"
)

// eventFrom converts an application command interaction. The actor carries
// the permissions Discord computed for the channel; role rank is resolved
// later by the commands that need it.
func eventFrom(i *discordgo.Interaction, r command.Responder) *command.Event {
	data := i.ApplicationCommandData()
	ev := &command.Event{
		Name:      data.Name,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Responder: r,
	}
	switch {
	case i.Member != nil:
		if i.Member.User != nil {
			ev.Actor.User = userFrom(i.Member.User)
		}
		ev.Actor.Permissions = moderation.Capability(i.Member.Permissions)
	case i.User != nil:
		ev.Actor.User = userFrom(i.User)
	}
	ev.Subcommand, ev.Options = parseOptions(data.Options, data.Resolved)
	return ev
}

// parseOptions flattens one level of subcommand and collects the remaining
// options by name.
func parseOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) (string, command.Options) {
	var sub string
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		sub = opts[0].Name
		opts = opts[0].Options
	}
	out := command.Options{
		Strings: make(map[string]string),
		Users:   make(map[string]moderation.User),
	}
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionUser:
			id, _ := o.Value.(string)
			u := moderation.User{ID: id}
			if resolved != nil {
				if ru, ok := resolved.Users[id]; ok && ru != nil {
					u = userFrom(ru)
				}
			}
			out.Users[o.Name] = u
		case discordgo.ApplicationCommandOptionString:
			out.Strings[o.Name] = o.StringValue()
		default:
			out.Strings[o.Name] = fmt.Sprint(o.Value)
		}
	}
	return sub, out
}
