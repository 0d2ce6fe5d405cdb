package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"byteguard/internal/moderation"
)

// Platform applies moderation actions and sends direct messages through the
// REST API. Every method issues exactly one request.
type Platform struct {
	s *discordgo.Session
}

var (
	_ moderation.Platform = (*Platform)(nil)
	_ moderation.DMSender = (*Platform)(nil)
)

func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{s: s}
}

func (p *Platform) Ban(ctx context.Context, guildID, userID, reason string) error {
	return p.s.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx))
}

func (p *Platform) Kick(ctx context.Context, guildID, userID, reason string) error {
	return p.s.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

func (p *Platform) Unban(ctx context.Context, guildID, userID string) error {
	return p.s.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx))
}

func (p *Platform) OpenDM(ctx context.Context, userID string) (string, error) {
	ch, err := p.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (p *Platform) SendNotice(ctx context.Context, channelID string, n moderation.Notice) error {
	_, err := p.s.ChannelMessageSendEmbed(channelID, noticeEmbed(n), discordgo.WithContext(ctx))
	return err
}

func noticeEmbed(n moderation.Notice) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       n.Title,
		Description: n.Description,
		Color:       n.Color,
	}
	for _, f := range n.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if n.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: n.Footer}
	}
	return e
}
