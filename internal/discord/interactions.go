package discord

import (
	"context"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"byteguard/internal/command"
)

// responder answers one interaction through the session.
type responder struct {
	s     *discordgo.Session
	i     *discordgo.Interaction
	acked atomic.Bool
}

var _ command.Responder = (*responder)(nil)

func newResponder(s *discordgo.Session, i *discordgo.Interaction) *responder {
	return &responder{s: s, i: i}
}

func flags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func (r *responder) Reply(ctx context.Context, reply command.Reply) error {
	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: reply.Content,
			Embeds:  reply.Embeds,
			Flags:   flags(reply.Ephemeral),
		},
	}, discordgo.WithContext(ctx))
	if err == nil {
		r.acked.Store(true)
	}
	return err
}

func (r *responder) Defer(ctx context.Context, ephemeral bool) error {
	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags(ephemeral)},
	}, discordgo.WithContext(ctx))
	if err == nil {
		r.acked.Store(true)
	}
	return err
}

func (r *responder) EditOriginal(ctx context.Context, reply command.Reply) error {
	edit := &discordgo.WebhookEdit{Content: &reply.Content}
	if len(reply.Embeds) > 0 {
		edit.Embeds = &reply.Embeds
	}
	_, err := r.s.InteractionResponseEdit(r.i, edit, discordgo.WithContext(ctx))
	return err
}

func (r *responder) Acknowledged() bool { return r.acked.Load() }
