package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"byteguard/internal/moderation"
)

type roleInfo struct {
	Position    int
	Permissions int64
}

// guildInfo is the part of a guild needed to rank members.
type guildInfo struct {
	OwnerID string
	Roles   map[string]roleInfo
}

// Directory resolves members and their standing in a guild. Guild roles come
// from the gateway state when cached there, otherwise from REST through a
// short-lived LRU.
type Directory struct {
	s      *discordgo.Session
	guilds *expirable.LRU[string, guildInfo]
}

var _ moderation.Directory = (*Directory)(nil)

func NewDirectory(s *discordgo.Session, size int, ttl time.Duration) *Directory {
	return &Directory{
		s:      s,
		guilds: expirable.NewLRU[string, guildInfo](size, nil, ttl),
	}
}

// Invalidate drops cached role data for guildID.
func (d *Directory) Invalidate(guildID string) {
	d.guilds.Remove(guildID)
}

func (d *Directory) guild(ctx context.Context, guildID string) (guildInfo, error) {
	if g, err := d.s.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
		return infoFrom(g), nil
	}
	if info, ok := d.guilds.Get(guildID); ok {
		return info, nil
	}
	g, err := d.s.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return guildInfo{}, fmt.Errorf("fetch guild %s: %w", guildID, err)
	}
	info := infoFrom(g)
	d.guilds.Add(guildID, info)
	return info, nil
}

func infoFrom(g *discordgo.Guild) guildInfo {
	info := guildInfo{OwnerID: g.OwnerID, Roles: make(map[string]roleInfo, len(g.Roles))}
	for _, r := range g.Roles {
		info.Roles[r.ID] = roleInfo{Position: r.Position, Permissions: r.Permissions}
	}
	return info
}

// Member returns the member record of userID, or moderation.ErrNotAMember.
func (d *Directory) Member(ctx context.Context, guildID, userID string) (moderation.Member, error) {
	m, err := d.s.State.Member(guildID, userID)
	if err != nil {
		m, err = d.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		if isUnknownMember(err) {
			return moderation.Member{}, moderation.ErrNotAMember
		}
		if err != nil {
			return moderation.Member{}, fmt.Errorf("fetch member %s: %w", userID, err)
		}
	}
	info, err := d.guild(ctx, guildID)
	if err != nil {
		return moderation.Member{}, err
	}
	return memberFrom(guildID, m, info), nil
}

// Self returns the bot's own member record.
func (d *Directory) Self(ctx context.Context, guildID string) (moderation.Member, error) {
	if d.s.State.User == nil {
		return moderation.Member{}, errors.New("session is not ready")
	}
	return d.Member(ctx, guildID, d.s.State.User.ID)
}

// memberFrom ranks m by its highest role. @everyone (ID == guildID) counts
// toward permissions but not rank.
func memberFrom(guildID string, m *discordgo.Member, info guildInfo) moderation.Member {
	out := moderation.Member{Owner: m.User != nil && m.User.ID == info.OwnerID}
	if m.User != nil {
		out.User = userFrom(m.User)
	}
	perms := info.Roles[guildID].Permissions
	for _, id := range m.Roles {
		r, ok := info.Roles[id]
		if !ok {
			continue
		}
		perms |= r.Permissions
		if r.Position > out.RoleRank {
			out.RoleRank = r.Position
		}
	}
	out.Permissions = moderation.Capability(perms)
	return out
}

func userFrom(u *discordgo.User) moderation.User {
	return moderation.User{ID: u.ID, Username: u.Username, Bot: u.Bot}
}

func isUnknownMember(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return false
	}
	if rest.Message != nil && (rest.Message.Code == discordgo.ErrCodeUnknownMember || rest.Message.Code == discordgo.ErrCodeUnknownUser) {
		return true
	}
	return rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound
}
