// Package moderation holds the moderation core: the authority predicate, the
// action variants, the executor that applies them to the platform and the
// best-effort notifier that tells the affected user about it.
//
// Nothing in this package talks to Discord directly; the platform, the member
// directory and the DM channel are interfaces implemented by internal/discord.
package moderation

import (
	"context"
	"errors"
	"strings"
)

// ErrNotAMember is returned by a Directory when the user is not in the guild.
var ErrNotAMember = errors.New("user is not a member of this guild")

// Capability is a permission bit. Values match Discord permission flags.
type Capability int64

const (
	CapKickMembers     Capability = 1 << 1
	CapBanMembers      Capability = 1 << 2
	CapAdministrator   Capability = 1 << 3
	CapManageGuild     Capability = 1 << 5
	CapModerateMembers Capability = 1 << 40
)

var capabilityNames = map[Capability]string{
	CapKickMembers:     "Kick Members",
	CapBanMembers:      "Ban Members",
	CapAdministrator:   "Administrator",
	CapManageGuild:     "Manage Server",
	CapModerateMembers: "Moderate Members",
}

// String returns the user-facing permission names joined with ", ".
func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	for bit := Capability(1); bit != 0 && bit <= c; bit <<= 1 {
		if c&bit == 0 {
			continue
		}
		if name, ok := capabilityNames[bit]; ok {
			names = append(names, name)
		} else {
			names = append(names, "unknown")
		}
	}
	return strings.Join(names, ", ")
}

// User is a platform account.
type User struct {
	ID       string
	Username string
	Bot      bool
}

// Tag returns a printable handle for logs and embeds.
func (u User) Tag() string {
	if u.Username == "" {
		return u.ID
	}
	return u.Username
}

// Mention returns the platform mention markup.
func (u User) Mention() string { return "<@" + u.ID + ">" }

// Member is a user inside a guild. It describes the actor issuing a command,
// the target of an action and the bot's own member record alike.
type Member struct {
	User
	// Owner marks the guild owner.
	Owner bool
	// RoleRank is the position of the member's highest role; higher outranks lower.
	RoleRank int
	// Permissions is the effective permission bitmask in the guild.
	Permissions Capability
}

// Has reports whether the member holds cap. Owners and administrators hold everything.
func (m Member) Has(cap Capability) bool {
	if m.Owner || m.Permissions&CapAdministrator != 0 {
		return true
	}
	return m.Permissions&cap == cap
}

// Directory resolves guild members.
type Directory interface {
	// Member returns the member record for userID or ErrNotAMember.
	Member(ctx context.Context, guildID, userID string) (Member, error)
	// Self returns the bot's own member record in the guild.
	Self(ctx context.Context, guildID string) (Member, error)
}
