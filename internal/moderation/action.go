package moderation

import (
	"fmt"
	"strings"

	"byteguard/pkg/util"
)

// DefaultReason is used when the actor gives none.
const DefaultReason = "No reason provided"

// MaxReasonLength is the platform's audit-log reason limit.
const MaxReasonLength = 512

// ExpiredCause is the cause recorded on scheduled unbans.
const ExpiredCause = "temporary ban expired"

// Kind enumerates the action variants.
type Kind int

const (
	KindWarn Kind = iota + 1
	KindKick
	KindBan
	KindTempBan
	KindUnban
)

func (k Kind) String() string {
	switch k {
	case KindWarn:
		return "warn"
	case KindKick:
		return "kick"
	case KindBan:
		return "ban"
	case KindTempBan:
		return "tempban"
	case KindUnban:
		return "unban"
	}
	return "unknown"
}

// Action is an immutable moderation action. Build one with Warn, Kick, Ban,
// TempBan or Unban.
type Action struct {
	kind    Kind
	reason  string
	seconds uint64
}

// Warn records a warning. It has no platform effect.
func Warn(reason string) Action { return Action{kind: KindWarn, reason: NormalizeReason(reason)} }

// Kick removes the member from the guild.
func Kick(reason string) Action { return Action{kind: KindKick, reason: NormalizeReason(reason)} }

// Ban bans the user permanently.
func Ban(reason string) Action { return Action{kind: KindBan, reason: NormalizeReason(reason)} }

// TempBan bans the user; the caller schedules the unban seconds after completion.
func TempBan(reason string, seconds uint64) Action {
	return Action{kind: KindTempBan, reason: NormalizeReason(reason), seconds: seconds}
}

// Unban lifts a ban. cause ends up in the logs, never on the platform.
func Unban(cause string) Action { return Action{kind: KindUnban, reason: NormalizeReason(cause)} }

func (a Action) Kind() Kind      { return a.kind }
func (a Action) Reason() string  { return a.reason }
func (a Action) Seconds() uint64 { return a.seconds }

// AuditReason is the reason stored in the platform audit log.
func (a Action) AuditReason() string {
	if a.kind != KindTempBan {
		return a.reason
	}
	return truncate(fmt.Sprintf("%s (Temporary - %s)", a.reason, util.FormatSeconds(a.seconds)), MaxReasonLength)
}

func (a Action) String() string {
	if a.kind == KindTempBan {
		return fmt.Sprintf("%s(%s, %q)", a.kind, util.FormatSeconds(a.seconds), a.reason)
	}
	return fmt.Sprintf("%s(%q)", a.kind, a.reason)
}

// NormalizeReason trims the reason, substitutes DefaultReason when blank and
// cuts it to MaxReasonLength runes.
func NormalizeReason(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return DefaultReason
	}
	return truncate(reason, MaxReasonLength)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
