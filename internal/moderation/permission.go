package moderation

// Deny reasons returned by CanAct. They are stable and shown to the actor.
const (
	ReasonSelf            = "cannot target self"
	ReasonBot             = "cannot target a bot account"
	ReasonOwner           = "cannot target the server owner"
	ReasonHierarchy       = "role hierarchy"
	ReasonSystemHierarchy = "system role hierarchy"
)

// Decision is the verdict of CanAct.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive Decision.
var Allow = Decision{Allowed: true}

func deny(reason string) Decision { return Decision{Reason: reason} }

// CanAct decides whether actor may act on target, with bot as the system's own
// member. Checks run in a fixed order and the first failure wins.
func CanAct(actor, target, bot Member) Decision {
	switch {
	case actor.ID == target.ID:
		return deny(ReasonSelf)
	case target.Bot:
		return deny(ReasonBot)
	case target.Owner:
		return deny(ReasonOwner)
	case actor.RoleRank <= target.RoleRank:
		return deny(ReasonHierarchy)
	case bot.RoleRank <= target.RoleRank:
		return deny(ReasonSystemHierarchy)
	}
	return Allow
}

// Message renders the decision for the actor, e.g. "You cannot ban this user: role hierarchy."
func (d Decision) Message(verb string) string {
	if d.Allowed {
		return ""
	}
	switch d.Reason {
	case ReasonSelf:
		return "You cannot " + verb + " yourself!"
	case ReasonBot:
		return "You cannot " + verb + " bots!"
	case ReasonOwner:
		return "You cannot " + verb + " the server owner!"
	case ReasonHierarchy:
		return "You cannot " + verb + " this user due to role hierarchy!"
	case ReasonSystemHierarchy:
		return "I cannot " + verb + " this user due to role hierarchy!"
	}
	return "You cannot " + verb + " this user: " + d.Reason
}
