package moderation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"byteguard/internal/metrics"
)

// Platform applies actions to the chat platform.
type Platform interface {
	Ban(ctx context.Context, guildID, userID, reason string) error
	Kick(ctx context.Context, guildID, userID, reason string) error
	Unban(ctx context.Context, guildID, userID string) error
}

// PlatformError wraps a failed platform call. Its message is the platform's own.
type PlatformError struct {
	Op  Kind
	Err error
}

func (e *PlatformError) Error() string { return e.Err.Error() }
func (e *PlatformError) Unwrap() error { return e.Err }

// Request is one action against one user.
type Request struct {
	GuildID string
	Target  User
	Action  Action
	// Moderator is logged with the action; empty for system-initiated actions.
	Moderator string
	// Notice, if set, is sent to the target after the action succeeds.
	Notice *Notice
}

// Result reports the outcome of Execute.
type Result struct {
	Action      Action
	Err         error
	CompletedAt time.Time
}

func (r Result) OK() bool { return r.Err == nil }

// Executor performs each action with exactly one platform call and no retry.
type Executor struct {
	platform Platform
	notifier *Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewExecutor(platform Platform, notifier *Notifier, log zerolog.Logger) *Executor {
	return &Executor{
		platform: platform,
		notifier: notifier,
		log:      log.With().Str("component", "executor").Logger(),
		now:      time.Now,
	}
}

// Execute applies req.Action. On success the notice, if any, is handed to the
// notifier and Execute returns without waiting for it.
func (e *Executor) Execute(ctx context.Context, req Request) Result {
	action := req.Action
	var err error
	switch action.Kind() {
	case KindWarn:
	case KindKick:
		err = e.platform.Kick(ctx, req.GuildID, req.Target.ID, action.AuditReason())
	case KindBan, KindTempBan:
		err = e.platform.Ban(ctx, req.GuildID, req.Target.ID, action.AuditReason())
	case KindUnban:
		err = e.platform.Unban(ctx, req.GuildID, req.Target.ID)
	}

	res := Result{Action: action, CompletedAt: e.now()}
	metrics.ModerationActions.WithLabelValues(action.Kind().String(), metrics.Result(err)).Inc()

	logEvt := func(ev *zerolog.Event) *zerolog.Event {
		return ev.Str("guild", req.GuildID).
			Str("target", req.Target.ID).
			Str("action", action.Kind().String()).
			Str("reason", action.Reason()).
			Str("moderator", req.Moderator)
	}
	if err != nil {
		res.Err = &PlatformError{Op: action.Kind(), Err: err}
		logEvt(e.log.Warn()).Err(err).Msg("moderation action failed")
		return res
	}
	logEvt(e.log.Info()).Msg("moderation action applied")

	if req.Notice != nil && e.notifier != nil {
		e.notifier.Notify(ctx, req.Target.ID, *req.Notice)
	}
	return res
}
