package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"byteguard/internal/command"
	"byteguard/internal/storage"
	"byteguard/pkg/cmd"
)

// HistoryStore persists executed commands.
type HistoryStore interface {
	AppendCommandToHistory(guildID string, entry storage.CommandHistory) error
}

// WithCommandLogger appends every guild invocation, with its outcome, to the
// guild's command history.
func WithCommandLogger(store HistoryStore, log zerolog.Logger) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			runErr := c.Run(ctx, inv)

			ev, err := command.EventFrom(inv)
			if err != nil || ev.GuildID == "" {
				return runErr
			}
			entry := storage.CommandHistory{
				ChannelID: ev.ChannelID,
				GuildName: ev.GuildName,
				UserID:    ev.Actor.ID,
				Username:  ev.Actor.Tag(),
				Command:   c.Name(),
				Outcome:   outcome(runErr),
				Datetime:  time.Now(),
			}
			if err := store.AppendCommandToHistory(ev.GuildID, entry); err != nil {
				log.Warn().Err(err).Str("command", c.Name()).Str("guild", ev.GuildID).Msg("failed to log command")
			}
			return runErr
		})
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if ue, ok := command.AsUserError(err); ok {
		return ue.Kind.String()
	}
	return "error"
}
