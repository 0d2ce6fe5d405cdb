package middleware

import (
	"context"

	"byteguard/internal/command"
	"byteguard/pkg/cmd"
)

// GroupStore reports command groups disabled per guild.
type GroupStore interface {
	IsGroupDisabled(guildID, group string) (bool, error)
}

// WithGroupAccessCheck refuses commands whose group is disabled in the guild.
// A storage failure lets the command through.
func WithGroupAccessCheck(store GroupStore) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			ev, err := command.EventFrom(inv)
			if err != nil {
				return err
			}
			meta, ok := command.Meta(c)
			if !ok || meta.Group() == "" || ev.GuildID == "" {
				return c.Run(ctx, inv)
			}
			disabled, err := store.IsGroupDisabled(ev.GuildID, meta.Group())
			if err == nil && disabled {
				return command.Reject("This command is disabled on this server.\nUse `/commands status` to check which commands are disabled.")
			}
			return c.Run(ctx, inv)
		})
	}
}
