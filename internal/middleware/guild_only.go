// Package middleware holds the cmd.Middleware chain applied to every Discord
// command: guild-only, group toggle, permission check and history logging.
package middleware

import (
	"context"

	"byteguard/internal/command"
	"byteguard/pkg/cmd"
)

// WithGuildOnly rejects invocations from outside a guild.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			ev, err := command.EventFrom(inv)
			if err != nil {
				return err
			}
			if ev.GuildID == "" {
				return command.Reject("This command can only be used in a server.")
			}
			return c.Run(ctx, inv)
		})
	}
}
