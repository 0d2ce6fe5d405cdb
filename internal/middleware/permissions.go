package middleware

import (
	"context"
	"fmt"

	"byteguard/internal/command"
	"byteguard/pkg/cmd"
)

// WithUserPermissionCheck requires the actor to hold the command's
// capability. Administrators and developerID always pass.
func WithUserPermissionCheck(developerID string) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			ev, err := command.EventFrom(inv)
			if err != nil {
				return err
			}
			meta, ok := command.Meta(c)
			if !ok || meta.Permissions() == 0 {
				return c.Run(ctx, inv)
			}
			if developerID != "" && ev.Actor.ID == developerID {
				return c.Run(ctx, inv)
			}
			if !ev.Actor.Has(meta.Permissions()) {
				return command.Reject(fmt.Sprintf(
					"You need the following permission to run this command:\n`%s`",
					meta.Permissions(),
				))
			}
			return c.Run(ctx, inv)
		})
	}
}
