// Package core holds the commands that are always available: ping, help and
// the per-guild command group switches.
package core

import (
	"time"

	"byteguard/internal/command"
	"byteguard/internal/moderation"
	"byteguard/pkg/cmd"
)

const group = "core"

// GroupStore persists disabled command groups per guild.
type GroupStore interface {
	DisabledGroups(guildID string) ([]string, error)
	DisableGroup(guildID, group string) error
	EnableGroup(guildID, group string) error
}

// Deps is shared by the core commands.
type Deps struct {
	// Registry is read by help and commands at run time.
	Registry *cmd.Registry
	Store    GroupStore
	// Latency reports the gateway heartbeat latency.
	Latency func() time.Duration
	AppName string
}

func Register(reg *cmd.Registry, deps *Deps, mws ...cmd.Middleware) error {
	for _, c := range []cmd.Command{
		&PingCommand{base{deps: deps}},
		&HelpCommand{base{deps: deps}},
		&CommandsCommand{base{deps: deps}},
	} {
		if err := command.Register(reg, c, mws...); err != nil {
			return err
		}
	}
	return nil
}

type base struct {
	deps *Deps
}

func (b *base) Group() string                      { return group }
func (b *base) Permissions() moderation.Capability { return 0 }
