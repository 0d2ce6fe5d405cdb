package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byteguard/internal/command"
	"byteguard/internal/command/commandtest"
	"byteguard/internal/command/core"
	"byteguard/internal/command/modcmd"
	"byteguard/internal/config"
	"byteguard/internal/moderation"
	"byteguard/internal/storage"
	"byteguard/pkg/cmd"
)

func TestBuildRegistry(t *testing.T) {
	reg, err := BuildRegistry(&core.Deps{AppName: AppName}, &modcmd.Deps{Feature: true})
	require.NoError(t, err)

	var names []string
	for _, c := range reg.GetAll() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"ban", "commands", "help", "kick", "ping", "unban", "warn"}, names)
	assert.Equal(t, []string{"core", "moderation"}, core.Groups(reg))

	err = reg.Register(&core.PingCommand{})
	assert.ErrorIs(t, err, cmd.ErrRegistrySealed)
}

func TestMiddlewareChainRejectsAndLogs(t *testing.T) {
	store, err := storage.New(filepath.Join(t.TempDir(), "store.json"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{}
	reg, err := BuildRegistry(&core.Deps{AppName: AppName}, &modcmd.Deps{Feature: true}, Middlewares(cfg, store, zerolog.Nop())...)
	require.NoError(t, err)

	r := &commandtest.Responder{}
	ev := &command.Event{
		Name:      "ban",
		GuildID:   "g1",
		Actor:     moderation.Member{User: moderation.User{ID: "u1", Username: "alice"}},
		Responder: r,
	}
	err = reg.Get("ban").Run(context.Background(), &cmd.Invocation{Data: ev})
	ue, ok := command.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, command.KindValidation, ue.Kind)
	assert.Contains(t, ue.Message, "Ban Members")

	history, err := store.CommandsHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "ban", history[0].Command)
	assert.Equal(t, "validation", history[0].Outcome)

	ev.GuildID = ""
	err = reg.Get("ban").Run(context.Background(), &cmd.Invocation{Data: ev})
	ue, ok = command.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, "This command can only be used in a server.", ue.Message)
}
