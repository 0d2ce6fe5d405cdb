package core

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byteguard/internal/command"
	"byteguard/internal/command/commandtest"
	"byteguard/internal/command/modcmd"
	"byteguard/internal/storage"
	"byteguard/pkg/cmd"
)

func setup(t *testing.T, moderation bool) (*cmd.Registry, *storage.Storage) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "store.json"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	reg := cmd.NewRegistry()
	require.NoError(t, Register(reg, &Deps{
		Registry: reg,
		Store:    store,
		Latency:  func() time.Duration { return 42 * time.Millisecond },
		AppName:  "ByteGuard",
	}))
	require.NoError(t, modcmd.Register(reg, &modcmd.Deps{Feature: moderation}))
	reg.Seal()
	return reg, store
}

func run(t *testing.T, reg *cmd.Registry, name, sub string, opts map[string]string) (*commandtest.Responder, error) {
	t.Helper()
	r := &commandtest.Responder{}
	ev := &command.Event{
		Name:       name,
		Subcommand: sub,
		GuildID:    "g1",
		Options:    command.Options{Strings: opts},
		Responder:  r,
	}
	return r, reg.Get(name).Run(context.Background(), &cmd.Invocation{Data: ev})
}

func TestPingDefersThenEdits(t *testing.T) {
	reg, _ := setup(t, true)
	r, err := run(t, reg, "ping", "", nil)
	require.NoError(t, err)

	assert.True(t, r.Deferred())
	assert.Empty(t, r.Replies())
	require.Len(t, r.Edits(), 1)
	assert.Equal(t, "🏓 Pong! 42ms", r.Edits()[0].Content)
}

func TestHelpGroupsByCategory(t *testing.T) {
	reg, _ := setup(t, true)
	r, err := run(t, reg, "help", "", nil)
	require.NoError(t, err)

	last, _ := r.Last()
	require.Len(t, last.Embeds, 1)
	assert.True(t, last.Ephemeral)
	assert.Equal(t, "ByteGuard Help", last.Embeds[0].Title)

	text := last.Embeds[0].Description
	assert.Contains(t, text, "`/ban` - Ban a user from the server")
	assert.Less(t, strings.Index(text, "Moderation"), strings.Index(text, "Settings"))
}

func TestHelpHidesDisabledFeature(t *testing.T) {
	reg, _ := setup(t, false)
	text := BuildHelp(reg)
	assert.NotContains(t, text, "/ban")
	assert.Contains(t, text, "/ping")
}

func TestCommandsToggle(t *testing.T) {
	reg, store := setup(t, true)

	_, err := run(t, reg, "commands", "toggle", map[string]string{"group": "moderation", "state": "disable"})
	require.NoError(t, err)
	disabled, err := store.IsGroupDisabled("g1", "moderation")
	require.NoError(t, err)
	assert.True(t, disabled)

	r, err := run(t, reg, "commands", "status", nil)
	require.NoError(t, err)
	last, _ := r.Last()
	assert.Contains(t, last.Content, "`moderation`: 🚫 disabled")
	assert.Contains(t, last.Content, "`core`: ✅ enabled")

	_, err = run(t, reg, "commands", "toggle", map[string]string{"group": "moderation", "state": "enable"})
	require.NoError(t, err)
	disabled, err = store.IsGroupDisabled("g1", "moderation")
	require.NoError(t, err)
	assert.False(t, disabled)
}

func TestCoreGroupCannotBeDisabled(t *testing.T) {
	reg, _ := setup(t, true)
	_, err := run(t, reg, "commands", "toggle", map[string]string{"group": "core", "state": "disable"})
	ue, ok := command.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, command.KindValidation, ue.Kind)

	_, err = run(t, reg, "commands", "toggle", map[string]string{"group": "music", "state": "disable"})
	ue, ok = command.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, command.KindInvalidInput, ue.Kind)
}

func TestGroups(t *testing.T) {
	reg, _ := setup(t, true)
	assert.Equal(t, []string{"core", "moderation"}, Groups(reg))

	def := command.Slash(reg.Get("commands"))
	require.NotNil(t, def)
	assert.Len(t, def.Options[1].Options[0].Choices, 2)
}

