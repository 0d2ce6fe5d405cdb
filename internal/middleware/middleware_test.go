package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byteguard/internal/command"
	"byteguard/internal/command/commandtest"
	"byteguard/internal/moderation"
	"byteguard/internal/storage"
	"byteguard/pkg/cmd"
)

type fakeCommand struct {
	group string
	perms moderation.Capability
	err   error
	runs  int
}

func (f *fakeCommand) Name() string                       { return "fake" }
func (f *fakeCommand) Description() string                { return "fake command" }
func (f *fakeCommand) Group() string                      { return f.group }
func (f *fakeCommand) Category() string                   { return "Test" }
func (f *fakeCommand) Permissions() moderation.Capability { return f.perms }
func (f *fakeCommand) Run(context.Context, *cmd.Invocation) error {
	f.runs++
	return f.err
}

type memStore struct {
	mu       sync.Mutex
	disabled map[string]bool
	history  []storage.CommandHistory
	err      error
}

func (m *memStore) IsGroupDisabled(_, group string) (bool, error) {
	return m.disabled[group], m.err
}

func (m *memStore) AppendCommandToHistory(_ string, e storage.CommandHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, e)
	return m.err
}

func invocation(guildID string, actor moderation.Member) *cmd.Invocation {
	return &cmd.Invocation{Data: &command.Event{
		Name:      "fake",
		GuildID:   guildID,
		Actor:     actor,
		Responder: &commandtest.Responder{},
	}}
}

func requireKind(t *testing.T, err error, kind command.ErrorKind) {
	t.Helper()
	ue, ok := command.AsUserError(err)
	require.True(t, ok, "expected a user error, got %v", err)
	assert.Equal(t, kind, ue.Kind)
}

func TestGuildOnly(t *testing.T) {
	f := &fakeCommand{}
	c := cmd.Apply(f, WithGuildOnly())

	requireKind(t, c.Run(context.Background(), invocation("", moderation.Member{})), command.KindValidation)
	assert.Zero(t, f.runs)

	require.NoError(t, c.Run(context.Background(), invocation("g1", moderation.Member{})))
	assert.Equal(t, 1, f.runs)
}

func TestGroupAccessCheck(t *testing.T) {
	f := &fakeCommand{group: "moderation"}
	store := &memStore{disabled: map[string]bool{"moderation": true}}
	c := cmd.Apply(f, WithGroupAccessCheck(store))

	requireKind(t, c.Run(context.Background(), invocation("g1", moderation.Member{})), command.KindValidation)
	assert.Zero(t, f.runs)

	store.err = errors.New("disk")
	store.disabled = nil
	require.NoError(t, c.Run(context.Background(), invocation("g1", moderation.Member{})))
	assert.Equal(t, 1, f.runs)
}

func TestUserPermissionCheck(t *testing.T) {
	f := &fakeCommand{perms: moderation.CapBanMembers}
	c := cmd.Apply(f, WithUserPermissionCheck("dev"))

	plain := moderation.Member{User: moderation.User{ID: "u1"}, Permissions: moderation.CapKickMembers}
	err := c.Run(context.Background(), invocation("g1", plain))
	requireKind(t, err, command.KindValidation)
	ue, _ := command.AsUserError(err)
	assert.Contains(t, ue.Message, "Ban Members")

	admin := moderation.Member{User: moderation.User{ID: "u2"}, Permissions: moderation.CapAdministrator}
	require.NoError(t, c.Run(context.Background(), invocation("g1", admin)))

	dev := moderation.Member{User: moderation.User{ID: "dev"}}
	require.NoError(t, c.Run(context.Background(), invocation("g1", dev)))

	mod := moderation.Member{User: moderation.User{ID: "u3"}, Permissions: moderation.CapBanMembers}
	require.NoError(t, c.Run(context.Background(), invocation("g1", mod)))
	assert.Equal(t, 3, f.runs)
}

func TestCommandLoggerRecordsOutcome(t *testing.T) {
	f := &fakeCommand{perms: moderation.CapBanMembers}
	store := &memStore{}
	c := cmd.Apply(f, WithUserPermissionCheck(""), WithCommandLogger(store, zerolog.Nop()))

	actor := moderation.Member{User: moderation.User{ID: "u1", Username: "alice"}}
	_ = c.Run(context.Background(), invocation("g1", actor))
	actor.Permissions = moderation.CapBanMembers
	require.NoError(t, c.Run(context.Background(), invocation("g1", actor)))
	_ = c.Run(context.Background(), invocation("", actor))

	require.Len(t, store.history, 2)
	assert.Equal(t, "validation", store.history[0].Outcome)
	assert.Equal(t, "ok", store.history[1].Outcome)
	assert.Equal(t, "alice", store.history[1].Username)
	assert.Equal(t, "fake", store.history[1].Command)
}

func TestCommandLoggerKeepsRunError(t *testing.T) {
	boom := errors.New("boom")
	store := &memStore{err: errors.New("disk full")}
	c := cmd.Apply(&fakeCommand{err: boom}, WithCommandLogger(store, zerolog.Nop()))

	assert.ErrorIs(t, c.Run(context.Background(), invocation("g1", moderation.Member{})), boom)
	require.Len(t, store.history, 1)
	assert.Equal(t, "error", store.history[0].Outcome)
}
