package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	name string
	runs int
}

func (s *stubCommand) Name() string        { return s.name }
func (s *stubCommand) Description() string { return "stub " + s.name }
func (s *stubCommand) Run(ctx context.Context, inv *Invocation) error {
	s.runs++
	return nil
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	ban := &stubCommand{name: "Ban"}
	require.NoError(t, r.Register(ban))

	assert.Same(t, ban, r.Get("ban"))
	assert.Same(t, ban, r.Get(" BAN "))
	assert.Nil(t, r.Get("kick"))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubCommand{name: "ban"}))

	err := r.Register(&stubCommand{name: "BAN"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateCommand))
	assert.Equal(t, 1, r.Len())
}

func TestRegistrySealed(t *testing.T) {
	r := NewRegistry()
	r.Seal()
	assert.ErrorIs(t, r.Register(&stubCommand{name: "ping"}), ErrRegistrySealed)
}

func TestRegistryGetAllSorted(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"warn", "ban", "kick"} {
		require.NoError(t, r.Register(&stubCommand{name: n}))
	}

	var names []string
	for _, c := range r.GetAll() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"ban", "kick", "warn"}, names)
}

func TestWrapAndRoot(t *testing.T) {
	inner := &stubCommand{name: "ping"}
	var order []string
	mw := func(tag string) Middleware {
		return func(c Command) Command {
			return Wrap(c, func(ctx context.Context, inv *Invocation) error {
				order = append(order, tag)
				return c.Run(ctx, inv)
			})
		}
	}

	wrapped := Apply(inner, mw("first"), mw("second"))
	require.NoError(t, wrapped.Run(context.Background(), &Invocation{}))

	assert.Equal(t, []string{"second", "first"}, order)
	assert.Equal(t, 1, inner.runs)
	assert.Same(t, inner, Root(wrapped))
	assert.Equal(t, "ping", wrapped.Name())
}
