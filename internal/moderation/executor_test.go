package moderation

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(p Platform, dm DMSender) (*Executor, *Notifier) {
	n := NewNotifier(dm, zerolog.Nop())
	return NewExecutor(p, n, zerolog.Nop()), n
}

func TestExecutorOnePlatformCallPerAction(t *testing.T) {
	cases := []struct {
		action Action
		want   []platformCall
	}{
		{Warn("be nice"), nil},
		{Kick("spam"), []platformCall{{"kick", "g1", "u1", "spam"}}},
		{Ban("spam"), []platformCall{{"ban", "g1", "u1", "spam"}}},
		{TempBan("spam", 3600), []platformCall{{"ban", "g1", "u1", "spam (Temporary - 1h)"}}},
		{Unban(ExpiredCause), []platformCall{{"unban", "g1", "u1", ""}}},
	}
	for _, tc := range cases {
		t.Run(tc.action.Kind().String(), func(t *testing.T) {
			p := &fakePlatform{}
			ex, _ := newTestExecutor(p, newFakeDM())
			res := ex.Execute(context.Background(), Request{GuildID: "g1", Target: User{ID: "u1"}, Action: tc.action})
			require.True(t, res.OK())
			assert.Equal(t, tc.want, p.Calls())
			assert.False(t, res.CompletedAt.IsZero())
		})
	}
}

func TestExecutorFailureSkipsNotice(t *testing.T) {
	p := &fakePlatform{err: errMissingPermissions}
	dm := newFakeDM()
	ex, n := newTestExecutor(p, dm)

	res := ex.Execute(context.Background(), Request{
		GuildID: "g1",
		Target:  User{ID: "u1"},
		Action:  Ban("spam"),
		Notice:  &Notice{Title: "banned"},
	})

	require.False(t, res.OK())
	var perr *PlatformError
	require.True(t, errors.As(res.Err, &perr))
	assert.Equal(t, KindBan, perr.Op)
	assert.Equal(t, errMissingPermissions.Error(), res.Err.Error())
	assert.Len(t, p.Calls(), 1, "no retry")

	require.True(t, n.Wait(time.Second))
	assert.Empty(t, dm.Sent("dm-u1"))
}

func TestExecutorDoesNotWaitForNotice(t *testing.T) {
	dm := newFakeDM()
	dm.block = make(chan struct{})
	ex, n := newTestExecutor(&fakePlatform{}, dm)

	done := make(chan Result, 1)
	go func() {
		done <- ex.Execute(context.Background(), Request{
			GuildID: "g1",
			Target:  User{ID: "u1"},
			Action:  Kick("spam"),
			Notice:  &Notice{Title: "kicked"},
		})
	}()

	select {
	case res := <-done:
		assert.True(t, res.OK())
	case <-time.After(time.Second):
		t.Fatal("Execute blocked on notice delivery")
	}

	close(dm.block)
	require.True(t, n.Wait(time.Second))
	require.Len(t, dm.Sent("dm-u1"), 1)
	assert.Equal(t, "kicked", dm.Sent("dm-u1")[0].Title)
}

func TestNotifierSwallowsFailures(t *testing.T) {
	dm := newFakeDM()
	dm.openErr = errors.New("Cannot send messages to this user")
	n := NewNotifier(dm, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	n.Notify(ctx, "u1", Notice{Title: "warned"})
	cancel()

	assert.True(t, n.Wait(time.Second))
	assert.Empty(t, dm.Sent("dm-u1"))
}

func TestNotifierFailureLoggedAtDebug(t *testing.T) {
	dm := newFakeDM()
	dm.openErr = errors.New("Cannot send messages to this user")

	var info bytes.Buffer
	n := NewNotifier(dm, zerolog.New(&info).Level(zerolog.InfoLevel))
	n.Notify(context.Background(), "u1", Notice{Title: "kicked"})
	require.True(t, n.Wait(time.Second))
	assert.Empty(t, info.String())

	var debug bytes.Buffer
	n = NewNotifier(dm, zerolog.New(&debug).Level(zerolog.DebugLevel))
	n.Notify(context.Background(), "u1", Notice{Title: "kicked"})
	require.True(t, n.Wait(time.Second))
	assert.Contains(t, debug.String(), `"level":"debug"`)
	assert.Contains(t, debug.String(), "could not deliver notice")
}

func TestNotifierDetachedFromCallerCancel(t *testing.T) {
	dm := newFakeDM()
	dm.block = make(chan struct{})
	n := NewNotifier(dm, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	n.Notify(ctx, "u2", Notice{Title: "warned"})
	cancel()
	close(dm.block)

	require.True(t, n.Wait(time.Second))
	assert.Len(t, dm.Sent("dm-u2"), 1)
}
