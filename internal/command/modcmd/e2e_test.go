package modcmd

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byteguard/internal/moderation"
	"byteguard/internal/scheduler"
	"byteguard/pkg/cmd"
	"byteguard/pkg/jobmgr"
)

func TestTempBanIsLiftedAutomatically(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a real one second timer")
	}
	e := newEnv(t)

	pool := jobmgr.NewPool(2, 8, zerolog.Nop())
	defer pool.Shutdown(time.Second)

	executor := moderation.NewExecutor(e.platform, e.notifier, zerolog.Nop())
	sched := scheduler.New(executor, pool, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	e.reg = cmd.NewRegistry()
	require.NoError(t, Register(e.reg, &Deps{
		Directory: e.dir,
		Executor:  executor,
		Scheduler: sched,
		Feature:   true,
		Log:       zerolog.Nop(),
	}))

	_, err := e.run(t, "ban", map[string]string{"user": "member", "duration": "1s"})
	require.NoError(t, err)
	assert.Equal(t, 1, sched.Pending())

	require.Eventually(t, func() bool { return len(e.platform.Calls()) == 2 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{
		"ban g1 member No reason provided (Temporary - 1s)",
		"unban g1 member",
	}, e.platform.Calls())
	assert.Equal(t, 0, sched.Pending())
}
