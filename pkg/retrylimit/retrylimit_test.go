package retrylimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (s statusErr) Error() string   { return http.StatusText(int(s)) }
func (s statusErr) StatusCode() int { return int(s) }

func fastConfig() Config {
	cfg := DefaultConfig(zerolog.Nop())
	cfg.InitialDelay = time.Millisecond
	cfg.RateLimitDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Retry, Classify(errors.New("connection reset")))
	assert.Equal(t, Throttle, Classify(statusErr(http.StatusTooManyRequests)))
	assert.Equal(t, Throttle, Classify(statusErr(http.StatusBadGateway)))
	assert.Equal(t, Stop, Classify(statusErr(http.StatusForbidden)))
	assert.Equal(t, Stop, Classify(&Permanent{Err: errors.New("bad payload")}))

	rest := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	code, ok := StatusCode(rest)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, Stop, Classify(rest))
}

func TestDoRetriesTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return statusErr(http.StatusServiceUnavailable)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func(context.Context) error {
		calls++
		return statusErr(http.StatusForbidden)
	})
	assert.Equal(t, statusErr(http.StatusForbidden), err)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 3
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), nil, cfg, func(context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDoHonoursContext(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialDelay = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := Do(ctx, nil, cfg, func(context.Context) error { return errors.New("flaky") })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiterAdapts(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 1, 0.5)
	lim.cooldown = -time.Second

	lim.Success()
	assert.Equal(t, 5.0, lim.Limit())

	lim.RateLimited()
	assert.Equal(t, 2.5, lim.Limit())

	for i := 0; i < 10; i++ {
		lim.RateLimited()
	}
	assert.Equal(t, 1.0, lim.Limit())

	for i := 0; i < 20; i++ {
		lim.Success()
	}
	assert.Equal(t, 8.0, lim.Limit())
}
