// Package scheduler fires the automatic unban of temporary bans.
//
// Entries live in memory only. A restart forgets them and the affected bans
// stay in place until lifted by hand.
package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"byteguard/internal/metrics"
	"byteguard/internal/moderation"
	"byteguard/pkg/jobmgr"
)

// busyRetry is how long a due entry waits before another submit when the
// pool queue is full.
const busyRetry = time.Second

// ErrStopped is returned by Schedule after Stop.
var ErrStopped = errors.New("scheduler stopped")

// Runner executes the unban when an entry fires.
type Runner interface {
	Execute(ctx context.Context, req moderation.Request) moderation.Result
}

// Submitter runs fn on a worker. jobmgr.Pool satisfies it.
type Submitter interface {
	Submit(name string, fn func(ctx context.Context) error) error
}

// Unban describes one pending automatic unban.
type Unban struct {
	GuildID string
	UserID  string
	FireAt  time.Time
}

// Handle identifies a scheduled entry.
type Handle struct {
	ID     uuid.UUID
	FireAt time.Time
}

type entry struct {
	Unban
	id    uuid.UUID
	index int
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	return h[i].FireAt.Before(h[j].FireAt)
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Scheduler keeps pending unbans ordered by fire time and hands each one to
// the worker pool when it comes due. Every entry fires exactly once and never
// before its FireAt.
type Scheduler struct {
	runner Runner
	pool   Submitter
	log    zerolog.Logger
	now    func() time.Time
	retry  time.Duration

	mu      sync.Mutex
	entries entryHeap
	stopped bool
	wake    chan struct{}
}

func New(runner Runner, pool Submitter, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		pool:   pool,
		log:    log.With().Str("component", "scheduler").Logger(),
		now:    time.Now,
		retry:  busyRetry,
		wake:   make(chan struct{}, 1),
	}
}

// Schedule registers u. Two entries for the same user are independent.
func (s *Scheduler) Schedule(u Unban) (Handle, error) {
	e := &entry{Unban: u, id: uuid.New()}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return Handle{}, ErrStopped
	}
	heap.Push(&s.entries, e)
	pending := len(s.entries)
	s.mu.Unlock()

	metrics.ScheduledUnbansPending.Set(float64(pending))
	s.log.Info().
		Str("guild", u.GuildID).
		Str("user", u.UserID).
		Time("fire_at", u.FireAt).
		Str("id", e.id.String()).
		Msg("scheduled automatic unban")

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return Handle{ID: e.id, FireAt: u.FireAt}, nil
}

// Pending returns the number of entries that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run fires due entries until ctx is cancelled, then stops the scheduler.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		wait, ok := s.fireDue()
		if !ok {
			wait = time.Hour
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-s.wake:
		case <-timer.C:
		}
	}
}

// fireDue dispatches every entry whose time has come and returns how long
// until the next one. ok is false when nothing is pending.
func (s *Scheduler) fireDue() (wait time.Duration, ok bool) {
	now := s.now()
	var due []*entry

	s.mu.Lock()
	for len(s.entries) > 0 {
		next := s.entries[0]
		if next.FireAt.After(now) {
			wait = next.FireAt.Sub(now)
			ok = true
			break
		}
		due = append(due, heap.Pop(&s.entries).(*entry))
	}
	pending := len(s.entries)
	s.mu.Unlock()

	if len(due) > 0 {
		metrics.ScheduledUnbansPending.Set(float64(pending))
	}
	for _, e := range due {
		s.fire(e)
	}
	return wait, ok
}

func (s *Scheduler) fire(e *entry) {
	job := func(ctx context.Context) error {
		res := s.runner.Execute(ctx, moderation.Request{
			GuildID: e.GuildID,
			Target:  moderation.User{ID: e.UserID},
			Action:  moderation.Unban(moderation.ExpiredCause),
		})
		metrics.ScheduledUnbansFired.WithLabelValues(metrics.Result(res.Err)).Inc()
		l := s.log.With().Str("guild", e.GuildID).Str("user", e.UserID).Str("id", e.id.String()).Logger()
		if res.Err != nil {
			l.Warn().Err(res.Err).Msg("automatic unban failed")
			return nil
		}
		l.Info().Msg("automatic unban completed")
		return nil
	}
	err := s.pool.Submit("unban:"+e.UserID, job)
	if err == nil {
		return
	}
	if !errors.Is(err, jobmgr.ErrPoolClosed) && s.requeue(e) {
		metrics.ScheduledUnbansFired.WithLabelValues("deferred").Inc()
		s.log.Debug().Err(err).Str("guild", e.GuildID).Str("user", e.UserID).Dur("retry", s.retry).Msg("pool busy, automatic unban deferred")
		return
	}
	metrics.ScheduledUnbansFired.WithLabelValues("dropped").Inc()
	s.log.Warn().Err(err).Str("guild", e.GuildID).Str("user", e.UserID).Msg("could not submit automatic unban")
}

// requeue puts a due entry back with a short delay. It reports false once
// the scheduler is stopped.
func (s *Scheduler) requeue(e *entry) bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	e.FireAt = s.now().Add(s.retry)
	heap.Push(&s.entries, e)
	pending := len(s.entries)
	s.mu.Unlock()

	metrics.ScheduledUnbansPending.Set(float64(pending))
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// Stop discards pending entries and rejects further Schedule calls.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	dropped := len(s.entries)
	s.entries = nil
	s.mu.Unlock()

	metrics.ScheduledUnbansPending.Set(0)
	if dropped > 0 {
		s.log.Warn().Int("dropped", dropped).Msg("scheduler stopped with pending unbans; they will not fire")
	}
}
