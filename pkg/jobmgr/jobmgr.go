// Package jobmgr provides a bounded worker pool with in-memory tracking of
// queued and running jobs.
//
// Typical usage:
//
//	pool := jobmgr.NewPool(5, 1024, logger)
//
//	err := pool.Submit("ban", func(ctx context.Context) error {
//	    // do work, honour ctx
//	    return nil
//	})
//
//	// on shutdown
//	unfinished := pool.Shutdown(10 * time.Second)
//
// A panicking job is recovered and reported; it never takes a worker down.
// There is no retry logic and no persistence.
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrPoolClosed is returned by Submit after Shutdown has started.
	ErrPoolClosed = errors.New("worker pool is shut down")
	// ErrQueueFull is returned by Submit when the backlog is at capacity.
	ErrQueueFull = errors.New("worker pool queue is full")
)

// Job status events passed to a StatusReporter.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
	StatusPanic   = "panic"
)

// StatusReporter receives lifecycle events for jobs. err is set for
// StatusError and StatusPanic.
type StatusReporter func(status, name string, err error)

// Job represents a unit of work tracked by the pool.
type Job struct {
	ID      uint64
	Name    string
	Queued  time.Time
	Started time.Time

	run func(ctx context.Context) error
}

// Pool runs jobs on a fixed number of workers. It is safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	jobs    map[uint64]*Job
	queue   chan *Job
	seq     uint64
	closed  bool
	size    int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     zerolog.Logger
	report  StatusReporter
	started time.Time
}

// NewPool starts size workers fed by a backlog of queueSize jobs.
// size and queueSize below 1 are raised to 1.
func NewPool(size, queueSize int, log zerolog.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:    make(map[uint64]*Job),
		queue:   make(chan *Job, queueSize),
		size:    size,
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With().Str("component", "jobmgr").Logger(),
		started: time.Now(),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// SetReporter installs a lifecycle callback. Call before submitting jobs.
func (p *Pool) SetReporter(r StatusReporter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.report = r
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Submit queues fn for execution and returns immediately. It never blocks the
// caller: a full backlog yields ErrQueueFull.
func (p *Pool) Submit(name string, fn func(ctx context.Context) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}

	p.seq++
	job := &Job{ID: p.seq, Name: name, Queued: time.Now(), run: fn}

	select {
	case p.queue <- job:
	default:
		return ErrQueueFull
	}

	p.jobs[job.ID] = job
	p.emitLocked(StatusQueued, name, nil)
	return nil
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.queue {
		p.execute(job)
	}
}

func (p *Pool) execute(job *Job) {
	p.mu.Lock()
	job.Started = time.Now()
	p.emitLocked(StatusRunning, job.Name, nil)
	p.mu.Unlock()

	defer func() {
		r := recover()

		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.jobs, job.ID)

		if r != nil {
			err := fmt.Errorf("panic: %v", r)
			p.log.Error().Str("job", job.Name).Str("stack", string(debug.Stack())).Msg("job panicked")
			p.emitLocked(StatusPanic, job.Name, err)
		}
	}()

	if err := job.run(p.ctx); err != nil {
		p.mu.Lock()
		p.emitLocked(StatusError, job.Name, err)
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	p.emitLocked(StatusDone, job.Name, nil)
	p.mu.Unlock()
}

// List returns the names of queued and running jobs, oldest first.
func (p *Pool) List() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listLocked()
}

func (p *Pool) listLocked() []string {
	jobs := make([]*Job, 0, len(p.jobs))
	for _, j := range p.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].ID < jobs[k].ID })

	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Name)
	}
	return out
}

// Status returns a human-readable summary of active jobs.
//
//	"Active jobs: ban, kick"
//
// If none are active: "No jobs are running."
func (p *Pool) Status() string {
	active := p.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Active jobs: %s", strings.Join(active, ", "))
}

// Shutdown stops accepting jobs and waits up to grace for queued and running
// jobs to finish. When the grace period expires the shared job context is
// cancelled and the names of jobs that had not finished are logged and returned.
func (p *Pool) Shutdown(grace time.Duration) []string {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.log.Info().Dur("uptime", time.Since(p.started)).Msg("worker pool drained")
		return nil
	case <-time.After(grace):
	}

	unfinished := p.List()
	p.cancel()
	for _, name := range unfinished {
		p.log.Warn().Str("job", name).Msg("job did not finish within shutdown grace period")
	}
	return unfinished
}

func (p *Pool) emitLocked(status, name string, err error) {
	switch status {
	case StatusError:
		p.log.Debug().Str("job", name).Err(err).Msg("job returned error")
	case StatusRunning, StatusDone:
		p.log.Trace().Str("job", name).Str("status", status).Send()
	}
	if p.report != nil {
		p.report(status, name, err)
	}
}
