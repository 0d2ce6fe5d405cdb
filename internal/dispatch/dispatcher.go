// Package dispatch routes command events to their handlers on the worker pool
// and turns handler failures into replies.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"byteguard/internal/command"
	"byteguard/internal/metrics"
	"byteguard/pkg/cmd"
)

const (
	msgUnknown  = "❌ Unknown command. Use `/help` to see available commands."
	msgDisabled = "❌ This command is currently disabled."
	msgFault    = "❌ An error occurred while executing this command."
	msgBusy     = "❌ The bot is busy right now. Please try again in a moment."
)

// Status is the result class of one dispatch.
type Status string

const (
	// StatusQueued: the handler was handed to the pool.
	StatusQueued Status = "queued"
	// StatusUnknown: no command by that name; the pool was not touched.
	StatusUnknown Status = "unknown"
	// StatusDisabled: the command is switched off.
	StatusDisabled Status = "disabled"
	// StatusBusy: the pool refused the job.
	StatusBusy Status = "busy"

	StatusSuccess  Status = "success"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
	StatusFault    Status = "fault"
)

// Outcome describes a dispatch or a completed handler run.
type Outcome struct {
	Command string
	Status  Status
	Detail  string
}

// Submitter runs fn on a worker. jobmgr.Pool satisfies it.
type Submitter interface {
	Submit(name string, fn func(ctx context.Context) error) error
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithOnComplete registers fn to be called after every handler run.
func WithOnComplete(fn func(Outcome)) Option {
	return func(d *Dispatcher) { d.onComplete = fn }
}

// WithHandlerTimeout bounds each handler run. Zero means no bound.
func WithHandlerTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// Dispatcher looks commands up by name and runs them on the pool.
type Dispatcher struct {
	registry   *cmd.Registry
	pool       Submitter
	log        zerolog.Logger
	timeout    time.Duration
	onComplete func(Outcome)
}

func New(registry *cmd.Registry, pool Submitter, log zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		pool:     pool,
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Dispatch routes ev. It returns as soon as the handler is queued; the caller
// never waits for the handler itself.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *command.Event) Outcome {
	name := cmd.NormalizeName(ev.Name)
	c := d.registry.Get(name)
	if c == nil {
		d.log.Warn().Str("command", name).Str("guild", ev.GuildID).Msg("unknown command")
		d.reply(ctx, ev, msgUnknown)
		return d.finish(Outcome{Command: name, Status: StatusUnknown})
	}
	if !command.Enabled(c) {
		d.reply(ctx, ev, msgDisabled)
		return d.finish(Outcome{Command: name, Status: StatusDisabled})
	}

	err := d.pool.Submit(name, func(jobCtx context.Context) error {
		d.run(jobCtx, c, ev)
		return nil
	})
	if err != nil {
		d.log.Warn().Err(err).Str("command", name).Msg("pool refused command")
		d.reply(ctx, ev, msgBusy)
		return d.finish(Outcome{Command: name, Status: StatusBusy, Detail: err.Error()})
	}
	return Outcome{Command: name, Status: StatusQueued}
}

func (d *Dispatcher) run(ctx context.Context, c cmd.Command, ev *command.Event) {
	name := cmd.NormalizeName(c.Name())
	start := time.Now()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	out := Outcome{Command: name, Status: StatusSuccess}
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Str("command", name).
				Str("guild", ev.GuildID).
				Str("stack", string(debug.Stack())).
				Msgf("handler panic: %v", r)
			d.respond(ctx, ev, msgFault)
			out = Outcome{Command: name, Status: StatusFault, Detail: fmt.Sprint(r)}
		}
		metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		d.finish(out)
	}()

	err := c.Run(ctx, &cmd.Invocation{Data: ev})
	if err == nil {
		d.log.Debug().Str("command", name).Str("guild", ev.GuildID).Dur("took", time.Since(start)).Msg("command completed")
		return
	}

	ue, ok := command.AsUserError(err)
	if !ok {
		d.log.Error().Err(err).Str("command", name).Str("guild", ev.GuildID).Msg("command failed")
		d.respond(ctx, ev, msgFault)
		out = Outcome{Command: name, Status: StatusFault, Detail: err.Error()}
		return
	}

	if ue.Kind == command.KindPlatform {
		d.log.Warn().Err(ue.Err).Str("command", name).Str("guild", ev.GuildID).Msg("platform rejected action")
		out = Outcome{Command: name, Status: StatusFailed, Detail: ue.Message}
	} else {
		d.log.Debug().Str("command", name).Str("kind", ue.Kind.String()).Str("detail", ue.Message).Msg("command rejected")
		out = Outcome{Command: name, Status: StatusRejected, Detail: ue.Message}
	}
	d.respond(ctx, ev, "❌ "+ue.Message)
}

// reply answers an interaction that has not been handed to a handler.
func (d *Dispatcher) reply(ctx context.Context, ev *command.Event, msg string) {
	if err := ev.Responder.Reply(ctx, command.Reply{Content: msg, Ephemeral: true}); err != nil {
		d.log.Warn().Err(err).Str("command", ev.Name).Msg("could not reply")
	}
}

// respond answers after a handler ran, editing the deferred response if the
// handler already acknowledged.
func (d *Dispatcher) respond(ctx context.Context, ev *command.Event, msg string) {
	if err := command.Respond(ctx, ev, command.Reply{Content: msg, Ephemeral: true}); err != nil {
		d.log.Warn().Err(err).Str("command", ev.Name).Msg("could not send error reply")
	}
}

func (d *Dispatcher) finish(out Outcome) Outcome {
	label := out.Command
	if out.Status == StatusUnknown {
		label = "unknown"
	}
	metrics.CommandsDispatched.WithLabelValues(label, string(out.Status)).Inc()
	if d.onComplete != nil {
		d.onComplete(out)
	}
	return out
}
