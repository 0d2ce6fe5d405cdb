// Package commandtest provides an in-memory command.Responder for tests.
package commandtest

import (
	"context"
	"errors"
	"sync"

	"byteguard/internal/command"
)

var ErrAlreadyAcknowledged = errors.New("interaction already acknowledged")

// Responder records every answer it is given.
type Responder struct {
	mu       sync.Mutex
	acked    bool
	deferred bool
	replies  []command.Reply
	edits    []command.Reply
}

func (r *Responder) Reply(_ context.Context, reply command.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.acked {
		return ErrAlreadyAcknowledged
	}
	r.acked = true
	r.replies = append(r.replies, reply)
	return nil
}

func (r *Responder) Defer(_ context.Context, _ bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.acked {
		return ErrAlreadyAcknowledged
	}
	r.acked = true
	r.deferred = true
	return nil
}

func (r *Responder) EditOriginal(_ context.Context, reply command.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edits = append(r.edits, reply)
	return nil
}

func (r *Responder) Acknowledged() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acked
}

func (r *Responder) Deferred() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deferred
}

func (r *Responder) Replies() []command.Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]command.Reply(nil), r.replies...)
}

func (r *Responder) Edits() []command.Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]command.Reply(nil), r.edits...)
}

// Last returns the latest answer, edits taking precedence, and whether there was one.
func (r *Responder) Last() (command.Reply, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.edits); n > 0 {
		return r.edits[n-1], true
	}
	if n := len(r.replies); n > 0 {
		return r.replies[n-1], true
	}
	return command.Reply{}, false
}

// Text flattens a reply to its content plus embed titles and descriptions.
func Text(r command.Reply) string {
	s := r.Content
	for _, e := range r.Embeds {
		s += "\n" + e.Title + "\n" + e.Description
		for _, f := range e.Fields {
			s += "\n" + f.Name + ": " + f.Value
		}
	}
	return s
}
