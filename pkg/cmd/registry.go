package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDuplicateCommand is returned when two commands normalize to the same name.
	ErrDuplicateCommand = errors.New("duplicate command name")
	// ErrRegistrySealed is returned by Register after Seal.
	ErrRegistrySealed = errors.New("registry is sealed")
)

// Registry stores commands by normalized name. It does not perform dispatch.
//
// Registration happens at startup only. After Seal the registry is read-only
// and safe for concurrent lookups without locking.
type Registry struct {
	commands map[string]Command
	sealed   bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// NormalizeName lower-cases and trims a command name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a command. A second command with the same normalized name is
// rejected with ErrDuplicateCommand instead of overwriting the first one.
func (r *Registry) Register(c Command) error {
	if r.sealed {
		return ErrRegistrySealed
	}
	name := NormalizeName(c.Name())
	if name == "" {
		return fmt.Errorf("command %T has an empty name", Root(c))
	}
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCommand, name)
	}
	r.commands[name] = c
	return nil
}

// Seal freezes the registry.
func (r *Registry) Seal() { r.sealed = true }

// Get returns the command with the given name (case-insensitive), or nil.
func (r *Registry) Get(name string) Command {
	return r.commands[NormalizeName(name)]
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.commands) }

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return NormalizeName(list[i].Name()) < NormalizeName(list[j].Name())
	})
	return list
}
