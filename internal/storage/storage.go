// Package storage keeps per-guild bot state: the command history and the
// command groups an administrator has switched off.
package storage

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"byteguard/datastore"
)

const commandHistoryLimit = 20

type Storage struct {
	ds *datastore.DataStore
	// mu serialises read-modify-write cycles on guild records.
	mu sync.Mutex
}

// CommandHistory is one executed command.
type CommandHistory struct {
	ChannelID string    `json:"channel_id"`
	GuildName string    `json:"guild_name"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Outcome   string    `json:"outcome,omitempty"`
	Datetime  time.Time `json:"datetime"`
}

// Record is everything stored for one guild.
type Record struct {
	CommandsHistory  []CommandHistory `json:"cmd_history"`
	CommandsDisabled []string         `json:"cmd_disabled"`
}

func New(filePath string, log zerolog.Logger) (*Storage, error) {
	ds, err := datastore.New(datastore.DefaultConfig(filePath, log))
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Guilds lists every guild with a stored record.
func (s *Storage) Guilds() []string {
	return s.ds.Keys()
}

func (s *Storage) record(guildID string) (*Record, error) {
	var r Record
	if _, err := s.ds.Decode(guildID, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// update applies fn to the guild record under the storage lock and stores the result.
func (s *Storage) update(guildID string, fn func(r *Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.record(guildID)
	if err != nil {
		return err
	}
	fn(r)
	return s.ds.Put(guildID, r)
}

// AppendCommandToHistory records entry, keeping the newest commandHistoryLimit entries.
func (s *Storage) AppendCommandToHistory(guildID string, entry CommandHistory) error {
	return s.update(guildID, func(r *Record) {
		r.CommandsHistory = append(r.CommandsHistory, entry)
		if n := len(r.CommandsHistory); n > commandHistoryLimit {
			r.CommandsHistory = r.CommandsHistory[n-commandHistoryLimit:]
		}
	})
}

// CommandsHistory returns the guild history, oldest first.
func (s *Storage) CommandsHistory(guildID string) ([]CommandHistory, error) {
	r, err := s.record(guildID)
	if err != nil {
		return nil, err
	}
	return r.CommandsHistory, nil
}
