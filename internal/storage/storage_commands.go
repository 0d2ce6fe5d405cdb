package storage

import "slices"

func (s *Storage) DisableGroup(guildID, group string) error {
	return s.update(guildID, func(r *Record) {
		if !slices.Contains(r.CommandsDisabled, group) {
			r.CommandsDisabled = append(r.CommandsDisabled, group)
			slices.Sort(r.CommandsDisabled)
		}
	})
}

func (s *Storage) EnableGroup(guildID, group string) error {
	return s.update(guildID, func(r *Record) {
		r.CommandsDisabled = slices.DeleteFunc(r.CommandsDisabled, func(g string) bool { return g == group })
	})
}

func (s *Storage) IsGroupDisabled(guildID, group string) (bool, error) {
	r, err := s.record(guildID)
	if err != nil {
		return false, err
	}
	return slices.Contains(r.CommandsDisabled, group), nil
}

func (s *Storage) DisabledGroups(guildID string) ([]string, error) {
	r, err := s.record(guildID)
	if err != nil {
		return nil, err
	}
	return r.CommandsDisabled, nil
}
