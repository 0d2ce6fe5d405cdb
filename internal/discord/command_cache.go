package discord

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// hashCache stores the last registered definition hash per guild and command
// as one JSON file per guild under dir.
type hashCache struct {
	dir string
}

func (c hashCache) path(guildID string) string {
	return filepath.Join(c.dir, guildID+".json")
}

func (c hashCache) load(guildID string) (map[string]string, error) {
	hashes := make(map[string]string)
	data, err := os.ReadFile(c.path(guildID))
	if errors.Is(err, fs.ErrNotExist) {
		return hashes, nil
	}
	if err != nil {
		return hashes, err
	}
	if err := json.Unmarshal(data, &hashes); err != nil {
		return make(map[string]string), fmt.Errorf("corrupt command cache for %s: %w", guildID, err)
	}
	return hashes, nil
}

func (c hashCache) save(guildID string, hashes map[string]string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(guildID), data, 0o644)
}
