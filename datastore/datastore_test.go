package datastore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func openStore(t *testing.T, path string) *DataStore {
	t.Helper()
	cfg := DefaultConfig(path, zerolog.Nop())
	cfg.AutoSaveInterval = time.Hour
	ds, err := New(cfg)
	require.NoError(t, err)
	return ds
}

func TestRoundTripThroughDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	ds := openStore(t, path)
	require.NoError(t, ds.Put("g1", sample{Name: "guild", Items: []string{"a", "b"}}))
	require.NoError(t, ds.Close())

	reopened := openStore(t, path)
	defer reopened.Close()

	var got sample
	ok, err := reopened.Decode("g1", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sample{Name: "guild", Items: []string{"a", "b"}}, got)
	assert.Equal(t, []string{"g1"}, reopened.Keys())
}

func TestClosedStoreRejectsWrites(t *testing.T) {
	ds := openStore(t, filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, ds.Close())

	assert.ErrorIs(t, ds.Put("k", 1), ErrClosed)
	assert.ErrorIs(t, ds.Flush(), ErrClosed)
	_, ok := ds.Get("k")
	assert.False(t, ok)
	assert.NoError(t, ds.Close())
}

func TestMemoryLimit(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "store.json"), zerolog.Nop())
	cfg.MaxMemorySize = 16
	ds, err := New(cfg)
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Put("k", "short"))
	assert.ErrorIs(t, ds.Put("k2", "this value is far too long"), ErrMemoryLimit)
}

func TestBackupsArePruned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	cfg := DefaultConfig(path, zerolog.Nop())
	cfg.BackupCount = 2
	ds, err := New(cfg)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, ds.Put("k", i))
		require.NoError(t, ds.Flush())
	}
	require.NoError(t, ds.Close())

	backups, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	assert.Len(t, backups, 2)

	_, err = os.Stat(path + ".tmp")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeMissingKey(t *testing.T) {
	ds := openStore(t, filepath.Join(t.TempDir(), "store.json"))
	defer ds.Close()

	var out sample
	ok, err := ds.Decode("missing", &out)
	assert.NoError(t, err)
	assert.False(t, ok)
}
