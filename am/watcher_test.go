package am

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatcherReloads(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, "[cache]\ncapacity = 10\n")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Stop()
	cw.SetDebounce(10 * time.Millisecond)

	var capacity atomic.Int64
	cw.OnReload(func(cfg *Config) error {
		capacity.Store(int64(cfg.Cache.Capacity))
		return nil
	})
	cw.Start()

	writeFile(t, path, "[cache]\ncapacity = 20\n")
	assert.Eventually(t, func() bool { return capacity.Load() == 20 }, 5*time.Second, 20*time.Millisecond)
}

func TestConfigWatcherIgnoresOwnWrite(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, "[cache]\ncapacity = 10\n")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Stop()
	cw.SetDebounce(10 * time.Millisecond)

	var calls atomic.Int32
	cw.OnReload(func(*Config) error {
		calls.Add(1)
		return nil
	})
	cw.Start()

	cw.MarkOwnWrite()
	assert.True(t, cw.checkOwnWrite())
	assert.False(t, cw.checkOwnWrite(), "flag clears after one check")

	// writes to unrelated files in the directory are ignored
	writeFile(t, filepath.Join(dir, "notes.txt"), "hello")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestNewConfigWatcherNoFiles(t *testing.T) {
	_, err := NewConfigWatcher("", "")
	require.Error(t, err)
}

func TestGlobalWatcher(t *testing.T) {
	dir := t.TempDir()
	cw, err := NewConfigWatcher(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	defer cw.Stop()

	SetGlobalWatcher(cw)
	defer SetGlobalWatcher(nil)
	assert.Same(t, cw, GetGlobalWatcher())
}
