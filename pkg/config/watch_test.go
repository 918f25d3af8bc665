package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeyPool struct {
	added   []string
	removed []string
}

func (f *fakeKeyPool) Add(key string) bool {
	f.added = append(f.added, key)
	return true
}

func (f *fakeKeyPool) Remove(key string) bool {
	f.removed = append(f.removed, key)
	return true
}

func TestWatchKeysFile_EmptyPathIsNoOp(t *testing.T) {
	w, err := WatchKeysFile("", &fakeKeyPool{}, nil)
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestWatchKeysFile_SeedsPoolFromInitialContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.txt")
	require.NoError(t, os.WriteFile(path, []byte("key-a\n# comment\n\nkey-b\n"), 0o600))

	p := &fakeKeyPool{}
	w, err := WatchKeysFile(path, p, nil)
	require.NoError(t, err)
	require.NotNil(t, w)
	defer w.Close()

	assert.ElementsMatch(t, []string{"key-a", "key-b"}, p.added)
}

func TestWatchKeysFile_ReloadReconcilesAddedAndRemovedKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.txt")
	require.NoError(t, os.WriteFile(path, []byte("key-a\nkey-b\n"), 0o600))

	p := &fakeKeyPool{}
	w, err := WatchKeysFile(path, p, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("key-b\nkey-c\n"), 0o600))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(p.removed) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	assert.Contains(t, p.added, "key-c")
	assert.Contains(t, p.removed, "key-a")
}

func TestClose_NilWatcherIsSafe(t *testing.T) {
	var w *KeyFileWatcher
	assert.NoError(t, w.Close())
}
