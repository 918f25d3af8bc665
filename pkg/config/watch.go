package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// KeyPool is the subset of *pool.Pool the watcher needs, kept narrow to
// avoid an import cycle between config and pool.
type KeyPool interface {
	Add(key string) bool
	Remove(key string) bool
}

// KeyFileWatcher reloads GeminiAPIKeysFile on change and reconciles the
// pool's membership to match, adapted from a secrets-file watch loop that
// refreshes a cache into one that diffs a credential list against a pool.
type KeyFileWatcher struct {
	path    string
	pool    KeyPool
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	known   map[string]bool
}

// WatchKeysFile starts watching path for changes, seeding the pool with its
// initial contents. Returns nil, nil if path is empty — hot-reload is
// optional and only active when GEMINI_API_KEYS_FILE is set.
func WatchKeysFile(path string, p KeyPool, logger *slog.Logger) (*KeyFileWatcher, error) {
	if path == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &KeyFileWatcher{path: path, pool: p, logger: logger, known: make(map[string]bool)}
	if err := w.reload(); err != nil {
		return nil, fmt.Errorf("initial load of %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	w.watcher = watcher

	go w.loop()
	logger.Info("watching key file for changes", "path", path)
	return w, nil
}

// Close stops the watcher. Safe to call on a nil *KeyFileWatcher.
func (w *KeyFileWatcher) Close() error {
	if w == nil || w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

func (w *KeyFileWatcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := w.reload(); err != nil {
				w.logger.Error("reloading key file failed", "path", w.path, "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("key file watcher error", "error", err)
		}
	}
}

// reload reads path and reconciles it against the pool: keys present in
// the file but not yet known are added, keys previously known but now
// absent are removed. Keys already in the pool are left untouched so
// in-flight cooling/failure state survives a reload that doesn't change
// that particular key.
func (w *KeyFileWatcher) reload() error {
	current, err := readKeysFile(w.path)
	if err != nil {
		return err
	}

	currentSet := make(map[string]bool, len(current))
	for _, k := range current {
		currentSet[k] = true
		if !w.known[k] {
			w.pool.Add(k)
			w.logger.Info("key file reload: added key")
		}
	}

	for k := range w.known {
		if !currentSet[k] {
			w.pool.Remove(k)
			w.logger.Info("key file reload: removed key")
		}
	}

	w.known = currentSet
	return nil
}

func readKeysFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var keys []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keys = append(keys, line)
	}
	return keys, scanner.Err()
}
