package config

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// bursts of events closer together than this trigger a single reload
const reloadDelay = 150 * time.Millisecond

// Watch reloads the config at path whenever it is written, created or
// replaced, and hands every successfully parsed result to onChange. The
// parent directory is watched so editors that save by rename are seen.
// An empty file is treated as a save in progress and skipped.
// Watching stops when ctx is done.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(Config)) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	debounced := debounce.New(reloadDelay)
	reload := func() {
		if ctx.Err() != nil {
			return
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("config reload failed", "path", path, "error", err)
			return
		}
		if len(bytes.TrimSpace(data)) == 0 {
			logger.Debug("config file empty, waiting for next write", "path", path)
			return
		}

		cfg, err := Parse(data)
		if err != nil {
			logger.Warn("config reload failed", "path", path, "error", err)
			return
		}
		onChange(cfg)
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				debounced(reload)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	return nil
}
