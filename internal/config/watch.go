package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"alors/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce coalesces the burst of events editors emit on save.
const DefaultWatchDebounce = 200 * time.Millisecond

// Watch calls onChange with the re-read file configuration every time the
// file at path changes. It blocks until ctx is done.
//
// The parent directory is watched rather than the file itself because most
// editors replace files on save, which drops a file watch.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(*Config)) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logging.Config("watching %s", path)

	target := filepath.Clean(path)
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logging.ConfigDebug("config event: %s", event)
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.ConfigWarn("watch error: %v", err)

		case <-timer.C:
			cfg, err := ReadFile(path)
			if err != nil {
				logging.ConfigWarn("failed to reload %s: %v", path, err)
				continue
			}
			logging.Config("reloaded %s", path)
			onChange(cfg)
		}
	}
}
