package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/boshu2/conductor/internal/tplan"
)

// StateChange is delivered by WatchState whenever the record is replaced.
type StateChange struct {
	State *tplan.State
	Err   error
}

// WatchState follows sessionDir and calls fn with the current record once
// up front and again after every rename or write touching state.json. It
// returns when ctx is done or the watcher fails.
func WatchState(ctx context.Context, sessionDir string, fn func(StateChange)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close() //nolint:errcheck // best-effort on shutdown
	}()

	// Watch the directory: atomic writes replace the file, which drops a
	// watch placed on the file itself.
	if err := watcher.Add(sessionDir); err != nil {
		return fmt.Errorf("watch %s: %w", sessionDir, err)
	}

	emit := func() {
		st, err := ReadState(sessionDir)
		fn(StateChange{State: st, Err: err})
	}
	emit()

	statePath := StatePath(sessionDir)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != statePath {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				emit()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				emit()
				continue
			}
			return fmt.Errorf("watch %s: %w", sessionDir, err)
		}
	}
}
