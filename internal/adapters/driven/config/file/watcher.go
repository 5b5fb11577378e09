package file

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/epistle-sh/epistle/internal/logger"
)

// debounceInterval collapses editor write/rename bursts into one
// change notification.
const debounceInterval = 100 * time.Millisecond

// Watcher notifies when the config file changes on disk. The
// enclosing directory is watched rather than the file itself, since
// editors typically replace the file via rename.
type Watcher struct {
	store    *AccountStore
	watcher  *fsnotify.Watcher
	onChange func()
}

// NewWatcher creates a watcher for the store's config file. onChange
// runs on the watcher goroutine after each settled change.
func NewWatcher(store *AccountStore, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(store.Path())); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{store: store, watcher: fw, onChange: onChange}, nil
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.store.Path() {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("config file event: %s", event)
			if timer == nil {
				timer = time.NewTimer(debounceInterval)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceInterval)
			}
			pending = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher: %v", err)
		case <-pending:
			pending = nil
			logger.Info("config file changed, reloading")
			w.onChange()
		}
	}
}
