package store

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the document whenever the backing file changes on disk,
// so edits made outside the host process (or by another admin surface)
// become visible without an explicit reload. Runs until ctx is done.
//
// Reload events are debounced: editors and the store itself produce bursts
// of write events for a single logical change.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory, not the file: rewrites and editor renames would
	// otherwise drop the watch.
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		var pending *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != FileName {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(200*time.Millisecond, func() {
					s.log.Debug("backing file changed, reloading")
					s.Reload()
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("file watcher error", "err", err)
			}
		}
	}()
	return nil
}
