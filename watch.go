// Watches the backing file for external modification.

package pathstore

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch invokes onChange whenever the backing file is written, created or
// replaced on disk, until ctx is cancelled. The store itself keeps serving
// the in-memory tree; a caller that wants the new content must call Reload.
//
// The watch covers the file's directory because saves replace the file by
// rename, which would detach a watch on the file itself. The store's own
// saves trigger onChange too. onChange runs on the watcher goroutine, so the
// caller must serialize whatever it does there against its other store calls.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ioFailure("failed to create file watcher", err)
	}
	target, err := filepath.Abs(s.filename)
	if err != nil {
		_ = w.Close()
		return ioFailure("failed to resolve document path", err)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return ioFailure("failed to watch document directory", err)
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					onChange()
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}
