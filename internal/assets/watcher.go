package assets

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch bumps the store version whenever a file under dir changes, until ctx
// is cancelled. It returns once the watcher is running.
func (s *Store) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to add directories to watcher: %w", err)
	}

	go s.watchFiles(ctx, watcher)
	s.logger.Info("Watching asset overlay", "directory", dir)
	return nil
}

func (s *Store) watchFiles(ctx context.Context, watcher *fsnotify.Watcher) {
	defer func() {
		watcher.Close()
		s.logger.Debug("Asset watcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				// New subdirectories need their own watch.
				_ = watcher.Add(event.Name)
			}
			s.Bump()
			s.logger.Info("Asset changed", "event", event.Op.String(), "path", event.Name, "version", s.Version())

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("Asset watcher error", "error", err)
		}
	}
}
