package folder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/macropower/tagrss/pkg/log"
)

// Watch reloads the catalog whenever its document changes, until ctx is
// done. The parent directory is watched so that editors which replace the
// file by renaming are handled. Reload failures are logged and the previous
// folder list is kept. If onReload is non-nil, it is called after every
// reload attempt with its result.
func (c *Catalog) Watch(ctx context.Context, onReload func(error)) error {
	if c.path == "" {
		return errors.New("watch folders: catalog is not bound to a file")
	}

	path, err := filepath.Abs(c.path)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", c.path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // Best effort.

	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("watch %q: %w", filepath.Dir(path), err)
	}

	logger := log.WithContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(evt.Name) != path {
				continue
			}

			// Ignore events that are not related to file content changes.
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
				continue
			}

			err := c.Reload()
			if err != nil {
				logger.ErrorContext(ctx, "reload folders",
					slog.String("event", evt.String()),
					slog.Any("error", err),
				)
			}

			if onReload != nil {
				onReload(err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.WarnContext(ctx, "folder watcher", slog.Any("error", err))
		}
	}
}
