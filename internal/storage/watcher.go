package storage

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called when a user's files change out-of-band.
// userID is the first path element under the files root.
type ChangeCallback func(userID string)

// Watch starts an fsnotify watcher on the files root and reports
// changes until ctx is cancelled. Files written through normal API
// uploads also pass through here; that only triggers a redundant
// refetch on the client, which is harmless.
//
// New per-user directories created at runtime are automatically added
// to the watch list.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			// Ignore temp files from atomic writes.
			if strings.HasPrefix(filepath.Base(ev.Name), ".") {
				continue
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			userID, _, found := strings.Cut(filepath.ToSlash(rel), "/")
			if !found || userID == "" {
				continue
			}

			logger.Debug("watcher: file changed",
				slog.String("path", rel),
				slog.String("op", ev.Op.String()))
			if cb != nil {
				cb(userID)
			}

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", werr.Error()))
		}
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
