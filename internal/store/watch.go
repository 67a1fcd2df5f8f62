package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watchSettle coalesces the burst of events an editor save produces
const watchSettle = 100 * time.Millisecond

// Watch calls fn with the re-read scene every time the file at path is
// written, until ctx is done. The parent directory is watched so editors
// that save by rename are still seen. A scene that fails to parse is passed
// as an error and watching continues.
func Watch(ctx context.Context, path string, log zerolog.Logger, fn func(*Scene, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	log = log.With().Str("component", "watch").Str("path", path).Logger()
	log.Debug().Msg("watching scene")

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				settle = time.After(watchSettle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		case <-settle:
			settle = nil
			scene, err := ReadScene(path)
			if err != nil {
				log.Warn().Err(err).Msg("scene reload failed")
			} else {
				log.Debug().Int("animations", len(scene.Animations)).Msg("scene reloaded")
			}
			fn(scene, err)
		}
	}
}
