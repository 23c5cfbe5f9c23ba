package fxconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/cineverse/ambientfx/internal/particles"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// Watch reloads path whenever it changes and passes the resolved configs to
// onChange. The parent directory is watched so atomic-rename saves are seen.
// Reload errors are logged and the previous config stays in effect.
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, debounce time.Duration, log *zap.Logger, onChange func([]particles.Config)) error {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Debug("watching config", zap.String("path", abs))

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			reload = time.After(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", zap.Error(err))
		case <-reload:
			reload = nil
			f, err := Load(abs)
			if err != nil {
				log.Warn("config reload failed", zap.String("path", abs), zap.Error(err))
				continue
			}
			cfgs, err := f.Configs()
			if err != nil {
				log.Warn("config reload failed", zap.String("path", abs), zap.Error(err))
				continue
			}
			log.Info("config reloaded", zap.String("path", abs), zap.Int("layers", len(cfgs)))
			onChange(cfgs)
		}
	}
}
