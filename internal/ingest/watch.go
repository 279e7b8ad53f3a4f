package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/JohnReedLOL/killrweather/internal/domain"
	"github.com/JohnReedLOL/killrweather/pkg/log"
)

// settleDelay gives a writer a moment to finish a freshly created file
// before it is streamed.
const settleDelay = 100 * time.Millisecond

// WatchFeeder runs the initial feed, then keeps watching the data directory
// and streams files created afterwards. Each file is fed at most once.
type WatchFeeder struct {
	feeder *Feeder
	dir    string
	logger log.Logger
}

// NewWatchFeeder wraps a feeder with directory watching.
func NewWatchFeeder(feeder *Feeder, dir string, logger log.Logger) *WatchFeeder {
	return &WatchFeeder{feeder: feeder, dir: dir, logger: logger}
}

// Run feeds the configured sources, then blocks watching the directory until
// the context is canceled.
func (w *WatchFeeder) Run(ctx context.Context) error {
	if err := w.feeder.Run(ctx); err != nil {
		return err
	}

	seen := make(map[string]bool, len(w.feeder.sources))
	for _, src := range w.feeder.sources {
		seen[filepath.Clean(src)] = true
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching data directory", log.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			name := filepath.Clean(event.Name)
			if seen[name] || strings.HasPrefix(filepath.Base(name), ".") {
				continue
			}
			seen[name] = true

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(settleDelay):
			}

			if err := w.feeder.feedSource(ctx, name); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrStopped) {
					return err
				}
				w.logger.Error("feed new source failed",
					log.String("source", name),
					log.Err(err),
				)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", log.Err(err))
		}
	}
}
