// Package shaderwatch reports compute shader blobs that changed on disk.
package shaderwatch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/NOT-REAL-GAMES/plume/sim"
)

const DefaultDebounce = 200 * time.Millisecond

// Watcher watches the directories holding the compute shaders and sends the
// mode of every shader written or created, once per debounce window.
type Watcher struct {
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	paths    map[string]sim.Mode
	debounce time.Duration
	reloads  chan sim.Mode
}

// New watches paths, keyed by the mode each shader implements. A zero
// debounce uses DefaultDebounce.
func New(logger *zap.Logger, paths map[sim.Mode]string, debounce time.Duration) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		logger:   logger.Named("shaderwatch"),
		watcher:  watcher,
		paths:    make(map[string]sim.Mode, len(paths)),
		debounce: debounce,
		reloads:  make(chan sim.Mode, len(sim.Modes)),
	}

	dirs := make(map[string]bool)
	for mode, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("resolve %s shader path: %w", mode, err)
		}
		w.paths[abs] = mode
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Reloads delivers the modes whose shaders changed.
func (w *Watcher) Reloads() <-chan sim.Mode {
	return w.reloads
}

// Start runs the event loop until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[sim.Mode]bool)

	w.logger.Info("watching compute shaders", zap.Int("files", len(w.paths)))

	go func() {
		defer timer.Stop()
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				mode, ok := w.match(event)
				if !ok {
					continue
				}
				w.logger.Debug("shader changed",
					zap.String("file", event.Name),
					zap.String("op", event.Op.String()))
				pending[mode] = true
				timer.Reset(w.debounce)

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error("watcher error", zap.Error(err))

			case <-timer.C:
				for _, mode := range sim.Modes {
					if !pending[mode] {
						continue
					}
					delete(pending, mode)
					select {
					case w.reloads <- mode:
					default:
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (w *Watcher) match(event fsnotify.Event) (sim.Mode, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return 0, false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return 0, false
	}
	mode, ok := w.paths[abs]
	return mode, ok
}

func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
