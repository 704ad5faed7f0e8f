// Package watcher observes the application icon directory and reports
// normalized icons that disappear out from under their launcher entries.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sydlexius/quickwebapps/internal/event"
)

// Service watches the icon directory and publishes icon.missing events
// when a normalized icon file is removed or renamed away.
type Service struct {
	dir      string
	eventBus *event.Bus
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewService creates a watcher for the given icon directory.
func NewService(dir string, eventBus *event.Bus, logger *slog.Logger) *Service {
	return &Service{
		dir:      dir,
		eventBus: eventBus,
		logger:   logger.With(slog.String("component", "icon-watcher")),
		debounce: 500 * time.Millisecond,
		pending:  make(map[string]*time.Timer),
	}
}

// SetDebounce overrides the default debounce interval (for testing).
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Start blocks until ctx is canceled, dispatching events for removed
// icons. The watched directory is created if it does not exist yet.
func (s *Service) Start(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close() //nolint:errcheck

	if err := w.Add(s.dir); err != nil {
		return err
	}
	s.logger.Info("watching icon directory", slog.String("dir", s.dir))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("icon watcher stopping")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			s.handleEvent(ev)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// handleEvent coalesces rapid remove/rename bursts per path: atomic
// rewrites show up as Rename+Create pairs and must not be reported as
// missing icons.
func (s *Service) handleEvent(ev fsnotify.Event) {
	if filepath.Ext(ev.Name) != ".svg" {
		return
	}

	path := ev.Name
	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		s.mu.Lock()
		if t, ok := s.pending[path]; ok {
			t.Stop()
		}
		s.pending[path] = time.AfterFunc(s.debounce, func() { s.reportIfGone(path) })
		s.mu.Unlock()

	case ev.Has(fsnotify.Create):
		s.mu.Lock()
		if t, ok := s.pending[path]; ok {
			t.Stop()
			delete(s.pending, path)
		}
		s.mu.Unlock()
	}
}

func (s *Service) reportIfGone(path string) {
	s.mu.Lock()
	delete(s.pending, path)
	s.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return
	}

	s.logger.Warn("normalized icon disappeared", slog.String("path", path))
	s.eventBus.Publish(event.Event{
		Type: event.IconMissing,
		Data: map[string]string{"path": path},
	})
}
