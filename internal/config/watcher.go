package config

import (
	"path/filepath"
	"time"

	"vanta/internal/domain"
	"vanta/internal/eventbus"
	"vanta/internal/logging"
	"vanta/internal/watch"
)

// UpdatedEvent carries a freshly loaded or saved configuration
type UpdatedEvent struct {
	Config *Config
}

func (e UpdatedEvent) Type() domain.EventType { return domain.EventConfigUpdated }

const reloadDelay = 250 * time.Millisecond

// Watcher reloads the config file when it changes on disk
type Watcher struct {
	svc ConfigService
	bus eventbus.EventBus
	dir *watch.Dir
}

// NewWatcher starts watching the service's config file
func NewWatcher(svc ConfigService, bus eventbus.EventBus) (*Watcher, error) {
	w := &Watcher{svc: svc, bus: bus}

	target := filepath.Clean(svc.Path())
	dir, err := watch.New(filepath.Dir(target), reloadDelay, func(path string) bool {
		return filepath.Clean(path) == target
	}, w.reload)
	if err != nil {
		return nil, err
	}
	w.dir = dir
	return w, nil
}

func (w *Watcher) reload() {
	cfg, err := w.svc.Load()
	if err != nil {
		logging.Warn("config reload failed, keeping previous", "path", w.svc.Path(), "error", err)
		return
	}
	logging.Info("config reloaded", "path", w.svc.Path())
	w.bus.Publish(UpdatedEvent{Config: cfg})
}

// Stop stops watching
func (w *Watcher) Stop() error {
	return w.dir.Stop()
}
