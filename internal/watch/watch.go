package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"vanta/internal/logging"
)

// Filter decides whether a changed path is relevant
type Filter func(path string) bool

// Dir watches a single directory and calls onChange once a burst of
// relevant events has been quiet for the debounce interval.
type Dir struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	debounce  time.Duration
	filter    Filter
	onChange  func()

	mu       sync.Mutex
	timer    *time.Timer
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher for dir. The directory is created if missing.
func New(dir string, debounce time.Duration, filter Filter, onChange func()) (*Dir, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	d := &Dir{
		fsWatcher: fsWatcher,
		dir:       dir,
		debounce:  debounce,
		filter:    filter,
		onChange:  onChange,
		done:      make(chan struct{}),
	}

	d.wg.Add(1)
	go d.processEvents()

	return d, nil
}

// Stop stops watching and cancels a pending callback
func (d *Dir) Stop() error {
	var err error
	d.stopOnce.Do(func() {
		close(d.done)
		err = d.fsWatcher.Close()
		d.wg.Wait()

		d.mu.Lock()
		if d.timer != nil {
			d.timer.Stop()
		}
		d.mu.Unlock()
	})
	return err
}

func (d *Dir) processEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			return
		case event, ok := <-d.fsWatcher.Events:
			if !ok {
				return
			}
			d.handleEvent(event)
		case err, ok := <-d.fsWatcher.Errors:
			if !ok {
				return
			}
			logging.Warn("watch error", "dir", d.dir, "error", err)
		}
	}
}

func (d *Dir) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	base := filepath.Base(event.Name)
	if strings.HasSuffix(base, "~") || strings.HasPrefix(base, ".#") {
		return
	}
	if d.filter != nil && !d.filter(event.Name) {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	select {
	case <-d.done:
		return
	default:
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.onChange)
}
