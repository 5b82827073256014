package local

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"vanta/internal/domain"
	"vanta/internal/eventbus"
	"vanta/internal/logging"
	"vanta/internal/watch"
)

const (
	appScanDepth = 3
	appsDebounce  = time.Second
)

// app is an installed application parsed from a desktop entry
type app struct {
	ID          string
	Name        string
	GenericName string
	Comment     string
	Exec        string
	Icon        string
	WMClass     string
	Path        string
}

// AppIndex finds desktop entries and keeps the last scan in memory
type AppIndex struct {
	bus   eventbus.EventBus
	roots []string

	mu       sync.RWMutex
	apps     []app
	watchers []*watch.Dir
}

// NewAppIndex creates an index over roots, or the XDG application dirs when empty
func NewAppIndex(bus eventbus.EventBus, roots []string) *AppIndex {
	if len(roots) == 0 {
		roots = applicationDirs()
	}
	return &AppIndex{bus: bus, roots: roots}
}

// applicationDirs lists XDG application directories, user data first
func applicationDirs() []string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}

	var dirs []string
	if dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}
	for _, d := range filepath.SplitList(dataDirs) {
		if d != "" {
			dirs = append(dirs, filepath.Join(d, "applications"))
		}
	}
	return dirs
}

// Scan rebuilds the index. Earlier roots shadow later ones by desktop id.
func (ai *AppIndex) Scan(ctx context.Context) error {
	seen := make(map[string]bool)
	var found []app

	for _, root := range ai.roots {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		for _, a := range ai.scanDirectory(ctx, root) {
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			found = append(found, a)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return strings.ToLower(found[i].Name) < strings.ToLower(found[j].Name)
	})

	ai.mu.Lock()
	ai.apps = found
	ai.mu.Unlock()

	logging.Info("application index rebuilt", "apps", len(found))
	ai.bus.Publish(eventbus.AppsChangedEvent{Count: len(found)})
	return nil
}

func (ai *AppIndex) scanDirectory(ctx context.Context, root string) []app {
	var found []app

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if path == root {
				return fs.SkipDir
			}
			logging.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			if rel != "." && strings.Count(rel, string(filepath.Separator)) >= appScanDepth {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".desktop") {
			return nil
		}

		a, ok := parseDesktopFile(path)
		if !ok {
			return nil
		}
		a.ID = strings.ReplaceAll(rel, string(filepath.Separator), "-")
		found = append(found, a)
		return nil
	})

	if err != nil && err != context.Canceled {
		logging.Warn("application scan failed", "root", root, "error", err)
		ai.bus.Publish(eventbus.ErrorEvent{
			Message: fmt.Sprintf("Failed to scan %s", root),
			Err:     err,
		})
	}
	return found
}

// parseDesktopFile reads the [Desktop Entry] group of a .desktop file.
// Hidden, NoDisplay and non-Application entries are rejected.
func parseDesktopFile(path string) (app, bool) {
	f, err := os.Open(path)
	if err != nil {
		return app{}, false
	}
	defer f.Close()

	var (
		a       = app{Path: path}
		inEntry bool
		typ     string
		hidden  bool
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Type":
			typ = value
		case "Name":
			a.Name = value
		case "GenericName":
			a.GenericName = value
		case "Comment":
			a.Comment = value
		case "Exec":
			a.Exec = value
		case "Icon":
			a.Icon = value
		case "StartupWMClass":
			a.WMClass = value
		case "NoDisplay", "Hidden":
			if strings.EqualFold(value, "true") {
				hidden = true
			}
		}
	}

	if typ != "Application" || hidden || a.Name == "" || a.Exec == "" {
		return app{}, false
	}
	return a, true
}

func (ai *AppIndex) all() []app {
	ai.mu.RLock()
	defer ai.mu.RUnlock()
	return ai.apps
}

// Entries returns name/exec pairs for the settings panel
func (ai *AppIndex) Entries() []domain.AppEntry {
	apps := ai.all()
	out := make([]domain.AppEntry, 0, len(apps))
	for _, a := range apps {
		out = append(out, domain.AppEntry{Name: a.Name, Exec: a.Exec})
	}
	return out
}

// Watch rescans when desktop entries appear, change or disappear in any
// existing root. Subdirectories are picked up by the rescan but not watched.
func (ai *AppIndex) Watch() error {
	ai.mu.Lock()
	defer ai.mu.Unlock()
	if len(ai.watchers) > 0 {
		return nil
	}

	isDesktop := func(path string) bool { return strings.HasSuffix(path, ".desktop") }
	for _, root := range ai.roots {
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			continue
		}
		w, err := watch.New(root, appsDebounce, isDesktop, ai.rescan)
		if err != nil {
			for _, started := range ai.watchers {
				_ = started.Stop()
			}
			ai.watchers = nil
			return fmt.Errorf("watch %s: %w", root, err)
		}
		ai.watchers = append(ai.watchers, w)
	}
	return nil
}

func (ai *AppIndex) rescan() {
	if err := ai.Scan(context.Background()); err != nil {
		logging.Warn("application rescan failed", "error", err)
	}
}

// Stop stops all directory watchers
func (ai *AppIndex) Stop() error {
	ai.mu.Lock()
	watchers := ai.watchers
	ai.watchers = nil
	ai.mu.Unlock()

	var firstErr error
	for _, w := range watchers {
		if err := w.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
