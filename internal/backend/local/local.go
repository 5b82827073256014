// Package local implements the palette backend in-process: desktop
// application discovery, scripts, files, clipboard history and launching.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/sync/errgroup"

	"vanta/internal/backend"
	"vanta/internal/config"
	"vanta/internal/domain"
	"vanta/internal/eventbus"
	"vanta/internal/logging"
)

var _ backend.Backend = (*Backend)(nil)

// Options tune where the backend reads from and how it reaches the host
type Options struct {
	// DataDir holds the sqlite database; defaults to the config dir
	DataDir string
	// AppRoots overrides the XDG application directories
	AppRoots []string
	// Run executes helper commands such as hyprctl
	Run Runner
	// Start spawns launched processes
	Start Starter
	// ReadClipboard reads host clipboard text for the history poller
	ReadClipboard func() (string, error)
}

// Backend serves palette requests from the local machine
type Backend struct {
	cfgSvc config.ConfigService
	bus    eventbus.EventBus
	opts   Options

	mu  sync.RWMutex
	cfg *config.Config

	apps     *AppIndex
	scripts  *Scripts
	store    *Store
	launcher *Launcher
	windows  *WindowLister
	poller   *clipboardPoller

	visible     atomic.Bool
	width       atomic.Int64
	height      atomic.Int64
	perfSearch  *perfCounter
	perfSuggest *perfCounter
	perfLaunch  *perfCounter
	unsubscribe func()
}

// New opens the backend's store. Call Start to index and watch.
func New(cfg *config.Config, cfgSvc config.ConfigService, bus eventbus.EventBus, opts Options) (*Backend, error) {
	if opts.DataDir == "" {
		opts.DataDir = filepath.Dir(cfgSvc.Path())
	}
	store, err := OpenStore(filepath.Join(opts.DataDir, "vanta.db"))
	if err != nil {
		return nil, err
	}

	b := &Backend{
		cfgSvc:      cfgSvc,
		bus:         bus,
		opts:        opts,
		cfg:         cfg.Clone(),
		apps:        NewAppIndex(bus, opts.AppRoots),
		scripts:     NewScripts(bus, cfg.Scripts.Directory),
		store:       store,
		launcher:    NewLauncher(opts.Start),
		windows:     NewWindowLister(opts.Run),
		perfSearch:  newPerfCounter("search"),
		perfSuggest: newPerfCounter("suggestions"),
		perfLaunch:  newPerfCounter("launch"),
	}
	b.visible.Store(true)
	b.width.Store(int64(cfg.Window.Width))
	b.height.Store(int64(cfg.Window.Height))

	b.unsubscribe = bus.Subscribe(eventbus.EventConfigUpdated, func(e eventbus.DomainEvent) {
		if ev, ok := e.(config.UpdatedEvent); ok && ev.Config != nil {
			b.applyConfig(ev.Config)
		}
	})
	return b, nil
}

// Start scans applications and scripts in parallel, then starts the
// directory watchers and the clipboard poller.
func (b *Backend) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.apps.Scan(gctx) })
	g.Go(func() error {
		_, err := b.scripts.Scan()
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}

	if err := b.scripts.Watch(); err != nil {
		logging.Warn("scripts watcher unavailable", "error", err)
	}
	if err := b.apps.Watch(); err != nil {
		logging.Warn("application watcher unavailable", "error", err)
	}

	cfg := b.config()
	if cfg.Clipboard.Watch {
		b.startPoller(ctx, cfg)
	}

	mode := domain.BlurFallback
	if cfg.Appearance.Blur {
		mode = domain.BlurNative
	}
	b.bus.Publish(eventbus.BlurStatusEvent{Mode: mode})
	return nil
}

func (b *Backend) startPoller(ctx context.Context, cfg *config.Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.poller != nil {
		return
	}
	b.poller = newClipboardPoller(b.store, b.opts.ReadClipboard,
		time.Duration(cfg.Clipboard.PollMs)*time.Millisecond, cfg.Clipboard.MaxItems)
	b.poller.start(ctx)
}

func (b *Backend) stopPoller() {
	b.mu.Lock()
	p := b.poller
	b.poller = nil
	b.mu.Unlock()
	if p != nil {
		p.stop()
	}
}

// Close stops background work and closes the store
func (b *Backend) Close() error {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
	b.stopPoller()
	if err := b.scripts.Stop(); err != nil {
		logging.Warn("stop scripts watcher", "error", err)
	}
	if err := b.apps.Stop(); err != nil {
		logging.Warn("stop application watcher", "error", err)
	}
	return b.store.Close()
}

func (b *Backend) config() *config.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg
}

// applyConfig swaps the active config and follows directory and poller changes
func (b *Backend) applyConfig(cfg *config.Config) {
	b.mu.Lock()
	prev := b.cfg
	b.cfg = cfg.Clone()
	b.mu.Unlock()

	if cfg.Scripts.Directory != prev.Scripts.Directory {
		if err := b.scripts.SetDir(cfg.Scripts.Directory); err != nil {
			logging.Warn("switch scripts dir", "dir", cfg.Scripts.Directory, "error", err)
		}
	}
	if cfg.Clipboard != prev.Clipboard {
		b.stopPoller()
		if cfg.Clipboard.Watch {
			b.startPoller(context.Background(), cfg)
		}
	}
}

func (b *Backend) GetConfig(context.Context) (*config.Config, error) {
	return b.config().Clone(), nil
}

// SaveConfig writes cfg to the config file and makes it active
func (b *Backend) SaveConfig(_ context.Context, cfg *config.Config) error {
	next := cfg.Clone()
	next.Normalize()

	data, err := toml.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	path := b.cfgSvc.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}

	logging.Info("config saved", "path", path)
	b.applyConfig(next)
	return nil
}

func (b *Backend) GetInstalledThemes(context.Context) ([]domain.ThemeMeta, error) {
	dir := filepath.Join(filepath.Dir(b.cfgSvc.Path()), "themes")
	return loadThemes(dir, b.config())
}

// ResizeWindowForTheme records the size requested by the active theme
func (b *Backend) ResizeWindowForTheme(_ context.Context, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", width, height)
	}
	b.width.Store(int64(width))
	b.height.Store(int64(height))
	logging.Debug("window resized", "width", width, "height", height)
	return nil
}

// WindowSize returns the last size set by ResizeWindowForTheme
func (b *Backend) WindowSize() (int, int) {
	return int(b.width.Load()), int(b.height.Load())
}

func (b *Backend) GetScripts(context.Context) ([]domain.ScriptEntry, error) {
	return b.scripts.Entries(), nil
}

func (b *Backend) ExecuteScript(ctx context.Context, keyword, args string) (*domain.ScriptOutput, error) {
	timeout := time.Duration(b.config().Scripts.TimeoutMs) * time.Millisecond
	return b.scripts.Execute(ctx, keyword, args, timeout)
}

// InstallScript installs source and publishes the refreshed script list
func (b *Backend) InstallScript(ctx context.Context, source string) error {
	if err := b.scripts.Install(ctx, source); err != nil {
		return err
	}
	b.scripts.rescan()
	return nil
}

func (b *Backend) usage(ctx context.Context) map[string]int {
	usage, err := b.store.Usage(ctx)
	if err != nil {
		logging.Warn("usage counts unavailable", "error", err)
		return map[string]int{}
	}
	return usage
}

func (b *Backend) GetSuggestions(ctx context.Context) ([]domain.ResultItem, error) {
	defer b.perfSuggest.record(time.Now())
	cfg := b.config()
	if !cfg.Search.Applications.Enabled {
		return nil, nil
	}
	return suggestions(b.apps.all(), b.usage(ctx), cfg.General.MaxResults, cfg.Search.Applications.Weight), nil
}

// Search returns ranked results for query; a blank query yields suggestions
func (b *Backend) Search(ctx context.Context, query string) ([]domain.ResultItem, error) {
	if isBlank(query) {
		return b.GetSuggestions(ctx)
	}
	defer b.perfSearch.record(time.Now())
	return b.search(ctx, query, b.config()), nil
}

// RescanApps rebuilds the application index and publishes apps-changed
func (b *Backend) RescanApps(ctx context.Context) error {
	return b.apps.Scan(ctx)
}

func (b *Backend) GetApps(context.Context) ([]domain.AppEntry, error) {
	return b.apps.Entries(), nil
}

func (b *Backend) GetSearchDiagnostics(context.Context) (*domain.SearchDiagnostics, error) {
	return &domain.SearchDiagnostics{
		Search:      b.perfSearch.snapshot(),
		Suggestions: b.perfSuggest.snapshot(),
		Launch:      b.perfLaunch.snapshot(),
	}, nil
}

// LaunchApp starts exec and counts the launch toward suggestions
func (b *Backend) LaunchApp(ctx context.Context, exec string) error {
	defer b.perfLaunch.record(time.Now())
	if err := b.launcher.Launch(ctx, exec); err != nil {
		return err
	}
	if domain.ParseExec(exec, domain.SourceApplication).Kind == domain.ActionLaunch {
		if err := b.store.IncrementUsage(ctx, exec); err != nil {
			logging.Warn("usage not recorded", "exec", exec, "error", err)
		}
	}
	return nil
}

// OpenPath opens a directory in the file manager and a file in the editor,
// or in the file manager when documents are configured to open there.
func (b *Backend) OpenPath(ctx context.Context, path string) error {
	path = config.ExpandHome(path)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", backend.ErrPathNotFound, path)
	}

	files := b.config().Files
	handler := files.FileEditor
	if info.IsDir() || files.OpenDocsInManager {
		handler = files.FileManager
	}
	return b.launcher.Open(ctx, path, handler)
}

func (b *Backend) OpenURL(ctx context.Context, url string) error {
	return b.launcher.Open(ctx, url, "default")
}

func (b *Backend) GetClipboardHistory(ctx context.Context) ([]domain.ClipboardItem, error) {
	return b.store.ClipboardHistory(ctx, b.config().Clipboard.MaxItems)
}

func (b *Backend) HideWindow(context.Context) error {
	b.visible.Store(false)
	return nil
}

// ShowWindow shows the palette and announces the regained focus
func (b *Backend) ShowWindow(context.Context) error {
	b.visible.Store(true)
	b.bus.Publish(eventbus.WindowFocusRegainedEvent{})
	return nil
}

// OpenClipboard shows the palette in clipboard history mode
func (b *Backend) OpenClipboard() {
	b.visible.Store(true)
	b.bus.Publish(eventbus.OpenClipboardEvent{})
}

// Visible reports whether the palette is shown
func (b *Backend) Visible() bool {
	return b.visible.Load()
}
