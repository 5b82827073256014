package coordinator

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"vanta/internal/backend"
	"vanta/internal/config"
	"vanta/internal/domain"
	"vanta/internal/logging"
	"vanta/internal/ui/input"
	"vanta/internal/ui/services/activation"
	"vanta/internal/ui/services/mode"
	"vanta/internal/ui/services/navigation"
	"vanta/internal/ui/services/results"
	"vanta/internal/ui/services/settings"
	"vanta/internal/ui/state"
)

const loadTimeout = 5 * time.Second

// Applier receives the visual configuration
type Applier interface {
	ApplyConfig(cfg *config.Config)
	ApplyTheme(theme domain.ThemeMeta)
}

// ConfigLoaded carries the mount-time configuration
type ConfigLoaded struct {
	Config *config.Config
	Err    error
}

// ThemesLoaded carries the installed themes
type ThemesLoaded struct {
	Themes []domain.ThemeMeta
	Err    error
}

// ScriptsLoaded carries the mount-time script registry
type ScriptsLoaded struct {
	Scripts []domain.ScriptEntry
	Err     error
}

// WindowResult reports a hide, show or resize request
type WindowResult struct {
	Op  string
	Err error
}

// Coordinator manages all UI services and the session lifecycle
type Coordinator struct {
	// Services
	Store      *state.Store
	Registry   *mode.Registry
	Results    *results.Service
	Activation *activation.Dispatcher
	Navigation *navigation.Service
	Settings   *settings.Service
	Input      *input.Handler

	// Dependencies
	backend  backend.Backend
	renderer Applier

	cfg          *config.Config
	themes       []domain.ThemeMeta
	settingsFrom mode.Mode
	unsubscribe  func()
}

// NewCoordinator creates a new coordinator with all services
func NewCoordinator(be backend.Backend, clip backend.ClipboardWriter, renderer Applier) *Coordinator {
	cfg := config.DefaultConfig()
	store := state.NewStore()
	reg := mode.NewRegistry()
	res := results.NewService(store, be, reg, ms(cfg.Launcher.DebounceMs))

	c := &Coordinator{
		Store:      store,
		Registry:   reg,
		Results:    res,
		Activation: activation.New(store, be, clip, res, ms(cfg.Launcher.ActionGraceMs)),
		Navigation: navigation.NewService(store),
		Settings:   settings.NewService(be),
		Input:      input.New(),
		backend:    be,
		renderer:   renderer,
		cfg:        cfg,
	}

	store.Mutate("mount", func(st *state.SessionState) {
		st.SessionID = uuid.NewString()
	})
	c.unsubscribe = store.Subscribe(func(reason string, prev, next state.SessionState) {
		logging.Debug("state changed",
			"reason", reason,
			"mode", next.Mode.String(),
			"query", next.Query,
			"items", next.ItemCount(),
			"selection", next.Selection,
			"visible", next.Visible)
	})

	return c
}

// Close detaches the state logger
func (c *Coordinator) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Config returns the configuration currently applied
func (c *Coordinator) Config() *config.Config { return c.cfg }

// Mount runs the one-shot loads and the first suggestions fetch
func (c *Coordinator) Mount() tea.Cmd {
	be := c.backend
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			cfg, err := be.GetConfig(ctx)
			return ConfigLoaded{Config: cfg, Err: err}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			themes, err := be.GetInstalledThemes(ctx)
			return ThemesLoaded{Themes: themes, Err: err}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			scripts, err := be.GetScripts(ctx)
			return ScriptsLoaded{Scripts: scripts, Err: err}
		},
		c.Results.LoadSuggestions(),
	)
}

// HandleConfigLoaded applies the loaded config; a failed load keeps the defaults
func (c *Coordinator) HandleConfigLoaded(msg ConfigLoaded) tea.Cmd {
	if msg.Err != nil || msg.Config == nil {
		logging.Warn("config load failed, using defaults", "error", msg.Err)
		return nil
	}
	return c.ApplyConfig(msg.Config)
}

// HandleThemesLoaded records installed themes and re-applies the selected one
func (c *Coordinator) HandleThemesLoaded(msg ThemesLoaded) tea.Cmd {
	if msg.Err != nil {
		logging.Warn("theme load failed", "error", msg.Err)
		return nil
	}
	c.themes = msg.Themes
	c.Settings.SetThemes(msg.Themes)
	return c.applyTheme()
}

// HandleScriptsLoaded installs the mount-time registry
func (c *Coordinator) HandleScriptsLoaded(msg ScriptsLoaded) tea.Cmd {
	if msg.Err != nil {
		logging.Warn("script registry load failed", "error", msg.Err)
		return nil
	}
	return c.ReplaceScripts(msg.Scripts)
}

// ApplyConfig pushes cfg into every service and the renderer
func (c *Coordinator) ApplyConfig(cfg *config.Config) tea.Cmd {
	if cfg == nil {
		return nil
	}
	c.cfg = cfg

	c.Results.SetDebounce(ms(cfg.Launcher.DebounceMs))
	c.Results.SetClipboardLimit(cfg.Clipboard.MaxItems)
	c.Activation.SetGrace(ms(cfg.Launcher.ActionGraceMs))
	c.Input.SetSettingsKey(cfg.General.SettingsKey)
	if c.renderer != nil {
		c.renderer.ApplyConfig(cfg)
	}

	logging.Info("config applied", "theme", cfg.Appearance.Theme, "max_results", cfg.General.MaxResults)
	return c.applyTheme()
}

func (c *Coordinator) applyTheme() tea.Cmd {
	theme := c.resolveTheme(c.cfg.Appearance.Theme)
	if c.renderer != nil {
		c.renderer.ApplyTheme(theme)
	}

	be := c.backend
	width, height := theme.Width, theme.Height
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return WindowResult{Op: "resize", Err: be.ResizeWindowForTheme(ctx, width, height)}
	}
}

func (c *Coordinator) resolveTheme(name string) domain.ThemeMeta {
	base := c.cfg.Theme()
	if name == "" || name == base.Name {
		return base
	}
	for _, t := range c.themes {
		if t.Name != name {
			continue
		}
		if t.Width <= 0 {
			t.Width = base.Width
		}
		if t.Height <= 0 {
			t.Height = base.Height
		}
		colors := make(map[string]string, len(base.Colors))
		for k, v := range base.Colors {
			colors[k] = v
		}
		for k, v := range t.Colors {
			colors[k] = v
		}
		t.Colors = colors
		return t
	}
	logging.Warn("theme not installed, using default", "theme", name)
	return base
}

// ReplaceScripts swaps the registry and reclassifies the current query
func (c *Coordinator) ReplaceScripts(entries []domain.ScriptEntry) tea.Cmd {
	c.Registry.Replace(entries)
	logging.Info("script registry replaced", "scripts", c.Registry.Len())

	snap := c.Store.Snapshot()
	if snap.Mode.Kind != mode.KindLauncher && snap.Mode.Kind != mode.KindScript {
		return nil
	}
	if strings.TrimSpace(snap.Query) == "" {
		return nil
	}
	if mode.Resolve(snap.Query, c.Registry) == snap.Mode {
		return nil
	}
	return c.Results.SetQuery(snap.Query)
}

// SetBlur records the compositor's blur support
func (c *Coordinator) SetBlur(m domain.BlurMode) {
	c.Store.Mutate("blur status", func(st *state.SessionState) {
		st.Blur = m
	})
}

// FocusRegained starts a new visible session
func (c *Coordinator) FocusRegained() tea.Cmd {
	c.Store.Mutate("focus regained", func(st *state.SessionState) {
		st.Visible = true
		st.SessionID = uuid.NewString()
	})

	cmds := []tea.Cmd{c.Input.Focus()}
	snap := c.Store.Snapshot()
	if snap.Mode.Kind == mode.KindLauncher && strings.TrimSpace(snap.Query) == "" {
		cmds = append(cmds, c.Results.LoadSuggestions())
	}
	return tea.Batch(cmds...)
}

// OpenClipboard shows the palette in clipboard history mode
func (c *Coordinator) OpenClipboard() tea.Cmd {
	resetCmd := c.Input.Reset()
	c.Store.Mutate("open clipboard", func(st *state.SessionState) {
		if !st.Visible {
			st.SessionID = uuid.NewString()
		}
		st.Visible = true
		st.Nav = state.Browsing
		st.Status = ""
	})
	return tea.Batch(resetCmd, c.Results.EnterClipboard())
}

// OpenSettings enters the settings panel with a draft of the current config
func (c *Coordinator) OpenSettings() tea.Cmd {
	c.Results.CancelPending()
	c.settingsFrom = c.Store.Snapshot().Mode
	c.Store.Mutate("settings opened", func(st *state.SessionState) {
		st.Nav = state.SettingsOpen
		st.Loading = false
		st.SetMode(mode.Settings())
	})
	return c.Settings.Open(c.cfg)
}

// CloseSettings saves the draft and restores the mode the panel was opened from
func (c *Coordinator) CloseSettings() tea.Cmd {
	if c.Store.Snapshot().Nav != state.SettingsOpen {
		return nil
	}

	restore := mode.Launcher()
	c.Store.Mutate("settings closed", func(st *state.SessionState) {
		st.Nav = state.Browsing
		if c.settingsFrom.Kind == mode.KindClipboard {
			restore = mode.Clipboard()
		} else {
			restore = mode.Resolve(st.Query, c.Registry)
		}
		st.SetMode(restore)
	})
	return tea.Batch(c.Settings.Close(), c.Results.SearchNow())
}

// HandleSaved applies a persisted draft
func (c *Coordinator) HandleSaved(msg settings.Saved) tea.Cmd {
	if msg.Err != nil {
		logging.Warn("settings save failed", "error", msg.Err)
		c.Store.Mutate("settings save failed", func(st *state.SessionState) {
			st.Status = "Settings not saved: " + msg.Err.Error()
		})
		return nil
	}
	return c.ApplyConfig(msg.Config)
}

// ResetAndHide returns the session to its initial state and asks the host to hide.
// Calling it twice leaves the same state as calling it once.
func (c *Coordinator) ResetAndHide() tea.Cmd {
	c.Results.CancelPending()
	inputCmd := c.Input.Reset()

	c.Store.Mutate("reset and hide", func(st *state.SessionState) {
		st.Query = ""
		st.Mode = mode.Launcher()
		st.ClearItems()
		st.SearchLatency = state.LatencyUnknown
		st.Loading = false
		st.Nav = state.Browsing
		st.Status = ""
		st.Visible = false
	})

	be := c.backend
	hide := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return WindowResult{Op: "hide", Err: be.HideWindow(ctx)}
	}
	return tea.Batch(inputCmd, c.Results.LoadSuggestions(), hide)
}

// Toggle hides a visible palette or asks the host to show a hidden one
func (c *Coordinator) Toggle() tea.Cmd {
	if c.Store.Snapshot().Visible {
		return c.ResetAndHide()
	}
	be := c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return WindowResult{Op: "show", Err: be.ShowWindow(ctx)}
	}
}

// HandleWindowResult logs failed window requests; local state is never reverted
func (c *Coordinator) HandleWindowResult(msg WindowResult) {
	if msg.Err != nil {
		logging.Warn("window request failed", "op", msg.Op, "error", msg.Err)
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
