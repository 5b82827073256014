package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"vanta/internal/backend/local"
	"vanta/internal/config"
	"vanta/internal/eventbus"
	"vanta/internal/logging"
	"vanta/internal/ui"
)

var (
	cfgFile    string
	logLevel   string
	clipboard  bool
	exitOnHide bool
)

var rootCmd = &cobra.Command{
	Use:   "vanta",
	Short: "Keyboard-driven command palette",
	Long: `vanta is a terminal command palette for launching applications,
switching windows, browsing files, evaluating math, running script
extensions and recalling clipboard history.

Send SIGUSR1 to toggle the palette, SIGUSR2 to open clipboard history
and SIGHUP to rescan installed applications.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPalette(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/vanta/config.toml)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&clipboard, "clipboard", false, "start in clipboard history mode")
	rootCmd.Flags().BoolVar(&exitOnHide, "exit-on-hide", false, "quit instead of hiding after an action")
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(svc config.ConfigService) *config.Config {
	cfg, err := svc.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vanta: %v, using defaults\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

func setupLogging(cfg *config.Config, dir string) {
	level := logging.Level(cfg.Logging.Level)
	if logLevel != "" {
		level = logging.Level(logLevel)
	}
	if !cfg.Logging.File {
		logging.Configure(level, io.Discard)
		return
	}
	if err := logging.EnableFileLogging(dir, level); err != nil {
		fmt.Fprintf(os.Stderr, "vanta: could not open log file: %v\n", err)
	}
}

func runPalette(ctx context.Context) error {
	svc := config.NewConfigService(cfgFile)
	cfg := loadConfig(svc)
	dir := filepath.Dir(svc.Path())
	setupLogging(cfg, dir)
	defer logging.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory %s: %w", dir, err)
	}

	bus := eventbus.New()
	defer bus.Close()

	watcher, err := config.NewWatcher(svc, bus)
	if err != nil {
		logging.Warn("config watcher unavailable", "error", err)
	} else {
		defer watcher.Stop()
	}

	be, events, unsubscribe, err := startBackend(ctx, cfg, svc, bus, local.Options{})
	if err != nil {
		return err
	}
	defer be.Close()
	defer unsubscribe()

	model := ui.NewModel(be, local.SystemClipboard{}, ui.Options{
		Clipboard:  clipboard,
		ExitOnHide: exitOnHide,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case e := <-events:
				p.Send(ui.EventMsg{Event: e})
			case <-done:
				return
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGHUP)
	defer signal.Stop(sigChan)
	go func() {
		for {
			select {
			case sig := <-sigChan:
				switch sig {
				case syscall.SIGUSR1:
					p.Send(ui.ToggleMsg{})
				case syscall.SIGUSR2:
					be.OpenClipboard()
				case syscall.SIGHUP:
					if err := be.RescanApps(ctx); err != nil {
						logging.Warn("application rescan failed", "error", err)
					}
				}
			case <-done:
				return
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// uiEvents are the bus events forwarded into the program
var uiEvents = []eventbus.EventType{
	eventbus.EventConfigUpdated,
	eventbus.EventScriptsChanged,
	eventbus.EventBlurStatus,
	eventbus.EventWindowFocusRegained,
	eventbus.EventOpenClipboard,
	eventbus.EventAppsChanged,
	eventbus.EventError,
}

// forwardEvents queues uiEvents on a buffered channel until the program
// is running and reading them.
func forwardEvents(bus eventbus.EventBus) (<-chan eventbus.DomainEvent, func()) {
	eventChan := make(chan eventbus.DomainEvent, 100)
	unsubs := make([]func(), 0, len(uiEvents))
	for _, typ := range uiEvents {
		unsubs = append(unsubs, bus.Subscribe(typ, func(e eventbus.DomainEvent) {
			select {
			case eventChan <- e:
			default:
				logging.Warn("event channel full, dropping event", "type", e.Type())
			}
		}))
	}
	return eventChan, func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// startBackend subscribes the program's event forwarding before starting the
// backend, so events published during startup are queued rather than lost.
func startBackend(ctx context.Context, cfg *config.Config, svc config.ConfigService, bus eventbus.EventBus, opts local.Options) (*local.Backend, <-chan eventbus.DomainEvent, func(), error) {
	be, err := local.New(cfg, svc, bus, opts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open backend: %w", err)
	}

	events, unsubscribe := forwardEvents(bus)
	if err := be.Start(ctx); err != nil {
		unsubscribe()
		be.Close()
		return nil, nil, nil, fmt.Errorf("start backend: %w", err)
	}
	return be, events, unsubscribe, nil
}
