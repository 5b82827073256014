package local

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"vanta/internal/backend"
	"vanta/internal/domain"
	"vanta/internal/logging"
)

// Runner runs a command to completion and returns its stdout
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Starter starts a command without waiting for it
type Starter func(name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w (stderr: %s)", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// startDetached spawns name with null stdio and reaps it in the background
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn %q: %w", name, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logging.Debug("launched process exited", "cmd", name, "error", err)
		}
	}()
	return nil
}

// Launcher starts applications and opens paths
type Launcher struct {
	start      Starter
	workerPool chan struct{}
}

// NewLauncher creates a launcher; a nil starter spawns real processes
func NewLauncher(start Starter) *Launcher {
	if start == nil {
		start = startDetached
	}
	return &Launcher{
		start:      start,
		workerPool: make(chan struct{}, 5),
	}
}

func (l *Launcher) acquire(ctx context.Context) (func(), error) {
	select {
	case l.workerPool <- struct{}{}:
		return func() { <-l.workerPool }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Launch runs an exec string: window focus, an existing file, or a command line
func (l *Launcher) Launch(ctx context.Context, execLine string) error {
	release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if strings.HasPrefix(execLine, domain.PrefixFocus) {
		return l.focus(strings.TrimPrefix(execLine, domain.PrefixFocus))
	}

	if info, err := os.Stat(execLine); err == nil && !info.IsDir() {
		return l.open(execLine)
	}

	argv, err := splitExec(execLine)
	if err != nil {
		return err
	}
	logging.Info("launching", "cmd", argv[0], "args", argv[1:])
	return l.start(argv[0], argv[1:]...)
}

// focus asks the compositor to focus a window. Both Hyprland and Sway are tried.
func (l *Launcher) focus(address string) error {
	if address == "" {
		return backend.ErrEmptyCommand
	}
	hyprErr := l.start("hyprctl", "dispatch", "focuswindow", "address:"+address)
	swayErr := l.start("swaymsg", fmt.Sprintf("[con_id=%s] focus", address))
	if hyprErr != nil && swayErr != nil {
		return fmt.Errorf("focus window %s: %w", address, hyprErr)
	}
	return nil
}

// Open hands a path or URL to handler, or to xdg-open when handler is "default"
func (l *Launcher) Open(ctx context.Context, target, handler string) error {
	release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if handler == "" || handler == "default" {
		return l.open(target)
	}
	argv, err := splitExec(substituteTarget(handler, target))
	if err != nil {
		return err
	}
	return l.start(argv[0], argv[1:]...)
}

func (l *Launcher) open(target string) error {
	return l.start("xdg-open", target)
}

// substituteTarget replaces field codes with target, appending it when none are present
func substituteTarget(handler, target string) string {
	for _, code := range []string{"%f", "%F", "%u", "%U"} {
		if strings.Contains(handler, code) {
			return strings.Replace(handler, code, shellQuote(target), 1)
		}
	}
	return handler + " " + shellQuote(target)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// splitExec strips desktop field codes and splits the command line
func splitExec(execLine string) ([]string, error) {
	cleaned := stripFieldCodes(execLine)
	if cleaned == "" {
		return nil, backend.ErrEmptyCommand
	}
	argv, err := shlex.Split(cleaned)
	if err != nil {
		return nil, fmt.Errorf("parse exec %q: %w", execLine, err)
	}
	if len(argv) == 0 {
		return nil, backend.ErrEmptyCommand
	}
	return argv, nil
}

// stripFieldCodes removes freedesktop %-codes; %% becomes a literal %
func stripFieldCodes(execLine string) string {
	var b strings.Builder
	runes := []rune(execLine)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '%' && i+1 < len(runes) {
			switch runes[i+1] {
			case 'u', 'U', 'f', 'F', 'd', 'D', 'n', 'N', 'i', 'c', 'k', 'v', 'm':
				i++
				continue
			case '%':
				i++
				b.WriteRune('%')
				continue
			}
		}
		b.WriteRune(runes[i])
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
