package local

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vanta/internal/domain"
	"vanta/internal/logging"
)

const windowListTimeout = 500 * time.Millisecond

// window is an open toplevel reported by the compositor
type window struct {
	Title     string
	Class     string
	Address   string
	Workspace string
}

type hyprClient struct {
	Address   string `json:"address"`
	Class     string `json:"class"`
	Title     string `json:"title"`
	Workspace struct {
		Name string `json:"name"`
	} `json:"workspace"`
}

type swayNode struct {
	ID               int64      `json:"id"`
	Name             *string    `json:"name"`
	AppID            *string    `json:"app_id"`
	PID              *int       `json:"pid"`
	Nodes            []swayNode `json:"nodes"`
	FloatingNodes    []swayNode `json:"floating_nodes"`
	WindowProperties *struct {
		Class *string `json:"class"`
	} `json:"window_properties"`
}

// WindowLister queries Hyprland, then Sway, for open windows
type WindowLister struct {
	run Runner
}

// NewWindowLister creates a lister; a nil runner executes real commands
func NewWindowLister(run Runner) *WindowLister {
	if run == nil {
		run = runCommand
	}
	return &WindowLister{run: run}
}

// List returns open windows, or nil when no supported compositor answers
func (wl *WindowLister) List(ctx context.Context) []window {
	ctx, cancel := context.WithTimeout(ctx, windowListTimeout)
	defer cancel()

	if out, err := wl.run(ctx, "hyprctl", "clients", "-j"); err == nil {
		var clients []hyprClient
		if err := json.Unmarshal(out, &clients); err == nil {
			windows := make([]window, 0, len(clients))
			for _, c := range clients {
				if c.Title == "" {
					continue
				}
				windows = append(windows, window{Title: c.Title, Class: c.Class, Address: c.Address, Workspace: c.Workspace.Name})
			}
			return windows
		}
	}

	if out, err := wl.run(ctx, "swaymsg", "-t", "get_tree"); err == nil {
		var root swayNode
		if err := json.Unmarshal(out, &root); err == nil {
			var windows []window
			collectSwayWindows(root, &windows)
			return windows
		}
	}

	logging.Debug("no compositor window list available")
	return nil
}

func collectSwayWindows(n swayNode, out *[]window) {
	if n.PID != nil && n.Name != nil && *n.Name != "" {
		class := ""
		if n.AppID != nil {
			class = *n.AppID
		} else if n.WindowProperties != nil && n.WindowProperties.Class != nil {
			class = *n.WindowProperties.Class
		}
		*out = append(*out, window{
			Title:     *n.Name,
			Class:     class,
			Address:   strconv.FormatInt(n.ID, 10),
			Workspace: "?",
		})
	}
	for _, c := range n.Nodes {
		collectSwayWindows(c, out)
	}
	for _, c := range n.FloatingNodes {
		collectSwayWindows(c, out)
	}
}

// windowResults matches windows by title or class substring
func windowResults(windows []window, apps []app, query string, weight int) []domain.ResultItem {
	q := strings.ToLower(query)
	var items []domain.ResultItem
	for _, w := range windows {
		if !strings.Contains(strings.ToLower(w.Title), q) && !strings.Contains(strings.ToLower(w.Class), q) {
			continue
		}
		item := domain.ResultItem{
			ID:       "window:" + w.Address,
			Source:   domain.SourceWindow,
			Title:    w.Title,
			Subtitle: fmt.Sprintf("Switch to window (workspace %s)", w.Workspace),
			Exec:     domain.PrefixFocus + w.Address,
			Score:    weightedScore(950_000, weight),
		}
		if a, ok := appForWindow(apps, w); ok {
			item.Icon = a.Icon
		}
		items = append(items, item)
	}
	return items
}

// appForWindow finds the application owning a window by WM class, exec or name
func appForWindow(apps []app, w window) (app, bool) {
	for _, a := range apps {
		if a.WMClass != "" && strings.EqualFold(a.WMClass, w.Class) {
			return a, true
		}
		if fields := strings.Fields(a.Exec); len(fields) > 0 && strings.EqualFold(fields[0], w.Class) {
			return a, true
		}
		if strings.EqualFold(a.Name, w.Class) {
			return a, true
		}
	}
	return app{}, false
}
