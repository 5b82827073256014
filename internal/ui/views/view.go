package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"vanta/internal/config"
	"vanta/internal/domain"
	"vanta/internal/ui/services/mode"
	"vanta/internal/ui/services/settings"
	"vanta/internal/ui/state"
)

// chromeLines is the height taken by everything except the result rows:
// frame border, input line, rule, footer and key hints.
const chromeLines = 6

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width          int
	Height         int
	Session        state.SessionState
	Input          string
	Spinner        string
	ViewportHeight int
	SettingsRows   []settings.Row
	Diagnostics    []string
}

type keyMap struct {
	Navigate key.Binding
	Activate key.Binding
	Complete key.Binding
	Close    key.Binding
	Settings key.Binding
	Help     key.Binding
}

func newKeyMap(settingsKey string) keyMap {
	return keyMap{
		Navigate: key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "move")),
		Activate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Complete: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Settings: key.NewBinding(key.WithKeys(settingsKey), key.WithHelp(settingsKey, "settings")),
		Help:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "keys")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Navigate, k.Activate, k.Complete, k.Close, k.Settings, k.Help}
}

// Renderer handles all view rendering
type Renderer struct {
	styles  *Styles
	palette Palette
	popup   *PopupRenderer
	help    help.Model
	keys    keyMap

	theme      domain.ThemeMeta
	blur       bool
	maxResults int
}

// NewRenderer creates a renderer with the default configuration
func NewRenderer() *Renderer {
	cfg := config.DefaultConfig()
	r := &Renderer{help: help.New()}
	r.ApplyConfig(cfg)
	r.ApplyTheme(cfg.Theme())
	return r
}

// ApplyConfig takes the result cap, blur preference and settings key from cfg
func (r *Renderer) ApplyConfig(cfg *config.Config) {
	r.maxResults = cfg.General.MaxResults
	r.blur = cfg.Appearance.Blur
	r.keys = newKeyMap(cfg.General.SettingsKey)
}

// ApplyTheme rebuilds the styles from the theme colors
func (r *Renderer) ApplyTheme(theme domain.ThemeMeta) {
	r.theme = theme
	r.palette = PaletteFromTheme(theme)
	r.styles = NewStyles(r.palette, false)
	r.popup = NewPopupRenderer(r.styles)

	r.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(r.palette.Accent)
	r.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(r.palette.TextSecondary)
	r.help.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(r.palette.Border)
}

// Theme returns the theme in use
func (r *Renderer) Theme() domain.ThemeMeta { return r.theme }

// ListRows is how many result rows fit in a terminal of the given height
func (r *Renderer) ListRows(height int) int {
	rows := height - chromeLines
	if r.maxResults > 0 && rows > r.maxResults {
		rows = r.maxResults
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Render produces the complete view. A hidden session renders nothing.
func (r *Renderer) Render(vs ViewState) string {
	st := vs.Session
	if !st.Visible {
		return ""
	}

	width := vs.Width
	if width <= 0 {
		width = 80
	}
	inner := width - 4
	if inner < 20 {
		inner = 20
	}

	content := &strings.Builder{}
	content.WriteString(r.renderHeader(vs, inner))
	content.WriteString("\n")
	content.WriteString(r.styles.Dim.Render(strings.Repeat("─", inner)))
	content.WriteString("\n")

	if st.Nav == state.SettingsOpen {
		content.WriteString(r.popup.RenderSettings(vs.SettingsRows, vs.Diagnostics, inner))
	} else {
		content.WriteString(r.renderList(vs, inner))
	}
	content.WriteString("\n")

	if st.Status != "" {
		style := r.styles.Status
		if strings.HasPrefix(st.Status, "Install failed") || strings.HasPrefix(st.Status, "Error") {
			style = r.styles.StatusError
		}
		content.WriteString(style.Render(truncate(st.Status, inner)))
		content.WriteString("\n")
	}

	content.WriteString(r.renderFooter(vs, inner))
	content.WriteString("\n")
	content.WriteString(r.renderHints(st, inner))

	frame := r.styles.Frame
	if !r.blur || st.Blur == domain.BlurFallback {
		frame = frame.Background(r.palette.Background)
	}
	return frame.Width(inner + 2).Render(content.String())
}

func (r *Renderer) renderHeader(vs ViewState, width int) string {
	badge := r.styles.Mode.Render(modeLabel(vs.Session.Mode))
	input := vs.Input
	gap := width - lipgloss.Width(input) - lipgloss.Width(badge)
	if gap < 1 {
		return input
	}
	return input + strings.Repeat(" ", gap) + badge
}

func modeLabel(m mode.Mode) string {
	switch m.Kind {
	case mode.KindScript:
		return m.Keyword
	case mode.KindClipboard:
		return "clipboard"
	case mode.KindSettings:
		return "settings"
	}
	return "launch"
}

func (r *Renderer) renderList(vs ViewState, width int) string {
	st := vs.Session
	total := st.ItemCount()
	rows := vs.ViewportHeight
	if rows <= 0 {
		rows = r.ListRows(vs.Height)
	}

	if total == 0 {
		var line string
		switch {
		case st.Loading:
			line = strings.TrimSpace(vs.Spinner + " Searching…")
		case st.Mode.Kind == mode.KindClipboard:
			line = "Clipboard history is empty"
		case st.Mode.Kind == mode.KindScript:
			line = "No output"
		case strings.TrimSpace(st.Query) == "":
			line = "Start typing to search"
		default:
			line = "No results"
		}
		return r.styles.Dim.Render(line) + strings.Repeat("\n", rows-1)
	}

	start := st.ViewportOffset
	end := start + rows
	if end > total {
		end = total
	}

	lines := make([]string, 0, rows)
	for i := start; i < end; i++ {
		selected := i == st.Selection
		if st.Mode.Kind == mode.KindScript {
			lines = append(lines, r.renderScriptItem(st.ScriptItems[i], selected, width))
		} else {
			lines = append(lines, r.renderResult(st.Results[i], selected, width))
		}
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) marker(selected bool) string {
	if selected {
		return r.styles.Marker.Render("› ")
	}
	return "  "
}

func (r *Renderer) renderResult(item domain.ResultItem, selected bool, width int) string {
	base := r.styles.Item
	if selected {
		base = r.styles.Selected
	}

	avail := width - 2
	title := highlight(item.Title, item.MatchIndices, avail, base, r.styles.Match)
	line := r.marker(selected) + title

	remaining := avail - lipgloss.Width(title) - 2
	if item.Subtitle != "" && remaining > 3 {
		line += "  " + r.styles.Subtitle.Render(truncate(item.Subtitle, remaining))
	}
	return line
}

func (r *Renderer) renderScriptItem(item domain.ScriptItem, selected bool, width int) string {
	base := r.styles.Item
	switch item.EffectiveUrgency() {
	case domain.UrgencyCritical:
		base = r.styles.Critical
	case domain.UrgencyLow:
		base = r.styles.Dim
	default:
		if selected {
			base = r.styles.Selected
		}
	}

	badge := ""
	if item.Badge != "" {
		badge = r.styles.Badge.Render(truncate(item.Badge, 12))
	}

	avail := width - 2 - lipgloss.Width(badge)
	if badge != "" {
		avail--
	}
	title := base.Render(truncate(item.Title, avail))
	line := r.marker(selected) + title

	remaining := avail - lipgloss.Width(title) - 2
	if item.Subtitle != "" && remaining > 3 {
		line += "  " + r.styles.Subtitle.Render(truncate(item.Subtitle, remaining))
	}
	if badge != "" {
		gap := width - lipgloss.Width(line) - lipgloss.Width(badge)
		if gap < 1 {
			gap = 1
		}
		line += strings.Repeat(" ", gap) + badge
	}
	return line
}

func (r *Renderer) renderFooter(vs ViewState, width int) string {
	st := vs.Session

	var left string
	n := st.ItemCount()
	switch {
	case st.Nav == state.SettingsOpen:
		left = "editing settings"
	case n == 1:
		left = "1 result"
	default:
		left = fmt.Sprintf("%d results", n)
	}
	if st.Loading && n > 0 && vs.Spinner != "" {
		left = vs.Spinner + " " + left
	}
	if st.ActionInFlight {
		left += " · running"
	}

	right := formatLatency(st.SearchLatency)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return r.styles.Footer.Render(left + strings.Repeat(" ", gap) + right)
}

func (r *Renderer) renderHints(st state.SessionState, width int) string {
	r.help.Width = width
	if st.Nav == state.SettingsOpen {
		return r.help.ShortHelpView(settingsBindings())
	}

	bindings := r.keys.ShortHelp()
	if item, ok := st.SelectedResult(); ok && len(item.Actions) > 0 {
		extra := make([]key.Binding, 0, len(item.Actions))
		for _, a := range item.Actions {
			if a.Shortcut == "" {
				continue
			}
			extra = append(extra, key.NewBinding(key.WithKeys(a.Shortcut), key.WithHelp(a.Shortcut, strings.ToLower(a.Label))))
		}
		bindings = append(extra, bindings...)
	}
	return r.help.ShortHelpView(bindings)
}

func settingsBindings() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "field")),
		key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "change")),
		key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter/esc", "save")),
	}
}

func formatLatency(d time.Duration) string {
	if d == state.LatencyUnknown || d < 0 {
		return "–"
	}
	if d < time.Millisecond {
		return "<1ms"
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// truncate cuts s to width display cells, ending with an ellipsis when cut
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// highlight renders s within width cells, styling the runes at indices with match
func highlight(s string, indices []int, width int, base, match lipgloss.Style) string {
	if width <= 0 {
		return ""
	}

	runes := []rune(s)
	limit := width
	cut := runewidth.StringWidth(s) > width
	if cut {
		limit = width - 1
	}

	matched := make(map[int]bool, len(indices))
	for _, i := range indices {
		matched[i] = true
	}

	var out strings.Builder
	var seg []rune
	segMatch := false
	flush := func() {
		if len(seg) == 0 {
			return
		}
		if segMatch {
			out.WriteString(match.Render(string(seg)))
		} else {
			out.WriteString(base.Render(string(seg)))
		}
		seg = seg[:0]
	}

	used := 0
	for i, rn := range runes {
		w := runewidth.RuneWidth(rn)
		if used+w > limit {
			break
		}
		used += w
		if matched[i] != segMatch {
			flush()
			segMatch = matched[i]
		}
		seg = append(seg, rn)
	}
	flush()

	if cut {
		out.WriteString(base.Render("…"))
	}
	return out.String()
}
