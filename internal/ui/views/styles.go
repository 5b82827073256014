package views

import (
	"github.com/charmbracelet/lipgloss"

	"vanta/internal/domain"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Frame       lipgloss.Style
	Mode        lipgloss.Style
	Item        lipgloss.Style
	Selected    lipgloss.Style
	Marker      lipgloss.Style
	Subtitle    lipgloss.Style
	Match       lipgloss.Style
	Badge       lipgloss.Style
	Critical    lipgloss.Style
	Dim         lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
	Footer      lipgloss.Style
	Panel       lipgloss.Style
	PanelTitle  lipgloss.Style
	Label       lipgloss.Style
	Value       lipgloss.Style
}

// Palette is the set of theme colors the styles are built from
type Palette struct {
	Background    lipgloss.Color
	Surface       lipgloss.Color
	Accent        lipgloss.Color
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	Border        lipgloss.Color
	Critical      lipgloss.Color
}

// PaletteFromTheme reads a theme's color map, falling back to the terminal's 256 colors
func PaletteFromTheme(theme domain.ThemeMeta) Palette {
	pick := func(key, fallback string) lipgloss.Color {
		if v, ok := theme.Colors[key]; ok && v != "" {
			return lipgloss.Color(v)
		}
		return lipgloss.Color(fallback)
	}
	return Palette{
		Background:    pick("background", "234"),
		Surface:       pick("surface", "236"),
		Accent:        pick("accent", "75"),
		TextPrimary:   pick("text_primary", "255"),
		TextSecondary: pick("text_secondary", "245"),
		Border:        pick("border", "238"),
		Critical:      pick("critical", "203"),
	}
}

// NewStyles creates the styles for a palette. Opaque paints the frame background,
// used when the compositor cannot blur behind the window.
func NewStyles(p Palette, opaque bool) *Styles {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	if opaque {
		frame = frame.Background(p.Background)
	}

	return &Styles{
		Frame:       frame,
		Mode:        lipgloss.NewStyle().Foreground(p.Background).Background(p.Accent).Padding(0, 1).Bold(true),
		Item:        lipgloss.NewStyle().Foreground(p.TextPrimary),
		Selected:    lipgloss.NewStyle().Foreground(p.TextPrimary).Background(p.Surface).Bold(true),
		Marker:      lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Subtitle:    lipgloss.NewStyle().Foreground(p.TextSecondary),
		Match:       lipgloss.NewStyle().Foreground(p.Accent).Bold(true).Underline(true),
		Badge:       lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Critical:    lipgloss.NewStyle().Foreground(p.Critical).Bold(true),
		Dim:         lipgloss.NewStyle().Foreground(p.TextSecondary).Faint(true),
		Status:      lipgloss.NewStyle().Foreground(p.Accent),
		StatusError: lipgloss.NewStyle().Foreground(p.Critical),
		Footer:      lipgloss.NewStyle().Foreground(p.TextSecondary),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.Accent).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().Foreground(p.Accent).Bold(true).MarginBottom(1),
		Label:      lipgloss.NewStyle().Foreground(p.TextSecondary).Width(14),
		Value:      lipgloss.NewStyle().Foreground(p.TextPrimary),
	}
}

// DefaultStyles uses the terminal palette
func DefaultStyles() *Styles {
	return NewStyles(PaletteFromTheme(domain.ThemeMeta{}), false)
}
