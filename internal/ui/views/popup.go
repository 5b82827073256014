package views

import (
	"strings"

	"vanta/internal/ui/services/settings"
)

// PopupRenderer handles the settings panel
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderSettings draws the settings rows followed by backend diagnostics
func (pr *PopupRenderer) RenderSettings(rows []settings.Row, diagnostics []string, width int) string {
	content := &strings.Builder{}
	content.WriteString(pr.styles.PanelTitle.Render("Settings"))
	content.WriteString("\n")

	for _, row := range rows {
		marker := "  "
		value := pr.styles.Value.Render(row.Value)
		if row.Selected {
			marker = pr.styles.Marker.Render("› ")
			value = pr.styles.Selected.Render("‹ " + row.Value + " ›")
		}
		content.WriteString(marker + pr.styles.Label.Render(row.Label) + value)
		content.WriteString("\n")
	}

	if len(diagnostics) > 0 {
		content.WriteString("\n")
		for _, line := range diagnostics {
			content.WriteString(pr.styles.Dim.Render(truncate(line, width-4)))
			content.WriteString("\n")
		}
	}

	panelWidth := width - 2
	if panelWidth < 10 {
		panelWidth = 10
	}
	return pr.styles.Panel.Width(panelWidth).Render(strings.TrimRight(content.String(), "\n"))
}
