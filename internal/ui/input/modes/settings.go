package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"vanta/internal/ui/input/types"
)

// SettingsMode edits the settings draft. Escape and Enter both confirm and close.
type SettingsMode struct{}

func NewSettingsMode() *SettingsMode {
	return &SettingsMode{}
}

func (m *SettingsMode) Name() string {
	return "settings"
}

func (m *SettingsMode) Enter(ctx types.Context) []types.Action {
	return []types.Action{types.OpenSettingsAction{}}
}

func (m *SettingsMode) Exit(ctx types.Context) []types.Action {
	return []types.Action{types.CloseSettingsAction{}}
}

func (m *SettingsMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{}}, true
	case "esc", "enter":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeBrowsing}}, true
	case "up", "k", "shift+tab":
		return []types.Action{types.SettingsFieldAction{Delta: -1}}, true
	case "down", "j", "tab":
		return []types.Action{types.SettingsFieldAction{Delta: 1}}, true
	case "left", "h":
		return []types.Action{types.SettingsValueAction{Delta: -1}}, true
	case "right", "l", " ":
		return []types.Action{types.SettingsValueAction{Delta: 1}}, true
	}

	// Everything else is swallowed while the panel is open
	return nil, true
}
