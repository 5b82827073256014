package modes

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"vanta/internal/ui/input/types"
)

// BrowsingMode handles list navigation and activation while the query is edited
type BrowsingMode struct{}

func NewBrowsingMode() *BrowsingMode {
	return &BrowsingMode{}
}

func (m *BrowsingMode) Name() string {
	return "browsing"
}

func (m *BrowsingMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *BrowsingMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *BrowsingMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{}}, true

	case tea.KeyEsc:
		// Escape is terminal in every mode, including clipboard
		return []types.Action{types.ResetAndHideAction{}}, true

	case tea.KeyUp, tea.KeyCtrlP:
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case tea.KeyDown, tea.KeyCtrlN:
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case tea.KeyPgUp:
		return []types.Action{types.NavigateAction{Direction: "pageup"}}, true

	case tea.KeyPgDown:
		return []types.Action{types.NavigateAction{Direction: "pagedown"}}, true

	case tea.KeyShiftTab:
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case tea.KeyTab:
		if item, ok := ctx.SelectedResult(); ok && item.Action().IsContinuation() {
			return []types.Action{types.ContinueAction{Item: item}}, true
		}
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case tea.KeyEnter:
		if ctx.IsScriptMode() {
			if item, ok := ctx.SelectedScriptItem(); ok {
				return []types.Action{types.ActivateScriptAction{Item: item}}, true
			}
			return nil, true
		}
		if item, ok := ctx.SelectedResult(); ok {
			return []types.Action{types.ActivateAction{Item: item}}, true
		}
		return nil, true

	case tea.KeyF1:
		return []types.Action{types.ShowHelpAction{}}, true
	}

	if item, ok := ctx.SelectedResult(); ok {
		key := msg.String()
		for _, a := range item.Actions {
			if a.Shortcut != "" && strings.EqualFold(a.Shortcut, key) {
				return []types.Action{types.SecondaryAction{Exec: a.Exec, Source: item.Source}}, true
			}
		}
	}

	return nil, false
}
