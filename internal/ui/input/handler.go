package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"vanta/internal/ui/input/modes"
	"vanta/internal/ui/input/types"
)

// DefaultSettingsKey toggles the settings panel when none is configured
const DefaultSettingsKey = "ctrl+s"

type Handler struct {
	currentMode types.Mode
	modes       map[types.Mode]types.ModeHandler
	textInput   *textinput.Model
	settingsKey string
}

func New() *Handler {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.Placeholder = "Search apps, files, scripts…"
	ti.CharLimit = 512
	ti.Focus()

	h := &Handler{
		currentMode: types.ModeBrowsing,
		textInput:   &ti,
		modes:       make(map[types.Mode]types.ModeHandler),
		settingsKey: DefaultSettingsKey,
	}

	h.modes[types.ModeBrowsing] = modes.NewBrowsingMode()
	h.modes[types.ModeSettings] = modes.NewSettingsMode()

	return h
}

// SetSettingsKey changes the settings toggle hotkey
func (h *Handler) SetSettingsKey(key string) {
	if key != "" {
		h.settingsKey = key
	}
}

func (h *Handler) SettingsKey() string { return h.settingsKey }

// HandleKey routes a key to the current mode. The settings hotkey is checked first.
func (h *Handler) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, tea.Cmd) {
	if msg.String() == h.settingsKey {
		target := types.ModeSettings
		if h.currentMode == types.ModeSettings {
			target = types.ModeBrowsing
		}
		return h.changeMode(target, ctx)
	}

	handler := h.modes[h.currentMode]
	if handler == nil {
		return nil, nil
	}

	actions, consumed := handler.HandleKey(msg, ctx)

	var cmd tea.Cmd
	var allActions []types.Action
	for _, action := range actions {
		if changeMode, ok := action.(types.ChangeModeAction); ok {
			modeActions, modeCmd := h.changeMode(changeMode.Mode, ctx)
			allActions = append(allActions, modeActions...)
			cmd = modeCmd
		} else {
			allActions = append(allActions, action)
		}
	}

	// Unhandled keys edit the query while browsing
	if !consumed && h.currentMode == types.ModeBrowsing {
		before := h.textInput.Value()
		var textCmd tea.Cmd
		*h.textInput, textCmd = h.textInput.Update(msg)
		cmd = textCmd
		if h.textInput.Value() != before {
			allActions = append(allActions, types.UpdateQueryAction{Text: h.textInput.Value()})
		}
	}

	return allActions, cmd
}

func (h *Handler) changeMode(mode types.Mode, ctx types.Context) ([]types.Action, tea.Cmd) {
	if mode == h.currentMode {
		return nil, nil
	}

	var actions []types.Action
	if current := h.modes[h.currentMode]; current != nil {
		actions = append(actions, current.Exit(ctx)...)
	}
	h.currentMode = mode
	if next := h.modes[h.currentMode]; next != nil {
		actions = append(actions, next.Enter(ctx)...)
	}

	if mode == types.ModeBrowsing {
		return actions, h.textInput.Focus()
	}
	h.textInput.Blur()
	return actions, nil
}

func (h *Handler) CurrentMode() types.Mode {
	return h.currentMode
}

func (h *Handler) TextInput() *textinput.Model {
	return h.textInput
}

// SyncQuery makes the input show query when it was changed elsewhere
func (h *Handler) SyncQuery(query string) {
	if h.textInput.Value() == query {
		return
	}
	h.textInput.SetValue(query)
	h.textInput.CursorEnd()
}

// Reset returns to browsing with an empty, focused input without running exit hooks
func (h *Handler) Reset() tea.Cmd {
	h.currentMode = types.ModeBrowsing
	h.textInput.Reset()
	return h.textInput.Focus()
}

// Focus focuses the query input
func (h *Handler) Focus() tea.Cmd {
	if h.currentMode != types.ModeBrowsing {
		return nil
	}
	return h.textInput.Focus()
}

// Update handles non-keyboard messages for text input
func (h *Handler) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	*h.textInput, cmd = h.textInput.Update(msg)
	return cmd
}
