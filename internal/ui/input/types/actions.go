package types

import "vanta/internal/domain"

// Navigation actions
type NavigateAction struct {
	Direction string // "up", "down", "pageup", "pagedown", "home", "end"
}

func (a NavigateAction) Type() string { return "navigate" }

// ActivateAction runs the selected launcher or clipboard item
type ActivateAction struct {
	Item domain.ResultItem
}

func (a ActivateAction) Type() string { return "activate" }

// ActivateScriptAction runs the selected script item
type ActivateScriptAction struct {
	Item domain.ScriptItem
}

func (a ActivateScriptAction) Type() string { return "activate_script" }

// ContinueAction autocompletes a fill or install item
type ContinueAction struct {
	Item domain.ResultItem
}

func (a ContinueAction) Type() string { return "continue" }

// SecondaryAction runs one of an item's extra actions
type SecondaryAction struct {
	Exec   string
	Source domain.Source
}

func (a SecondaryAction) Type() string { return "secondary" }

// Mode transition actions
type ChangeModeAction struct {
	Mode Mode
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// Text input actions
type UpdateQueryAction struct {
	Text string
}

func (a UpdateQueryAction) Type() string { return "update_query" }

// Settings actions
type OpenSettingsAction struct{}

func (a OpenSettingsAction) Type() string { return "open_settings" }

type CloseSettingsAction struct{}

func (a CloseSettingsAction) Type() string { return "close_settings" }

type SettingsFieldAction struct {
	Delta int
}

func (a SettingsFieldAction) Type() string { return "settings_field" }

type SettingsValueAction struct {
	Delta int
}

func (a SettingsValueAction) Type() string { return "settings_value" }

// Lifecycle actions
type ResetAndHideAction struct{}

func (a ResetAndHideAction) Type() string { return "reset_and_hide" }

type ShowHelpAction struct{}

func (a ShowHelpAction) Type() string { return "show_help" }

type QuitAction struct{}

func (a QuitAction) Type() string { return "quit" }
