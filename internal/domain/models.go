package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Source identifies where a result item came from
type Source string

const (
	SourceApplication Source = "application"
	SourceCalculator  Source = "calculator"
	SourceWindow      Source = "window"
	SourceClipboard   Source = "clipboard"
	SourceFile        Source = "file"
	SourceScript      Source = "script"
)

// ActionKind is the operation performed when an item is activated
type ActionKind string

const (
	ActionLaunch  ActionKind = "launch"
	ActionOpen    ActionKind = "open"
	ActionFill    ActionKind = "fill"
	ActionCopy    ActionKind = "copy"
	ActionInstall ActionKind = "install"
	ActionRun     ActionKind = "run"
	ActionFocus   ActionKind = "focus"
)

// Legacy exec prefixes understood by ParseExec
const (
	PrefixFill    = "fill:"
	PrefixCopy    = "copy:"
	PrefixInstall = "install:"
	PrefixFocus   = "focus:"
)

// Action is the tagged operation carried by an item
type Action struct {
	Kind  ActionKind `json:"kind"`
	Value string     `json:"value"`
}

// ParseExec maps an exec string to an explicit action.
// Unprefixed values launch, except file items which open.
func ParseExec(exec string, source Source) Action {
	switch {
	case strings.HasPrefix(exec, PrefixFill):
		return Action{Kind: ActionFill, Value: strings.TrimPrefix(exec, PrefixFill)}
	case strings.HasPrefix(exec, PrefixCopy):
		return Action{Kind: ActionCopy, Value: strings.TrimPrefix(exec, PrefixCopy)}
	case strings.HasPrefix(exec, PrefixInstall):
		return Action{Kind: ActionInstall, Value: strings.TrimPrefix(exec, PrefixInstall)}
	case strings.HasPrefix(exec, PrefixFocus):
		return Action{Kind: ActionFocus, Value: exec}
	case source == SourceFile:
		return Action{Kind: ActionOpen, Value: exec}
	default:
		return Action{Kind: ActionLaunch, Value: exec}
	}
}

// IsContinuation reports whether activating the action keeps the palette open
func (a Action) IsContinuation() bool {
	return a.Kind == ActionFill || a.Kind == ActionInstall
}

// SecondaryAction is an extra action offered on a result item
type SecondaryAction struct {
	Label    string `json:"label"`
	Exec     string `json:"exec"`
	Shortcut string `json:"shortcut,omitempty"`
}

// ResultItem is a single row in the launcher or clipboard list
type ResultItem struct {
	ID           string            `json:"id,omitempty"`
	Source       Source            `json:"source"`
	Title        string            `json:"title"`
	Subtitle     string            `json:"subtitle,omitempty"`
	Icon         string            `json:"icon,omitempty"`
	Exec         string            `json:"exec"`
	Score        int               `json:"score"`
	MatchIndices []int             `json:"match_indices,omitempty"`
	Actions      []SecondaryAction `json:"actions,omitempty"`
	Keyword      string            `json:"keyword,omitempty"`
}

// Action returns the explicit action for the item's exec
func (r ResultItem) Action() Action {
	return ParseExec(r.Exec, r.Source)
}

// Urgency of a script item
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// ScriptActionKind is the action type a script may attach to its items
type ScriptActionKind string

const (
	ScriptCopy ScriptActionKind = "copy"
	ScriptOpen ScriptActionKind = "open"
	ScriptRun  ScriptActionKind = "run"
)

// UnmarshalJSON accepts only the known lowercase action types
func (k *ScriptActionKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch v := ScriptActionKind(s); v {
	case ScriptCopy, ScriptOpen, ScriptRun:
		*k = v
		return nil
	}
	return fmt.Errorf("unknown action type %q", s)
}

// ScriptAction is the action attached to a script item
type ScriptAction struct {
	Type  ScriptActionKind `json:"type"`
	Value string           `json:"value"`
}

// Kind maps the script action onto the shared action kinds.
// It reports false for an unknown type.
func (a ScriptAction) Kind() (ActionKind, bool) {
	switch a.Type {
	case ScriptCopy:
		return ActionCopy, true
	case ScriptOpen:
		return ActionOpen, true
	case ScriptRun:
		return ActionRun, true
	default:
		return "", false
	}
}

// ScriptItem is a row produced by a script
type ScriptItem struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle,omitempty"`
	Icon     string        `json:"icon,omitempty"`
	Action   *ScriptAction `json:"action,omitempty"`
	Badge    string        `json:"badge,omitempty"`
	Urgency  Urgency       `json:"urgency,omitempty"`
}

// EffectiveUrgency returns the urgency, defaulting to normal
func (s ScriptItem) EffectiveUrgency() Urgency {
	switch s.Urgency {
	case UrgencyLow, UrgencyCritical:
		return s.Urgency
	default:
		return UrgencyNormal
	}
}

// ScriptOutput is the JSON document a script prints
type ScriptOutput struct {
	Items []ScriptItem `json:"items"`
}

// ScriptEntry describes an installed script
type ScriptEntry struct {
	Keyword     string `json:"keyword"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Path        string `json:"path"`
}

// ClipboardItem is a captured clipboard entry
type ClipboardItem struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ThemeMeta describes an installed theme
type ThemeMeta struct {
	Name   string            `json:"name" toml:"name"`
	Width  int               `json:"width" toml:"width"`
	Height int               `json:"height" toml:"height"`
	Colors map[string]string `json:"colors,omitempty" toml:"colors"`
}

// AppEntry is an installed application
type AppEntry struct {
	Name string `json:"name"`
	Exec string `json:"exec"`
}

// BlurMode reports whether the compositor blurs the window
type BlurMode string

const (
	BlurNative   BlurMode = "native"
	BlurFallback BlurMode = "fallback"
)

// PerfStats summarizes timings for one backend operation
type PerfStats struct {
	Calls   uint64  `json:"calls"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
}

// SearchDiagnostics holds timings per operation
type SearchDiagnostics struct {
	Search      PerfStats `json:"search"`
	Suggestions PerfStats `json:"suggestions"`
	Launch      PerfStats `json:"launch"`
}
