package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventConfigUpdated       EventType = "config-updated"
	EventScriptsChanged      EventType = "scripts-changed"
	EventBlurStatus          EventType = "blur-status"
	EventWindowFocusRegained EventType = "window-focus-regained"
	EventOpenClipboard       EventType = "open-clipboard"
	EventAppsChanged         EventType = "apps-changed"
	EventError               EventType = "error"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// ScriptsChangedEvent carries the full new script registry
type ScriptsChangedEvent struct {
	Scripts []ScriptEntry
}

func (e ScriptsChangedEvent) Type() EventType { return EventScriptsChanged }

// BlurStatusEvent reports the effective blur mode
type BlurStatusEvent struct {
	Mode BlurMode
}

func (e BlurStatusEvent) Type() EventType { return EventBlurStatus }

// WindowFocusRegainedEvent is emitted when the palette is shown again
type WindowFocusRegainedEvent struct{}

func (e WindowFocusRegainedEvent) Type() EventType { return EventWindowFocusRegained }

// OpenClipboardEvent asks the palette to show clipboard history
type OpenClipboardEvent struct{}

func (e OpenClipboardEvent) Type() EventType { return EventOpenClipboard }

// AppsChangedEvent is emitted after the application index is rebuilt
type AppsChangedEvent struct {
	Count int
}

func (e AppsChangedEvent) Type() EventType { return EventAppsChanged }

// ErrorEvent is emitted when a background task fails
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }
