package ui

import (
	"vanta/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// ToggleMsg asks the palette to hide when visible or show when hidden
type ToggleMsg struct{}

// helpPagerMsg contains the result of the key reference pager
type helpPagerMsg struct {
	err error
}
