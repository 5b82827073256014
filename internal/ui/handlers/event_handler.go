package handlers

import (
	tea "github.com/charmbracelet/bubbletea"

	"vanta/internal/config"
	"vanta/internal/eventbus"
	"vanta/internal/logging"
	"vanta/internal/ui/coordinator"
	"vanta/internal/ui/state"
)

// EventHandler routes backend push events to the coordinator
type EventHandler struct {
	coord *coordinator.Coordinator
}

// NewEventHandler creates a new event handler
func NewEventHandler(coord *coordinator.Coordinator) *EventHandler {
	return &EventHandler{coord: coord}
}

// HandleEvent processes domain events and returns any necessary commands
func (h *EventHandler) HandleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case config.UpdatedEvent:
		return h.coord.ApplyConfig(e.Config)

	case eventbus.ScriptsChangedEvent:
		return h.coord.ReplaceScripts(e.Scripts)

	case eventbus.BlurStatusEvent:
		logging.Info("blur status", "mode", e.Mode)
		h.coord.SetBlur(e.Mode)

	case eventbus.WindowFocusRegainedEvent:
		return h.coord.FocusRegained()

	case eventbus.OpenClipboardEvent:
		return h.coord.OpenClipboard()

	case eventbus.AppsChangedEvent:
		logging.Debug("applications changed", "count", e.Count)

	case eventbus.ErrorEvent:
		logging.Warn("backend error", "message", e.Message, "error", e.Err)
		h.coord.Store.Mutate("backend error", func(st *state.SessionState) {
			st.Status = "Error: " + e.Message
		})

	default:
		logging.Debug("unhandled event", "type", event.Type())
	}

	return nil
}
