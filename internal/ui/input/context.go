package input

import (
	"vanta/internal/domain"
	"vanta/internal/ui/services/mode"
	"vanta/internal/ui/state"
)

// ModelContext implements the Context interface over a state snapshot
type ModelContext struct {
	State state.SessionState
}

// CurrentIndex returns the current selected index
func (c *ModelContext) CurrentIndex() int {
	return c.State.Selection
}

// TotalItems returns the length of the active list
func (c *ModelContext) TotalItems() int {
	return c.State.ItemCount()
}

// IsScriptMode reports whether script items are shown
func (c *ModelContext) IsScriptMode() bool {
	return c.State.Mode.Kind == mode.KindScript
}

func (c *ModelContext) SelectedResult() (domain.ResultItem, bool) {
	return c.State.SelectedResult()
}

func (c *ModelContext) SelectedScriptItem() (domain.ScriptItem, bool) {
	return c.State.SelectedScriptItem()
}
