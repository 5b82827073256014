package navigation

import (
	"vanta/internal/ui/state"
)

// Service moves the selection through the active list
type Service struct {
	store          *state.Store
	viewportHeight int
}

// NewService creates a new navigation service
func NewService(store *state.Store) *Service {
	return &Service{
		store:          store,
		viewportHeight: 8,
	}
}

// ViewportHeight returns the number of visible rows
func (s *Service) ViewportHeight() int {
	return s.viewportHeight
}

// SetViewportHeight updates the number of visible rows
func (s *Service) SetViewportHeight(rows int) {
	if rows < 1 {
		rows = 1
	}
	s.viewportHeight = rows
	s.store.Mutate("viewport", func(st *state.SessionState) {
		s.ensureVisible(st)
	})
}

// Navigate handles navigation in a direction. Up and down wrap around.
func (s *Service) Navigate(direction Direction) {
	s.store.Mutate("navigate", func(st *state.SessionState) {
		total := st.ItemCount()
		if total == 0 {
			st.Selection = 0
			return
		}

		switch direction {
		case DirectionUp:
			st.Selection = (st.Selection - 1 + total) % total
		case DirectionDown:
			st.Selection = (st.Selection + 1) % total
		case DirectionPageUp:
			st.Selection = clamp(st.Selection-s.pageSize(), total)
		case DirectionPageDown:
			st.Selection = clamp(st.Selection+s.pageSize(), total)
		case DirectionHome:
			st.Selection = 0
		case DirectionEnd:
			st.Selection = total - 1
		}
		s.ensureVisible(st)
	})
}

// MoveToIndex moves the selection to a specific index
func (s *Service) MoveToIndex(index int) {
	s.store.Mutate("navigate", func(st *state.SessionState) {
		st.Selection = clamp(index, st.ItemCount())
		s.ensureVisible(st)
	})
}

func (s *Service) pageSize() int {
	if s.viewportHeight > 1 {
		return s.viewportHeight - 1
	}
	return 1
}

func clamp(index, total int) int {
	if index < 0 || total == 0 {
		return 0
	}
	if index >= total {
		return total - 1
	}
	return index
}

func (s *Service) ensureVisible(st *state.SessionState) {
	if st.Selection < st.ViewportOffset {
		st.ViewportOffset = st.Selection
	} else if st.Selection >= st.ViewportOffset+s.viewportHeight {
		st.ViewportOffset = st.Selection - s.viewportHeight + 1
	}
}
