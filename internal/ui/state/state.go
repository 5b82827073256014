package state

import (
	"sync"
	"time"

	"vanta/internal/domain"
	"vanta/internal/ui/services/mode"
)

// LatencyUnknown marks a missing or failed measurement
const LatencyUnknown time.Duration = -1

// NavState is the navigation controller state
type NavState int

const (
	Browsing NavState = iota
	SettingsOpen
)

// SessionState is everything one shown palette session knows
type SessionState struct {
	SessionID string

	Mode  mode.Mode
	Query string

	Results     []domain.ResultItem // launcher and clipboard modes
	ScriptItems []domain.ScriptItem // script mode

	Selection      int
	ViewportOffset int

	SearchLatency  time.Duration
	Loading        bool
	ActionInFlight bool
	Visible        bool
	Nav            NavState

	Blur   domain.BlurMode
	Status string
}

// New returns the state at mount
func New() SessionState {
	return SessionState{
		Mode:          mode.Launcher(),
		SearchLatency: LatencyUnknown,
		Visible:       true,
		Blur:          domain.BlurNative,
	}
}

// ItemCount is the length of the active list
func (s *SessionState) ItemCount() int {
	if s.Mode.Kind == mode.KindScript {
		return len(s.ScriptItems)
	}
	if s.Mode.Kind == mode.KindSettings {
		return 0
	}
	return len(s.Results)
}

// SelectedResult returns the selected launcher or clipboard item
func (s *SessionState) SelectedResult() (domain.ResultItem, bool) {
	if s.Mode.Kind == mode.KindScript || s.Mode.Kind == mode.KindSettings {
		return domain.ResultItem{}, false
	}
	if s.Selection < 0 || s.Selection >= len(s.Results) {
		return domain.ResultItem{}, false
	}
	return s.Results[s.Selection], true
}

// SelectedScriptItem returns the selected script item
func (s *SessionState) SelectedScriptItem() (domain.ScriptItem, bool) {
	if s.Mode.Kind != mode.KindScript {
		return domain.ScriptItem{}, false
	}
	if s.Selection < 0 || s.Selection >= len(s.ScriptItems) {
		return domain.ScriptItem{}, false
	}
	return s.ScriptItems[s.Selection], true
}

// ClearItems empties both lists and the selection
func (s *SessionState) ClearItems() {
	s.Results = nil
	s.ScriptItems = nil
	s.Selection = 0
	s.ViewportOffset = 0
}

// SetMode switches mode, clearing the lists when the kind changes
func (s *SessionState) SetMode(m mode.Mode) {
	if s.Mode.Kind != m.Kind {
		s.ClearItems()
	}
	s.Mode = m
}

func (s *SessionState) clampSelection() {
	n := s.ItemCount()
	if n == 0 {
		s.Selection = 0
		s.ViewportOffset = 0
		return
	}
	if s.Selection < 0 {
		s.Selection = 0
	}
	if s.Selection >= n {
		s.Selection = n - 1
	}
	if s.ViewportOffset < 0 || s.ViewportOffset > s.Selection {
		s.ViewportOffset = s.Selection
	}
}

// Listener is notified after every mutation
type Listener func(reason string, prev, next SessionState)

// Store is the single owner of SessionState. Mutate is the only way to change it.
type Store struct {
	mu        sync.RWMutex
	state     SessionState
	listeners map[uint64]Listener
	nextID    uint64
}

// NewStore creates a store holding the mount state
func NewStore() *Store {
	return &Store{
		state:     New(),
		listeners: make(map[uint64]Listener),
	}
}

// Snapshot returns a copy of the current state. Slices are replaced, never edited in place.
func (s *Store) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Mutate applies fn and notifies listeners
func (s *Store) Mutate(reason string, fn func(*SessionState)) {
	s.mu.Lock()
	prev := s.state
	fn(&s.state)
	s.state.clampSelection()
	next := s.state

	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(reason, prev, next)
	}
}

// Subscribe registers a listener and returns its unsubscribe function
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
