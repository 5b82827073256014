package mode

import (
	"strings"
	"sync/atomic"

	"vanta/internal/domain"
	"vanta/internal/logging"
)

type snapshot struct {
	entries []domain.ScriptEntry
	byKey   map[string]domain.ScriptEntry
}

// Registry holds the installed scripts. Readers always see a complete
// snapshot; Replace swaps it in one step.
type Registry struct {
	snap atomic.Pointer[snapshot]
}

// NewRegistry creates a registry holding entries
func NewRegistry(entries ...domain.ScriptEntry) *Registry {
	r := &Registry{}
	r.Replace(entries)
	return r
}

// Replace swaps the registry contents. For duplicate keywords the first entry wins.
func (r *Registry) Replace(entries []domain.ScriptEntry) {
	s := &snapshot{
		entries: make([]domain.ScriptEntry, 0, len(entries)),
		byKey:   make(map[string]domain.ScriptEntry, len(entries)),
	}
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Keyword))
		if key == "" {
			continue
		}
		if _, dup := s.byKey[key]; dup {
			logging.Warn("duplicate script keyword ignored", "keyword", e.Keyword, "path", e.Path)
			continue
		}
		s.byKey[key] = e
		s.entries = append(s.entries, e)
	}
	r.snap.Store(s)
}

// Lookup finds an entry by keyword, ignoring case
func (r *Registry) Lookup(keyword string) (domain.ScriptEntry, bool) {
	s := r.snap.Load()
	if s == nil {
		return domain.ScriptEntry{}, false
	}
	e, ok := s.byKey[strings.ToLower(keyword)]
	return e, ok
}

// Entries returns the registered scripts in registry order
func (r *Registry) Entries() []domain.ScriptEntry {
	s := r.snap.Load()
	if s == nil {
		return nil
	}
	out := make([]domain.ScriptEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of registered scripts
func (r *Registry) Len() int {
	s := r.snap.Load()
	if s == nil {
		return 0
	}
	return len(s.entries)
}
