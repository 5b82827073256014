package results

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"vanta/internal/backend"
	"vanta/internal/domain"
	"vanta/internal/logging"
	"vanta/internal/ui/services/mode"
	"vanta/internal/ui/state"
	"vanta/internal/ui/timer"
)

// DebounceTimer is the name carried by the debounce timer's Expired messages
const DebounceTimer = "search-debounce"

const requestTimeout = 30 * time.Second

// Token identifies the input a request was issued for
type Token struct {
	Mode  mode.Mode
	Query string
}

// Loaded is the outcome of one fetch
type Loaded struct {
	Token       Token
	Results     []domain.ResultItem
	ScriptItems []domain.ScriptItem
	Latency     time.Duration
	Err         error
}

// Service issues fetches for the active mode and applies only current responses
type Service struct {
	store    *state.Store
	backend  backend.Backend
	registry *mode.Registry
	debounce *timer.Timer

	clipboardLimit int
}

// NewService creates the result store service
func NewService(store *state.Store, be backend.Backend, reg *mode.Registry, debounce time.Duration) *Service {
	return &Service{
		store:          store,
		backend:        be,
		registry:       reg,
		debounce:       timer.New(DebounceTimer, debounce),
		clipboardLimit: 50,
	}
}

// SetDebounce changes the debounce window
func (s *Service) SetDebounce(d time.Duration) { s.debounce.SetDelay(d) }

// SetClipboardLimit caps the number of clipboard rows shown
func (s *Service) SetClipboardLimit(n int) {
	if n > 0 {
		s.clipboardLimit = n
	}
}

// CancelPending drops a scheduled search
func (s *Service) CancelPending() { s.debounce.Cancel() }

// SetQuery records a keystroke: it reclassifies the query and restarts the debounce
func (s *Service) SetQuery(query string) tea.Cmd {
	snap := s.store.Snapshot()

	next := mode.Resolve(query, s.registry)
	switch snap.Mode.Kind {
	case mode.KindClipboard:
		next = mode.Clipboard()
	case mode.KindSettings:
		return nil
	}

	s.store.Mutate("query", func(st *state.SessionState) {
		st.Query = query
		st.SetMode(next)
	})

	if next.Kind == mode.KindLauncher && strings.TrimSpace(query) == "" {
		s.debounce.Cancel()
		return s.IssueSearch(next, query)
	}
	return s.debounce.Restart()
}

// Fill replaces the query and searches without waiting for the debounce
func (s *Service) Fill(query string) tea.Cmd {
	s.store.Mutate("fill", func(st *state.SessionState) {
		st.Query = query
		st.SetMode(mode.Resolve(query, s.registry))
	})
	return s.SearchNow()
}

// SearchNow cancels the debounce and fetches for the current input
func (s *Service) SearchNow() tea.Cmd {
	s.debounce.Cancel()
	snap := s.store.Snapshot()
	return s.IssueSearch(snap.Mode, snap.Query)
}

// EnterClipboard switches to clipboard history with an empty query
func (s *Service) EnterClipboard() tea.Cmd {
	s.debounce.Cancel()
	s.store.Mutate("enter clipboard", func(st *state.SessionState) {
		st.Query = ""
		st.SetMode(mode.Clipboard())
	})
	return s.IssueSearch(mode.Clipboard(), "")
}

// LoadSuggestions fetches the launcher suggestions for an empty query
func (s *Service) LoadSuggestions() tea.Cmd {
	return s.IssueSearch(mode.Launcher(), "")
}

// HandleTimer issues the search for the query present when the debounce fires
func (s *Service) HandleTimer(msg timer.Expired) tea.Cmd {
	if !s.debounce.Fire(msg) {
		return nil
	}
	snap := s.store.Snapshot()
	return s.IssueSearch(snap.Mode, snap.Query)
}

// IssueSearch starts a fetch tagged with its request token
func (s *Service) IssueSearch(m mode.Mode, query string) tea.Cmd {
	if m.Kind == mode.KindSettings {
		return nil
	}

	token := Token{Mode: m, Query: query}
	s.store.Mutate("search issued", func(st *state.SessionState) {
		st.Loading = true
	})
	logging.Debug("search issued", "mode", m.String(), "query", query)

	be := s.backend
	limit := s.clipboardLimit
	return func() (msg tea.Msg) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				msg = Loaded{Token: token, Err: fmt.Errorf("search panic: %v", r)}
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		out := Loaded{Token: token}
		switch m.Kind {
		case mode.KindScript:
			res, err := be.ExecuteScript(ctx, m.Keyword, m.Args)
			if err != nil {
				out.Err = err
			} else if res != nil {
				out.ScriptItems = res.Items
			}
		case mode.KindClipboard:
			history, err := be.GetClipboardHistory(ctx)
			out.Err = err
			out.Results = FilterClipboard(history, query, limit)
		default:
			if strings.TrimSpace(query) == "" {
				out.Results, out.Err = be.GetSuggestions(ctx)
			} else {
				out.Results, out.Err = be.Search(ctx, query)
			}
		}
		out.Latency = time.Since(start)
		return out
	}
}

// Apply installs a response if its token still matches the current input
func (s *Service) Apply(msg Loaded) {
	snap := s.store.Snapshot()
	if msg.Token != (Token{Mode: snap.Mode, Query: snap.Query}) {
		logging.Debug("stale response discarded", "mode", msg.Token.Mode.String(), "query", msg.Token.Query)
		return
	}

	if msg.Err != nil {
		logging.Warn("search failed", "mode", msg.Token.Mode.String(), "query", msg.Token.Query, "error", msg.Err)
	}

	s.store.Mutate("results", func(st *state.SessionState) {
		st.Loading = false

		if msg.Err != nil {
			st.SearchLatency = state.LatencyUnknown
			if st.Mode.Kind == mode.KindScript {
				st.ScriptItems = []domain.ScriptItem{ErrorItem(msg.Err)}
				st.Selection = 0
				st.ViewportOffset = 0
			}
			return
		}

		st.SearchLatency = msg.Latency
		if st.Mode.Kind == mode.KindScript {
			st.ScriptItems = msg.ScriptItems
			st.Results = nil
		} else {
			st.Results = msg.Results
			st.ScriptItems = nil
		}
		st.Selection = 0
		st.ViewportOffset = 0
	})
}

// ErrorItem is the synthetic row shown when a script fails
func ErrorItem(err error) domain.ScriptItem {
	return domain.ScriptItem{
		Title:    "Script error",
		Subtitle: err.Error(),
		Urgency:  domain.UrgencyCritical,
	}
}
