package activation

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"vanta/internal/backend"
	"vanta/internal/domain"
	"vanta/internal/logging"
	"vanta/internal/ui/services/results"
	"vanta/internal/ui/state"
	"vanta/internal/ui/timer"
)

// GraceTimer is the name carried by the re-entrancy grace timer's Expired messages
const GraceTimer = "action-grace"

const actionTimeout = 2 * time.Minute

// Outcome says what the palette does after a successful action
type Outcome int

const (
	StayOpen Outcome = iota
	Hide
)

// Settled reports the end of a backend action started in session SessionID
type Settled struct {
	Kind      domain.ActionKind
	Target    string
	Outcome   Outcome
	SessionID string
	Err       error
}

// Dispatcher runs the action behind an activated item.
// Only one action may be in flight; the guard is released after a grace delay.
type Dispatcher struct {
	store     *state.Store
	backend   backend.Backend
	clipboard backend.ClipboardWriter
	results   *results.Service
	grace     *timer.Timer
}

// New creates a dispatcher
func New(store *state.Store, be backend.Backend, clip backend.ClipboardWriter, res *results.Service, grace time.Duration) *Dispatcher {
	return &Dispatcher{
		store:     store,
		backend:   be,
		clipboard: clip,
		results:   res,
		grace:     timer.New(GraceTimer, grace),
	}
}

// SetGrace changes the re-entrancy grace delay
func (d *Dispatcher) SetGrace(dur time.Duration) { d.grace.SetDelay(dur) }

// Activate runs a launcher, file or clipboard item
func (d *Dispatcher) Activate(item domain.ResultItem) tea.Cmd {
	return d.dispatch(item.Action())
}

// ActivateExec runs a secondary action exec belonging to an item of source
func (d *Dispatcher) ActivateExec(exec string, source domain.Source) tea.Cmd {
	return d.dispatch(domain.ParseExec(exec, source))
}

// Continue is the Tab behavior: it only acts on fill and install items
func (d *Dispatcher) Continue(item domain.ResultItem) tea.Cmd {
	a := item.Action()
	if !a.IsContinuation() {
		return nil
	}
	return d.dispatch(a)
}

// ActivateScriptItem runs the action attached to a script item
func (d *Dispatcher) ActivateScriptItem(item domain.ScriptItem) tea.Cmd {
	if item.Action == nil {
		return nil
	}
	kind, ok := item.Action.Kind()
	if !ok {
		logging.Warn("script item has unknown action type", "type", item.Action.Type, "title", item.Title)
		return nil
	}
	return d.dispatch(domain.Action{Kind: kind, Value: item.Action.Value})
}

func (d *Dispatcher) dispatch(a domain.Action) tea.Cmd {
	if a.Kind == domain.ActionFill {
		return d.results.Fill(a.Value)
	}

	if d.store.Snapshot().ActionInFlight {
		logging.Debug("activation ignored, action in flight", "kind", a.Kind, "target", a.Value)
		return nil
	}

	outcome := Hide
	session := d.store.Snapshot().SessionID
	d.store.Mutate("action started", func(st *state.SessionState) {
		st.ActionInFlight = true
		if a.Kind == domain.ActionInstall {
			st.Status = fmt.Sprintf("Installing %s…", filepath.Base(a.Value))
		}
	})
	if a.Kind == domain.ActionInstall {
		outcome = StayOpen
	}

	op := d.operation(a)
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = Settled{Kind: a.Kind, Target: a.Value, Outcome: outcome, SessionID: session, Err: fmt.Errorf("action panic: %v", r)}
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		return Settled{Kind: a.Kind, Target: a.Value, Outcome: outcome, SessionID: session, Err: op(ctx)}
	}
}

func (d *Dispatcher) operation(a domain.Action) func(context.Context) error {
	be := d.backend
	switch a.Kind {
	case domain.ActionCopy:
		clip := d.clipboard
		return func(context.Context) error { return clip.WriteAll(a.Value) }
	case domain.ActionInstall:
		return func(ctx context.Context) error { return be.InstallScript(ctx, a.Value) }
	case domain.ActionOpen:
		if isURL(a.Value) {
			return func(ctx context.Context) error { return be.OpenURL(ctx, a.Value) }
		}
		return func(ctx context.Context) error { return be.OpenPath(ctx, a.Value) }
	case domain.ActionLaunch, domain.ActionRun, domain.ActionFocus:
		return func(ctx context.Context) error { return be.LaunchApp(ctx, a.Value) }
	default:
		return func(context.Context) error { return fmt.Errorf("unsupported action %q", a.Kind) }
	}
}

// Settle records the action's outcome, starts the grace timer and reports
// whether the session should be reset and hidden. A session opened after the
// action started is never hidden by it.
func (d *Dispatcher) Settle(msg Settled) (tea.Cmd, bool) {
	if msg.Err != nil {
		logging.Warn("action failed", "kind", msg.Kind, "target", msg.Target, "error", msg.Err)
	} else {
		logging.Info("action done", "kind", msg.Kind, "target", msg.Target)
	}

	if msg.Kind == domain.ActionInstall {
		d.store.Mutate("install settled", func(st *state.SessionState) {
			if msg.Err != nil {
				st.Status = fmt.Sprintf("Install failed: %v", msg.Err)
			} else {
				st.Status = fmt.Sprintf("Installed %s", filepath.Base(msg.Target))
			}
		})
	}

	hide := msg.Err == nil && msg.Outcome == Hide
	if hide && msg.SessionID != d.store.Snapshot().SessionID {
		logging.Debug("action settled after its session ended", "kind", msg.Kind, "target", msg.Target)
		hide = false
	}
	return d.grace.Restart(), hide
}

// HandleTimer releases the in-flight guard when the grace delay elapses
func (d *Dispatcher) HandleTimer(msg timer.Expired) bool {
	if !d.grace.Fire(msg) {
		return false
	}
	d.store.Mutate("action released", func(st *state.SessionState) {
		st.ActionInFlight = false
	})
	return true
}

func isURL(v string) bool {
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "mailto", "ftp":
		return u.Opaque != "" || u.Host != ""
	}
	return false
}
