package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"vanta/internal/backend"
	"vanta/internal/logging"
	"vanta/internal/ui/coordinator"
	"vanta/internal/ui/handlers"
	"vanta/internal/ui/input"
	inputtypes "vanta/internal/ui/input/types"
	"vanta/internal/ui/services/activation"
	"vanta/internal/ui/services/navigation"
	"vanta/internal/ui/services/results"
	"vanta/internal/ui/services/settings"
	"vanta/internal/ui/timer"
	"vanta/internal/ui/viewmodels"
	"vanta/internal/ui/views"
)

// Options are the command-line switches that shape the model
type Options struct {
	// Clipboard starts in clipboard history mode
	Clipboard bool
	// ExitOnHide quits the program instead of waiting to be shown again
	ExitOnHide bool
}

// Model is the palette's bubbletea model
type Model struct {
	coord        *coordinator.Coordinator
	eventHandler *handlers.EventHandler
	renderer     *views.Renderer
	viewModel    *viewmodels.ViewModel
	spinner      spinner.Model
	opts         Options

	width  int
	height int
}

// NewModel wires the services around a backend
func NewModel(be backend.Backend, clip backend.ClipboardWriter, opts Options) *Model {
	renderer := views.NewRenderer()
	coord := coordinator.NewCoordinator(be, clip, renderer)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return &Model{
		coord:        coord,
		eventHandler: handlers.NewEventHandler(coord),
		renderer:     renderer,
		viewModel:    viewmodels.NewViewModel(coord),
		spinner:      sp,
		opts:         opts,
	}
}

// Coordinator exposes the services, mainly for tests
func (m *Model) Coordinator() *coordinator.Coordinator { return m.coord }

// Init runs the mount-time loads
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.coord.Mount(), m.spinner.Tick, m.coord.Input.Focus()}
	if m.opts.Clipboard {
		cmds = append(cmds, m.coord.OpenClipboard())
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.coord.Input.SyncQuery(m.coord.Store.Snapshot().Query)
	if m.height > 0 {
		if rows := m.renderer.ListRows(m.height); rows != m.coord.Navigation.ViewportHeight() {
			m.coord.Navigation.SetViewportHeight(rows)
		}
	}
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewModel.SetDimensions(msg.Width, msg.Height)
		if w := msg.Width - 12; w > 10 {
			m.coord.Input.TextInput().Width = w
		}
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		return m.eventHandler.HandleEvent(msg.Event)

	case ToggleMsg:
		if m.opts.ExitOnHide && m.coord.Store.Snapshot().Visible {
			return m.resetAndHide()
		}
		return m.coord.Toggle()

	case timer.Expired:
		switch msg.Name {
		case results.DebounceTimer:
			return m.coord.Results.HandleTimer(msg)
		case activation.GraceTimer:
			m.coord.Activation.HandleTimer(msg)
		}
		return nil

	case results.Loaded:
		m.coord.Results.Apply(msg)
		return nil

	case activation.Settled:
		grace, hide := m.coord.Activation.Settle(msg)
		if hide {
			return tea.Batch(grace, m.resetAndHide())
		}
		return grace

	case settings.DiagnosticsLoaded:
		m.coord.Settings.HandleDiagnostics(msg)
		return nil

	case settings.AppsLoaded:
		m.coord.Settings.HandleApps(msg)
		return nil

	case settings.Saved:
		return m.coord.HandleSaved(msg)

	case coordinator.ConfigLoaded:
		return m.coord.HandleConfigLoaded(msg)

	case coordinator.ThemesLoaded:
		return m.coord.HandleThemesLoaded(msg)

	case coordinator.ScriptsLoaded:
		return m.coord.HandleScriptsLoaded(msg)

	case coordinator.WindowResult:
		m.coord.HandleWindowResult(msg)
		return nil

	case helpPagerMsg:
		if msg.err != nil {
			// Pager failed: log only; do not surface in status bar
			logging.Warn("help pager failed", "error", msg.err)
		}
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.viewModel.SetSpinner(m.spinner.View())
		return cmd
	}

	return m.coord.Input.Update(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	ctx := &input.ModelContext{State: m.coord.Store.Snapshot()}
	actions, cmd := m.coord.Input.HandleKey(msg, ctx)

	cmds := []tea.Cmd{cmd}
	for _, action := range actions {
		cmds = append(cmds, m.processAction(action))
	}
	return tea.Batch(cmds...)
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	c := m.coord
	switch a := action.(type) {
	case inputtypes.NavigateAction:
		c.Navigation.Navigate(navigation.Direction(a.Direction))
	case inputtypes.UpdateQueryAction:
		return c.Results.SetQuery(a.Text)
	case inputtypes.ActivateAction:
		return c.Activation.Activate(a.Item)
	case inputtypes.ActivateScriptAction:
		return c.Activation.ActivateScriptItem(a.Item)
	case inputtypes.ContinueAction:
		return c.Activation.Continue(a.Item)
	case inputtypes.SecondaryAction:
		return c.Activation.ActivateExec(a.Exec, a.Source)
	case inputtypes.OpenSettingsAction:
		return c.OpenSettings()
	case inputtypes.CloseSettingsAction:
		return c.CloseSettings()
	case inputtypes.SettingsFieldAction:
		c.Settings.MoveField(a.Delta)
	case inputtypes.SettingsValueAction:
		c.Settings.ChangeValue(a.Delta)
	case inputtypes.ResetAndHideAction:
		return m.resetAndHide()
	case inputtypes.ShowHelpAction:
		return showHelpPager(c.Input.SettingsKey())
	case inputtypes.QuitAction:
		return tea.Quit
	default:
		logging.Debug("unhandled action", "type", action.Type())
	}
	return nil
}

func (m *Model) resetAndHide() tea.Cmd {
	cmd := m.coord.ResetAndHide()
	if m.opts.ExitOnHide {
		return tea.Quit
	}
	return cmd
}

// View renders the palette
func (m *Model) View() string {
	return m.renderer.Render(m.viewModel.BuildViewState())
}
