package viewmodels

import (
	"vanta/internal/ui/coordinator"
	"vanta/internal/ui/state"
	"vanta/internal/ui/views"
)

// ViewModel transforms coordinator state into view-ready data
type ViewModel struct {
	coord   *coordinator.Coordinator
	width   int
	height  int
	spinner string
}

// NewViewModel creates a new view model
func NewViewModel(coord *coordinator.Coordinator) *ViewModel {
	return &ViewModel{coord: coord}
}

// SetDimensions sets the current terminal dimensions
func (vm *ViewModel) SetDimensions(width, height int) {
	vm.width = width
	vm.height = height
}

// SetSpinner sets the current spinner frame
func (vm *ViewModel) SetSpinner(frame string) {
	vm.spinner = frame
}

// BuildViewState creates a ViewState for rendering
func (vm *ViewModel) BuildViewState() views.ViewState {
	snap := vm.coord.Store.Snapshot()

	vs := views.ViewState{
		Width:          vm.width,
		Height:         vm.height,
		Session:        snap,
		Input:          vm.coord.Input.TextInput().View(),
		Spinner:        vm.spinner,
		ViewportHeight: vm.coord.Navigation.ViewportHeight(),
	}
	if snap.Nav == state.SettingsOpen {
		vs.SettingsRows = vm.coord.Settings.Rows()
		vs.Diagnostics = vm.coord.Settings.DiagnosticsLines()
	}
	return vs
}
