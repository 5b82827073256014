package settings

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"vanta/internal/backend"
	"vanta/internal/config"
	"vanta/internal/domain"
	"vanta/internal/logging"
)

// Field is an editable row of the settings panel
type Field int

const (
	FieldTheme Field = iota
	FieldMaxResults
	FieldFileManager
	FieldFileEditor
	FieldBlur
	fieldCount
)

func (f Field) Label() string {
	switch f {
	case FieldTheme:
		return "Theme"
	case FieldMaxResults:
		return "Max results"
	case FieldFileManager:
		return "File manager"
	case FieldFileEditor:
		return "File editor"
	case FieldBlur:
		return "Blur"
	}
	return ""
}

// Row is one rendered settings line
type Row struct {
	Label    string
	Value    string
	Selected bool
}

// DiagnosticsLoaded carries backend timings for the panel
type DiagnosticsLoaded struct {
	Diagnostics *domain.SearchDiagnostics
	Err         error
}

// AppsLoaded carries the installed applications offered as file manager/editor
type AppsLoaded struct {
	Apps []domain.AppEntry
	Err  error
}

// Saved reports the result of persisting the draft
type Saved struct {
	Config *config.Config
	Err    error
}

type option struct {
	name  string
	value string
}

// Service owns the draft edited in the settings panel
type Service struct {
	backend backend.Backend

	draft       *config.Config
	field       Field
	themes      []string
	apps        []option
	diagnostics *domain.SearchDiagnostics
}

// NewService creates a settings service
func NewService(be backend.Backend) *Service {
	return &Service{
		backend: be,
		draft:   config.DefaultConfig(),
		themes:  []string{"default"},
		apps:    []option{{name: "default", value: "default"}},
	}
}

// SetThemes records the installed themes offered by the theme field
func (s *Service) SetThemes(themes []domain.ThemeMeta) {
	names := make([]string, 0, len(themes)+1)
	seen := map[string]bool{}
	for _, t := range append([]domain.ThemeMeta{{Name: "default"}}, themes...) {
		if t.Name == "" || seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		names = append(names, t.Name)
	}
	s.themes = names
}

// Open starts editing a copy of cfg and loads diagnostics and apps
func (s *Service) Open(cfg *config.Config) tea.Cmd {
	s.draft = cfg.Clone()
	s.field = FieldTheme
	s.diagnostics = nil

	be := s.backend
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			d, err := be.GetSearchDiagnostics(ctx)
			return DiagnosticsLoaded{Diagnostics: d, Err: err}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			apps, err := be.GetApps(ctx)
			return AppsLoaded{Apps: apps, Err: err}
		},
	)
}

// HandleDiagnostics stores loaded diagnostics
func (s *Service) HandleDiagnostics(msg DiagnosticsLoaded) {
	if msg.Err != nil {
		logging.Warn("diagnostics load failed", "error", msg.Err)
		return
	}
	s.diagnostics = msg.Diagnostics
}

// HandleApps stores the application choices
func (s *Service) HandleApps(msg AppsLoaded) {
	if msg.Err != nil {
		logging.Warn("apps load failed", "error", msg.Err)
		return
	}
	opts := []option{{name: "default", value: "default"}}
	for _, a := range msg.Apps {
		if a.Exec == "" {
			continue
		}
		opts = append(opts, option{name: a.Name, value: a.Exec})
	}
	s.apps = opts
}

// MoveField selects the previous or next field, wrapping around
func (s *Service) MoveField(delta int) {
	s.field = Field((int(s.field) + delta + int(fieldCount)) % int(fieldCount))
}

// ChangeValue cycles the selected field's value
func (s *Service) ChangeValue(delta int) {
	switch s.field {
	case FieldTheme:
		s.draft.Appearance.Theme = cycle(s.themes, s.draft.Appearance.Theme, delta)
	case FieldMaxResults:
		n := s.draft.General.MaxResults + delta
		if n < 1 {
			n = 1
		}
		if n > 50 {
			n = 50
		}
		s.draft.General.MaxResults = n
	case FieldFileManager:
		s.draft.Files.FileManager = cycleOption(s.apps, s.draft.Files.FileManager, delta)
	case FieldFileEditor:
		s.draft.Files.FileEditor = cycleOption(s.apps, s.draft.Files.FileEditor, delta)
	case FieldBlur:
		s.draft.Appearance.Blur = !s.draft.Appearance.Blur
	}
}

// Close saves the draft
func (s *Service) Close() tea.Cmd {
	draft := s.draft.Clone()
	be := s.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return Saved{Config: draft, Err: be.SaveConfig(ctx, draft)}
	}
}

// Draft returns the config being edited
func (s *Service) Draft() *config.Config { return s.draft }

// Field returns the selected field
func (s *Service) Field() Field { return s.field }

// Rows renders the fields for display
func (s *Service) Rows() []Row {
	rows := make([]Row, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		rows = append(rows, Row{Label: f.Label(), Value: s.value(f), Selected: f == s.field})
	}
	return rows
}

// DiagnosticsLines formats the backend timings
func (s *Service) DiagnosticsLines() []string {
	if s.diagnostics == nil {
		return nil
	}
	format := func(name string, p domain.PerfStats) string {
		return fmt.Sprintf("%-12s %5d calls  avg %6.1fms  max %6.1fms", name, p.Calls, p.AvgMs, p.MaxMs)
	}
	return []string{
		format("search", s.diagnostics.Search),
		format("suggestions", s.diagnostics.Suggestions),
		format("launch", s.diagnostics.Launch),
	}
}

func (s *Service) value(f Field) string {
	switch f {
	case FieldTheme:
		return s.draft.Appearance.Theme
	case FieldMaxResults:
		return strconv.Itoa(s.draft.General.MaxResults)
	case FieldFileManager:
		return optionName(s.apps, s.draft.Files.FileManager)
	case FieldFileEditor:
		return optionName(s.apps, s.draft.Files.FileEditor)
	case FieldBlur:
		if s.draft.Appearance.Blur {
			return "on"
		}
		return "off"
	}
	return ""
}

func cycle(values []string, current string, delta int) string {
	if len(values) == 0 {
		return current
	}
	idx := 0
	for i, v := range values {
		if v == current {
			idx = i
			break
		}
	}
	return values[(idx+delta%len(values)+len(values))%len(values)]
}

func cycleOption(opts []option, current string, delta int) string {
	values := make([]string, len(opts))
	for i, o := range opts {
		values[i] = o.value
	}
	return cycle(values, current, delta)
}

func optionName(opts []option, value string) string {
	for _, o := range opts {
		if o.value == value {
			return o.name
		}
	}
	return value
}
