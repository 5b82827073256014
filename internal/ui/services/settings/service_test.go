package settings

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/backend/backendtest"
	"vanta/internal/config"
	"vanta/internal/domain"
)

func TestCycleThemes(t *testing.T) {
	svc := NewService(backendtest.New())
	svc.SetThemes([]domain.ThemeMeta{{Name: "nord"}, {Name: "default"}, {Name: "rose"}})
	svc.Open(config.DefaultConfig())

	svc.ChangeValue(1)
	assert.Equal(t, "nord", svc.Draft().Appearance.Theme)
	svc.ChangeValue(1)
	svc.ChangeValue(1)
	assert.Equal(t, "default", svc.Draft().Appearance.Theme)
	svc.ChangeValue(-1)
	assert.Equal(t, "rose", svc.Draft().Appearance.Theme)
}

func TestMaxResultsBounds(t *testing.T) {
	svc := NewService(backendtest.New())
	cfg := config.DefaultConfig()
	cfg.General.MaxResults = 1
	svc.Open(cfg)
	svc.MoveField(1)

	svc.ChangeValue(-1)
	assert.Equal(t, 1, svc.Draft().General.MaxResults)
	svc.ChangeValue(1)
	assert.Equal(t, 2, svc.Draft().General.MaxResults)
	assert.Equal(t, 1, cfg.General.MaxResults, "original config untouched")
}

func TestFieldWraps(t *testing.T) {
	svc := NewService(backendtest.New())
	svc.MoveField(-1)
	assert.Equal(t, FieldBlur, svc.Field())
	svc.MoveField(1)
	assert.Equal(t, FieldTheme, svc.Field())
}

func TestFileManagerUsesApps(t *testing.T) {
	svc := NewService(backendtest.New())
	svc.Open(config.DefaultConfig())
	svc.HandleApps(AppsLoaded{Apps: []domain.AppEntry{{Name: "Thunar", Exec: "thunar %U"}}})
	svc.MoveField(2)

	svc.ChangeValue(1)
	assert.Equal(t, "thunar %U", svc.Draft().Files.FileManager)

	rows := svc.Rows()
	assert.Equal(t, Row{Label: "File manager", Value: "Thunar", Selected: true}, rows[FieldFileManager])
}

func TestOpenLoadsDiagnosticsAndApps(t *testing.T) {
	fake := backendtest.New()
	fake.Diagnostics.Search = domain.PerfStats{Calls: 3, AvgMs: 2.5, MaxMs: 4}
	svc := NewService(fake)

	batch, ok := svc.Open(config.DefaultConfig())().(tea.BatchMsg)
	require.True(t, ok)
	for _, cmd := range batch {
		switch msg := cmd().(type) {
		case DiagnosticsLoaded:
			svc.HandleDiagnostics(msg)
		case AppsLoaded:
			svc.HandleApps(msg)
		}
	}

	lines := svc.DiagnosticsLines()
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "3 calls")
}

func TestCloseSavesDraft(t *testing.T) {
	fake := backendtest.New()
	svc := NewService(fake)
	svc.Open(config.DefaultConfig())
	svc.MoveField(-1)
	svc.ChangeValue(1)

	saved, ok := svc.Close()().(Saved)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.False(t, saved.Config.Appearance.Blur)
	assert.Equal(t, 1, fake.CallCount("SaveConfig"))
}
