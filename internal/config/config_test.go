package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/eventbus"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	svc := NewConfigService(filepath.Join(t.TempDir(), "config.toml"))

	cfg, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[general]
max_results = 12

[launcher]
debounce_ms = 40

[search.files]
enabled = false
weight = 5000
`))
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.General.MaxResults)
	assert.Equal(t, "ctrl+s", cfg.General.SettingsKey)
	assert.Equal(t, 40, cfg.Launcher.DebounceMs)
	assert.Equal(t, 250, cfg.Launcher.ActionGraceMs)
	assert.False(t, cfg.Search.Files.Enabled)
	assert.Equal(t, maxWeight, cfg.Search.Files.Weight)
	assert.True(t, cfg.Search.Applications.Enabled)
	assert.Equal(t, 5000, cfg.Scripts.TimeoutMs)
}

func TestParseRejectsInvalidTOML(t *testing.T) {
	_, err := Parse([]byte("[general\nmax_results = "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestNormalizeClamps(t *testing.T) {
	cfg := &Config{}
	cfg.General.MaxResults = 500
	cfg.Search.Applications.Weight = 1
	cfg.Launcher.DebounceMs = -5
	cfg.Files.MaxDepth = 0
	cfg.Normalize()

	assert.Equal(t, 50, cfg.General.MaxResults)
	assert.Equal(t, minWeight, cfg.Search.Applications.Weight)
	assert.Equal(t, 100, cfg.Search.Windows.Weight)
	assert.Equal(t, 120, cfg.Launcher.DebounceMs)
	assert.Equal(t, 3, cfg.Files.MaxDepth)
	assert.Equal(t, "default", cfg.Files.FileManager)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "scripts"), ExpandHome("~/scripts"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
}

func TestWatcherPublishesUpdate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[general]\nmax_results = 3\n"), 0644))

	bus := eventbus.New()
	defer bus.Close()

	got := make(chan *Config, 4)
	bus.Subscribe(eventbus.EventConfigUpdated, func(e eventbus.DomainEvent) {
		got <- e.(UpdatedEvent).Config
	})

	w, err := NewWatcher(NewConfigService(path), bus)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[general]\nmax_results = 9\n"), 0644))

	select {
	case cfg := <-got:
		assert.Equal(t, 9, cfg.General.MaxResults)
	case <-time.After(3 * time.Second):
		t.Fatal("config-updated not published")
	}
}
