package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"vanta/internal/backend/backendtest"
	"vanta/internal/config"
	"vanta/internal/domain"
	"vanta/internal/eventbus"
	"vanta/internal/ui/coordinator"
	"vanta/internal/ui/services/mode"
)

func newHandler(t *testing.T) (*EventHandler, *coordinator.Coordinator) {
	t.Helper()
	fake := backendtest.New()
	c := coordinator.NewCoordinator(fake, fake, nil)
	t.Cleanup(c.Close)
	return NewEventHandler(c), c
}

func TestConfigUpdatedApplies(t *testing.T) {
	h, c := newHandler(t)
	cfg := config.DefaultConfig()
	cfg.General.MaxResults = 12

	assert.NotNil(t, h.HandleEvent(config.UpdatedEvent{Config: cfg}))
	assert.Equal(t, 12, c.Config().General.MaxResults)
}

func TestScriptsChangedReplacesRegistry(t *testing.T) {
	h, c := newHandler(t)

	h.HandleEvent(eventbus.ScriptsChangedEvent{Scripts: []domain.ScriptEntry{
		{Keyword: "hello", Path: "/s/hello.sh"},
		{Keyword: "weather", Path: "/s/weather.py"},
	}})
	assert.Equal(t, 2, c.Registry.Len())
	assert.Equal(t, mode.Script("hello", "x"), mode.Resolve("hello x", c.Registry))
}

func TestBlurAndError(t *testing.T) {
	h, c := newHandler(t)

	assert.Nil(t, h.HandleEvent(eventbus.BlurStatusEvent{Mode: domain.BlurFallback}))
	assert.Equal(t, domain.BlurFallback, c.Store.Snapshot().Blur)

	h.HandleEvent(eventbus.ErrorEvent{Message: "index failed", Err: errors.New("eperm")})
	assert.Equal(t, "Error: index failed", c.Store.Snapshot().Status)
}

func TestOpenClipboardEntersClipboardMode(t *testing.T) {
	h, c := newHandler(t)

	assert.NotNil(t, h.HandleEvent(eventbus.OpenClipboardEvent{}))
	assert.Equal(t, mode.KindClipboard, c.Store.Snapshot().Mode.Kind)
	assert.True(t, c.Store.Snapshot().Visible)
}
