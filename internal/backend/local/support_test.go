package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/config"
)

func TestLoadThemes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nord.toml"), []byte(`
name = "nord"
width = 720
height = 460

[colors]
accent = "#88c0d0"
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "amber.toml"), []byte("width = 600\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("name = \n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body {}"), 0644))

	themes, err := loadThemes(dir, config.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, themes, 3)
	assert.Equal(t, "default", themes[0].Name)
	assert.Equal(t, "amber", themes[1].Name)
	assert.Equal(t, "nord", themes[2].Name)
	assert.Equal(t, 720, themes[2].Width)
	assert.Equal(t, "#88c0d0", themes[2].Colors["accent"])
}

func TestLoadThemesMissingDir(t *testing.T) {
	themes, err := loadThemes(filepath.Join(t.TempDir(), "none"), config.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, themes, 1)
	assert.Equal(t, "default", themes[0].Name)
}

func TestPerfCounter(t *testing.T) {
	p := newPerfCounter("search")
	assert.Zero(t, p.snapshot().AvgMs)

	p.record(time.Now().Add(-10 * time.Millisecond))
	p.record(time.Now().Add(-30 * time.Millisecond))

	s := p.snapshot()
	assert.Equal(t, uint64(2), s.Calls)
	assert.GreaterOrEqual(t, s.MaxMs, 30.0)
	assert.GreaterOrEqual(t, s.TotalMs, 40.0)
	assert.InDelta(t, s.TotalMs/2, s.AvgMs, 1e-9)
}

type fakeClipboard struct {
	mu   sync.Mutex
	text string
	err  error
}

func (f *fakeClipboard) set(text string) {
	f.mu.Lock()
	f.text = text
	f.mu.Unlock()
}

func (f *fakeClipboard) read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, f.err
}

func TestClipboardPollCapturesChanges(t *testing.T) {
	s := openTestStore(t)
	clip := &fakeClipboard{}
	p := newClipboardPoller(s, clip.read, time.Hour, 10)
	ctx := context.Background()

	p.poll(ctx)
	clip.set("one")
	p.poll(ctx)
	p.poll(ctx)
	clip.set("   ")
	p.poll(ctx)
	clip.set("two")
	p.poll(ctx)
	clip.err = errors.New("no display")
	p.poll(ctx)

	items, err := s.ClipboardHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "two", items[0].Content)
	assert.Equal(t, "one", items[1].Content)
}

func TestClipboardPollerStops(t *testing.T) {
	s := openTestStore(t)
	clip := &fakeClipboard{text: "tick"}
	p := newClipboardPoller(s, clip.read, 5*time.Millisecond, 10)

	p.start(context.Background())
	require.Eventually(t, func() bool {
		items, _ := s.ClipboardHistory(context.Background(), 10)
		return len(items) == 1
	}, time.Second, 5*time.Millisecond)
	p.stop()
}
