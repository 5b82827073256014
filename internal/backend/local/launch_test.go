package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/backend"
)

type startRecorder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (r *startRecorder) start(name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func TestStripFieldCodes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"firefox %u", "firefox"},
		{"code %F", "code"},
		{"htop", "htop"},
		{"alacritty -e vim", "alacritty -e vim"},
		{"echo %%", "echo %"},
		{"cmd %f --flag %U", "cmd --flag"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFieldCodes(tt.in))
		})
	}
}

func TestLaunchSplitsQuotedArgs(t *testing.T) {
	rec := &startRecorder{}
	l := NewLauncher(rec.start)

	require.NoError(t, l.Launch(context.Background(), `sh -c "echo hi" %u`))
	assert.Equal(t, [][]string{{"sh", "-c", "echo hi"}}, rec.calls)
}

func TestLaunchEmptyCommand(t *testing.T) {
	l := NewLauncher((&startRecorder{}).start)
	err := l.Launch(context.Background(), "%u %F")
	assert.True(t, errors.Is(err, backend.ErrEmptyCommand))
}

func TestLaunchFocusTriesBothCompositors(t *testing.T) {
	rec := &startRecorder{}
	l := NewLauncher(rec.start)

	require.NoError(t, l.Launch(context.Background(), "focus:0xabc"))
	require.Len(t, rec.calls, 2)
	assert.Equal(t, []string{"hyprctl", "dispatch", "focuswindow", "address:0xabc"}, rec.calls[0])
	assert.Equal(t, []string{"swaymsg", "[con_id=0xabc] focus"}, rec.calls[1])
}

func TestLaunchExistingFileOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	rec := &startRecorder{}
	l := NewLauncher(rec.start)
	require.NoError(t, l.Launch(context.Background(), path))
	assert.Equal(t, [][]string{{"xdg-open", path}}, rec.calls)
}

func TestOpenWithHandler(t *testing.T) {
	rec := &startRecorder{}
	l := NewLauncher(rec.start)

	require.NoError(t, l.Open(context.Background(), "/tmp/it's here", "nautilus %U"))
	require.NoError(t, l.Open(context.Background(), "/tmp/a", "default"))
	require.NoError(t, l.Open(context.Background(), "/tmp/b", "code --reuse-window"))

	assert.Equal(t, []string{"nautilus", "/tmp/it's here"}, rec.calls[0])
	assert.Equal(t, []string{"xdg-open", "/tmp/a"}, rec.calls[1])
	assert.Equal(t, []string{"code", "--reuse-window", "/tmp/b"}, rec.calls[2])
}

func TestLaunchCancelledWhilePoolFull(t *testing.T) {
	l := NewLauncher((&startRecorder{}).start)
	for i := 0; i < cap(l.workerPool); i++ {
		l.workerPool <- struct{}{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, l.Launch(ctx, "firefox"), context.Canceled)
}
