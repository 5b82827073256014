package local

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/backend"
	"vanta/internal/domain"
	"vanta/internal/eventbus"
)

func writeScript(t *testing.T, dir, name, body string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), mode))
}

const helloScript = `#!/bin/sh
# vanta:name=Hello
# vanta:description=Greets someone
# vanta:icon=wave
printf '{"items":[{"title":"Hello, %s!","action":{"type":"copy","value":"Hello, %s!"}}]}' "$1" "$1"
`

func newTestScripts(t *testing.T) (*Scripts, string) {
	t.Helper()
	dir := t.TempDir()
	bus := eventbus.New()
	t.Cleanup(bus.Close)
	s := NewScripts(bus, dir)
	t.Cleanup(func() { s.Stop() })
	return s, dir
}

func TestScanScripts(t *testing.T) {
	s, dir := newTestScripts(t)
	writeScript(t, dir, "hello.sh", helloScript, 0755)
	writeScript(t, dir, "weather.py", "#!/bin/sh\necho '{}'\n", 0755)
	writeScript(t, dir, "notes.txt", "not executable", 0644)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "lib"), 0755))

	entries, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, domain.ScriptEntry{
		Keyword:     "hello",
		Name:        "Hello",
		Description: "Greets someone",
		Icon:        "wave",
		Path:        filepath.Join(dir, "hello.sh"),
	}, entries[0])
	assert.Equal(t, "weather", entries[1].Keyword)
	assert.Equal(t, entries, s.Entries())
}

func TestParseScriptMetadataSlashComments(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "clock.js", "#!/usr/bin/env node\n// vanta:name=Clock\n//vanta:icon = clock\n\n\n// vanta:description=too late\n", 0755)

	var entry domain.ScriptEntry
	parseScriptMetadata(filepath.Join(dir, "clock.js"), &entry)
	assert.Equal(t, "Clock", entry.Name)
	assert.Equal(t, "clock", entry.Icon)
	assert.Empty(t, entry.Description, "only the first lines are read")
}

func TestScanMissingDir(t *testing.T) {
	s := NewScripts(nil, filepath.Join(t.TempDir(), "nope"))
	entries, err := s.Scan()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExecuteScript(t *testing.T) {
	s, dir := newTestScripts(t)
	writeScript(t, dir, "hello.sh", helloScript, 0755)
	_, err := s.Scan()
	require.NoError(t, err)

	out, err := s.Execute(context.Background(), "hello", "world", 5*time.Second)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Hello, world!", out.Items[0].Title)
	require.NotNil(t, out.Items[0].Action)
	assert.Equal(t, domain.ScriptCopy, out.Items[0].Action.Type)

	out, err = s.Execute(context.Background(), "hello", `"big world"`, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Hello, big world!", out.Items[0].Title)
}

func TestExecuteScriptErrors(t *testing.T) {
	s, dir := newTestScripts(t)
	writeScript(t, dir, "fail.sh", "#!/bin/sh\necho 'first problem' >&2\necho second >&2\nexit 3\n", 0755)
	writeScript(t, dir, "silent.sh", "#!/bin/sh\nexit 0\n", 0755)
	writeScript(t, dir, "junk.sh", "#!/bin/sh\necho not-json\n", 0755)
	writeScript(t, dir, "slow.sh", "#!/bin/sh\nsleep 5\n", 0755)
	writeScript(t, dir, "typo.sh", "#!/bin/sh\necho '{\"items\":[{\"title\":\"x\",\"action\":{\"type\":\"copyy\",\"value\":\"v\"}}]}'\n", 0755)
	_, err := s.Scan()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Execute(ctx, "fail", "", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first problem")
	assert.NotContains(t, err.Error(), "second")

	_, err = s.Execute(ctx, "silent", "", time.Second)
	assert.ErrorIs(t, err, backend.ErrNoOutput)

	_, err = s.Execute(ctx, "junk", "", time.Second)
	assert.ErrorContains(t, err, "invalid JSON")

	_, err = s.Execute(ctx, "typo", "", time.Second)
	assert.ErrorContains(t, err, "unknown action type")

	_, err = s.Execute(ctx, "slow", "", 50*time.Millisecond)
	assert.ErrorIs(t, err, backend.ErrScriptTimeout)

	_, err = s.Execute(ctx, "missing", "", time.Second)
	assert.ErrorIs(t, err, backend.ErrScriptNotFound)

	_, err = s.Execute(ctx, "fail", `"unterminated`, time.Second)
	assert.ErrorContains(t, err, "invalid script args")
}

func TestCappedBuffer(t *testing.T) {
	c := &cappedBuffer{limit: 4}
	n, err := c.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	_, _ = c.Write([]byte("gh"))
	assert.Equal(t, "abcd", c.buf.String())
}

func TestInstallLocalFile(t *testing.T) {
	s, dir := newTestScripts(t)
	src := filepath.Join(t.TempDir(), "greet.sh")
	require.NoError(t, os.WriteFile(src, []byte(helloScript), 0644))

	require.NoError(t, s.Install(context.Background(), src))

	info, err := os.Stat(filepath.Join(dir, "greet.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestInstallFromURL(t *testing.T) {
	s, dir := newTestScripts(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scripts/weather.sh" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("#!/bin/sh\necho '{\"items\":[]}'\n"))
	}))
	defer srv.Close()

	require.NoError(t, s.Install(context.Background(), srv.URL+"/scripts/weather.sh"))
	_, err := os.Stat(filepath.Join(dir, "weather.sh"))
	require.NoError(t, err)

	err = s.Install(context.Background(), srv.URL+"/missing.sh")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestInstallZip(t *testing.T) {
	s, dir := newTestScripts(t)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"pack/a.sh", "pack/b.sh"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, _ = w.Write([]byte("#!/bin/sh\n"))
	}
	require.NoError(t, zw.Close())
	src := filepath.Join(t.TempDir(), "pack.zip")
	require.NoError(t, os.WriteFile(src, buf.Bytes(), 0644))

	require.NoError(t, s.Install(context.Background(), src))
	for _, name := range []string{"a.sh", "b.sh"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0111)
	}
}

func TestInstallUnknownSource(t *testing.T) {
	s, _ := newTestScripts(t)
	err := s.Install(context.Background(), "not-a-file-or-url")
	assert.ErrorIs(t, err, backend.ErrPathNotFound)
}

func TestWatchPublishesScriptsChanged(t *testing.T) {
	dir := t.TempDir()
	bus := eventbus.New()
	defer bus.Close()
	s := NewScripts(bus, dir)
	defer s.Stop()

	changed := make(chan []domain.ScriptEntry, 4)
	bus.Subscribe(eventbus.EventScriptsChanged, func(e eventbus.DomainEvent) {
		changed <- e.(domain.ScriptsChangedEvent).Scripts
	})
	require.NoError(t, s.Watch())

	writeScript(t, dir, "hello.sh", helloScript, 0755)

	select {
	case scripts := <-changed:
		require.Len(t, scripts, 1)
		assert.Equal(t, "hello", scripts[0].Keyword)
	case <-time.After(3 * time.Second):
		t.Fatal("scripts-changed not published")
	}
}
