package local

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"

	"vanta/internal/backend"
	"vanta/internal/config"
	"vanta/internal/domain"
	"vanta/internal/eventbus"
	"vanta/internal/logging"
	"vanta/internal/watch"
)

const (
	maxScriptOutput   = 1 << 20
	maxDownloadBytes  = 25 << 20
	downloadTimeout   = 20 * time.Second
	scriptsDebounce   = 600 * time.Millisecond
	metadataLineLimit = 5
)

// Scripts discovers, runs and installs keyword scripts
type Scripts struct {
	bus    eventbus.EventBus
	client *http.Client

	mu      sync.RWMutex
	dir     string
	entries []domain.ScriptEntry
	watcher *watch.Dir
}

// NewScripts creates a script manager for dir
func NewScripts(bus eventbus.EventBus, dir string) *Scripts {
	return &Scripts{
		bus:    bus,
		dir:    dir,
		client: &http.Client{Timeout: downloadTimeout},
	}
}

// Dir returns the scripts directory
func (s *Scripts) Dir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// Entries returns the last scan
func (s *Scripts) Entries() []domain.ScriptEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// Scan rereads the scripts directory. A missing directory yields no scripts.
func (s *Scripts) Scan() ([]domain.ScriptEntry, error) {
	dir := s.Dir()
	entries, err := scanScripts(dir)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	logging.Info("scripts scanned", "dir", dir, "count", len(entries))
	return entries, nil
}

func scanScripts(dir string) ([]domain.ScriptEntry, error) {
	files, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read scripts dir: %w", err)
	}

	var entries []domain.ScriptEntry
	for _, f := range files {
		path := filepath.Join(dir, f.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0111 == 0 {
			continue
		}
		keyword := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		if keyword == "" {
			continue
		}
		entry := domain.ScriptEntry{Keyword: keyword, Path: path}
		parseScriptMetadata(path, &entry)
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Keyword < entries[j].Keyword })
	return entries, nil
}

// parseScriptMetadata reads "# vanta:key=value" or "// vanta:key=value"
// lines from the head of the script.
func parseScriptMetadata(path string, entry *domain.ScriptEntry) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for i := 0; i < metadataLineLimit && scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())
		var content string
		switch {
		case strings.HasPrefix(line, "#"):
			content = strings.TrimSpace(line[1:])
		case strings.HasPrefix(line, "//"):
			content = strings.TrimSpace(line[2:])
		default:
			continue
		}

		rest, ok := strings.CutPrefix(content, "vanta:")
		if !ok {
			continue
		}
		key, value, ok := strings.Cut(rest, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "name":
			entry.Name = value
		case "description":
			entry.Description = value
		case "icon":
			entry.Icon = value
		}
	}
}

// Watch rescans on changes to the scripts directory and publishes the new list
func (s *Scripts) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}
	w, err := watch.New(s.dir, scriptsDebounce, nil, s.rescan)
	if err != nil {
		return fmt.Errorf("watch scripts dir: %w", err)
	}
	s.watcher = w
	return nil
}

func (s *Scripts) rescan() {
	entries, err := s.Scan()
	if err != nil {
		logging.Warn("script rescan failed", "error", err)
		s.bus.Publish(eventbus.ErrorEvent{Message: "Failed to rescan scripts", Err: err})
		return
	}
	s.bus.Publish(eventbus.ScriptsChangedEvent{Scripts: entries})
}

// SetDir moves the manager to a new directory, restarting the watcher if one runs
func (s *Scripts) SetDir(dir string) error {
	s.mu.Lock()
	if dir == s.dir {
		s.mu.Unlock()
		return nil
	}
	s.dir = dir
	old := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if old != nil {
		_ = old.Stop()
		if err := s.Watch(); err != nil {
			return err
		}
	}
	s.rescan()
	return nil
}

// Stop stops the watcher
func (s *Scripts) Stop() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Stop()
}

func (s *Scripts) find(keyword string) (domain.ScriptEntry, bool) {
	for _, e := range s.Entries() {
		if e.Keyword == keyword {
			return e, true
		}
	}
	return domain.ScriptEntry{}, false
}

// cappedBuffer keeps the first limit bytes and discards the rest
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if room := c.limit - c.buf.Len(); room > 0 {
		if len(p) > room {
			c.buf.Write(p[:room])
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}

// Execute runs the script for keyword with args and parses its JSON output
func (s *Scripts) Execute(ctx context.Context, keyword, args string, timeout time.Duration) (*domain.ScriptOutput, error) {
	entry, ok := s.find(keyword)
	if !ok {
		return nil, fmt.Errorf("%w: %s", backend.ErrScriptNotFound, keyword)
	}

	argv, err := shlex.Split(args)
	if err != nil {
		return nil, fmt.Errorf("invalid script args for %q: %w", keyword, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout := &cappedBuffer{limit: maxScriptOutput}
	stderr := &cappedBuffer{limit: maxScriptOutput}
	cmd := exec.CommandContext(ctx, entry.Path, argv...)
	cmd.Dir = filepath.Dir(entry.Path)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = 500 * time.Millisecond

	logging.Info("executing script", "keyword", keyword, "args", args)
	start := time.Now()
	runErr := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logging.Warn("script timed out", "keyword", keyword, "timeout", timeout)
		return nil, fmt.Errorf("%w: %s after %s", backend.ErrScriptTimeout, keyword, timeout)
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			line, _, _ := strings.Cut(strings.TrimSpace(stderr.buf.String()), "\n")
			if line == "" {
				return nil, fmt.Errorf("script %q exited with code %d", keyword, exitErr.ExitCode())
			}
			return nil, fmt.Errorf("script %q failed: %s", keyword, line)
		}
		return nil, fmt.Errorf("failed to execute script %q: %w", keyword, runErr)
	}

	out := bytes.TrimSpace(stdout.buf.Bytes())
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", backend.ErrNoOutput, keyword)
	}

	var parsed domain.ScriptOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		logging.Warn("script output invalid JSON", "keyword", keyword, "error", err, "raw", truncateBytes(out, 200))
		return nil, fmt.Errorf("invalid JSON output from %q: %w", keyword, err)
	}

	logging.Info("script completed", "keyword", keyword, "items", len(parsed.Items), "elapsed", time.Since(start))
	return &parsed, nil
}

func truncateBytes(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}

// Install copies a local file or downloads an http(s) URL into the scripts
// directory. Zip archives are extracted flat.
func (s *Scripts) Install(ctx context.Context, source string) error {
	dir := s.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create scripts dir: %w", err)
	}

	local := config.ExpandHome(source)
	if _, err := os.Stat(local); err == nil {
		f, err := os.Open(local)
		if err != nil {
			return fmt.Errorf("open %s: %w", source, err)
		}
		data, err := readCapped(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", source, err)
		}
		return s.installBytes(dir, filepath.Base(local), data)
	}

	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return fmt.Errorf("%w: %s", backend.ErrPathNotFound, source)
	}

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	logging.Info("downloading script", "url", source)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", source, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: HTTP %d", source, resp.StatusCode)
	}

	data, err := readCapped(resp.Body)
	if err != nil {
		return fmt.Errorf("download %s: %w", source, err)
	}
	name := filepath.Base(req.URL.Path)
	if name == "" || name == "/" || name == "." {
		name = "script"
	}
	return s.installBytes(dir, name, data)
}

// readCapped reads at most maxDownloadBytes, failing when the source is larger
func readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDownloadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("larger than %d bytes", maxDownloadBytes)
	}
	return data, nil
}

func (s *Scripts) installBytes(dir, name string, data []byte) error {
	if strings.EqualFold(filepath.Ext(name), ".zip") {
		return extractZip(dir, data)
	}
	return writeExecutable(filepath.Join(dir, name), bytes.NewReader(data))
}

func extractZip(dir string, data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	extracted := 0
	for _, f := range zr.File {
		name := filepath.Base(f.Name)
		if f.FileInfo().IsDir() || name == "" || name == "." || name == ".." {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", f.Name, err)
		}
		err = writeExecutable(filepath.Join(dir, name), rc)
		rc.Close()
		if err != nil {
			return err
		}
		extracted++
	}
	if extracted == 0 {
		return errors.New("no files extracted from archive")
	}
	return nil
}

func writeExecutable(path string, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, io.LimitReader(r, maxDownloadBytes)); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logging.Info("installed script file", "path", path)
	return os.Chmod(path, 0755)
}
