// Package backendtest provides an in-memory Backend for UI tests.
package backendtest

import (
	"context"
	"sync"

	"vanta/internal/config"
	"vanta/internal/domain"
)

// Call records one backend invocation
type Call struct {
	Method string
	Args   []string
}

// Fake implements backend.Backend. Func fields override the canned data.
type Fake struct {
	mu    sync.Mutex
	calls []Call

	Config      *config.Config
	Themes      []domain.ThemeMeta
	Scripts     []domain.ScriptEntry
	Suggestions []domain.ResultItem
	Results     map[string][]domain.ResultItem
	ScriptItems map[string][]domain.ScriptItem
	Clipboard   []domain.ClipboardItem
	Apps        []domain.AppEntry
	Diagnostics domain.SearchDiagnostics

	SearchFunc        func(ctx context.Context, query string) ([]domain.ResultItem, error)
	SuggestionsFunc   func(ctx context.Context) ([]domain.ResultItem, error)
	ExecuteScriptFunc func(ctx context.Context, keyword, args string) (*domain.ScriptOutput, error)
	LaunchFunc        func(ctx context.Context, exec string) error
	OpenPathFunc      func(ctx context.Context, path string) error
	InstallFunc       func(ctx context.Context, source string) error
	HideFunc          func(ctx context.Context) error
	ClipboardFunc     func(ctx context.Context) ([]domain.ClipboardItem, error)
	GetConfigFunc     func(ctx context.Context) (*config.Config, error)
	GetScriptsFunc    func(ctx context.Context) ([]domain.ScriptEntry, error)

	Copied []string
	CopyErr error
}

// New returns a Fake with default config
func New() *Fake {
	return &Fake{
		Config:      config.DefaultConfig(),
		Results:     make(map[string][]domain.ResultItem),
		ScriptItems: make(map[string][]domain.ScriptItem),
	}
}

func (f *Fake) record(method string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Args: args})
}

// Calls returns all recorded calls to method
func (f *Fake) Calls(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns how many times method was called
func (f *Fake) CallCount(method string) int {
	return len(f.Calls(method))
}

// Reset clears recorded calls
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.Copied = nil
}

func (f *Fake) GetConfig(ctx context.Context) (*config.Config, error) {
	f.record("GetConfig")
	if f.GetConfigFunc != nil {
		return f.GetConfigFunc(ctx)
	}
	return f.Config.Clone(), nil
}

func (f *Fake) SaveConfig(_ context.Context, cfg *config.Config) error {
	f.record("SaveConfig")
	f.mu.Lock()
	f.Config = cfg.Clone()
	f.mu.Unlock()
	return nil
}

func (f *Fake) GetInstalledThemes(context.Context) ([]domain.ThemeMeta, error) {
	f.record("GetInstalledThemes")
	return f.Themes, nil
}

func (f *Fake) ResizeWindowForTheme(context.Context, int, int) error {
	f.record("ResizeWindowForTheme")
	return nil
}

func (f *Fake) GetScripts(ctx context.Context) ([]domain.ScriptEntry, error) {
	f.record("GetScripts")
	if f.GetScriptsFunc != nil {
		return f.GetScriptsFunc(ctx)
	}
	return f.Scripts, nil
}

func (f *Fake) ExecuteScript(ctx context.Context, keyword, args string) (*domain.ScriptOutput, error) {
	f.record("ExecuteScript", keyword, args)
	if f.ExecuteScriptFunc != nil {
		return f.ExecuteScriptFunc(ctx, keyword, args)
	}
	return &domain.ScriptOutput{Items: f.ScriptItems[keyword]}, nil
}

func (f *Fake) InstallScript(ctx context.Context, source string) error {
	f.record("InstallScript", source)
	if f.InstallFunc != nil {
		return f.InstallFunc(ctx, source)
	}
	return nil
}

func (f *Fake) GetSuggestions(ctx context.Context) ([]domain.ResultItem, error) {
	f.record("GetSuggestions")
	if f.SuggestionsFunc != nil {
		return f.SuggestionsFunc(ctx)
	}
	return f.Suggestions, nil
}

func (f *Fake) Search(ctx context.Context, query string) ([]domain.ResultItem, error) {
	f.record("Search", query)
	if f.SearchFunc != nil {
		return f.SearchFunc(ctx, query)
	}
	return f.Results[query], nil
}

func (f *Fake) GetApps(context.Context) ([]domain.AppEntry, error) {
	f.record("GetApps")
	return f.Apps, nil
}

func (f *Fake) GetSearchDiagnostics(context.Context) (*domain.SearchDiagnostics, error) {
	f.record("GetSearchDiagnostics")
	d := f.Diagnostics
	return &d, nil
}

func (f *Fake) LaunchApp(ctx context.Context, exec string) error {
	f.record("LaunchApp", exec)
	if f.LaunchFunc != nil {
		return f.LaunchFunc(ctx, exec)
	}
	return nil
}

func (f *Fake) OpenPath(ctx context.Context, path string) error {
	f.record("OpenPath", path)
	if f.OpenPathFunc != nil {
		return f.OpenPathFunc(ctx, path)
	}
	return nil
}

func (f *Fake) OpenURL(_ context.Context, url string) error {
	f.record("OpenURL", url)
	return nil
}

func (f *Fake) GetClipboardHistory(ctx context.Context) ([]domain.ClipboardItem, error) {
	f.record("GetClipboardHistory")
	if f.ClipboardFunc != nil {
		return f.ClipboardFunc(ctx)
	}
	return f.Clipboard, nil
}

func (f *Fake) HideWindow(ctx context.Context) error {
	f.record("HideWindow")
	if f.HideFunc != nil {
		return f.HideFunc(ctx)
	}
	return nil
}

func (f *Fake) ShowWindow(context.Context) error {
	f.record("ShowWindow")
	return nil
}

// WriteAll implements backend.ClipboardWriter
func (f *Fake) WriteAll(text string) error {
	f.record("WriteAll", text)
	if f.CopyErr != nil {
		return f.CopyErr
	}
	f.mu.Lock()
	f.Copied = append(f.Copied, text)
	f.mu.Unlock()
	return nil
}
