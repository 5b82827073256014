package backend

import (
	"context"
	"errors"

	"vanta/internal/config"
	"vanta/internal/domain"
)

var (
	ErrScriptNotFound = errors.New("script not found")
	ErrEmptyCommand   = errors.New("empty command")
	ErrPathNotFound   = errors.New("path not found")
	ErrScriptTimeout  = errors.New("script timed out")
	ErrNoOutput       = errors.New("script produced no output")
)

// Backend is the request/response contract the palette consumes
type Backend interface {
	GetConfig(ctx context.Context) (*config.Config, error)
	SaveConfig(ctx context.Context, cfg *config.Config) error
	GetInstalledThemes(ctx context.Context) ([]domain.ThemeMeta, error)
	ResizeWindowForTheme(ctx context.Context, width, height int) error

	GetScripts(ctx context.Context) ([]domain.ScriptEntry, error)
	ExecuteScript(ctx context.Context, keyword, args string) (*domain.ScriptOutput, error)
	InstallScript(ctx context.Context, source string) error

	GetSuggestions(ctx context.Context) ([]domain.ResultItem, error)
	Search(ctx context.Context, query string) ([]domain.ResultItem, error)
	GetApps(ctx context.Context) ([]domain.AppEntry, error)
	GetSearchDiagnostics(ctx context.Context) (*domain.SearchDiagnostics, error)

	LaunchApp(ctx context.Context, exec string) error
	OpenPath(ctx context.Context, path string) error
	OpenURL(ctx context.Context, url string) error

	GetClipboardHistory(ctx context.Context) ([]domain.ClipboardItem, error)

	HideWindow(ctx context.Context) error
	ShowWindow(ctx context.Context) error
}

// ClipboardWriter writes text to the host clipboard
type ClipboardWriter interface {
	WriteAll(text string) error
}
