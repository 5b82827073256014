package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"vanta/internal/domain"
)

// Config represents the application configuration
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Window     WindowConfig     `toml:"window"`
	Scripts    ScriptsConfig    `toml:"scripts"`
	Files      FilesConfig      `toml:"files"`
	Search     SearchConfig     `toml:"search"`
	Launcher   LauncherConfig   `toml:"launcher"`
	Clipboard  ClipboardConfig  `toml:"clipboard"`
	Logging    LoggingConfig    `toml:"logging"`
}

type GeneralConfig struct {
	MaxResults  int    `toml:"max_results"`
	SettingsKey string `toml:"settings_key"`
}

type AppearanceConfig struct {
	Theme  string `toml:"theme"`
	Blur   bool   `toml:"blur"`
	Colors Colors `toml:"colors"`
}

// Colors are lipgloss color strings used by the default theme
type Colors struct {
	Background    string `toml:"background"`
	Surface       string `toml:"surface"`
	Accent        string `toml:"accent"`
	TextPrimary   string `toml:"text_primary"`
	TextSecondary string `toml:"text_secondary"`
	Border        string `toml:"border"`
	Critical      string `toml:"critical"`
}

type WindowConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type ScriptsConfig struct {
	Directory string `toml:"directory"`
	TimeoutMs int    `toml:"timeout_ms"`
}

type FilesConfig struct {
	IncludeHidden     bool   `toml:"include_hidden"`
	MaxDepth          int    `toml:"max_depth"`
	FileManager       string `toml:"file_manager"`
	FileEditor        string `toml:"file_editor"`
	OpenDocsInManager bool   `toml:"open_docs_in_manager"`
}

// SourceConfig toggles and weights one search source
type SourceConfig struct {
	Enabled bool `toml:"enabled"`
	Weight  int  `toml:"weight"`
}

type SearchConfig struct {
	Applications SourceConfig `toml:"applications"`
	Calculator   SourceConfig `toml:"calculator"`
	Files        SourceConfig `toml:"files"`
	Windows      SourceConfig `toml:"windows"`
}

type LauncherConfig struct {
	DebounceMs    int `toml:"debounce_ms"`
	ActionGraceMs int `toml:"action_grace_ms"`
}

type ClipboardConfig struct {
	Watch    bool `toml:"watch"`
	MaxItems int  `toml:"max_items"`
	PollMs   int  `toml:"poll_ms"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	File  bool   `toml:"file"`
}

const (
	minWeight = 10
	maxWeight = 300
)

// ConfigService handles configuration loading
type ConfigService interface {
	Load() (*Config, error)
	LoadFromPath(path string) (*Config, error)
	Path() string
}

type configService struct {
	filePath string
}

// Dir returns the vanta configuration directory
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			home = "."
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "vanta")
}

// NewConfigService creates a config service for path, or the default location when empty
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = filepath.Join(Dir(), "config.toml")
	}
	return &configService{filePath: path}
}

func (cs *configService) Path() string { return cs.filePath }

// Load loads the configuration file, returning defaults when it does not exist
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and normalizes the result
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize clamps out-of-range values and expands paths
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.General.MaxResults <= 0 {
		c.General.MaxResults = def.General.MaxResults
	}
	if c.General.MaxResults > 50 {
		c.General.MaxResults = 50
	}
	if strings.TrimSpace(c.General.SettingsKey) == "" {
		c.General.SettingsKey = def.General.SettingsKey
	}
	if c.Appearance.Theme == "" {
		c.Appearance.Theme = def.Appearance.Theme
	}
	if c.Window.Width <= 0 {
		c.Window.Width = def.Window.Width
	}
	if c.Window.Height <= 0 {
		c.Window.Height = def.Window.Height
	}
	if c.Scripts.Directory == "" {
		c.Scripts.Directory = def.Scripts.Directory
	}
	c.Scripts.Directory = ExpandHome(c.Scripts.Directory)
	if c.Scripts.TimeoutMs <= 0 {
		c.Scripts.TimeoutMs = def.Scripts.TimeoutMs
	}
	if c.Files.MaxDepth <= 0 {
		c.Files.MaxDepth = def.Files.MaxDepth
	}
	if c.Files.FileManager == "" {
		c.Files.FileManager = "default"
	}
	if c.Files.FileEditor == "" {
		c.Files.FileEditor = "default"
	}
	for _, s := range []*SourceConfig{&c.Search.Applications, &c.Search.Calculator, &c.Search.Files, &c.Search.Windows} {
		s.Weight = clampWeight(s.Weight)
	}
	if c.Launcher.DebounceMs < 0 {
		c.Launcher.DebounceMs = def.Launcher.DebounceMs
	}
	if c.Launcher.ActionGraceMs < 0 {
		c.Launcher.ActionGraceMs = def.Launcher.ActionGraceMs
	}
	if c.Clipboard.MaxItems <= 0 {
		c.Clipboard.MaxItems = def.Clipboard.MaxItems
	}
	if c.Clipboard.PollMs <= 0 {
		c.Clipboard.PollMs = def.Clipboard.PollMs
	}
}

func clampWeight(w int) int {
	if w == 0 {
		return 100
	}
	if w < minWeight {
		return minWeight
	}
	if w > maxWeight {
		return maxWeight
	}
	return w
}

// Clone returns a deep copy
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Theme returns the built-in theme described by the appearance section
func (c *Config) Theme() domain.ThemeMeta {
	return domain.ThemeMeta{
		Name:   "default",
		Width:  c.Window.Width,
		Height: c.Window.Height,
		Colors: map[string]string{
			"background":     c.Appearance.Colors.Background,
			"surface":        c.Appearance.Colors.Surface,
			"accent":         c.Appearance.Colors.Accent,
			"text_primary":   c.Appearance.Colors.TextPrimary,
			"text_secondary": c.Appearance.Colors.TextSecondary,
			"border":         c.Appearance.Colors.Border,
			"critical":       c.Appearance.Colors.Critical,
		},
	}
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			MaxResults:  8,
			SettingsKey: "ctrl+s",
		},
		Appearance: AppearanceConfig{
			Theme: "default",
			Blur:  true,
			Colors: Colors{
				Background:    "#0a0a0f",
				Surface:       "#1a1a24",
				Accent:        "#7aa2f7",
				TextPrimary:   "#e4e4ef",
				TextSecondary: "#8b8ba7",
				Border:        "#2e2e3e",
				Critical:      "#f7768e",
			},
		},
		Window: WindowConfig{Width: 680, Height: 420},
		Scripts: ScriptsConfig{
			Directory: ExpandHome("~/.config/vanta/scripts"),
			TimeoutMs: 5000,
		},
		Files: FilesConfig{
			MaxDepth:    3,
			FileManager: "default",
			FileEditor:  "default",
		},
		Search: SearchConfig{
			Applications: SourceConfig{Enabled: true, Weight: 100},
			Calculator:   SourceConfig{Enabled: true, Weight: 100},
			Files:        SourceConfig{Enabled: true, Weight: 100},
			Windows:      SourceConfig{Enabled: true, Weight: 100},
		},
		Launcher: LauncherConfig{
			DebounceMs:    120,
			ActionGraceMs: 250,
		},
		Clipboard: ClipboardConfig{
			Watch:    true,
			MaxItems: 50,
			PollMs:   750,
		},
		Logging: LoggingConfig{Level: "warn"},
	}
}
