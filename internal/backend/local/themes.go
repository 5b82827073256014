package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"vanta/internal/config"
	"vanta/internal/domain"
	"vanta/internal/logging"
)

// loadThemes returns the built-in default followed by the *.toml themes in
// dir, sorted by name. Unparseable files are skipped.
func loadThemes(dir string, cfg *config.Config) ([]domain.ThemeMeta, error) {
	themes := []domain.ThemeMeta{cfg.Theme()}

	files, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return themes, nil
	}
	if err != nil {
		return themes, fmt.Errorf("read themes dir: %w", err)
	}

	var found []domain.ThemeMeta
	for _, f := range files {
		if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), ".toml") {
			continue
		}
		path := filepath.Join(dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logging.Warn("cannot read theme", "path", path, "error", err)
			continue
		}
		var theme domain.ThemeMeta
		if err := toml.Unmarshal(data, &theme); err != nil {
			logging.Warn("invalid theme file", "path", path, "error", err)
			continue
		}
		if theme.Name == "" {
			theme.Name = strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		}
		if theme.Name == "default" {
			continue
		}
		found = append(found, theme)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return append(themes, found...), nil
}
