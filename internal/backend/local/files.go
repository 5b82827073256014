package local

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vanta/internal/config"
	"vanta/internal/domain"
)

const (
	pathResultLimit = 50
	installCommand  = "install"
)

// isPathQuery reports whether the query browses the filesystem
func isPathQuery(q string) bool {
	return strings.HasPrefix(q, "/") || strings.HasPrefix(q, "~/")
}

// pathEntry is one directory entry matching a path query
type pathEntry struct {
	name    string
	full    string
	display string
	dir     bool
	nested  bool
}

// listPath lists the entries of the directory named by q whose names start
// with the last path segment, followed by entries up to maxDepth levels down
// whose names contain it. Display paths keep a leading ~/ when q had one.
func listPath(q string, includeHidden bool, maxDepth int) []pathEntry {
	home, _ := os.UserHomeDir()
	expanded := q
	if strings.HasPrefix(q, "~/") && home != "" {
		expanded = filepath.Join(home, q[2:])
		if strings.HasSuffix(q, "/") {
			expanded += "/"
		}
	}

	dir, prefix := expanded, ""
	if !strings.HasSuffix(expanded, "/") {
		dir, prefix = filepath.Dir(expanded), filepath.Base(expanded)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	newEntry := func(name, full string, d fs.DirEntry) pathEntry {
		isDir := d.IsDir()
		if d.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(full); err == nil {
				isDir = info.IsDir()
			}
		}
		display := full
		if strings.HasPrefix(q, "~/") && home != "" {
			display = "~" + strings.TrimPrefix(full, home)
		}
		return pathEntry{name: name, full: full, display: display, dir: isDir}
	}

	lowerPrefix := strings.ToLower(prefix)
	var out []pathEntry
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") && !includeHidden && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
			continue
		}
		out = append(out, newEntry(name, filepath.Join(dir, name), e))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].dir != out[j].dir {
			return out[i].dir
		}
		return strings.ToLower(out[i].name) < strings.ToLower(out[j].name)
	})
	if len(out) >= pathResultLimit {
		return out[:pathResultLimit]
	}

	if prefix != "" && maxDepth > 1 {
		out = append(out, nestedMatches(dir, lowerPrefix, includeHidden, maxDepth, pathResultLimit-len(out), newEntry)...)
	}
	return out
}

// nestedMatches walks below dir for entries deeper than the first level
// whose names contain needle, shallowest first. Names are relative to dir.
func nestedMatches(dir, needle string, includeHidden bool, maxDepth, limit int, newEntry func(name, full string, d fs.DirEntry) pathEntry) []pathEntry {
	var found []pathEntry
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == dir {
			return nil
		}
		rel, _ := filepath.Rel(dir, path)
		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if strings.HasPrefix(d.Name(), ".") && !includeHidden {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if depth > 1 && strings.Contains(strings.ToLower(d.Name()), needle) {
			e := newEntry(rel, path, d)
			e.nested = true
			found = append(found, e)
			if len(found) >= limit {
				return fs.SkipAll
			}
		}
		if d.IsDir() && depth >= maxDepth {
			return fs.SkipDir
		}
		return nil
	})

	sort.SliceStable(found, func(i, j int) bool {
		di := strings.Count(found[i].name, string(filepath.Separator))
		dj := strings.Count(found[j].name, string(filepath.Separator))
		if di != dj {
			return di < dj
		}
		return strings.ToLower(found[i].name) < strings.ToLower(found[j].name)
	})
	return found
}

// fileResults turns a path query into items: directories continue the query,
// files open and carry copy-path and open-folder actions.
func fileResults(q string, includeHidden bool, maxDepth, weight int) []domain.ResultItem {
	entries := listPath(q, includeHidden, maxDepth)
	items := make([]domain.ResultItem, 0, len(entries))
	for i, e := range entries {
		base := 0
		if e.nested {
			base = -200_000
		}
		if e.dir {
			items = append(items, domain.ResultItem{
				ID:       e.full,
				Source:   domain.SourceFile,
				Title:    e.name + "/",
				Subtitle: filepath.Dir(e.display),
				Icon:     "dir",
				Exec:     domain.PrefixFill + e.display + "/",
				Score:    weightedScore(base+900_000-i, weight),
			})
			continue
		}
		items = append(items, domain.ResultItem{
			ID:       e.full,
			Source:   domain.SourceFile,
			Title:    e.name,
			Subtitle: filepath.Dir(e.display),
			Icon:     fileIcon(e.name),
			Exec:     e.full,
			Score:    weightedScore(base+800_000-i, weight),
			Actions: []domain.SecondaryAction{
				{Label: "Copy path", Exec: domain.PrefixCopy + e.full, Shortcut: "ctrl+y"},
				{Label: "Open folder", Exec: filepath.Dir(e.full), Shortcut: "ctrl+o"},
			},
		})
	}
	return items
}

func fileIcon(name string) string {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."); ext != "" {
		return "file:" + ext
	}
	return "file"
}

// isInstallQuery reports whether q starts with the install command
func isInstallQuery(q string) bool {
	return strings.HasPrefix(q, installCommand+" ")
}

// installResults offers the typed source first, then path completions
func installResults(q string, includeHidden bool) []domain.ResultItem {
	src := strings.TrimSpace(strings.TrimPrefix(q, installCommand+" "))
	if src == "" {
		return []domain.ResultItem{{
			ID:       "install",
			Source:   domain.SourceScript,
			Title:    "Install a script",
			Subtitle: "Type a path or an http(s) URL",
			Exec:     domain.PrefixFill + installCommand + " ~/",
			Score:    1_000_000,
		}}
	}

	var items []domain.ResultItem
	if isPathQuery(src) {
		for i, e := range listPath(src, includeHidden, 1) {
			item := domain.ResultItem{
				ID:       "install:" + e.full,
				Source:   domain.SourceFile,
				Title:    e.name,
				Subtitle: filepath.Dir(e.display),
			}
			if e.dir {
				item.Title += "/"
				item.Icon = "dir"
				item.Exec = domain.PrefixFill + installCommand + " " + e.display + "/"
				item.Score = 900_000 - i
			} else {
				item.Icon = fileIcon(e.name)
				item.Exec = domain.PrefixInstall + e.full
				item.Score = 800_000 - i
			}
			items = append(items, item)
		}
	}

	title := "Install web script: " + src
	subtitle := "Download into the scripts directory"
	if _, err := os.Stat(config.ExpandHome(src)); err == nil {
		title = "Install local file: " + filepath.Base(src)
		subtitle = "Copy into the scripts directory"
	}
	top := domain.ResultItem{
		ID:       "install",
		Source:   domain.SourceScript,
		Title:    title,
		Subtitle: subtitle,
		Exec:     domain.PrefixInstall + src,
		Score:    1_000_000,
	}
	return append([]domain.ResultItem{top}, items...)
}

// installHint suggests the install command for prefixes of it
func installHint(q string) (domain.ResultItem, bool) {
	if len(q) < 3 || !strings.HasPrefix(installCommand, strings.ToLower(q)) {
		return domain.ResultItem{}, false
	}
	return domain.ResultItem{
		ID:       "install-hint",
		Source:   domain.SourceScript,
		Title:    installCommand,
		Subtitle: "Install a script from a path or URL",
		Exec:     domain.PrefixFill + installCommand + " ~/",
		Score:    150,
	}, true
}
