package local

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"vanta/internal/config"
	"vanta/internal/domain"
)

const (
	usageBonusPerLaunch = 5
	maxUsageBonus       = 200
	genericNamePenalty  = 10
	commentPenalty      = 20
)

// weightedScore scales base by a source weight clamped to 10..300 percent
func weightedScore(base, weight int) int {
	if weight < 10 {
		weight = 10
	}
	if weight > 300 {
		weight = 300
	}
	return base * weight / 100
}

func usageBonus(count int) int {
	return min(count*usageBonusPerLaunch, maxUsageBonus)
}

// appField adapts one string field of the app list to fuzzy.Source
type appField struct {
	apps []app
	get  func(app) string
}

func (f appField) String(i int) string { return f.get(f.apps[i]) }
func (f appField) Len() int            { return len(f.apps) }

type appMatch struct {
	score   int
	indices []int
}

// matchApps fuzzy-matches names, then generic names and comments at a
// penalty. Only name matches carry highlight indices.
func matchApps(apps []app, query string, usage map[string]int, weight int) []domain.ResultItem {
	best := make(map[int]appMatch)
	consider := func(get func(app) string, penalty int, keepIndices bool) {
		for _, m := range fuzzy.FindFrom(query, appField{apps: apps, get: get}) {
			score := m.Score - penalty
			if cur, ok := best[m.Index]; ok && cur.score >= score {
				continue
			}
			am := appMatch{score: score}
			if keepIndices {
				am.indices = runeIndices(m.Str, m.MatchedIndexes)
			}
			best[m.Index] = am
		}
	}
	consider(func(a app) string { return a.Name }, 0, true)
	consider(func(a app) string { return a.GenericName }, genericNamePenalty, false)
	consider(func(a app) string { return a.Comment }, commentPenalty, false)

	items := make([]domain.ResultItem, 0, len(best))
	for i, m := range best {
		a := apps[i]
		items = append(items, domain.ResultItem{
			ID:           a.ID,
			Source:       domain.SourceApplication,
			Title:        a.Name,
			Subtitle:     firstNonEmpty(a.GenericName, a.Comment),
			Icon:         a.Icon,
			Exec:         a.Exec,
			Score:        weightedScore(m.score+usageBonus(usage[a.Exec]), weight),
			MatchIndices: m.indices,
		})
	}
	return items
}

// runeIndices converts byte offsets into s to rune offsets
func runeIndices(s string, byteIdx []int) []int {
	out := make([]int, 0, len(byteIdx))
	for _, b := range byteIdx {
		if b <= len(s) {
			out = append(out, utf8.RuneCountInString(s[:b]))
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// suggestions lists apps by launch count, then name
func suggestions(apps []app, usage map[string]int, limit, weight int) []domain.ResultItem {
	sorted := append([]app(nil), apps...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return usage[sorted[i].Exec] > usage[sorted[j].Exec]
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	items := make([]domain.ResultItem, 0, len(sorted))
	for _, a := range sorted {
		items = append(items, domain.ResultItem{
			ID:       a.ID,
			Source:   domain.SourceApplication,
			Title:    a.Name,
			Subtitle: firstNonEmpty(a.GenericName, a.Comment),
			Icon:     a.Icon,
			Exec:     a.Exec,
			Score:    weightedScore(100+usageBonus(usage[a.Exec]), weight),
		})
	}
	return items
}

// search runs every enabled source for query and ranks the union
func (b *Backend) search(ctx context.Context, query string, cfg *config.Config) []domain.ResultItem {
	q := strings.TrimSpace(query)
	apps := b.apps.all()

	switch {
	case isInstallQuery(q):
		return rank(installResults(q, cfg.Files.IncludeHidden), 0)
	case isPathQuery(q):
		if !cfg.Search.Files.Enabled {
			return nil
		}
		return rank(fileResults(q, cfg.Files.IncludeHidden, cfg.Files.MaxDepth, cfg.Search.Files.Weight), pathResultLimit)
	}

	var items []domain.ResultItem
	if cfg.Search.Applications.Enabled {
		items = append(items, matchApps(apps, q, b.usage(ctx), cfg.Search.Applications.Weight)...)
	}
	if cfg.Search.Windows.Enabled {
		items = append(items, windowResults(b.windows.List(ctx), apps, q, cfg.Search.Windows.Weight)...)
	}
	if cfg.Search.Calculator.Enabled {
		if item, ok := calcResult(q, cfg.Search.Calculator.Weight); ok {
			items = append(items, item)
		}
	}
	if item, ok := installHint(q); ok {
		items = append(items, item)
	}
	return rank(items, cfg.General.MaxResults)
}

// rank sorts by score descending and keeps the first limit items; 0 keeps all
func rank(items []domain.ResultItem, limit int) []domain.ResultItem {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Title < items[j].Title
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
