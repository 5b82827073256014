package results

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"vanta/internal/domain"
)

const clipboardTitleMax = 200

// FilterClipboard keeps history entries containing query (case-insensitive)
// and maps them to copy items, newest first as given.
func FilterClipboard(history []domain.ClipboardItem, query string, limit int) []domain.ResultItem {
	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]domain.ResultItem, 0, len(history))
	for _, h := range history {
		if limit > 0 && len(out) >= limit {
			break
		}
		title := clipboardTitle(h.Content)
		if needle != "" && !strings.Contains(strings.ToLower(h.Content), needle) {
			continue
		}

		item := domain.ResultItem{
			ID:     strconv.FormatInt(h.ID, 10),
			Source: domain.SourceClipboard,
			Title:  title,
			Exec:   domain.PrefixCopy + h.Content,
		}
		if !h.Timestamp.IsZero() {
			item.Subtitle = h.Timestamp.Local().Format("Jan 2 15:04")
		}
		item.MatchIndices = substringIndices(title, strings.TrimSpace(query))
		out = append(out, item)
	}
	return out
}

// clipboardTitle flattens whitespace so multi-line entries fit one row
func clipboardTitle(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(title) > clipboardTitleMax {
		title = string([]rune(title)[:clipboardTitleMax])
	}
	return title
}

// substringIndices returns the rune offsets into title of the first
// case-insensitive match of needle, folding one rune at a time.
func substringIndices(title, needle string) []int {
	if needle == "" {
		return nil
	}
	hay := []rune(title)
	n := []rune(needle)
outer:
	for i := 0; i+len(n) <= len(hay); i++ {
		for j, r := range n {
			if unicode.ToLower(hay[i+j]) != unicode.ToLower(r) {
				continue outer
			}
		}
		idx := make([]int, len(n))
		for j := range n {
			idx[j] = i + j
		}
		return idx
	}
	return nil
}
