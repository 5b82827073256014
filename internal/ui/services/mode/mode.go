package mode

import (
	"strings"
	"unicode"
)

// Kind is the active interpretation of the query
type Kind int

const (
	KindLauncher Kind = iota
	KindScript
	KindClipboard
	KindSettings
)

func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindClipboard:
		return "clipboard"
	case KindSettings:
		return "settings"
	default:
		return "launcher"
	}
}

// Mode is a tagged variant; Keyword and Args are only set for KindScript
type Mode struct {
	Kind    Kind
	Keyword string
	Args    string
}

func Launcher() Mode  { return Mode{Kind: KindLauncher} }
func Clipboard() Mode { return Mode{Kind: KindClipboard} }
func Settings() Mode  { return Mode{Kind: KindSettings} }

func Script(keyword, args string) Mode {
	return Mode{Kind: KindScript, Keyword: keyword, Args: args}
}

func (m Mode) String() string {
	if m.Kind == KindScript {
		return "script:" + m.Keyword
	}
	return m.Kind.String()
}

// Resolve classifies a query against the registry.
// Only an exact case-insensitive keyword match selects script mode.
func Resolve(query string, reg *Registry) Mode {
	q := strings.TrimSpace(query)
	if q == "" {
		return Launcher()
	}

	keyword, args := q, ""
	if i := strings.IndexFunc(q, unicode.IsSpace); i >= 0 {
		keyword = q[:i]
		args = strings.TrimSpace(q[i:])
	}

	if reg == nil {
		return Launcher()
	}
	entry, ok := reg.Lookup(keyword)
	if !ok {
		return Launcher()
	}
	return Script(entry.Keyword, args)
}
