package results

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/backend/backendtest"
	"vanta/internal/domain"
	"vanta/internal/ui/services/mode"
	"vanta/internal/ui/state"
	"vanta/internal/ui/timer"
)

func newService(t *testing.T, scripts ...domain.ScriptEntry) (*Service, *state.Store, *backendtest.Fake) {
	t.Helper()
	store := state.NewStore()
	fake := backendtest.New()
	svc := NewService(store, fake, mode.NewRegistry(scripts...), time.Millisecond)
	return svc, store, fake
}

func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	return cmd()
}

func app(title string) domain.ResultItem {
	return domain.ResultItem{Source: domain.SourceApplication, Title: title, Exec: title}
}

func TestDebounceCoalescesKeystrokes(t *testing.T) {
	svc, store, fake := newService(t)
	fake.Results["firef"] = []domain.ResultItem{app("Firefox")}

	var ticks []tea.Msg
	for _, q := range []string{"f", "fi", "fir", "fire", "firef"} {
		ticks = append(ticks, run(t, svc.SetQuery(q)))
	}

	var issued []tea.Cmd
	for _, msg := range ticks {
		if cmd := svc.HandleTimer(msg.(timer.Expired)); cmd != nil {
			issued = append(issued, cmd)
		}
	}
	require.Len(t, issued, 1)

	svc.Apply(run(t, issued[0]).(Loaded))

	calls := fake.Calls("Search")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"firef"}, calls[0].Args)
	assert.Equal(t, "Firefox", store.Snapshot().Results[0].Title)
}

func TestOutOfOrderResponseIsDiscarded(t *testing.T) {
	svc, store, fake := newService(t)
	fake.Results["a"] = []domain.ResultItem{app("from a")}
	fake.Results["ab"] = []domain.ResultItem{app("from ab")}

	svc.SetQuery("a")
	reqA := svc.IssueSearch(mode.Launcher(), "a")
	svc.SetQuery("ab")
	reqAB := svc.IssueSearch(mode.Launcher(), "ab")

	respAB := run(t, reqAB).(Loaded)
	respA := run(t, reqA).(Loaded)

	svc.Apply(respAB)
	svc.Apply(respA)

	snap := store.Snapshot()
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "from ab", snap.Results[0].Title)
	assert.False(t, snap.Loading)
}

func TestEmptyQueryLoadsSuggestions(t *testing.T) {
	svc, store, fake := newService(t)
	fake.Suggestions = []domain.ResultItem{app("Terminal")}

	svc.SetQuery("x")
	cmd := svc.SetQuery("  ")
	msg := run(t, cmd)

	loaded, ok := msg.(Loaded)
	require.True(t, ok, "suggestions are fetched without debounce")
	svc.Apply(loaded)

	assert.Equal(t, 1, fake.CallCount("GetSuggestions"))
	assert.Equal(t, 0, fake.CallCount("Search"))
	assert.Equal(t, "Terminal", store.Snapshot().Results[0].Title)
}

func TestLauncherFailureKeepsItems(t *testing.T) {
	svc, store, fake := newService(t)
	fake.Results["fi"] = []domain.ResultItem{app("Files")}

	svc.SetQuery("fi")
	svc.Apply(run(t, svc.SearchNow()).(Loaded))
	require.NotEqual(t, state.LatencyUnknown, store.Snapshot().SearchLatency)

	fake.SearchFunc = func(context.Context, string) ([]domain.ResultItem, error) {
		return nil, errors.New("backend down")
	}
	svc.Apply(run(t, svc.SearchNow()).(Loaded))

	snap := store.Snapshot()
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "Files", snap.Results[0].Title)
	assert.Equal(t, state.LatencyUnknown, snap.SearchLatency)
}

func TestScriptFailureShowsCriticalItem(t *testing.T) {
	svc, store, fake := newService(t, domain.ScriptEntry{Keyword: "hello"})
	fake.ExecuteScriptFunc = func(context.Context, string, string) (*domain.ScriptOutput, error) {
		return nil, errors.New("exit status 2: no such city")
	}

	svc.SetQuery("hello world")
	svc.Apply(run(t, svc.SearchNow()).(Loaded))

	snap := store.Snapshot()
	require.Len(t, snap.ScriptItems, 1)
	assert.Equal(t, domain.UrgencyCritical, snap.ScriptItems[0].Urgency)
	assert.Contains(t, snap.ScriptItems[0].Subtitle, "no such city")
	assert.Equal(t, state.LatencyUnknown, snap.SearchLatency)
}

func TestScriptScenario(t *testing.T) {
	svc, store, fake := newService(t, domain.ScriptEntry{Keyword: "hello"})
	fake.ScriptItems["hello"] = []domain.ScriptItem{{Title: "Hello, world"}}

	tick := run(t, svc.SetQuery("hello world"))
	assert.Equal(t, mode.Script("hello", "world"), store.Snapshot().Mode)
	assert.Equal(t, 0, fake.CallCount("ExecuteScript"), "nothing before the debounce elapses")

	svc.Apply(run(t, svc.HandleTimer(tick.(timer.Expired))).(Loaded))

	calls := fake.Calls("ExecuteScript")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"hello", "world"}, calls[0].Args)
	assert.Equal(t, "Hello, world", store.Snapshot().ScriptItems[0].Title)
}

func TestUnregisteredKeywordSearches(t *testing.T) {
	svc, store, fake := newService(t)

	tick := run(t, svc.SetQuery("calc 2+2"))
	assert.Equal(t, mode.Launcher(), store.Snapshot().Mode)

	run(t, svc.HandleTimer(tick.(timer.Expired)))
	calls := fake.Calls("Search")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"calc 2+2"}, calls[0].Args)
	assert.Equal(t, 0, fake.CallCount("ExecuteScript"))
}

func TestModeChangeClearsList(t *testing.T) {
	svc, store, fake := newService(t, domain.ScriptEntry{Keyword: "hello"})
	fake.Results["hel"] = []domain.ResultItem{app("Help")}

	svc.SetQuery("hel")
	svc.Apply(run(t, svc.SearchNow()).(Loaded))
	require.Len(t, store.Snapshot().Results, 1)

	svc.SetQuery("hello ")
	snap := store.Snapshot()
	assert.Equal(t, mode.KindScript, snap.Mode.Kind)
	assert.Empty(t, snap.Results)
}

func TestClipboardModeIsSticky(t *testing.T) {
	svc, store, fake := newService(t, domain.ScriptEntry{Keyword: "hello"})
	fake.Clipboard = []domain.ClipboardItem{
		{ID: 2, Content: "hello there"},
		{ID: 1, Content: "general kenobi"},
	}

	svc.Apply(run(t, svc.EnterClipboard()).(Loaded))
	require.Len(t, store.Snapshot().Results, 2)

	tick := run(t, svc.SetQuery("hello"))
	assert.Equal(t, mode.Clipboard(), store.Snapshot().Mode)

	svc.Apply(run(t, svc.HandleTimer(tick.(timer.Expired))).(Loaded))
	snap := store.Snapshot()
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "copy:hello there", snap.Results[0].Exec)
	assert.Equal(t, 0, fake.CallCount("ExecuteScript"))
}

func TestFillSearchesImmediately(t *testing.T) {
	svc, store, fake := newService(t)

	msg := run(t, svc.Fill("install ~/bin/"))
	_, ok := msg.(Loaded)
	require.True(t, ok)
	assert.Equal(t, "install ~/bin/", store.Snapshot().Query)
	assert.Equal(t, 1, fake.CallCount("Search"))
}

func TestFilterClipboard(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local)
	history := []domain.ClipboardItem{
		{ID: 3, Content: "line one\nline two", Timestamp: ts},
		{ID: 2, Content: "Password123"},
		{ID: 1, Content: "another line"},
	}

	got := FilterClipboard(history, "LINE", 0)
	require.Len(t, got, 2)
	assert.Equal(t, "line one line two", got[0].Title)
	assert.Equal(t, "copy:line one\nline two", got[0].Exec)
	assert.Equal(t, []int{0, 1, 2, 3}, got[0].MatchIndices)
	assert.Equal(t, "Mar 1 09:30", got[0].Subtitle)
	assert.Equal(t, domain.SourceClipboard, got[1].Source)

	assert.Len(t, FilterClipboard(history, "", 2), 2)
}

func TestFilterClipboardIndicesFollowTitleRunes(t *testing.T) {
	history := []domain.ClipboardItem{{ID: 1, Content: "İstanbul trip"}}

	got := FilterClipboard(history, "stan", 0)
	require.Len(t, got, 1)
	assert.Equal(t, []int{1, 2, 3, 4}, got[0].MatchIndices)

	title := []rune(got[0].Title)
	assert.Equal(t, "stan", string(title[1:5]))
}

func TestSubstringIndicesCaseFolding(t *testing.T) {
	assert.Equal(t, []int{2, 3}, substringIndices("ÄÖÜé", "üÉ"))
	assert.Equal(t, []int{0, 1}, substringIndices("İİx", "İİ"))
	assert.Nil(t, substringIndices("abc", "abcd"))
	assert.Nil(t, substringIndices("abc", ""))
}
