package activation

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
	"vanta/internal/ui/services/results"
	"vanta/internal/ui/state"
	"vanta/internal/ui/timer"
)

func newDispatcher(t *testing.T) (*Dispatcher, *state.Store, *backendtest.Fake) {
	t.Helper()
	store := state.NewStore()
	fake := backendtest.New()
	res := results.NewService(store, fake, mode.NewRegistry(), time.Millisecond)
	return New(store, fake, fake, res, time.Millisecond), store, fake
}

func settle(t *testing.T, d *Dispatcher, cmd tea.Cmd) (timer.Expired, bool) {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(Settled)
	require.True(t, ok)
	grace, hide := d.Settle(msg)
	require.NotNil(t, grace)
	return grace().(timer.Expired), hide
}

func TestLaunchHidesOnSuccess(t *testing.T) {
	d, store, fake := newDispatcher(t)

	cmd := d.Activate(domain.ResultItem{Source: domain.SourceApplication, Title: "Firefox", Exec: "firefox %u"})
	assert.True(t, store.Snapshot().ActionInFlight, "guard set before the call runs")

	expired, hide := settle(t, d, cmd)
	assert.True(t, hide)
	assert.Equal(t, []string{"firefox %u"}, fake.Calls("LaunchApp")[0].Args)
	assert.True(t, store.Snapshot().ActionInFlight, "guard held until grace elapses")

	assert.True(t, d.HandleTimer(expired))
	assert.False(t, store.Snapshot().ActionInFlight)
}

func TestReentrancyGuard(t *testing.T) {
	d, _, fake := newDispatcher(t)
	item := domain.ResultItem{Source: domain.SourceApplication, Exec: "firefox"}

	first := d.Activate(item)
	second := d.Activate(item)
	require.NotNil(t, first)
	assert.Nil(t, second)

	settle(t, d, first)
	assert.Equal(t, 1, fake.CallCount("LaunchApp"))
}

func TestLateSettleKeepsNewSession(t *testing.T) {
	d, store, _ := newDispatcher(t)
	store.Mutate("open", func(st *state.SessionState) { st.SessionID = "first" })

	cmd := d.Activate(domain.ResultItem{Source: domain.SourceApplication, Exec: "slow-app"})
	require.NotNil(t, cmd)
	msg, ok := cmd().(Settled)
	require.True(t, ok)
	assert.Equal(t, "first", msg.SessionID)

	store.Mutate("reopen", func(st *state.SessionState) {
		st.SessionID = "second"
		st.Query = "new query"
	})

	grace, hide := d.Settle(msg)
	require.NotNil(t, grace)
	assert.False(t, hide)
	assert.Equal(t, "new query", store.Snapshot().Query)
}

func TestFailureKeepsSessionAndReleasesAfterGrace(t *testing.T) {
	d, store, fake := newDispatcher(t)
	fake.LaunchFunc = func(context.Context, string) error { return errors.New("not found") }
	store.Mutate("setup", func(st *state.SessionState) { st.Query = "fire" })

	expired, hide := settle(t, d, d.Activate(domain.ResultItem{Exec: "nope"}))
	assert.False(t, hide)
	assert.Equal(t, "fire", store.Snapshot().Query)

	require.True(t, d.HandleTimer(expired))
	assert.NotNil(t, d.Activate(domain.ResultItem{Exec: "nope"}), "retry allowed after grace")
}

func TestCopyWritesClipboard(t *testing.T) {
	d, _, fake := newDispatcher(t)

	_, hide := settle(t, d, d.Activate(domain.ResultItem{Source: domain.SourceCalculator, Exec: "copy:4"}))
	assert.True(t, hide)
	assert.Equal(t, []string{"4"}, fake.Copied)
}

func TestCopyFailureDoesNotHide(t *testing.T) {
	d, _, fake := newDispatcher(t)
	fake.CopyErr = errors.New("no display")

	_, hide := settle(t, d, d.Activate(domain.ResultItem{Exec: "copy:4"}))
	assert.False(t, hide)
}

func TestInstallStaysOpenWithStatus(t *testing.T) {
	d, store, fake := newDispatcher(t)

	cmd := d.Activate(domain.ResultItem{Source: domain.SourceFile, Exec: "install:/tmp/weather.sh"})
	assert.Equal(t, "Installing weather.sh…", store.Snapshot().Status)

	_, hide := settle(t, d, cmd)
	assert.False(t, hide)
	assert.Equal(t, []string{"/tmp/weather.sh"}, fake.Calls("InstallScript")[0].Args)
	assert.Equal(t, "Installed weather.sh", store.Snapshot().Status)
}

func TestFillReplacesQueryWithoutGuard(t *testing.T) {
	d, store, fake := newDispatcher(t)

	cmd := d.Activate(domain.ResultItem{Source: domain.SourceFile, Exec: "fill:install ~/dl/"})
	require.NotNil(t, cmd)
	_, isLoaded := cmd().(results.Loaded)
	assert.True(t, isLoaded)

	snap := store.Snapshot()
	assert.Equal(t, "install ~/dl/", snap.Query)
	assert.False(t, snap.ActionInFlight)
	assert.Equal(t, 1, fake.CallCount("Search"))
}

func TestContinueOnlyForContinuationItems(t *testing.T) {
	d, _, _ := newDispatcher(t)

	assert.Nil(t, d.Continue(domain.ResultItem{Exec: "firefox"}))
	assert.NotNil(t, d.Continue(domain.ResultItem{Exec: "fill:/home/"}))
	assert.NotNil(t, d.Continue(domain.ResultItem{Exec: "install:/tmp/a.sh"}))
}

func TestFileItemOpens(t *testing.T) {
	d, _, fake := newDispatcher(t)

	settle(t, d, d.Activate(domain.ResultItem{Source: domain.SourceFile, Exec: "/home/u/a.pdf"}))
	assert.Equal(t, 1, fake.CallCount("OpenPath"))
	assert.Equal(t, 0, fake.CallCount("LaunchApp"))
}

func TestScriptItemActions(t *testing.T) {
	tests := []struct {
		name   string
		action *domain.ScriptAction
		method string
		arg    string
	}{
		{"copy", &domain.ScriptAction{Type: domain.ScriptCopy, Value: "42°C"}, "WriteAll", "42°C"},
		{"open url", &domain.ScriptAction{Type: domain.ScriptOpen, Value: "https://wttr.in"}, "OpenURL", "https://wttr.in"},
		{"open path", &domain.ScriptAction{Type: domain.ScriptOpen, Value: "/tmp/report.txt"}, "OpenPath", "/tmp/report.txt"},
		{"run", &domain.ScriptAction{Type: domain.ScriptRun, Value: "notify-send hi"}, "LaunchApp", "notify-send hi"},
		{"unknown type", &domain.ScriptAction{Type: "copyy", Value: "rm -rf ~/tmp"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, store, fake := newDispatcher(t)
			if tt.method == "" {
				assert.Nil(t, d.ActivateScriptItem(domain.ScriptItem{Title: "x", Action: tt.action}))
				assert.False(t, store.Snapshot().ActionInFlight)
				for _, m := range []string{"LaunchApp", "OpenPath", "OpenURL", "WriteAll"} {
					assert.Zero(t, fake.CallCount(m), m)
				}
				return
			}
			_, hide := settle(t, d, d.ActivateScriptItem(domain.ScriptItem{Title: "x", Action: tt.action}))
			assert.True(t, hide)
			calls := fake.Calls(tt.method)
			require.Len(t, calls, 1)
			assert.Equal(t, []string{tt.arg}, calls[0].Args)
		})
	}
}

func TestScriptItemWithoutActionIsNoop(t *testing.T) {
	d, store, _ := newDispatcher(t)
	assert.Nil(t, d.ActivateScriptItem(domain.ScriptItem{Title: "info"}))
	assert.False(t, store.Snapshot().ActionInFlight)
}

func TestSecondaryActionExec(t *testing.T) {
	d, _, fake := newDispatcher(t)

	settle(t, d, d.ActivateExec("copy:/home/u/a.pdf", domain.SourceFile))
	assert.Equal(t, []string{"/home/u/a.pdf"}, fake.Copied)
}
