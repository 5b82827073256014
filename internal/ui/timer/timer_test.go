package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expire(t *testing.T, tm *Timer) Expired {
	t.Helper()
	cmd := tm.Restart()
	require.NotNil(t, cmd)
	msg, ok := cmd().(Expired)
	require.True(t, ok)
	return msg
}

func TestRestartSupersedesPrevious(t *testing.T) {
	tm := New("debounce", time.Millisecond)

	first := expire(t, tm)
	second := expire(t, tm)

	assert.False(t, tm.Fire(first))
	assert.True(t, tm.Fire(second))
	assert.False(t, tm.Fire(second), "fires only once")
}

func TestCancel(t *testing.T) {
	tm := New("grace", time.Millisecond)
	msg := expire(t, tm)

	tm.Cancel()
	assert.False(t, tm.Pending())
	assert.False(t, tm.Fire(msg))
}

func TestFireIgnoresOtherTimers(t *testing.T) {
	a := New("a", 0)
	b := New("b", 0)

	msg := expire(t, a)
	expire(t, b)

	assert.False(t, b.Fire(msg))
	assert.True(t, a.Fire(msg))
}

func TestSetDelay(t *testing.T) {
	tm := New("x", time.Second)
	tm.SetDelay(-5)
	assert.Equal(t, time.Duration(0), tm.Delay())
	tm.SetDelay(40 * time.Millisecond)
	assert.Equal(t, 40*time.Millisecond, tm.Delay())
}
