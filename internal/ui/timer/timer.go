// Package timer provides single-owner cancellable timers for the bubbletea loop.
//
// A Timer never runs two live countdowns: Restart and Cancel bump a
// generation number and only an Expired message carrying the current
// generation is accepted by Fire.
package timer

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Expired is delivered when a countdown elapses
type Expired struct {
	Name string
	ID   uint64
}

// Timer is owned by exactly one component and must only be used from the Update loop
type Timer struct {
	name  string
	delay time.Duration
	id    uint64
	armed bool
}

// New creates a timer identified by name
func New(name string, delay time.Duration) *Timer {
	return &Timer{name: name, delay: delay}
}

func (t *Timer) Name() string { return t.name }

func (t *Timer) Delay() time.Duration { return t.delay }

// SetDelay changes the delay used by the next Restart
func (t *Timer) SetDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.delay = d
}

// Restart cancels any pending countdown and starts a new one
func (t *Timer) Restart() tea.Cmd {
	t.id++
	t.armed = true
	name, id := t.name, t.id
	return tea.Tick(t.delay, func(time.Time) tea.Msg {
		return Expired{Name: name, ID: id}
	})
}

// Cancel invalidates the pending countdown, if any
func (t *Timer) Cancel() {
	t.id++
	t.armed = false
}

// Pending reports whether a countdown is live
func (t *Timer) Pending() bool { return t.armed }

// Fire reports whether msg is the live countdown of this timer and disarms it
func (t *Timer) Fire(msg Expired) bool {
	if msg.Name != t.name || msg.ID != t.id || !t.armed {
		return false
	}
	t.armed = false
	return true
}
