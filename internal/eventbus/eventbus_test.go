package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/domain"
)

func TestPublishDeliversInOrder(t *testing.T) {
	b := New()
	defer b.Close()

	got := make(chan int, 3)
	b.Subscribe(EventAppsChanged, func(e DomainEvent) {
		got <- e.(domain.AppsChangedEvent).Count
	})

	for i := 1; i <= 3; i++ {
		b.Publish(domain.AppsChangedEvent{Count: i})
	}

	for want := 1; want <= 3; want++ {
		select {
		case n := <-got:
			assert.Equal(t, want, n)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	defer b.Close()

	first := make(chan struct{}, 4)
	second := make(chan struct{}, 4)
	unsub := b.Subscribe(EventWindowFocusRegained, func(DomainEvent) { first <- struct{}{} })
	b.Subscribe(EventWindowFocusRegained, func(DomainEvent) { second <- struct{}{} })

	unsub()
	b.Publish(domain.WindowFocusRegainedEvent{})

	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber not called")
	}
	assert.Len(t, first, 0)
}

func TestHandlerPanicDoesNotStopBus(t *testing.T) {
	b := New()
	defer b.Close()

	done := make(chan struct{}, 1)
	b.Subscribe(EventOpenClipboard, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventOpenClipboard, func(DomainEvent) { done <- struct{}{} })

	b.Publish(domain.OpenClipboardEvent{})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler after panic not called")
	}
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	b := New()
	b.Close()
	require.NotPanics(t, func() { b.Publish(domain.OpenClipboardEvent{}) })
	require.NotPanics(t, b.Close)
}
