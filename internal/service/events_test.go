package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewTriggerBus()
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish(EventConnectivityRestored)

	select {
	case got := <-a:
		assert.Equal(t, EventConnectivityRestored, got)
	case <-time.After(time.Second):
		t.Fatal("subscriber a did not receive the event")
	}
	select {
	case got := <-b:
		assert.Equal(t, EventConnectivityRestored, got)
	case <-time.After(time.Second):
		t.Fatal("subscriber b did not receive the event")
	}
}

func TestTriggerBus_PublishNeverBlocks(t *testing.T) {
	bus := NewTriggerBus()
	ch := bus.Subscribe()

	// overflow the buffer; extra events are dropped, not blocked on
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(EventVisibilityRestored)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	require.Len(t, ch, cap(ch))
}

func TestTriggerBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewTriggerBus()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	bus.Publish(EventConnectivityLost)
	assert.Empty(t, ch)
}
