package service

import "sync"

// Event is a trigger consumed by the sync job.
type Event int

const (
	// EventConnectivityRestored fires when the device regains network.
	EventConnectivityRestored Event = iota
	// EventConnectivityLost fires when the device loses network.
	EventConnectivityLost
	// EventVisibilityRestored fires when the app returns to the foreground.
	EventVisibilityRestored
)

// TriggerBus is the in-process pub/sub channel between the platform event
// sources (connectivity watcher, window visibility) and the sync job.
// Publish never blocks: a subscriber that cannot keep up loses events rather
// than stalling the publisher.
type TriggerBus struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewTriggerBus returns an empty bus.
func NewTriggerBus() *TriggerBus {
	return &TriggerBus{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new buffered subscription channel.
func (b *TriggerBus) Subscribe() chan Event {
	ch := make(chan Event, 8)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	return ch
}

// Unsubscribe removes the channel from the bus. Pending events stay readable;
// the channel is not closed so late reads never panic.
func (b *TriggerBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Publish delivers the event to every subscriber, dropping it for
// subscribers with a full buffer.
func (b *TriggerBus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
