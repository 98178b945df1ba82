// Package bus is the process-wide publish/subscribe mechanism that keeps
// independently-mounted surfaces in sync. Events carry no payload:
// observers must re-read the persisted snapshot, which tolerates both
// missed and duplicated events.
package bus

import (
	"sync"
)

// Topic names a category of persisted state that changed.
type Topic string

const (
	// TopicTimer signals that the timer snapshot (or its absence),
	// pomodoro counts, or duration overrides changed.
	TopicTimer Topic = "timer"

	// TopicTasks signals that task records changed.
	TopicTasks Topic = "tasks"
)

// Event is a payload-free change notification.
type Event struct {
	Topic Topic
}

// Bus fans events out to subscribers. Delivery is best-effort: a
// subscriber that is not draining its channel misses events rather than
// blocking publishers.
type Bus struct {
	subs   map[int]chan Event
	mu     sync.Mutex
	nextID int
}

func New() *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
	}
}

// Subscribe registers an observer. The returned cancel func must be
// called to release the subscription. Only events published after
// subscription are received.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// Publish notifies all current subscribers without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Drop events if the consumer is not ready; the next
			// snapshot re-read picks up the change anyway.
		}
	}
}
