// Package events fans "tasks changed" signals out to open web UIs so they
// re-poll instead of waiting for their next scheduled fetch.
package events

import (
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"mood-journal-backend/internal/logging"
)

const TypeUpdated = "updated"

type Event struct {
	Type   string    `json:"type"`
	Source string    `json:"source,omitempty"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// Bus is an in-process publish/subscribe hub. Delivery is best effort: a
// subscriber whose buffer is full misses the event and catches up on its
// next poll.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	buffer int
	closed bool
	log    hclog.Logger
}

func NewBus(log hclog.Logger) *Bus {
	return &Bus{
		subs:   make(map[int]chan Event),
		buffer: 16,
		log:    logging.OrDiscard(log),
	}
}

// Publish never blocks.
func (b *Bus) Publish(e Event) {
	if e.Type == "" {
		e.Type = TypeUpdated
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.log.Debug("dropping event for slow subscriber", "subscriber", id, "type", e.Type)
		}
	}
}

// Subscribe registers a listener. The returned cancel func unregisters it and
// closes the channel; it is safe to call more than once. Subscribing to a
// closed bus returns an already closed channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Close ends every open subscription. Streams waiting on the bus return.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Subscribers reports the number of active listeners.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
