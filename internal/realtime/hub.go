// Package realtime fans change events out to connected subscribers.
package realtime

import (
	"sync"

	"github.com/staffdesk/staffdesk/internal/records"
	"github.com/staffdesk/staffdesk/pkg/metrics"
)

// Hub is the subscription registry. Connect and disconnect are the only
// transitions; no subscriber state survives a disconnect, and events
// published before a subscriber connects are never delivered to it.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

// Subscriber is one connected real-time client.
type Subscriber struct {
	send chan records.Event
}

// C returns the subscriber's receive channel. It is closed on Unsubscribe.
func (s *Subscriber) C() <-chan records.Event { return s.send }

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscriber]struct{})}
}

// Subscribe registers a new subscriber with the given send buffer.
func (h *Hub) Subscribe(buf int) *Subscriber {
	if buf <= 0 {
		buf = 1
	}
	sub := &Subscriber{send: make(chan records.Event, buf)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	metrics.ConnectedSubscribers.Set(float64(n))
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Safe to call
// more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	if ok {
		delete(h.subs, sub)
	}
	n := len(h.subs)
	h.mu.Unlock()
	if ok {
		close(sub.send)
	}
	metrics.ConnectedSubscribers.Set(float64(n))
}

// Publish delivers the event to every connected subscriber. Delivery is
// best-effort: a subscriber whose buffer is full misses the event rather than
// blocking the mutation path.
func (h *Hub) Publish(evt records.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.send <- evt:
		default:
			metrics.EventsDropped.Inc()
		}
	}
}

// Len reports the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
