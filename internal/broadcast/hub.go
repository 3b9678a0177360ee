package broadcast

import (
	"log"
	"sync"
)

// DefaultBuffer is the per-subscriber queue length used when none is configured.
const DefaultBuffer = 64

// Hub delivers events to every subscription open at publish time.
// Delivery is at-most-once: there is no replay, and a subscriber whose queue
// is full loses the event.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
}

// NewHub creates a hub whose subscriptions queue up to buffer events each.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
	}
}

// Subscription is one session's view of the hub.
type Subscription struct {
	id      uint64
	hub     *Hub
	events  chan Event
	dropped int
	closed  bool
}

// Events returns the channel the subscription receives on. It is closed by Close.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Dropped reports how many events were lost because the queue was full.
func (s *Subscription) Dropped() int {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.dropped
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	delete(s.hub.subs, s.id)
	close(s.events)
}

// Subscribe opens a new subscription. Only events published afterwards are received.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	s := &Subscription{
		id:     h.nextID,
		hub:    h,
		events: make(chan Event, h.buffer),
	}
	h.subs[s.id] = s
	return s
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish enqueues e on every subscription without waiting for any of them.
// Publishes are serialised, so each subscription observes publish order.
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.subs {
		select {
		case s.events <- e:
		default:
			s.dropped++
			log.Printf("broadcast: subscriber %d queue full, dropped %s for order %s", s.id, e.Type, e.OrderID)
		}
	}
}
