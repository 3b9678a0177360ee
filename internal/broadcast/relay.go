package broadcast

import (
	"context"
	"log"
	"sync"
	"time"
)

// Sink is an external destination for lifecycle events, such as a message broker.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

// Relay forwards events to a Sink from a single worker goroutine so that
// Publish never waits on the network. A full queue drops the event and a
// failed delivery is logged, not retried.
type Relay struct {
	name    string
	sink    Sink
	timeout time.Duration
	queue   chan Event
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewRelay starts a relay with a queue of the given size.
func NewRelay(name string, sink Sink, buffer int) *Relay {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	r := &Relay{
		name:    name,
		sink:    sink,
		timeout: 5 * time.Second,
		queue:   make(chan Event, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Relay) run() {
	defer close(r.done)
	for e := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.sink.Deliver(ctx, e); err != nil {
			log.Printf("relay %s: failed to deliver %s for order %s: %v", r.name, e.Type, e.OrderID, err)
		}
		cancel()
	}
}

// Publish enqueues e for delivery.
func (r *Relay) Publish(e Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- e:
	default:
		log.Printf("relay %s: queue full, dropped %s for order %s", r.name, e.Type, e.OrderID)
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (r *Relay) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()
	<-r.done
}
