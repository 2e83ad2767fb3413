package events

import (
	"slices"
	"sync"
)

// Bus delivers published events to every subscriber, synchronously and in
// subscription order. The first Publish drains the queue on its own
// goroutine; a Publish that finds a delivery already in flight, whether
// from inside a handler or from another goroutine, only enqueues its event
// and returns, leaving delivery to the draining goroutine.
//
// Handlers may therefore publish further events without deadlocking, and a
// handler never observes events out of order. The cost is that a concurrent
// publisher gets no completion guarantee for its handlers; callers that
// publish from several goroutines must use handlers that tolerate that (the
// state manager locks its Update for this reason).
type Bus struct {
	mu         sync.Mutex
	subs       []func(Event)
	queue      []Event
	delivering bool

	// onPublish, if set, is called once per published event before
	// delivery. Used for metrics.
	onPublish func(Event)
}

// New creates an empty event bus.
func New() *Bus {
	return &Bus{}
}

// OnPublish registers a hook invoked for every published event. Must be
// called before any Publish.
func (b *Bus) OnPublish(hook func(Event)) {
	b.mu.Lock()
	b.onPublish = hook
	b.mu.Unlock()
}

// Subscribe registers a handler for all events, for the life of the process.
// Handlers run in subscription order and must not block.
func (b *Bus) Subscribe(handler func(Event)) {
	b.mu.Lock()
	b.subs = append(b.subs, handler)
	b.mu.Unlock()
}

// Publish delivers event to every subscriber before returning, unless a
// delivery is already in flight. In that case, whether this call came from
// inside a handler or from another goroutine, the event is queued and
// delivered by the draining Publish once the current event's handlers
// finish, and this call returns immediately.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	if b.onPublish != nil {
		b.onPublish(event)
	}
	b.queue = append(b.queue, event)
	if b.delivering {
		b.mu.Unlock()
		return
	}
	b.delivering = true
	for len(b.queue) > 0 {
		next := b.queue[0]
		b.queue = b.queue[1:]
		subs := slices.Clone(b.subs)
		b.mu.Unlock()
		for _, handler := range subs {
			handler(next)
		}
		b.mu.Lock()
	}
	b.delivering = false
	b.mu.Unlock()
}

// SubscribeTo registers a handler for a single event variant.
func SubscribeTo[E Event](b *Bus, handler func(E)) {
	b.Subscribe(func(event Event) {
		if e, ok := event.(E); ok {
			handler(e)
		}
	})
}
