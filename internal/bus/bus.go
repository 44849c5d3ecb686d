// Package bus is a small in-process publish/subscribe dispatcher, keeping
// the socket loops decoupled from the components that react to discovery
// and monitoring events.
package bus

import "sync"

// Event carries one published notification. Kind identifies the topic
// (e.g. "discovery.response", "monitor.response"); Payload is
// kind-specific.
type Event struct {
	Kind    string
	Payload interface{}
}

// Handler processes one Event. Handlers run synchronously on the
// publisher's goroutine, after the subscriber lock has been released, so a
// handler may itself call Subscribe without deadlocking — the
// copy-then-call pattern standing in for a recursive mutex.
type Handler func(Event)

// Bus is a process-wide dispatcher. The zero value is not usable; use New.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]Handler
}

func New() *Bus {
	return &Bus{subs: make(map[string][]Handler)}
}

// Subscribe registers handler for kind. It is not idempotent: every call
// adds a new subscription, so a handler subscribed twice for one kind runs
// twice per event. There is no way to remove a subscription.
func (b *Bus) Subscribe(kind string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[kind] = append(b.subs[kind], handler)
}

// Publish invokes every handler registered for kind. The subscriber slice
// is copied under the lock, then handlers run after the lock is released,
// so a handler that subscribes a new handler for the same kind never
// deadlocks and never observes its own registration mid-dispatch.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	handlers := append([]Handler(nil), b.subs[e.Kind]...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}
