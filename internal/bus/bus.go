// Package bus provides an in-process publish/subscribe channel for map
// events. Subscriptions return explicit cancel functions so listeners can
// be removed when a view is torn down.
package bus

import "sync"

// Event is a single published notification.
type Event struct {
	Topic   string
	Mission string // owning mission identifier, may be empty
	Payload interface{}
}

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id int
	fn Handler
}

// Bus is a topic-keyed synchronous event bus. Handlers for a topic are
// invoked in subscription order, on the publisher's goroutine.
type Bus struct {
	mu     sync.Mutex
	nextID int
	topics map[string][]subscription
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{topics: make(map[string][]subscription)}
}

// Subscribe registers a handler for a topic and returns a cancel function.
// Calling cancel more than once is safe.
func (b *Bus) Subscribe(topic string, fn Handler) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs := b.topics[topic]
			for i, s := range subs {
				if s.id == id {
					b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers an event to every handler subscribed to its topic.
// Handlers run outside the bus lock, so they may subscribe or cancel.
func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	subs := b.topics[evt.Topic]
	handlers := make([]Handler, len(subs))
	for i, s := range subs {
		handlers[i] = s.fn
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(evt)
	}
}

// SubscriberCount returns the number of active subscriptions for a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}
