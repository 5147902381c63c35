// ABOUTME: Typed event bus with subscriber management for decoupled components
// ABOUTME: Supports subscribe/unsubscribe with goroutine-safe delivery

package notify

import "sync"

// Handler is a callback function for events.
type Handler[T any] func(T)

// Bus is a typed event bus that delivers events to registered handlers in
// subscription order.
type Bus[T any] struct {
	mu       sync.RWMutex
	handlers map[int]Handler[T]
	order    []int
	nextID   int
}

// New creates a new event bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{
		handlers: make(map[int]Handler[T]),
	}
}

// Subscribe registers a handler and returns an unsubscribe function.
func (b *Bus[T]) Subscribe(handler Handler[T]) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
			b.mu.Unlock()
		})
	}
}

// Publish sends an event to all registered handlers synchronously.
func (b *Bus[T]) Publish(event T) {
	b.mu.RLock()
	// Snapshot so a handler may unsubscribe itself.
	snapshot := make([]Handler[T], 0, len(b.order))
	for _, id := range b.order {
		snapshot = append(snapshot, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(event)
	}
}

// Count returns the number of registered handlers.
func (b *Bus[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
