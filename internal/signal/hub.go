// Package signal provides the in-process broadcast channel between stores.
// It replaces hidden global event dispatch with an explicit subscriber list:
// delivery is synchronous and in subscription order, so a publisher's caller
// observes every subscriber's reaction before the publishing call returns.
package signal

import "sync"

// Hub broadcasts values of type T to its subscribers.
type Hub[T any] struct {
	mu          sync.Mutex
	nextID      int
	subscribers []subscription[T]
}

type subscription[T any] struct {
	id      int
	handler func(T)
}

// NewHub creates a hub with no subscribers.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{}
}

// Subscribe registers handler and returns a function that removes it.
// Unsubscribing twice is safe.
func (h *Hub[T]) Subscribe(handler func(T)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subscribers = append(h.subscribers, subscription[T]{id: id, handler: handler})
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, sub := range h.subscribers {
			if sub.id == id {
				h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers event to every subscriber synchronously, in subscription
// order. Handlers run outside the hub lock so they may subscribe or
// unsubscribe without deadlocking.
func (h *Hub[T]) Publish(event T) {
	h.mu.Lock()
	handlers := make([]func(T), len(h.subscribers))
	for i, sub := range h.subscribers {
		handlers[i] = sub.handler
	}
	h.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}
