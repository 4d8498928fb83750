// Package bridge carries "apply this template" signals from the palette (or
// any page-level trigger) to the canvas of one editor session.
package bridge

import (
	"sync"

	"workflowbuilder/domain/core/aggregates"
)

// TemplateEvent is the signal payload
type TemplateEvent struct {
	Template aggregates.Template `json:"template"`
}

// Handler receives template events
type Handler func(TemplateEvent)

// Bus is a typed event emitter scoped to a single editor session.
// Handlers run synchronously on the publisher's goroutine.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]Handler
	order    []uint64
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[uint64]Handler)}
}

// Subscribe registers a handler and returns the function that removes it.
// Calling the returned function more than once is safe.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[id] = h
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// Publish delivers the event to every current subscriber in subscription order.
// It reports how many handlers received it.
func (b *Bus) Publish(e TemplateEvent) int {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		hs = append(hs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
	return len(hs)
}

// Subscribers returns the number of live subscriptions
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.handlers, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}
