// Package events provides a minimal synchronous publish/subscribe bus used
// to observe structural changes in a store. It is a collaborator of the
// storage core, not part of it: core invariants never depend on delivery.
package events

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrNilHandler is returned when subscribing with a nil handler.
var ErrNilHandler = errors.New("event handler must not be nil")

// Handler consumes one published event.
type Handler[T any] func(T)

// Subscription identifies one active handler registration.
type Subscription struct {
	id     uuid.UUID
	cancel func()
	active atomic.Bool
}

// ID returns the unique id of the subscription.
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool {
	return s.active.Load()
}

// Cancel removes the handler from the bus. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s.active.CompareAndSwap(true, false) {
		s.cancel()
	}
}

// Bus is a thread-safe in-memory event bus. Publish is synchronous: handlers
// run on the publishing goroutine, in unspecified order.
type Bus[T any] struct {
	mu        sync.RWMutex
	handlers  map[uuid.UUID]Handler[T]
	published atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{
		handlers: make(map[uuid.UUID]Handler[T]),
	}
}

// Subscribe registers a handler for every published event. A nil handler
// fails fast with ErrNilHandler.
func (b *Bus[T]) Subscribe(handler Handler[T]) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	id := uuid.New()

	b.mu.Lock()
	b.handlers[id] = handler
	b.mu.Unlock()

	sub := &Subscription{
		id: id,
		cancel: func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		},
	}
	sub.active.Store(true)
	return sub, nil
}

// Publish delivers the event to every active handler.
func (b *Bus[T]) Publish(event T) {
	b.mu.RLock()
	handlers := make([]Handler[T], 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	b.published.Add(1)
	for _, h := range handlers {
		h(event)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Published returns the total number of events delivered so far.
func (b *Bus[T]) Published() uint64 {
	return b.published.Load()
}
