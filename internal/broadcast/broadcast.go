// Package broadcast is the invalidation channel between independent storefront
// surfaces. Payloads always carry the storage key plus the full new value,
// never a delta, so subscribers replace their local mirror wholesale and can
// never drift from the persisted state.
package broadcast

import (
	"context"
	"encoding/json"
	"sync"
)

// Message is a full-value change notification for one storage key.
type Message struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type Handler func(msg Message)

type Broadcaster interface {
	Publish(ctx context.Context, msg Message) error
	// Subscribe registers a handler for every published message; the handler
	// filters by key itself. The returned function cancels the subscription.
	Subscribe(handler Handler) (cancel func())
}

// ChannelBroadcaster fans messages out to in-process subscribers. One process
// corresponds to one storefront surface group; the writer's own subscriptions
// receive its messages too, so a surface never needs to special-case its echo.
type ChannelBroadcaster struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
}

func NewChannelBroadcaster() *ChannelBroadcaster {
	return &ChannelBroadcaster{handlers: make(map[int]Handler)}
}

func (b *ChannelBroadcaster) Publish(_ context.Context, msg Message) error {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	// Deliver outside the lock; a handler may subscribe or publish again.
	for _, h := range handlers {
		h(msg)
	}
	return nil
}

func (b *ChannelBroadcaster) Subscribe(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}
