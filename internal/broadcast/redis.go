package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBroadcaster propagates change notifications across processes through a
// single Redis pub/sub channel. Used when storefront surfaces run in separate
// processes sharing a Redis-backed overlay store.
type RedisBroadcaster struct {
	rdb     *redis.Client
	channel string

	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
	pubsub   *redis.PubSub
}

func NewRedisBroadcaster(ctx context.Context, rdb *redis.Client, channel string) *RedisBroadcaster {
	b := &RedisBroadcaster{
		rdb:      rdb,
		channel:  channel,
		handlers: make(map[int]Handler),
	}
	b.pubsub = rdb.Subscribe(ctx, channel)
	go b.receive()
	return b
}

func (b *RedisBroadcaster) receive() {
	for raw := range b.pubsub.Channel() {
		var msg Message
		if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
			log.Printf("broadcast: dropping malformed message on %s: %v", b.channel, err)
			continue
		}
		b.mu.Lock()
		handlers := make([]Handler, 0, len(b.handlers))
		for _, h := range b.handlers {
			handlers = append(handlers, h)
		}
		b.mu.Unlock()
		for _, h := range handlers {
			h(msg)
		}
	}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBroadcaster) Subscribe(handler Handler) func() {
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

func (b *RedisBroadcaster) Close() error {
	return b.pubsub.Close()
}
