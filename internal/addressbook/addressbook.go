// Package addressbook persists the buyer's last-known delivery address and
// coordinates, and broadcasts changes to every mounted surface the same way
// the selection overlay does: full value, keyed by a well-known storage key.
package addressbook

import (
	"context"
	"encoding/json"
	"log"

	"github.com/platefull/storefront/internal/broadcast"
	"github.com/platefull/storefront/internal/kvstore"
)

const storageKey = "storefront:delivery_address"

type Address struct {
	Label  string  `json:"label"`
	Street string  `json:"street"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

type Book struct {
	kv kvstore.Store
	bc broadcast.Broadcaster
}

func New(kv kvstore.Store, bc broadcast.Broadcaster) *Book {
	return &Book{kv: kv, bc: bc}
}

// Last returns the stored address and whether one exists.
func (b *Book) Last(ctx context.Context) (Address, bool) {
	raw, ok, err := b.kv.Get(ctx, storageKey)
	if err != nil {
		log.Printf("addressbook: read failed: %v", err)
		return Address{}, false
	}
	if !ok {
		return Address{}, false
	}
	var addr Address
	if err := json.Unmarshal(raw, &addr); err != nil {
		log.Printf("addressbook: malformed stored address: %v", err)
		return Address{}, false
	}
	return addr, true
}

// SetLast stores the address and broadcasts the full new value. Like the
// selection overlay, a failed write still broadcasts the intended value.
func (b *Book) SetLast(ctx context.Context, addr Address) {
	raw, err := json.Marshal(addr)
	if err != nil {
		log.Printf("addressbook: encode failed: %v", err)
		return
	}
	if err := b.kv.Set(ctx, storageKey, raw); err != nil {
		log.Printf("addressbook: write failed: %v", err)
	}
	if err := b.bc.Publish(ctx, broadcast.Message{Key: storageKey, Value: raw}); err != nil {
		log.Printf("addressbook: broadcast failed: %v", err)
	}
}

// Subscribe invokes fn with the full address on every change. The returned
// function cancels the subscription.
func (b *Book) Subscribe(fn func(Address)) (cancel func()) {
	return b.bc.Subscribe(func(msg broadcast.Message) {
		if msg.Key != storageKey {
			return
		}
		var addr Address
		if err := json.Unmarshal(msg.Value, &addr); err != nil {
			log.Printf("addressbook: malformed broadcast: %v", err)
			return
		}
		fn(addr)
	})
}
