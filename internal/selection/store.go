// Package selection holds the checkout selection overlay: the set of line-item
// keys currently excluded from the next checkout, partitioned by scope. The
// durable store is the single source of truth and the broadcast channel is the
// invalidation signal; consumers never touch the underlying storage directly.
package selection

import (
	"context"
	"encoding/json"
	"log"
	"sort"

	"github.com/platefull/storefront/internal/broadcast"
	"github.com/platefull/storefront/internal/kvstore"
)

const storagePrefix = "storefront:deselected:"

// Store records which composite keys are deselected per scope. Absence means
// selected: an item is part of the next checkout unless its key is in the
// scope's deselected set. A scope whose set becomes empty is deleted outright
// so that "no overlay" and "empty overlay" are indistinguishable to consumers.
type Store struct {
	kv kvstore.Store
	bc broadcast.Broadcaster
}

func New(kv kvstore.Store, bc broadcast.Broadcaster) *Store {
	return &Store{kv: kv, bc: bc}
}

func storageKey(scope string) string {
	return storagePrefix + scope
}

// Deselected returns the scope's current deselected set.
func (s *Store) Deselected(ctx context.Context, scope string) map[string]struct{} {
	raw, ok, err := s.kv.Get(ctx, storageKey(scope))
	if err != nil {
		// Storage is advisory, not authoritative; treat a failed read as an
		// absent overlay.
		log.Printf("selection: read failed for scope %q: %v", scope, err)
		return map[string]struct{}{}
	}
	if !ok {
		return map[string]struct{}{}
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		log.Printf("selection: malformed overlay for scope %q: %v", scope, err)
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// IsSelected reports whether key participates in the next checkout.
func (s *Store) IsSelected(ctx context.Context, scope, key string) bool {
	_, deselected := s.Deselected(ctx, scope)[key]
	return !deselected
}

// SetSelected includes or excludes key and broadcasts the resulting set. The
// writer's own subscriptions receive the broadcast too.
func (s *Store) SetSelected(ctx context.Context, scope, key string, selected bool) {
	set := s.Deselected(ctx, scope)
	if selected {
		delete(set, key)
	} else {
		set[key] = struct{}{}
	}
	s.persist(ctx, scope, set)
	s.announce(ctx, scope, set)
}

// Prune drops every deselected key not present in liveKeys. Called whenever
// the cart's key set changes so the overlay never references items that no
// longer exist. Broadcasts only when something actually changed.
func (s *Store) Prune(ctx context.Context, scope string, liveKeys map[string]struct{}) {
	set := s.Deselected(ctx, scope)
	changed := false
	for k := range set {
		if _, live := liveKeys[k]; !live {
			delete(set, k)
			changed = true
		}
	}
	if !changed {
		return
	}
	s.persist(ctx, scope, set)
	s.announce(ctx, scope, set)
}

// Clear removes the scope's overlay entirely. Idempotent: clearing an already
// absent scope changes nothing and stays silent.
func (s *Store) Clear(ctx context.Context, scope string) {
	s.Prune(ctx, scope, map[string]struct{}{})
}

// Subscribe invokes fn with the full deselected set on every change to the
// given scope. Broadcasts for other scopes are filtered out. The returned
// function cancels the subscription.
func (s *Store) Subscribe(scope string, fn func(deselected map[string]struct{})) (cancel func()) {
	want := storageKey(scope)
	return s.bc.Subscribe(func(msg broadcast.Message) {
		if msg.Key != want {
			return
		}
		var keys []string
		if err := json.Unmarshal(msg.Value, &keys); err != nil {
			log.Printf("selection: malformed broadcast for scope %q: %v", scope, err)
			return
		}
		set := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			set[k] = struct{}{}
		}
		fn(set)
	})
}

// persist writes the set, deleting the entry when it is empty. Write failures
// are swallowed: durable storage here survives reloads but the broadcast value
// is what live consumers act on.
func (s *Store) persist(ctx context.Context, scope string, set map[string]struct{}) {
	key := storageKey(scope)
	if len(set) == 0 {
		if err := s.kv.Delete(ctx, key); err != nil {
			log.Printf("selection: delete failed for scope %q: %v", scope, err)
		}
		return
	}
	if err := s.kv.Set(ctx, key, encode(set)); err != nil {
		log.Printf("selection: write failed for scope %q: %v", scope, err)
	}
}

func (s *Store) announce(ctx context.Context, scope string, set map[string]struct{}) {
	msg := broadcast.Message{Key: storageKey(scope), Value: encode(set)}
	if err := s.bc.Publish(ctx, msg); err != nil {
		log.Printf("selection: broadcast failed for scope %q: %v", scope, err)
	}
}

func encode(set map[string]struct{}) []byte {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	raw, _ := json.Marshal(keys)
	return raw
}
