// Package cartops mutates the remote cart. The cart service exposes no
// quantity-update call, so every quantity change or removal is emulated by
// rebuilding the whole cart: compute the desired end state, clear the remote
// cart, and re-add every surviving item in list order.
package cartops

import (
	"context"
	"errors"
	"fmt"

	"github.com/platefull/storefront/internal/cartkey"
	"github.com/platefull/storefront/internal/models"
	"github.com/platefull/storefront/internal/selection"
	"github.com/platefull/storefront/internal/services"
	"github.com/platefull/storefront/internal/telemetry"
)

// ErrItemNotFound is returned when no cart line matches the given key.
var ErrItemNotFound = errors.New("no cart item matches the given key")

type Coordinator struct {
	cart      services.CartService
	selection *selection.Store
	events    *telemetry.Recorder
}

func New(cart services.CartService, sel *selection.Store, events *telemetry.Recorder) *Coordinator {
	return &Coordinator{cart: cart, selection: sel, events: events}
}

// SetQuantity changes one line's quantity, clamped to its allowed range, and
// returns the post-rebuild item list. A rebuild that fails midway leaves the
// remote cart with whatever subset was re-added; the next List is ground truth
// and no partial list is retried here.
func (c *Coordinator) SetQuantity(ctx context.Context, scope, key string, quantity int) ([]models.LineItem, error) {
	items, err := c.cart.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read cart before rebuild: %w", err)
	}

	found := false
	next := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		if cartkey.ForItem(item) == key {
			found = true
			item.Quantity = item.ClampQuantity(quantity)
		}
		next = append(next, item)
	}
	if !found {
		return nil, ErrItemNotFound
	}

	if err := c.rebuild(ctx, scope, next); err != nil {
		return nil, err
	}
	c.events.CartRebuilt("quantity_change", len(next))
	return next, nil
}

// Remove drops every line matching key and returns the post-rebuild list.
func (c *Coordinator) Remove(ctx context.Context, scope, key string) ([]models.LineItem, error) {
	items, err := c.cart.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read cart before rebuild: %w", err)
	}

	found := false
	next := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		if cartkey.ForItem(item) == key {
			found = true
			continue
		}
		next = append(next, item)
	}
	if !found {
		return nil, ErrItemNotFound
	}

	if err := c.rebuild(ctx, scope, next); err != nil {
		return nil, err
	}
	c.events.CartRebuilt("removal", len(next))
	return next, nil
}

// rebuild is the clear-and-reinsert sequence. It is the only mutation path;
// concurrent rebuilds from independent surfaces race at the granularity of
// the remote calls and the last one to finish wins.
func (c *Coordinator) rebuild(ctx context.Context, scope string, next []models.LineItem) error {
	if err := c.cart.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	for _, item := range next {
		if err := c.cart.Add(ctx, item); err != nil {
			return fmt.Errorf("re-add dish %s: %w", item.DishID, err)
		}
	}
	c.selection.Prune(ctx, scope, cartkey.KeySet(next))
	return nil
}
