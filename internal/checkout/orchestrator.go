// Package checkout turns one checkout action into N independent backend
// orders: one order per selected line item, created and paid sequentially,
// with per-order failure isolation. Afterward the remote cart and the
// selection overlay are reconciled to what was actually ordered.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lucsky/cuid"
	"github.com/platefull/storefront/internal/cartkey"
	"github.com/platefull/storefront/internal/models"
	"github.com/platefull/storefront/internal/repositories"
	"github.com/platefull/storefront/internal/selection"
	"github.com/platefull/storefront/internal/services"
	"github.com/platefull/storefront/internal/telemetry"
)

// ErrValidation wraps every local pre-flight failure. Nothing has reached a
// collaborator when it is returned.
var ErrValidation = errors.New("checkout validation failed")

// ErrNothingSelected is returned when every cart line is deselected.
var ErrNothingSelected = errors.New("checkout validation failed: no items selected")

type BuyerDetails struct {
	Name          string
	Phone         string
	AgreedToTerms bool
}

type DeliveryDetails struct {
	Address      string
	Lat          float64
	Lon          float64
	DeliveryType string
	PromoCode    string
}

// OrderOutcome is the client-observed end state of one line item's order.
// Status follows creating -> created -> paying -> paid/pay_failed; a failed
// create stops at create_failed with no ID. A failed payment is terminal here:
// retry, if offered, is a separate user action against the created order.
type OrderOutcome struct {
	CompositeKey string
	DishID       string
	OrderID      string
	ClientRef    string
	Status       string
	Err          string
}

type Result struct {
	Orders []OrderOutcome
}

type Orchestrator struct {
	cart      services.CartService
	orders    services.OrderService
	selection *selection.Store
	receipts  repositories.ReceiptRepository // nil disables receipt persistence
	events    *telemetry.Recorder
}

func New(cart services.CartService, orders services.OrderService, sel *selection.Store, receipts repositories.ReceiptRepository, events *telemetry.Recorder) *Orchestrator {
	return &Orchestrator{cart: cart, orders: orders, selection: sel, receipts: receipts, events: events}
}

// Checkout validates locally, places one order per selected line item, then
// reconciles the remote cart and the selection overlay. The per-item loop is
// deliberately sequential: creation for item i+1 never starts before the
// payment attempt for item i has resolved, which bounds the promo code to one
// order and keeps every failure attributable to a single unit of work.
func (o *Orchestrator) Checkout(ctx context.Context, scope string, buyer BuyerDetails, delivery DeliveryDetails) (Result, error) {
	if err := validate(buyer, delivery); err != nil {
		return Result{}, err
	}

	items, err := o.cart.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read cart: %w", err)
	}

	var selected, unselected []models.LineItem
	for _, item := range items {
		if o.selection.IsSelected(ctx, scope, cartkey.ForItem(item)) {
			selected = append(selected, item)
		} else {
			unselected = append(unselected, item)
		}
	}
	if len(selected) == 0 {
		return Result{}, ErrNothingSelected
	}
	for _, item := range selected {
		if clamped := item.ClampQuantity(item.Quantity); clamped != item.Quantity {
			return Result{}, fmt.Errorf("%w: quantity %d for dish %s outside allowed range", ErrValidation, item.Quantity, item.DishID)
		}
	}

	o.events.CheckoutStarted(scope, len(selected))

	result := Result{Orders: make([]OrderOutcome, 0, len(selected))}
	for i, item := range selected {
		result.Orders = append(result.Orders, o.placeOrder(ctx, buyer, delivery, item, i == 0))
	}

	o.saveReceipts(ctx, result.Orders, selected)
	o.reconcile(ctx, scope, items, selected, unselected)

	return result, nil
}

// placeOrder runs one line item through create and pay. Errors are captured in
// the outcome, never propagated: a failed unit must not abort its siblings.
func (o *Orchestrator) placeOrder(ctx context.Context, buyer BuyerDetails, delivery DeliveryDetails, item models.LineItem, first bool) OrderOutcome {
	outcome := OrderOutcome{
		CompositeKey: cartkey.ForItem(item),
		DishID:       item.DishID,
		ClientRef:    cuid.New(),
		Status:       models.OrderStatusCreating,
	}

	req := models.OrderRequest{
		BuyerName:    buyer.Name,
		BuyerPhone:   buyer.Phone,
		DishID:       item.DishID,
		Quantity:     item.Quantity,
		Options:      item.Options,
		Address:      delivery.Address,
		Lat:          delivery.Lat,
		Lon:          delivery.Lon,
		DeliveryType: delivery.DeliveryType,
		ClientRef:    outcome.ClientRef,
	}
	// The promo code is a single-use field; only the first order carries it.
	if first {
		req.PromoCode = delivery.PromoCode
	}

	created, err := o.orders.Create(ctx, req)
	if err != nil {
		outcome.Status = models.OrderStatusCreateFailed
		outcome.Err = services.UserMessage(err)
		log.Printf("checkout: order creation failed for dish %s: %v", item.DishID, err)
		return outcome
	}
	outcome.OrderID = created.ID
	outcome.Status = models.OrderStatusPaying
	o.events.OrderCreated(created.ID, item.DishID, outcome.CompositeKey, item.Quantity)

	if _, err := o.orders.Pay(ctx, created.ID); err != nil {
		outcome.Status = models.OrderStatusPayFailed
		outcome.Err = services.UserMessage(err)
		log.Printf("checkout: payment failed for order %s: %v", created.ID, err)
		o.events.OrderPayment(created.ID, outcome.Status, outcome.Err)
		return outcome
	}

	outcome.Status = models.OrderStatusPaid
	o.events.OrderPayment(created.ID, outcome.Status, "")
	return outcome
}

// reconcile removes ordered items from the remote cart. When everything was
// selected the cart is cleared in one call; otherwise each selected line is
// removed individually by key. That fork mirrors the backend's coarse surface
// and is behavior, not an optimization: a full clear and N removes leave
// different carts when another surface mutated the cart mid-checkout.
func (o *Orchestrator) reconcile(ctx context.Context, scope string, all, selected, unselected []models.LineItem) {
	if len(selected) == len(all) {
		if err := o.cart.Clear(ctx); err != nil {
			// Not retried; the next cart read is ground truth.
			log.Printf("checkout: cart clear after checkout failed: %v", err)
		}
		o.events.CartReconciled(true, 0)
		o.selection.Clear(ctx, scope)
		return
	}

	removed := 0
	for _, item := range selected {
		if err := o.cart.Remove(ctx, item.DishID, item.Options); err != nil {
			log.Printf("checkout: removing dish %s after checkout failed: %v", item.DishID, err)
			continue
		}
		removed++
	}
	o.events.CartReconciled(false, removed)
	o.selection.Prune(ctx, scope, cartkey.KeySet(unselected))
}

// saveReceipts persists outcomes best-effort; a storage fault only logs.
func (o *Orchestrator) saveReceipts(ctx context.Context, outcomes []OrderOutcome, items []models.LineItem) {
	if o.receipts == nil {
		return
	}
	receipts := make([]*models.Receipt, 0, len(outcomes))
	for i, outcome := range outcomes {
		receipts = append(receipts, &models.Receipt{
			OrderID:      outcome.OrderID,
			ClientRef:    outcome.ClientRef,
			DishID:       outcome.DishID,
			CompositeKey: outcome.CompositeKey,
			Quantity:     items[i].Quantity,
			PayStatus:    outcome.Status,
			PayError:     outcome.Err,
			CreatedAt:    time.Now().UTC(),
		})
	}
	if err := o.receipts.BulkCreate(ctx, receipts); err != nil {
		log.Printf("checkout: saving receipts failed: %v", err)
	}
}

func validate(buyer BuyerDetails, delivery DeliveryDetails) error {
	switch {
	case buyer.Name == "":
		return fmt.Errorf("%w: buyer name is required", ErrValidation)
	case buyer.Phone == "":
		return fmt.Errorf("%w: buyer phone is required", ErrValidation)
	case !buyer.AgreedToTerms:
		return fmt.Errorf("%w: terms must be accepted", ErrValidation)
	case delivery.Address == "":
		return fmt.Errorf("%w: delivery address is required", ErrValidation)
	case delivery.Lat == 0 && delivery.Lon == 0:
		return fmt.Errorf("%w: delivery coordinates are required", ErrValidation)
	case delivery.DeliveryType == "":
		return fmt.Errorf("%w: delivery type is required", ErrValidation)
	}
	return nil
}
