package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/platefull/storefront/internal/broadcast"
	"github.com/platefull/storefront/internal/cartkey"
	"github.com/platefull/storefront/internal/kvstore"
	"github.com/platefull/storefront/internal/models"
	"github.com/platefull/storefront/internal/selection"
)

type fakeCart struct {
	items []models.LineItem
	calls []string
}

func (f *fakeCart) List(context.Context) ([]models.LineItem, error) {
	f.calls = append(f.calls, "list")
	out := make([]models.LineItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeCart) Add(_ context.Context, item models.LineItem) error {
	f.calls = append(f.calls, "add:"+item.DishID)
	f.items = append(f.items, item)
	return nil
}

func (f *fakeCart) Remove(_ context.Context, dishID string, options []models.DishOption) error {
	key := cartkey.Build(dishID, options)
	f.calls = append(f.calls, "remove:"+key)
	kept := make([]models.LineItem, 0, len(f.items))
	for _, item := range f.items {
		if cartkey.ForItem(item) != key {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeCart) Clear(context.Context) error {
	f.calls = append(f.calls, "clear")
	f.items = nil
	return nil
}

type fakeOrders struct {
	nextID      int
	calls       []string
	failCreate  map[string]bool // dish IDs whose create fails
	failPay     map[string]bool // order IDs whose pay fails
	createSeen  []models.OrderRequest
	payAttempts []string
}

func (f *fakeOrders) Create(_ context.Context, req models.OrderRequest) (models.CreatedOrder, error) {
	f.calls = append(f.calls, "create:"+req.DishID)
	f.createSeen = append(f.createSeen, req)
	if f.failCreate[req.DishID] {
		return models.CreatedOrder{}, errors.New("restaurant offline")
	}
	f.nextID++
	return models.CreatedOrder{ID: fmt.Sprintf("order-%d", f.nextID)}, nil
}

func (f *fakeOrders) Pay(_ context.Context, orderID string) (models.PaymentResult, error) {
	f.calls = append(f.calls, "pay:"+orderID)
	f.payAttempts = append(f.payAttempts, orderID)
	if f.failPay[orderID] {
		return models.PaymentResult{}, errors.New("card declined")
	}
	return models.PaymentResult{Status: "paid"}, nil
}

func validBuyer() BuyerDetails {
	return BuyerDetails{Name: "Ada Byron", Phone: "+44 20 7946 0101", AgreedToTerms: true}
}

func validDelivery() DeliveryDetails {
	return DeliveryDetails{Address: "1 Canal St", Lat: 51.5, Lon: -0.12, DeliveryType: "courier"}
}

func cartWith(items ...models.LineItem) *fakeCart {
	return &fakeCart{items: items}
}

func defaultItems() []models.LineItem {
	return []models.LineItem{
		{DishID: "dishA", Quantity: 2, MinQuantity: 1},
		{DishID: "dishA", Quantity: 1, MinQuantity: 1, Options: []models.DishOption{{Name: "topping X", Price: 1}}},
		{DishID: "dishB", Quantity: 1, MinQuantity: 1},
	}
}

func newOrchestrator(cart *fakeCart, orders *fakeOrders) (*Orchestrator, *selection.Store) {
	sel := selection.New(kvstore.NewMemoryStore(), broadcast.NewChannelBroadcaster())
	return New(cart, orders, sel, nil, nil), sel
}

func TestValidationFailsBeforeAnyNetworkCall(t *testing.T) {
	cart := cartWith(defaultItems()...)
	orders := &fakeOrders{}
	orch, _ := newOrchestrator(cart, orders)
	ctx := context.Background()

	cases := []struct {
		name     string
		buyer    BuyerDetails
		delivery DeliveryDetails
	}{
		{"missing name", BuyerDetails{Phone: "1", AgreedToTerms: true}, validDelivery()},
		{"missing phone", BuyerDetails{Name: "A", AgreedToTerms: true}, validDelivery()},
		{"missing consent", BuyerDetails{Name: "A", Phone: "1"}, validDelivery()},
		{"missing address", validBuyer(), DeliveryDetails{Lat: 1, Lon: 1, DeliveryType: "courier"}},
		{"missing coords", validBuyer(), DeliveryDetails{Address: "x", DeliveryType: "courier"}},
	}
	for _, tc := range cases {
		_, err := orch.Checkout(ctx, "cart", tc.buyer, tc.delivery)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: got %v, want ErrValidation", tc.name, err)
		}
	}
	if len(cart.calls)+len(orders.calls) != 0 {
		t.Errorf("validation failures reached collaborators: cart=%v orders=%v", cart.calls, orders.calls)
	}
}

func TestEmptySelectionFailsLocally(t *testing.T) {
	cart := cartWith(defaultItems()...)
	orders := &fakeOrders{}
	orch, sel := newOrchestrator(cart, orders)
	ctx := context.Background()

	for _, item := range defaultItems() {
		sel.SetSelected(ctx, "cart", cartkey.ForItem(item), false)
	}

	_, err := orch.Checkout(ctx, "cart", validBuyer(), validDelivery())
	if !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("got %v, want ErrNothingSelected", err)
	}
	if len(orders.calls) != 0 {
		t.Error("no orders may be created when nothing is selected")
	}
}

func TestOneOrderPerSelectedLineItem(t *testing.T) {
	cart := cartWith(defaultItems()...)
	orders := &fakeOrders{}
	orch, _ := newOrchestrator(cart, orders)

	result, err := orch.Checkout(context.Background(), "cart", validBuyer(), validDelivery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Orders) != 3 {
		t.Fatalf("expected 3 orders for 3 selected items, got %d", len(result.Orders))
	}
	for _, outcome := range result.Orders {
		if outcome.Status != models.OrderStatusPaid {
			t.Errorf("order %s ended in %s, want paid", outcome.OrderID, outcome.Status)
		}
	}
}

func TestPaymentFailureDoesNotAbortSiblings(t *testing.T) {
	cart := cartWith(defaultItems()[:2]...)
	orders := &fakeOrders{failPay: map[string]bool{"order-1": true}}
	orch, _ := newOrchestrator(cart, orders)

	result, err := orch.Checkout(context.Background(), "cart", validBuyer(), validDelivery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Orders) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(result.Orders))
	}

	first, second := result.Orders[0], result.Orders[1]
	if first.Status != models.OrderStatusPayFailed {
		t.Errorf("first order status = %s, want pay_failed", first.Status)
	}
	if first.OrderID == "" {
		t.Error("failed payment must still report the created order's ID")
	}
	if first.Err == "" {
		t.Error("failed payment must carry its error")
	}
	if second.Status != models.OrderStatusPaid || second.Err != "" {
		t.Errorf("second order = %s/%q, want paid with no error", second.Status, second.Err)
	}
}

func TestCreateFailureIsIsolatedToo(t *testing.T) {
	cart := cartWith(defaultItems()...)
	orders := &fakeOrders{failCreate: map[string]bool{"dishB": true}}
	orch, _ := newOrchestrator(cart, orders)

	result, err := orch.Checkout(context.Background(), "cart", validBuyer(), validDelivery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var failed, paid int
	for _, outcome := range result.Orders {
		switch outcome.Status {
		case models.OrderStatusCreateFailed:
			failed++
			if outcome.OrderID != "" {
				t.Error("failed create must not carry an order ID")
			}
		case models.OrderStatusPaid:
			paid++
		}
	}
	if failed != 1 || paid != 2 {
		t.Errorf("got %d failed / %d paid, want 1 / 2", failed, paid)
	}
}

func TestCreationIsStrictlySequentialWithPayment(t *testing.T) {
	cart := cartWith(defaultItems()[:2]...)
	orders := &fakeOrders{}
	orch, _ := newOrchestrator(cart, orders)

	_, err := orch.Checkout(context.Background(), "cart", validBuyer(), validDelivery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"create:dishA", "pay:order-1", "create:dishA", "pay:order-2"}
	if len(orders.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", orders.calls, want)
	}
	for i := range want {
		if orders.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (full: %v)", i, orders.calls[i], want[i], orders.calls)
		}
	}
}

func TestPromoCodeGoesToFirstOrderOnly(t *testing.T) {
	cart := cartWith(defaultItems()...)
	orders := &fakeOrders{}
	orch, _ := newOrchestrator(cart, orders)

	delivery := validDelivery()
	delivery.PromoCode = "FREESHIP"
	_, err := orch.Checkout(context.Background(), "cart", validBuyer(), delivery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if orders.createSeen[0].PromoCode != "FREESHIP" {
		t.Error("first order missing promo code")
	}
	for i, req := range orders.createSeen[1:] {
		if req.PromoCode != "" {
			t.Errorf("order %d carries promo code %q", i+1, req.PromoCode)
		}
	}
}

func TestFullSelectionReconcilesWithSingleClear(t *testing.T) {
	cart := cartWith(defaultItems()...)
	orders := &fakeOrders{}
	orch, _ := newOrchestrator(cart, orders)

	_, err := orch.Checkout(context.Background(), "cart", validBuyer(), validDelivery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var clears, removes int
	for _, call := range cart.calls {
		switch {
		case call == "clear":
			clears++
		case len(call) > 7 && call[:7] == "remove:":
			removes++
		}
	}
	if clears != 1 || removes != 0 {
		t.Errorf("full selection: %d clears / %d removes, want 1 / 0", clears, removes)
	}
	if len(cart.items) != 0 {
		t.Error("cart not empty after full-selection checkout")
	}
}

func TestPartialSelectionRemovesOnlySelectedKeys(t *testing.T) {
	items := defaultItems()
	cart := cartWith(items...)
	orders := &fakeOrders{}
	orch, sel := newOrchestrator(cart, orders)
	ctx := context.Background()

	// Deselect the plain dishA line; its optioned sibling stays selected.
	plainKey := cartkey.ForItem(items[0])
	sel.SetSelected(ctx, "cart", plainKey, false)

	_, err := orch.Checkout(ctx, "cart", validBuyer(), validDelivery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, call := range cart.calls {
		if call == "clear" {
			t.Fatal("partial selection must never issue a full clear")
		}
	}
	if len(cart.items) != 1 {
		t.Fatalf("expected 1 unselected item left in cart, got %d", len(cart.items))
	}
	if cartkey.ForItem(cart.items[0]) != plainKey {
		t.Error("wrong item survived reconciliation")
	}
}

func TestSelectionOverlayPrunedAfterCheckout(t *testing.T) {
	items := defaultItems()
	cart := cartWith(items...)
	orders := &fakeOrders{}
	orch, sel := newOrchestrator(cart, orders)
	ctx := context.Background()

	plainKey := cartkey.ForItem(items[0])
	sel.SetSelected(ctx, "cart", plainKey, false)

	_, err := orch.Checkout(ctx, "cart", validBuyer(), validDelivery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deselected := sel.Deselected(ctx, "cart")
	if _, ok := deselected[plainKey]; !ok {
		t.Error("still-present unselected key must survive the prune")
	}
	for k := range deselected {
		if k != plainKey {
			t.Errorf("overlay references ordered key %q after checkout", k)
		}
	}
}
