package estimator

import (
	"context"
	"errors"
	"testing"

	"github.com/platefull/storefront/internal/models"
)

type fakeEstimateService struct {
	byDish   map[string]models.Estimate
	failDish string
	requests []models.EstimateRequest
	onCall   func(n int)
}

func (f *fakeEstimateService) Estimate(_ context.Context, req models.EstimateRequest) (models.Estimate, error) {
	f.requests = append(f.requests, req)
	if f.onCall != nil {
		f.onCall(len(f.requests))
	}
	if req.DishID == f.failDish {
		return models.Estimate{}, errors.New("kitchen closed")
	}
	return f.byDish[req.DishID], nil
}

func twoItems() []models.LineItem {
	return []models.LineItem{
		{DishID: "dishA", Quantity: 1},
		{DishID: "dishB", Quantity: 2},
	}
}

func TestAggregateSumsPricesAndTakesMaxCookingTime(t *testing.T) {
	svc := &fakeEstimateService{byDish: map[string]models.Estimate{
		"dishA": {DeliveryPrice: 100, TotalPrice: 320, EstimatedCookingTime: 20},
		"dishB": {DeliveryPrice: 150, TotalPrice: 410, EstimatedCookingTime: 35},
	}}
	agg := New(svc)

	got, err := agg.Estimate(context.Background(), Input{Items: twoItems()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DeliveryPrice != 250 {
		t.Errorf("delivery price = %v, want 250", got.DeliveryPrice)
	}
	if got.TotalPrice != 730 {
		t.Errorf("total price = %v, want 730", got.TotalPrice)
	}
	if got.EstimatedCookingTime != 35 {
		t.Errorf("cooking time = %v, want max 35", got.EstimatedCookingTime)
	}
}

func TestPromoCodeAttachedToFirstCallOnly(t *testing.T) {
	svc := &fakeEstimateService{byDish: map[string]models.Estimate{}}
	agg := New(svc)

	_, err := agg.Estimate(context.Background(), Input{Items: twoItems(), PromoCode: "TENOFF"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(svc.requests) != 2 {
		t.Fatalf("expected 2 sequential calls, got %d", len(svc.requests))
	}
	if svc.requests[0].PromoCode != "TENOFF" {
		t.Error("first call missing promo code")
	}
	if svc.requests[1].PromoCode != "" {
		t.Error("promo code leaked into a later call")
	}
}

func TestPerItemFailureDiscardsWholeAggregate(t *testing.T) {
	svc := &fakeEstimateService{
		byDish:   map[string]models.Estimate{"dishA": {DeliveryPrice: 100}},
		failDish: "dishB",
	}
	agg := New(svc)

	got, err := agg.Estimate(context.Background(), Input{Items: twoItems()})
	if err == nil {
		t.Fatal("expected an error when one per-item call fails")
	}
	if got != (models.Estimate{}) {
		t.Errorf("partial aggregate leaked out: %+v", got)
	}
}

func TestSupersededRequestYieldsNoResult(t *testing.T) {
	svc := &fakeEstimateService{byDish: map[string]models.Estimate{}}
	agg := New(svc)

	// Newer input arrives while the first request is between its two calls.
	svc.onCall = func(n int) {
		if n == 1 {
			_, _ = agg.Estimate(context.Background(), Input{Items: twoItems()[:1]})
		}
	}

	_, err := agg.Estimate(context.Background(), Input{Items: twoItems()})
	if !errors.Is(err, ErrSuperseded) {
		t.Errorf("stale request returned %v, want ErrSuperseded", err)
	}
}

func TestEmptySelectionIsRejectedLocally(t *testing.T) {
	svc := &fakeEstimateService{}
	agg := New(svc)

	_, err := agg.Estimate(context.Background(), Input{})
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("got %v, want ErrNoItems", err)
	}
	if len(svc.requests) != 0 {
		t.Error("empty selection must not reach the network")
	}
}
