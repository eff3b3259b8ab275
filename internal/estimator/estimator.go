// Package estimator aggregates per-dish delivery estimates into a cart-level
// one. The backend prices one dish at a time, so the aggregator issues one
// call per selected line item, sequentially, and combines the results.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/platefull/storefront/internal/models"
	"github.com/platefull/storefront/internal/services"
)

// ErrSuperseded is returned when a newer estimate request started while this
// one was in flight. The stale result must not reach the caller's state.
var ErrSuperseded = errors.New("estimate superseded by newer input")

// ErrNoItems is returned when the selected set is empty.
var ErrNoItems = errors.New("no selected items to estimate")

// Input is everything an aggregate estimate depends on. Any change to any
// field warrants a re-estimate.
type Input struct {
	Items        []models.LineItem
	Lat          float64
	Lon          float64
	DeliveryType string
	PromoCode    string
}

type Aggregator struct {
	estimates  services.EstimateService
	generation uint64
}

func New(estimates services.EstimateService) *Aggregator {
	return &Aggregator{estimates: estimates}
}

// Estimate prices the selected items sequentially. The calls are deliberately
// not parallel: the promo code is a single-use field that must reach exactly
// the first call and be omitted from the rest. Prices aggregate by summation;
// cooking time by maximum. A single per-item failure discards the whole
// aggregate, since a partial price would be actively misleading.
func (a *Aggregator) Estimate(ctx context.Context, in Input) (models.Estimate, error) {
	if len(in.Items) == 0 {
		return models.Estimate{}, ErrNoItems
	}

	gen := atomic.AddUint64(&a.generation, 1)

	var agg models.Estimate
	for i, item := range in.Items {
		req := models.EstimateRequest{
			DishID:       item.DishID,
			Quantity:     item.Quantity,
			Options:      item.Options,
			Lat:          in.Lat,
			Lon:          in.Lon,
			DeliveryType: in.DeliveryType,
		}
		if i == 0 {
			req.PromoCode = in.PromoCode
		}

		est, err := a.estimates.Estimate(ctx, req)
		if err != nil {
			return models.Estimate{}, fmt.Errorf("estimate for dish %s: %w", item.DishID, err)
		}
		if atomic.LoadUint64(&a.generation) != gen {
			return models.Estimate{}, ErrSuperseded
		}

		agg.DeliveryPrice += est.DeliveryPrice
		agg.TotalPrice += est.TotalPrice
		if est.EstimatedCookingTime > agg.EstimatedCookingTime {
			agg.EstimatedCookingTime = est.EstimatedCookingTime
		}
	}

	// A final check so a request superseded after its last call still yields
	// no observable aggregate.
	if atomic.LoadUint64(&a.generation) != gen {
		return models.Estimate{}, ErrSuperseded
	}
	return agg, nil
}
