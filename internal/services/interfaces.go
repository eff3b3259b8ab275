// Package services wraps the remote collaborators the storefront consumes:
// the cart listing/mutation service, the per-dish estimate service and the
// order service. The client tolerates their failure modes but owns none of
// their consistency guarantees.
package services

import (
	"context"

	"github.com/platefull/storefront/internal/models"
)

// CartService is the remote cart boundary. There is no quantity-update call;
// quantity changes are emulated client-side by a clear-and-reinsert rebuild.
type CartService interface {
	List(ctx context.Context) ([]models.LineItem, error)
	Add(ctx context.Context, item models.LineItem) error
	Remove(ctx context.Context, dishID string, options []models.DishOption) error
	Clear(ctx context.Context) error
}

// EstimateService prices one dish per call.
type EstimateService interface {
	Estimate(ctx context.Context, req models.EstimateRequest) (models.Estimate, error)
}

// OrderService creates and pays orders. Pay may fail independently of Create;
// the client reports a failed payment but never retries creation.
type OrderService interface {
	Create(ctx context.Context, req models.OrderRequest) (models.CreatedOrder, error)
	Pay(ctx context.Context, orderID string) (models.PaymentResult, error)
}
