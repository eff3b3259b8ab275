package repositories

import (
	"context"

	"github.com/platefull/storefront/internal/models"
)

// ReceiptRepository persists per-order checkout outcomes for support and
// dispute lookups. Persistence is best-effort: checkout never fails because a
// receipt could not be saved.
type ReceiptRepository interface {
	BulkCreate(ctx context.Context, receipts []*models.Receipt) error
	Create(ctx context.Context, receipt *models.Receipt) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Receipt, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Receipt, error)
	Count(ctx context.Context) (int, error)
}
