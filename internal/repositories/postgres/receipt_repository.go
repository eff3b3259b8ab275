package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/platefull/storefront/internal/models"
)

type ReceiptRepository struct {
	pool *pgxpool.Pool
}

func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{pool: pool}
}

func (r *ReceiptRepository) BulkCreate(ctx context.Context, receipts []*models.Receipt) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	stmt := `
        INSERT INTO receipts (
            order_id, client_ref, dish_id, composite_key, quantity,
            pay_status, pay_error, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, receipt := range receipts {
		_, err = tx.Exec(ctx, stmt,
			receipt.OrderID,
			receipt.ClientRef,
			receipt.DishID,
			receipt.CompositeKey,
			receipt.Quantity,
			receipt.PayStatus,
			receipt.PayError,
			receipt.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	query := `
        INSERT INTO receipts (
            order_id, client_ref, dish_id, composite_key, quantity,
            pay_status, pay_error, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.pool.Exec(ctx, query,
		receipt.OrderID,
		receipt.ClientRef,
		receipt.DishID,
		receipt.CompositeKey,
		receipt.Quantity,
		receipt.PayStatus,
		receipt.PayError,
		receipt.CreatedAt,
	)
	return err
}

func (r *ReceiptRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Receipt, error) {
	query := `
        SELECT order_id, client_ref, dish_id, composite_key, quantity,
               pay_status, pay_error, created_at
        FROM receipts WHERE order_id = $1`

	receipt := &models.Receipt{}
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&receipt.OrderID,
		&receipt.ClientRef,
		&receipt.DishID,
		&receipt.CompositeKey,
		&receipt.Quantity,
		&receipt.PayStatus,
		&receipt.PayError,
		&receipt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return receipt, nil
}

func (r *ReceiptRepository) ListRecent(ctx context.Context, limit int) ([]*models.Receipt, error) {
	query := `
        SELECT order_id, client_ref, dish_id, composite_key, quantity,
               pay_status, pay_error, created_at
        FROM receipts ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*models.Receipt
	for rows.Next() {
		receipt := &models.Receipt{}
		err := rows.Scan(
			&receipt.OrderID,
			&receipt.ClientRef,
			&receipt.DishID,
			&receipt.CompositeKey,
			&receipt.Quantity,
			&receipt.PayStatus,
			&receipt.PayError,
			&receipt.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	return receipts, rows.Err()
}

func (r *ReceiptRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM receipts").Scan(&count)
	return count, err
}
