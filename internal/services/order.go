package services

import (
	"context"
	"net/http"
	"time"

	"github.com/platefull/storefront/internal/models"
)

type OrderClient struct {
	httpClient
}

func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{httpClient: newHTTPClient(baseURL, timeout)}
}

func (c *OrderClient) Create(ctx context.Context, req models.OrderRequest) (models.CreatedOrder, error) {
	var created models.CreatedOrder
	if err := c.doJSON(ctx, http.MethodPost, "/orders", req, &created); err != nil {
		return models.CreatedOrder{}, err
	}
	return created, nil
}

func (c *OrderClient) Pay(ctx context.Context, orderID string) (models.PaymentResult, error) {
	var result models.PaymentResult
	if err := c.doJSON(ctx, http.MethodPost, "/orders/"+orderID+"/pay", nil, &result); err != nil {
		return models.PaymentResult{}, err
	}
	return result, nil
}
