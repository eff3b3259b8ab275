package services

import (
	"context"
	"net/http"
	"time"

	"github.com/platefull/storefront/internal/models"
)

type CartClient struct {
	httpClient
}

func NewCartClient(baseURL string, timeout time.Duration) *CartClient {
	return &CartClient{httpClient: newHTTPClient(baseURL, timeout)}
}

func (c *CartClient) List(ctx context.Context) ([]models.LineItem, error) {
	var items []models.LineItem
	if err := c.doJSON(ctx, http.MethodGet, "/cart", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *CartClient) Add(ctx context.Context, item models.LineItem) error {
	payload := struct {
		DishID   string              `json:"dish_id"`
		Quantity int                 `json:"quantity"`
		Options  []models.DishOption `json:"options"`
	}{item.DishID, item.Quantity, item.Options}
	return c.doJSON(ctx, http.MethodPost, "/cart/items", payload, nil)
}

func (c *CartClient) Remove(ctx context.Context, dishID string, options []models.DishOption) error {
	payload := struct {
		DishID  string              `json:"dish_id"`
		Options []models.DishOption `json:"options"`
	}{dishID, options}
	return c.doJSON(ctx, http.MethodPost, "/cart/items/remove", payload, nil)
}

func (c *CartClient) Clear(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/cart", nil, nil)
}
