package services

import (
	"context"
	"net/http"
	"time"

	"github.com/platefull/storefront/internal/models"
)

type EstimateClient struct {
	httpClient
}

func NewEstimateClient(baseURL string, timeout time.Duration) *EstimateClient {
	return &EstimateClient{httpClient: newHTTPClient(baseURL, timeout)}
}

func (c *EstimateClient) Estimate(ctx context.Context, req models.EstimateRequest) (models.Estimate, error) {
	var est models.Estimate
	if err := c.doJSON(ctx, http.MethodPost, "/estimate", req, &est); err != nil {
		return models.Estimate{}, err
	}
	return est, nil
}
