package models

// EstimateRequest prices a single dish. The backend accepts one dish per call;
// the promo code is a single-use text field honoured on at most one call per
// aggregate estimate.
type EstimateRequest struct {
	DishID       string       `json:"dish_id"`
	Quantity     int          `json:"quantity"`
	Options      []DishOption `json:"options"`
	Lat          float64      `json:"lat"`
	Lon          float64      `json:"lon"`
	DeliveryType string       `json:"delivery_type"`
	PromoCode    string       `json:"promo_code,omitempty"`
}

// Estimate is a per-call or aggregated delivery estimate. Aggregates sum the
// prices and take the maximum cooking time (the buyer waits for the slowest
// dish, not the sum of cook times).
type Estimate struct {
	DeliveryPrice        float64 `json:"delivery_price"`
	TotalPrice           float64 `json:"total_price"`
	EstimatedCookingTime int     `json:"estimated_cooking_time_minutes"`
}
