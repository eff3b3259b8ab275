package models

import "time"

const (
	OrderStatusCreating     = "creating"
	OrderStatusCreateFailed = "create_failed"
	OrderStatusCreated      = "created"
	OrderStatusPaying       = "paying"
	OrderStatusPaid         = "paid"
	OrderStatusPayFailed    = "pay_failed"
)

// OrderRequest is the payload sent to the order service. One order is created
// per line item at checkout, never one per cart.
type OrderRequest struct {
	BuyerName    string       `json:"buyer_name"`
	BuyerPhone   string       `json:"buyer_phone"`
	DishID       string       `json:"dish_id"`
	Quantity     int          `json:"quantity"`
	Options      []DishOption `json:"options"`
	Address      string       `json:"address"`
	Lat          float64      `json:"lat"`
	Lon          float64      `json:"lon"`
	DeliveryType string       `json:"delivery_type"`
	PromoCode    string       `json:"promo_code,omitempty"`
	ClientRef    string       `json:"client_ref"`
}

// CreatedOrder is the order service's acknowledgement of a create call.
type CreatedOrder struct {
	ID string `json:"id"`
}

// PaymentResult is the order service's acknowledgement of a pay call.
type PaymentResult struct {
	Status string `json:"status"`
}

// Receipt is the client-side record of one order's checkout outcome, kept for
// support and dispute lookups.
type Receipt struct {
	OrderID      string    `json:"order_id"`
	ClientRef    string    `json:"client_ref"`
	DishID       string    `json:"dish_id"`
	CompositeKey string    `json:"composite_key"`
	Quantity     int       `json:"quantity"`
	PayStatus    string    `json:"pay_status"`
	PayError     string    `json:"pay_error"`
	CreatedAt    time.Time `json:"created_at"`
}
