// Package telemetry emits storefront events to a configurable sink. Emission
// is best-effort: a sink failure is logged and never fails the user operation
// that produced the event.
package telemetry

import (
	"encoding/json"
	"log"
	"time"
)

// BaseEvent is the common structure for all events
type BaseEvent struct {
	Timestamp int64  `json:"timestamp"`
	EventType string `json:"eventType"`
}

type CartRebuiltEvent struct {
	BaseEvent
	Reason    string `json:"reason"` // quantity_change or removal
	ItemCount int    `json:"itemCount"`
}

type CheckoutStartedEvent struct {
	BaseEvent
	Scope         string `json:"scope"`
	SelectedCount int    `json:"selectedCount"`
}

type OrderCreatedEvent struct {
	BaseEvent
	OrderID      string `json:"orderId"`
	DishID       string `json:"dishId"`
	CompositeKey string `json:"compositeKey"`
	Quantity     int    `json:"quantity"`
}

type OrderPaymentEvent struct {
	BaseEvent
	OrderID  string `json:"orderId"`
	Status   string `json:"status"`
	PayError string `json:"payError,omitempty"`
}

type CartReconciledEvent struct {
	BaseEvent
	FullClear    bool `json:"fullClear"`
	RemovedCount int  `json:"removedCount"`
}

type Recorder struct {
	sink Sink
}

// NewRecorder wraps a sink; a nil sink yields a recorder that drops events,
// so callers can hold a *Recorder unconditionally.
func NewRecorder(sink Sink) *Recorder {
	return &Recorder{sink: sink}
}

func (r *Recorder) emit(topic string, event interface{}) {
	if r == nil || r.sink == nil {
		return
	}
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error serializing event: %v", err)
		return
	}
	if err := r.sink.WriteMessage(topic, msg); err != nil {
		log.Printf("Failed to write message: %v", err)
	}
}

func base(eventType string) BaseEvent {
	return BaseEvent{Timestamp: time.Now().Unix(), EventType: eventType}
}

func (r *Recorder) CartRebuilt(reason string, itemCount int) {
	r.emit("cart_rebuild_events", CartRebuiltEvent{
		BaseEvent: base("CartRebuilt"),
		Reason:    reason,
		ItemCount: itemCount,
	})
}

func (r *Recorder) CheckoutStarted(scope string, selectedCount int) {
	r.emit("checkout_events", CheckoutStartedEvent{
		BaseEvent:     base("CheckoutStarted"),
		Scope:         scope,
		SelectedCount: selectedCount,
	})
}

func (r *Recorder) OrderCreated(orderID, dishID, compositeKey string, quantity int) {
	r.emit("order_events", OrderCreatedEvent{
		BaseEvent:    base("OrderCreated"),
		OrderID:      orderID,
		DishID:       dishID,
		CompositeKey: compositeKey,
		Quantity:     quantity,
	})
}

func (r *Recorder) OrderPayment(orderID, status, payError string) {
	r.emit("order_payment_events", OrderPaymentEvent{
		BaseEvent: base("OrderPayment"),
		OrderID:   orderID,
		Status:    status,
		PayError:  payError,
	})
}

func (r *Recorder) CartReconciled(fullClear bool, removedCount int) {
	r.emit("cart_reconcile_events", CartReconciledEvent{
		BaseEvent:    base("CartReconciled"),
		FullClear:    fullClear,
		RemovedCount: removedCount,
	})
}
