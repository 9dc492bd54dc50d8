package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemPrice struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

type OrderCreatedPayload struct {
	OrderID         string      `json:"order_id"`
	OrderCode       string      `json:"order_code"`
	CustomerID      string      `json:"customer_id"`
	Items           []ItemPrice `json:"items"`
	TotalCents      int         `json:"total_cents"`
	SkippedProducts []string    `json:"skipped_products,omitempty"`
}

type OrderStatusChangedPayload struct {
	OrderID   string `json:"order_id"`
	OrderCode string `json:"order_code"`
	From      Status `json:"from"`
	To        Status `json:"to"`
}
