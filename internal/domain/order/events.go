package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced          = "OrderPlaced"
	EventOrderStatusChanged   = "OrderStatusChanged"
	EventPaymentStatusChanged = "PaymentStatusChanged"
)

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Event is the envelope written to the event stream, keyed by order ID.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	OrderID   string          `json:"orderId"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewEvent(eventType, orderID string, payload any, at time.Time) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		OrderID:   orderID,
		Data:      data,
		Timestamp: at,
	}, nil
}

func (e Event) EventType() string {
	return e.Type
}

type OrderPlaced struct {
	OrderID     string          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      string          `json:"userId"`
	Email       string          `json:"email,omitempty"`
	Items       []Item          `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Shipping    decimal.Decimal `json:"shipping"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	PlacedAt    time.Time       `json:"placedAt"`
}

type OrderStatusChanged struct {
	OrderID           string     `json:"orderId"`
	OrderNumber       string     `json:"orderNumber"`
	UserID            string     `json:"userId"`
	Email             string     `json:"email,omitempty"`
	Status            Status     `json:"status"`
	TrackingNumber    string     `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	ChangedAt         time.Time  `json:"changedAt"`
}

type PaymentStatusChanged struct {
	OrderID       string        `json:"orderId"`
	OrderNumber   string        `json:"orderNumber"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	ChangedAt     time.Time     `json:"changedAt"`
}
