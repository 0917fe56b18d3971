package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status. Any known status may follow
// any other; the storefront only conventionally moves
// pending -> processing -> shipped -> delivered.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Address is a postal address used for shipping or billing.
type Address struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Validate checks the required address fields. prefix qualifies the field
// name in the returned error, e.g. "shippingAddress".
func (a Address) Validate(prefix string) error {
	required := []struct {
		name  string
		value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"line1", a.Line1},
		{"city", a.City},
		{"postalCode", a.PostalCode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: prefix + "." + f.name, Reason: "is required"}
		}
	}
	return nil
}

// Item is an order line with the price captured at cart time.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

type Order struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"orderNumber"`
	UserID            string          `json:"userId"`
	Items             []Item          `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Shipping          decimal.Decimal `json:"shipping"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
	Currency          string          `json:"currency"`
	Status            Status          `json:"status"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
	PaymentMethod     string          `json:"paymentMethod"`
	ShippingMethod    string          `json:"shippingMethod"`
	ShippingAddress   Address         `json:"shippingAddress"`
	BillingAddress    Address         `json:"billingAddress"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Update is a partial order update. Nil fields are left unchanged.
type Update struct {
	Status            *Status
	PaymentStatus     *PaymentStatus
	TrackingNumber    *string
	EstimatedDelivery *time.Time
	ShippingAddress   *Address
	BillingAddress    *Address
	UpdatedAt         time.Time
}

// Apply merges u into o.
func (u Update) Apply(o *Order) {
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}
	if u.TrackingNumber != nil {
		o.TrackingNumber = *u.TrackingNumber
	}
	if u.EstimatedDelivery != nil {
		t := *u.EstimatedDelivery
		o.EstimatedDelivery = &t
	}
	if u.ShippingAddress != nil {
		o.ShippingAddress = *u.ShippingAddress
	}
	if u.BillingAddress != nil {
		o.BillingAddress = *u.BillingAddress
	}
	if !u.UpdatedAt.IsZero() {
		o.UpdatedAt = u.UpdatedAt
	}
}

// Store is the order persistence collaborator.
type Store interface {
	// CreateOrder persists o and returns it with its ID assigned.
	CreateOrder(ctx context.Context, o *Order) (*Order, error)
	UpdateOrder(ctx context.Context, id string, u Update) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	// ListOrders returns the orders of userID, or every order when userID is empty.
	ListOrders(ctx context.Context, userID string) ([]*Order, error)
}
