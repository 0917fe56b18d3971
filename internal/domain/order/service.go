package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/inventory"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CartItem is a cart line as the customer saw it, including the price
// captured when the item was added.
type CartItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type PlaceOrderRequest struct {
	Items           []CartItem `json:"items"`
	ShippingAddress Address    `json:"shippingAddress"`
	BillingAddress  Address    `json:"billingAddress"`
	PaymentMethod   string     `json:"paymentMethod"`
	ShippingMethod  string     `json:"shippingMethod"`
}

// Placement is the result of PlaceOrder. The order always exists; stock
// updates that failed afterwards are listed in Warnings.
type Placement struct {
	Order       *Order                 `json:"order"`
	Adjustments []inventory.Adjustment `json:"adjustments"`
	Warnings    []StockUpdateWarning   `json:"warnings"`
}

// PartiallyFailed reports whether any stock update failed.
func (p *Placement) PartiallyFailed() bool {
	return len(p.Warnings) > 0
}

// StockAdjuster decrements product stock after an order is created.
type StockAdjuster interface {
	Decrement(ctx context.Context, productID string, quantity int) (inventory.Adjustment, error)
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithNumberGenerator(gen func(time.Time) string) Option {
	return func(s *Service) { s.newNumber = gen }
}

func WithNumberRegistry(r NumberRegistry) Option {
	return func(s *Service) { s.registry = r }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

type Service struct {
	orders    Store
	stock     StockAdjuster
	cfg       Config
	now       func() time.Time
	newNumber func(time.Time) string
	registry  NumberRegistry
	publisher Publisher
}

func NewService(orders Store, stock StockAdjuster, cfg Config, opts ...Option) *Service {
	s := &Service{
		orders:    orders,
		stock:     stock,
		cfg:       cfg,
		now:       time.Now,
		newNumber: NewOrderNumber,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder creates an order from a cart snapshot and then decrements
// stock for each line. Input and identity are checked before anything is
// written. Stock failures do not undo the order.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (*Placement, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrAuthenticationRequired
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	if err := req.ShippingAddress.Validate("shippingAddress"); err != nil {
		return nil, err
	}
	if err := req.BillingAddress.Validate("billingAddress"); err != nil {
		return nil, err
	}
	method, shipping, err := s.cfg.ShippingFor(req.ShippingMethod)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(req.Items))
	subtotal := decimal.Zero
	for i, ci := range req.Items {
		total := ci.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
		items[i] = Item{
			ProductID: ci.ProductID,
			Name:      ci.Name,
			Price:     ci.Price,
			Quantity:  ci.Quantity,
			Total:     total,
		}
		subtotal = subtotal.Add(total)
	}
	tax := s.cfg.TaxOn(subtotal)

	now := s.now()
	number, err := s.allocateNumber(ctx, now)
	if err != nil {
		return nil, &PersistenceError{Op: "allocate order number", Err: err}
	}

	created, err := s.orders.CreateOrder(ctx, &Order{
		OrderNumber:     number,
		UserID:          userID,
		Items:           items,
		Subtotal:        subtotal,
		Shipping:        shipping,
		Tax:             tax,
		Total:           subtotal.Add(shipping).Add(tax),
		Currency:        s.cfg.Currency,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   req.PaymentMethod,
		ShippingMethod:  method,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		log.Error().Str("component", "order").Str("user_id", userID).Err(err).Msg("order creation failed")
		return nil, &PersistenceError{Op: "create order", Err: err}
	}

	placement := &Placement{
		Order:       created,
		Adjustments: make([]inventory.Adjustment, 0, len(items)),
		Warnings:    []StockUpdateWarning{},
	}
	for _, item := range items {
		adj, err := s.stock.Decrement(ctx, item.ProductID, item.Quantity)
		if err != nil {
			w := StockUpdateWarning{ProductID: item.ProductID, Quantity: item.Quantity, Err: err}
			placement.Warnings = append(placement.Warnings, w)
			log.Warn().Str("component", "order").
				Str("order_id", created.ID).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Err(err).
				Msg("stock update failed, order kept")
			continue
		}
		placement.Adjustments = append(placement.Adjustments, adj)
	}

	s.publish(ctx, EventOrderPlaced, created.ID, OrderPlaced{
		OrderID:     created.ID,
		OrderNumber: created.OrderNumber,
		UserID:      created.UserID,
		Email:       firstNonEmpty(created.BillingAddress.Email, created.ShippingAddress.Email),
		Items:       created.Items,
		Subtotal:    created.Subtotal,
		Shipping:    created.Shipping,
		Tax:         created.Tax,
		Total:       created.Total,
		Currency:    created.Currency,
		PlacedAt:    created.CreatedAt,
	})

	log.Info().Str("component", "order").
		Str("order_id", created.ID).
		Str("order_number", created.OrderNumber).
		Str("total", created.Total.String()).
		Int("stock_warnings", len(placement.Warnings)).
		Msg("order placed")
	return placement, nil
}

// UpdateOrderStatus sets any known status. Shipping an order without a
// tracking number records an estimated delivery date instead.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status Status, trackingNumber string) error {
	if !status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("%q is not a known order status", status)}
	}

	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	now := s.now()
	u := Update{Status: &status, UpdatedAt: now}
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber != "" {
		u.TrackingNumber = &trackingNumber
	} else if status == StatusShipped {
		eta := now.Add(s.cfg.deliveryEstimate())
		u.EstimatedDelivery = &eta
	}

	if err := s.update(ctx, orderID, u); err != nil {
		return err
	}
	u.Apply(o)

	s.publish(ctx, EventOrderStatusChanged, o.ID, OrderStatusChanged{
		OrderID:           o.ID,
		OrderNumber:       o.OrderNumber,
		UserID:            o.UserID,
		Email:             firstNonEmpty(o.BillingAddress.Email, o.ShippingAddress.Email),
		Status:            o.Status,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: o.EstimatedDelivery,
		ChangedAt:         now,
	})
	return nil
}

// UpdatePaymentStatus records the payment outcome reported by the
// payment processor. It is independent of the order status.
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID string, status PaymentStatus) error {
	if !status.Valid() {
		return &ValidationError{Field: "paymentStatus", Reason: fmt.Sprintf("%q is not a known payment status", status)}
	}

	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	now := s.now()
	if err := s.update(ctx, orderID, Update{PaymentStatus: &status, UpdatedAt: now}); err != nil {
		return err
	}

	s.publish(ctx, EventPaymentStatusChanged, o.ID, PaymentStatusChanged{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		PaymentStatus: status,
		ChangedAt:     now,
	})
	return nil
}

// UpdateAddresses replaces the shipping and/or billing address.
func (s *Service) UpdateAddresses(ctx context.Context, orderID string, shipping, billing *Address) error {
	if shipping == nil && billing == nil {
		return &ValidationError{Field: "address", Reason: "at least one address is required"}
	}
	if shipping != nil {
		if err := shipping.Validate("shippingAddress"); err != nil {
			return err
		}
	}
	if billing != nil {
		if err := billing.Validate("billingAddress"); err != nil {
			return err
		}
	}

	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return err
	}
	return s.update(ctx, orderID, Update{ShippingAddress: shipping, BillingAddress: billing, UpdatedAt: s.now()})
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get order", Err: err}
	}
	return o, nil
}

// ListOrders returns userID's orders newest first. An empty userID lists
// every order.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]*Order, error) {
	orders, err := s.orders.ListOrders(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list orders", Err: err}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *Service) update(ctx context.Context, orderID string, u Update) error {
	err := s.orders.UpdateOrder(ctx, orderID, u)
	if errors.Is(err, ErrOrderNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return &PersistenceError{Op: "update order", Err: err}
	}
	return nil
}

// allocateNumber generates an order number and, when a registry is
// configured, reserves it. An unreachable registry is logged and the
// generated number is used as is.
func (s *Service) allocateNumber(ctx context.Context, at time.Time) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := s.newNumber(at)
		if s.registry == nil {
			return number, nil
		}
		ok, err := s.registry.Reserve(ctx, number)
		if err != nil {
			log.Warn().Str("component", "order").Str("order_number", number).Err(err).
				Msg("order number registry unavailable")
			return number, nil
		}
		if ok {
			return number, nil
		}
	}
	return "", ErrOrderNumberExhausted
}

func (s *Service) publish(ctx context.Context, eventType, orderID string, payload any) {
	if s.publisher == nil {
		return
	}
	event, err := NewEvent(eventType, orderID, payload, s.now())
	if err == nil {
		err = s.publisher.Publish(ctx, orderID, event)
	}
	if err != nil {
		log.Warn().Str("component", "order").Str("event", eventType).Str("order_id", orderID).Err(err).
			Msg("failed to publish order event")
	}
}

func validateItems(items []CartItem) error {
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.ProductID) == "" {
			return &ValidationError{Field: field + ".productId", Reason: "is required"}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Field: field + ".quantity", Reason: "must be positive"}
		}
		if item.Price.IsNegative() {
			return &ValidationError{Field: field + ".price", Reason: "must not be negative"}
		}
		if !IsCents(item.Price) {
			return &ValidationError{Field: field + ".price", Reason: "must have at most 2 decimal places"}
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
