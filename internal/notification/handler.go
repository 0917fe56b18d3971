package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/email"
	"github.com/rs/zerolog/log"
)

// Mailer sends customer emails.
type Mailer interface {
	SendOrderConfirmation(to string, c email.OrderConfirmation) error
	SendShippingNotice(to string, n email.ShippingNotice) error
}

// OrderReader looks up an order when an event carries no email address.
type OrderReader interface {
	GetOrder(ctx context.Context, id string) (*order.Order, error)
}

// Handler turns order events into customer notifications.
type Handler struct {
	mailer Mailer
	orders OrderReader
}

// NewHandler creates a notification handler. orders may be nil, in which
// case events without an email address are skipped.
func NewHandler(mailer Mailer, orders OrderReader) *Handler {
	return &Handler{mailer: mailer, orders: orders}
}

// HandleEvent processes one event from the order stream.
func (h *Handler) HandleEvent(ctx context.Context, event order.Event) error {
	switch event.Type {
	case order.EventOrderPlaced:
		return h.handleOrderPlaced(ctx, event)
	case order.EventOrderStatusChanged:
		return h.handleStatusChanged(ctx, event)
	}
	return nil
}

func (h *Handler) handleOrderPlaced(ctx context.Context, event order.Event) error {
	var e order.OrderPlaced
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return fmt.Errorf("decode %s: %w", event.Type, err)
	}

	to := h.recipient(ctx, e.OrderID, e.Email)
	if to == "" {
		log.Warn().Str("component", "notifier").Str("order_id", e.OrderID).Msg("no email address, skipping confirmation")
		return nil
	}

	items := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		items[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	if err := h.mailer.SendOrderConfirmation(to, email.OrderConfirmation{
		OrderNumber: e.OrderNumber,
		Currency:    e.Currency,
		Items:       items,
		Subtotal:    e.Subtotal,
		Shipping:    e.Shipping,
		Tax:         e.Tax,
		Total:       e.Total,
	}); err != nil {
		return fmt.Errorf("send confirmation for %s: %w", e.OrderNumber, err)
	}

	log.Info().Str("component", "notifier").Str("order_number", e.OrderNumber).Str("to", to).Msg("order confirmation sent")
	return nil
}

func (h *Handler) handleStatusChanged(ctx context.Context, event order.Event) error {
	var e order.OrderStatusChanged
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return fmt.Errorf("decode %s: %w", event.Type, err)
	}
	if e.Status != order.StatusShipped {
		return nil
	}

	to := h.recipient(ctx, e.OrderID, e.Email)
	if to == "" {
		log.Warn().Str("component", "notifier").Str("order_id", e.OrderID).Msg("no email address, skipping shipping notice")
		return nil
	}

	if err := h.mailer.SendShippingNotice(to, email.ShippingNotice{
		OrderNumber:       e.OrderNumber,
		TrackingNumber:    e.TrackingNumber,
		EstimatedDelivery: e.EstimatedDelivery,
	}); err != nil {
		return fmt.Errorf("send shipping notice for %s: %w", e.OrderNumber, err)
	}

	log.Info().Str("component", "notifier").Str("order_number", e.OrderNumber).Str("to", to).Msg("shipping notice sent")
	return nil
}

func (h *Handler) recipient(ctx context.Context, orderID, fromEvent string) string {
	if fromEvent != "" || h.orders == nil {
		return fromEvent
	}
	o, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		log.Warn().Str("component", "notifier").Str("order_id", orderID).Err(err).Msg("order lookup failed")
		return ""
	}
	if o.BillingAddress.Email != "" {
		return o.BillingAddress.Email
	}
	return o.ShippingAddress.Email
}
