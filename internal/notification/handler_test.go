package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	confirmations []email.OrderConfirmation
	notices       []email.ShippingNotice
	recipients    []string
	err           error
}

func (m *fakeMailer) SendOrderConfirmation(to string, c email.OrderConfirmation) error {
	if m.err != nil {
		return m.err
	}
	m.recipients = append(m.recipients, to)
	m.confirmations = append(m.confirmations, c)
	return nil
}

func (m *fakeMailer) SendShippingNotice(to string, n email.ShippingNotice) error {
	if m.err != nil {
		return m.err
	}
	m.recipients = append(m.recipients, to)
	m.notices = append(m.notices, n)
	return nil
}

func newEvent(t *testing.T, eventType string, payload any) order.Event {
	t.Helper()
	e, err := order.NewEvent(eventType, "o1", payload, time.Now())
	require.NoError(t, err)
	return e
}

func TestHandler_OrderPlaced_SendsConfirmation(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewHandler(mailer, nil)

	err := h.HandleEvent(context.Background(), newEvent(t, order.EventOrderPlaced, order.OrderPlaced{
		OrderID:     "o1",
		OrderNumber: "ORD-1",
		Email:       "ada@example.com",
		Items:       []order.Item{{ProductID: "p1", Name: "Zobo", Price: decimal.NewFromInt(300), Quantity: 2}},
		Total:       decimal.NewFromInt(603),
		Currency:    "NGN",
	}))

	require.NoError(t, err)
	require.Len(t, mailer.confirmations, 1)
	assert.Equal(t, []string{"ada@example.com"}, mailer.recipients)
	c := mailer.confirmations[0]
	assert.Equal(t, "ORD-1", c.OrderNumber)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Zobo", c.Items[0].Name)
}

func TestHandler_OrderPlaced_LooksUpEmail(t *testing.T) {
	mailer := &fakeMailer{}
	orders := mocks.NewMockOrderStore()
	orders.SetData(&order.Order{ID: "o1", ShippingAddress: order.Address{Email: "ship@example.com"}})
	h := NewHandler(mailer, orders)

	err := h.HandleEvent(context.Background(), newEvent(t, order.EventOrderPlaced, order.OrderPlaced{OrderID: "o1"}))

	require.NoError(t, err)
	assert.Equal(t, []string{"ship@example.com"}, mailer.recipients)
}

func TestHandler_OrderPlaced_NoEmailSkipped(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewHandler(mailer, mocks.NewMockOrderStore())

	err := h.HandleEvent(context.Background(), newEvent(t, order.EventOrderPlaced, order.OrderPlaced{OrderID: "missing"}))

	require.NoError(t, err)
	assert.Empty(t, mailer.confirmations)
}

func TestHandler_OrderPlaced_MailerError(t *testing.T) {
	h := NewHandler(&fakeMailer{err: errors.New("relay down")}, nil)

	err := h.HandleEvent(context.Background(), newEvent(t, order.EventOrderPlaced, order.OrderPlaced{OrderID: "o1", Email: "a@b.c"}))

	assert.ErrorContains(t, err, "relay down")
}

func TestHandler_Shipped_SendsNotice(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewHandler(mailer, nil)
	eta := time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC)

	err := h.HandleEvent(context.Background(), newEvent(t, order.EventOrderStatusChanged, order.OrderStatusChanged{
		OrderID:           "o1",
		OrderNumber:       "ORD-1",
		Email:             "ada@example.com",
		Status:            order.StatusShipped,
		EstimatedDelivery: &eta,
	}))

	require.NoError(t, err)
	require.Len(t, mailer.notices, 1)
	require.NotNil(t, mailer.notices[0].EstimatedDelivery)
	assert.True(t, eta.Equal(*mailer.notices[0].EstimatedDelivery))
}

func TestHandler_IgnoresOtherEvents(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewHandler(mailer, nil)
	ctx := context.Background()

	require.NoError(t, h.HandleEvent(ctx, newEvent(t, order.EventOrderStatusChanged, order.OrderStatusChanged{
		OrderID: "o1", Email: "a@b.c", Status: order.StatusProcessing,
	})))
	require.NoError(t, h.HandleEvent(ctx, newEvent(t, order.EventPaymentStatusChanged, order.PaymentStatusChanged{OrderID: "o1"})))

	assert.Empty(t, mailer.recipients)
}

func TestHandler_BadPayload(t *testing.T) {
	h := NewHandler(&fakeMailer{}, nil)

	err := h.HandleEvent(context.Background(), order.Event{Type: order.EventOrderPlaced, Data: []byte(`"nope"`)})

	assert.Error(t, err)
}
