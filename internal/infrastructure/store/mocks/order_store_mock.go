package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/ec-storefront/internal/domain/order"
)

// MockOrderStore is a mock implementation of order.Store for testing
type MockOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
	nextID int

	// For tracking calls in tests
	CreateCalls []*order.Order
	UpdateCalls []OrderUpdateCall
	GetCalls    []string
	ListCalls   []string

	CreateErr error
	UpdateErr error
	GetErr    error
	ListErr   error
}

// OrderUpdateCall records parameters passed to UpdateOrder
type OrderUpdateCall struct {
	ID     string
	Update order.Update
}

// NewMockOrderStore creates a new MockOrderStore
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		orders:      make(map[string]*order.Order),
		CreateCalls: make([]*order.Order, 0),
		UpdateCalls: make([]OrderUpdateCall, 0),
		GetCalls:    make([]string, 0),
		ListCalls:   make([]string, 0),
	}
}

func (m *MockOrderStore) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, o)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	c := *o
	if c.ID == "" {
		m.nextID++
		c.ID = fmt.Sprintf("order-%d", m.nextID)
	}
	m.orders[c.ID] = &c
	out := c
	return &out, nil
}

func (m *MockOrderStore) UpdateOrder(ctx context.Context, id string, u order.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, OrderUpdateCall{ID: id, Update: u})
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	o, ok := m.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	u.Apply(o)
	return nil
}

func (m *MockOrderStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, id)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	c := *o
	return &c, nil
}

func (m *MockOrderStore) ListOrders(ctx context.Context, userID string) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls = append(m.ListCalls, userID)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	items := make([]*order.Order, 0)
	for _, o := range m.orders {
		if userID == "" || o.UserID == userID {
			c := *o
			items = append(items, &c)
		}
	}
	return items, nil
}

// SetData stores an order directly for testing
func (m *MockOrderStore) SetData(o *order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *o
	m.orders[o.ID] = &c
}

// GetData gets an order directly for testing (without recording the call)
func (m *MockOrderStore) GetData(id string) (*order.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, false
	}
	c := *o
	return &c, true
}
