package store

import (
	"context"
	"sync"
	"time"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory product and order store. Values are copied
// on the way in and out so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]*product.Product
	orders   map[string]*order.Order
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]*product.Product),
		orders:   make(map[string]*order.Order),
		now:      time.Now,
	}
}

// GetProduct retrieves a product by id
func (s *MemoryStore) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return copyProduct(p), nil
}

// UpdateProduct applies a partial update to a product
func (s *MemoryStore) UpdateProduct(ctx context.Context, id string, u product.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	u.Apply(p)
	p.UpdatedAt = s.now()
	return nil
}

// CreateProduct stores p, assigning an id when it has none
func (s *MemoryStore) CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyProduct(p)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.products[stored.ID] = stored
	return copyProduct(stored), nil
}

// ListProducts returns every product
func (s *MemoryStore) ListProducts(ctx context.Context) ([]*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*product.Product, 0, len(s.products))
	for _, p := range s.products {
		items = append(items, copyProduct(p))
	}
	return items, nil
}

// CreateOrder stores o, assigning an id when it has none
func (s *MemoryStore) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyOrder(o)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.orders[stored.ID] = stored
	return copyOrder(stored), nil
}

// UpdateOrder applies a partial update to an order
func (s *MemoryStore) UpdateOrder(ctx context.Context, id string, u order.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	u.Apply(o)
	return nil
}

// GetOrder retrieves an order by id
func (s *MemoryStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

// ListOrders returns the orders of userID, or all orders when userID is empty
func (s *MemoryStore) ListOrders(ctx context.Context, userID string) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*order.Order, 0)
	for _, o := range s.orders {
		if userID == "" || o.UserID == userID {
			items = append(items, copyOrder(o))
		}
	}
	return items, nil
}

func copyProduct(p *product.Product) *product.Product {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.AvailableCountries = append([]string(nil), p.AvailableCountries...)
	return &c
}

func copyOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = append([]order.Item(nil), o.Items...)
	if o.EstimatedDelivery != nil {
		t := *o.EstimatedDelivery
		c.EstimatedDelivery = &t
	}
	return &c
}
