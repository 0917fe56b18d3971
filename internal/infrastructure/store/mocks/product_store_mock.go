package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/ec-storefront/internal/domain/product"
)

// MockProductStore is a mock implementation of product.Store for testing
type MockProductStore struct {
	mu       sync.RWMutex
	products map[string]*product.Product
	nextID   int

	// For tracking calls in tests
	GetCalls    []string
	UpdateCalls []ProductUpdateCall
	CreateCalls []*product.Product

	// Injected errors. UpdateErrs fails updates for specific product ids.
	GetErr     error
	UpdateErr  error
	UpdateErrs map[string]error
	CreateErr  error
	ListErr    error
}

// ProductUpdateCall records parameters passed to UpdateProduct
type ProductUpdateCall struct {
	ID     string
	Update product.Update
}

// NewMockProductStore creates a new MockProductStore
func NewMockProductStore() *MockProductStore {
	return &MockProductStore{
		products:    make(map[string]*product.Product),
		GetCalls:    make([]string, 0),
		UpdateCalls: make([]ProductUpdateCall, 0),
		CreateCalls: make([]*product.Product, 0),
		UpdateErrs:  make(map[string]error),
	}
}

func (m *MockProductStore) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, id)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	c := *p
	return &c, nil
}

func (m *MockProductStore) UpdateProduct(ctx context.Context, id string, u product.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, ProductUpdateCall{ID: id, Update: u})
	if err := m.UpdateErrs[id]; err != nil {
		return err
	}
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	p, ok := m.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	u.Apply(p)
	return nil
}

func (m *MockProductStore) CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, p)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	c := *p
	if c.ID == "" {
		m.nextID++
		c.ID = fmt.Sprintf("prod-%d", m.nextID)
	}
	m.products[c.ID] = &c
	out := c
	return &out, nil
}

func (m *MockProductStore) ListProducts(ctx context.Context) ([]*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	items := make([]*product.Product, 0, len(m.products))
	for _, p := range m.products {
		c := *p
		items = append(items, &c)
	}
	return items, nil
}

// SetData stores a product directly for testing
func (m *MockProductStore) SetData(p *product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *p
	m.products[p.ID] = &c
}

// GetData gets a product directly for testing (without recording the call)
func (m *MockProductStore) GetData(id string) (*product.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, false
	}
	c := *p
	return &c, true
}

// MockAtomicProductStore adds single-call stock adjustment to
// MockProductStore.
type MockAtomicProductStore struct {
	*MockProductStore

	DecrementCalls []ProductStockCall
	IncrementCalls []ProductStockCall
	StockErr       error
}

// ProductStockCall records parameters passed to DecrementStock/IncrementStock
type ProductStockCall struct {
	ID       string
	Quantity int
}

func NewMockAtomicProductStore() *MockAtomicProductStore {
	return &MockAtomicProductStore{MockProductStore: NewMockProductStore()}
}

func (m *MockAtomicProductStore) DecrementStock(ctx context.Context, id string, quantity int) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DecrementCalls = append(m.DecrementCalls, ProductStockCall{ID: id, Quantity: quantity})
	return m.adjust(id, -quantity)
}

func (m *MockAtomicProductStore) IncrementStock(ctx context.Context, id string, quantity int) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IncrementCalls = append(m.IncrementCalls, ProductStockCall{ID: id, Quantity: quantity})
	return m.adjust(id, quantity)
}

func (m *MockAtomicProductStore) adjust(id string, delta int) (int, int, error) {
	if m.StockErr != nil {
		return 0, 0, m.StockErr
	}
	p, ok := m.products[id]
	if !ok {
		return 0, 0, product.ErrProductNotFound
	}
	prev := p.StockQuantity
	product.StockUpdate(prev + delta).Apply(p)
	return prev, p.StockQuantity, nil
}
