package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-storefront/internal/domain/order"
)

// MockPublisher records published events for testing
type MockPublisher struct {
	mu sync.Mutex

	PublishCalls []PublishCall
	PublishErr   error
}

// PublishCall records parameters passed to Publish
type PublishCall struct {
	Key   string
	Event any
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{PublishCalls: make([]PublishCall, 0)}
}

func (m *MockPublisher) Publish(ctx context.Context, key string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCalls = append(m.PublishCalls, PublishCall{Key: key, Event: event})
	return m.PublishErr
}

// Events returns the published order events in order
func (m *MockPublisher) Events() []order.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]order.Event, 0, len(m.PublishCalls))
	for _, c := range m.PublishCalls {
		if e, ok := c.Event.(order.Event); ok {
			events = append(events, e)
		}
	}
	return events
}

// MockNumberRegistry hands out reservations from a scripted list of
// results, then accepts every number.
type MockNumberRegistry struct {
	mu sync.Mutex

	Results      []bool
	Err          error
	ReserveCalls []string
}

func (m *MockNumberRegistry) Reserve(ctx context.Context, number string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReserveCalls = append(m.ReserveCalls, number)
	if m.Err != nil {
		return false, m.Err
	}
	if len(m.Results) == 0 {
		return true, nil
	}
	ok := m.Results[0]
	m.Results = m.Results[1:]
	return ok, nil
}
