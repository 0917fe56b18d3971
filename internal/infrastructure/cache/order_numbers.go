package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultReservationTTL bounds how long a reserved order number is
// remembered. Numbers carry their timestamp, so they cannot repeat once
// the second they were minted in has passed.
const DefaultReservationTTL = 24 * time.Hour

type setNXer interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// OrderNumberRegistry reserves order numbers in Redis so that API
// instances never hand out the same number twice.
type OrderNumberRegistry struct {
	client setNXer
	ttl    time.Duration
}

func NewOrderNumberRegistry(client *redis.Client, ttl time.Duration) *OrderNumberRegistry {
	if ttl <= 0 {
		ttl = DefaultReservationTTL
	}
	return &OrderNumberRegistry{client: client, ttl: ttl}
}

// Reserve returns false when number was already reserved.
func (r *OrderNumberRegistry) Reserve(ctx context.Context, number string) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyOrderNumber(number), time.Now().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve order number: %w", err)
	}
	return ok, nil
}

func keyOrderNumber(number string) string {
	return fmt.Sprintf("order:number:%s", number)
}
