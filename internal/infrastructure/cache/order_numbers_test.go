package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSetNX struct {
	keys map[string]bool
	ttls []time.Duration
	err  error
}

func (f *fakeSetNX) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	f.ttls = append(f.ttls, expiration)
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if f.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func TestOrderNumberRegistry_Reserve(t *testing.T) {
	fake := &fakeSetNX{keys: make(map[string]bool)}
	r := &OrderNumberRegistry{client: fake, ttl: time.Hour}

	ok, err := r.Reserve(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, fake.keys["order:number:ORD-1"])

	ok, err = r.Reserve(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []time.Duration{time.Hour, time.Hour}, fake.ttls)
}

func TestOrderNumberRegistry_Reserve_Error(t *testing.T) {
	r := &OrderNumberRegistry{client: &fakeSetNX{err: errors.New("connection refused")}, ttl: time.Hour}

	_, err := r.Reserve(context.Background(), "ORD-1")

	assert.ErrorContains(t, err, "connection refused")
}
