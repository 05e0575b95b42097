package httpx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/barewire/storefront-orders/internal/orders"
	"github.com/barewire/storefront-orders/internal/redisx"
)

// OrderCache covers the order read fast path and placement idempotency keys.
// Misses and write failures are invisible to callers; the database stays the
// source of truth.
type OrderCache interface {
	GetOrder(ctx context.Context, id string) (orders.Order, bool)
	SetOrder(ctx context.Context, o orders.Order)
	DropOrder(ctx context.Context, id string)
	GetIdempotent(ctx context.Context, userID, key string) (string, bool)
	SetIdempotent(ctx context.Context, userID, key, orderID string)
}

// RedisCache implements OrderCache on the shared Redis instance.
type RedisCache struct {
	Client *redis.Client
}

func (c *RedisCache) GetOrder(ctx context.Context, id string) (orders.Order, bool) {
	s, err := c.Client.Get(ctx, fmt.Sprintf(redisx.KeyOrderCache, id)).Result()
	if err != nil || s == "" {
		return orders.Order{}, false
	}
	var o orders.Order
	if err := json.Unmarshal([]byte(s), &o); err != nil {
		return orders.Order{}, false
	}
	return o, true
}

func (c *RedisCache) SetOrder(ctx context.Context, o orders.Order) {
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	_ = c.Client.Set(ctx, fmt.Sprintf(redisx.KeyOrderCache, o.ID), b, redisx.TTLOrderCache).Err()
}

func (c *RedisCache) DropOrder(ctx context.Context, id string) {
	_ = c.Client.Del(ctx, fmt.Sprintf(redisx.KeyOrderCache, id)).Err()
}

func (c *RedisCache) GetIdempotent(ctx context.Context, userID, key string) (string, bool) {
	orderID, err := c.Client.Get(ctx, fmt.Sprintf(redisx.KeyIdemPlace, userID, key)).Result()
	if err != nil || orderID == "" {
		return "", false
	}
	return orderID, true
}

func (c *RedisCache) SetIdempotent(ctx context.Context, userID, key, orderID string) {
	_ = c.Client.Set(ctx, fmt.Sprintf(redisx.KeyIdemPlace, userID, key), orderID, redisx.TTLIdempotency).Err()
}
