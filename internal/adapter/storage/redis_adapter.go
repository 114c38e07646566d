package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tiyeni/storefront/internal/core/domain"
)

const (
	stockKeyPrefix    = "stock:"
	cartKeyPrefix     = "cart:"
	idempotencyKeyTTL = 24 * time.Hour
	cartTTL           = 7 * 24 * time.Hour
)

var decrementStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return 0
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) DecrementStock(ctx context.Context, itemID string, quantity int) (bool, error) {
	key := stockKeyPrefix + itemID

	result, err := decrementStockScript.Run(ctx, r.client, []string{key}, quantity).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

func (r *RedisAdapter) IncrementStock(ctx context.Context, itemID string, quantity int) error {
	key := stockKeyPrefix + itemID
	return r.client.IncrBy(ctx, key, int64(quantity)).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) SetStock(ctx context.Context, itemID string, quantity int) error {
	key := stockKeyPrefix + itemID
	return r.client.Set(ctx, key, quantity, 0).Err()
}

// Carts are hashes of item ID to quantity with a sliding TTL.

func (r *RedisAdapter) GetCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	fields, err := r.client.HGetAll(ctx, cartKeyPrefix+sessionID).Result()
	if err != nil {
		return domain.Cart{}, err
	}

	cart := domain.Cart{SessionID: sessionID}
	for itemID, raw := range fields {
		qty, err := strconv.Atoi(raw)
		if err != nil || qty <= 0 {
			continue
		}
		cart.Lines = append(cart.Lines, domain.CartLine{ItemID: itemID, Quantity: qty})
	}
	return cart, nil
}

func (r *RedisAdapter) AddLine(ctx context.Context, sessionID, itemID string, quantity int) error {
	key := cartKeyPrefix + sessionID
	if err := r.client.HIncrBy(ctx, key, itemID, int64(quantity)).Err(); err != nil {
		return err
	}
	return r.client.Expire(ctx, key, cartTTL).Err()
}

func (r *RedisAdapter) SetLine(ctx context.Context, sessionID, itemID string, quantity int) error {
	key := cartKeyPrefix + sessionID
	if err := r.client.HSet(ctx, key, itemID, quantity).Err(); err != nil {
		return err
	}
	return r.client.Expire(ctx, key, cartTTL).Err()
}

func (r *RedisAdapter) RemoveLine(ctx context.Context, sessionID, itemID string) error {
	return r.client.HDel(ctx, cartKeyPrefix+sessionID, itemID).Err()
}

func (r *RedisAdapter) ClearCart(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, cartKeyPrefix+sessionID).Err()
}
