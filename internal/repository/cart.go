package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

// CartRepository keeps carts in Redis as JSON documents. Every write
// refreshes the TTL, so carts expire after a week without activity.
type CartRepository struct {
	rdb *redis.Client
}

func NewCartRepository(rdb *redis.Client) *CartRepository {
	return &CartRepository{rdb: rdb}
}

func cartKey(id string) string {
	return cartKeyPrefix + id
}

func (r *CartRepository) Get(ctx context.Context, id string) (*model.Cart, error) {
	raw, err := r.rdb.Get(ctx, cartKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound("carts")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart model.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart %s: %w", id, err)
	}
	return &cart, nil
}

func (r *CartRepository) Save(ctx context.Context, cart *model.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.rdb.Set(ctx, cartKey(cart.ID), raw, model.CartTTL).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, cartKey(id)).Err()
}
