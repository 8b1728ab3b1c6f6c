package pos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CartStore keeps each session's cart in Redis.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartStore constructs a store whose entries expire after ttl of
// inactivity, matching the session lifetime.
func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return "pos:cart:" + sessionID
}

// Load returns the session's cart, or an empty cart when none is stored.
func (s *CartStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pos: load cart: %w", err)
	}
	var cart Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("pos: decode cart: %w", err)
	}
	return &cart, nil
}

// Save writes the cart and refreshes its expiry.
func (s *CartStore) Save(ctx context.Context, sessionID string, cart *Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("pos: encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("pos: save cart: %w", err)
	}
	return nil
}

// Clear drops the stored cart.
func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, cartKey(sessionID)).Err()
}
