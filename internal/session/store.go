// Package session keeps per-session cart state in Redis. The cart exists
// only as serialized session state; there is no cart table.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sadragit2004/sumsungmarkaz/internal/cart"
	"github.com/Sadragit2004/sumsungmarkaz/internal/redisx"
)

// RedisStore implements cart.Store. Every Put refreshes the TTL, so a cart
// expires only after the session goes quiet.
type RedisStore struct {
	RDB *redis.Client
	TTL time.Duration
}

func (s *RedisStore) key(sessionID string) string {
	return fmt.Sprintf(redisx.KeyCart, sessionID)
}

// Get returns the session's cart, or a fresh empty cart when the session
// has no cart data yet.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	b, err := s.RDB.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	c := cart.New()
	if err := json.Unmarshal(b, c); err != nil {
		// Corrupt blob: drop it rather than wedge the session.
		return cart.New(), nil
	}
	return c, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, c *cart.Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	if err := s.RDB.Set(ctx, s.key(sessionID), b, s.TTL).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.RDB.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
