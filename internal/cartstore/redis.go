package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freshsouq/freshsouq-backend/internal/cart"
	pkgredis "github.com/freshsouq/freshsouq-backend/pkg/redis"
)

type redisCommands interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Redis stores the cart blob under one redis key. A non-zero TTL expires
// idle carts; the TTL slides on every load and save.
type Redis struct {
	client redisCommands
	key    string
	ttl    time.Duration
}

func NewRedis(client redisCommands, key string, ttl time.Duration) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if key == "" {
		return nil, fmt.Errorf("storage key required")
	}
	return &Redis{client: client, key: key, ttl: ttl}, nil
}

func (s *Redis) Load(ctx context.Context) ([]cart.LineItem, error) {
	val, err := s.client.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart blob: %w", err)
	}

	items := decodeItems([]byte(val))
	if s.ttl > 0 {
		// Best effort: an expiry refresh failure must not fail the read.
		_ = s.client.Expire(ctx, s.key, s.ttl)
	}
	return items, nil
}

func (s *Redis) Save(ctx context.Context, items []cart.LineItem) error {
	data, err := encodeItems(items)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, string(data), s.ttl); err != nil {
		return fmt.Errorf("save cart blob: %w", err)
	}
	return nil
}

func (s *Redis) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key); err != nil {
		return fmt.Errorf("clear cart blob: %w", err)
	}
	return nil
}
