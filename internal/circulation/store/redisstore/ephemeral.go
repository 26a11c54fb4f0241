// Package redisstore implements the ephemeral idempotency ledger on Redis.
// Any TTL-capable key-value store would do; Redis is what the deployment
// already runs.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EphemeralStore implements ports.EphemeralStore on a go-redis client.
type EphemeralStore struct {
	client *redis.Client
}

func NewEphemeralStore(client *redis.Client) *EphemeralStore {
	return &EphemeralStore{client: client}
}

func (s *EphemeralStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *EphemeralStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return n > 0, nil
}

// TakeAndDelete relies on DEL's atomicity: the reply counts keys actually
// removed, so exactly one concurrent caller sees 1 for a given key.
func (s *EphemeralStore) TakeAndDelete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("take %s: %w", key, err)
	}
	return n > 0, nil
}
