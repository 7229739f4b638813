package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"ballot/pkg/platform/sentinel"
)

const redisKeyPrefix = "seq:"

// RedisAllocator issues identifiers via atomic INCR. Intended for deployments
// where the document store's transaction latency on the shared counter
// document becomes the bottleneck.
type RedisAllocator struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisAllocator {
	return &RedisAllocator{client: client}
}

// Next atomically increments the counter key. The key must be pre-seeded;
// INCR on an absent key would silently restart the sequence at 1, so absence
// is treated as an uninitialized counter instead.
func (a *RedisAllocator) Next(ctx context.Context, field string) (int64, error) {
	key := redisKeyPrefix + field
	exists, err := a.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("check counter %q: %w", field, err)
	}
	if exists == 0 {
		return 0, fmt.Errorf("counter field %q missing: %w", field, sentinel.ErrInvalidState)
	}
	val, err := a.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment counter %q: %w", field, err)
	}
	return val, nil
}

// Seed initializes absent counter keys to zero without touching existing ones.
func (a *RedisAllocator) Seed(ctx context.Context) error {
	for _, field := range []string{FieldEvent, FieldNotification} {
		if err := a.client.SetNX(ctx, redisKeyPrefix+field, 0, 0).Err(); err != nil {
			return fmt.Errorf("seed counter %q: %w", field, err)
		}
	}
	return nil
}
