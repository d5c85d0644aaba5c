package throttle

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "clickpass:failed:"

// RedisLimiter shares counters between server instances. Each key is a
// Redis counter whose TTL is set by the first failure of a window.
type RedisLimiter struct {
	rdb    redis.Cmdable
	policy Policy
}

func NewRedisLimiter(rdb redis.Cmdable, policy Policy) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, policy: policy}
}

// NewRedisClient parses a redis:// or rediss:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	if !l.policy.enabled() {
		return nil
	}
	n, err := l.rdb.Get(ctx, keyPrefix+key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("throttle: get counter: %w", err)
	}
	if n >= l.policy.Max {
		return common.ErrTooManyAttempts
	}
	return nil
}

func (l *RedisLimiter) Fail(ctx context.Context, key string) error {
	if !l.policy.enabled() {
		return nil
	}
	k := keyPrefix + key
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.policy.Window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("throttle: increment counter: %w", err)
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("throttle: reset counter: %w", err)
	}
	return nil
}
