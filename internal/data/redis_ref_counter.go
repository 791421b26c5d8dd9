package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/target/jobdispatch/internal/core"
	"github.com/target/jobdispatch/internal/domain/ref"
	apperrors "github.com/target/jobdispatch/internal/errors"
)

// DefaultRefKeyPrefix namespaces ref counters in Redis.
const DefaultRefKeyPrefix = "ref_seq:"

// RedisRefCounter is the Redis ref counter. INCR is atomic on the server, so every client
// sharing the instance gets distinct values.
type RedisRefCounter struct {
	client    redis.UniversalClient
	keyPrefix string
}

var (
	_ ref.Counter                = (*RedisRefCounter)(nil)
	_ core.RefSequenceRepository = (*RedisRefCounter)(nil)
	_ core.RefCounterSyncer      = (*RedisRefCounter)(nil)
)

// NewRedisRefCounter creates a RedisRefCounter. An empty keyPrefix selects DefaultRefKeyPrefix.
func NewRedisRefCounter(client redis.UniversalClient, keyPrefix string) *RedisRefCounter {
	if keyPrefix == "" {
		keyPrefix = DefaultRefKeyPrefix
	}
	return &RedisRefCounter{client: client, keyPrefix: keyPrefix}
}

func (c *RedisRefCounter) key(prefix string) string {
	return c.keyPrefix + prefix
}

// Next increments and returns the counter for prefix, starting at 1.
func (c *RedisRefCounter) Next(ctx context.Context, prefix string) (int64, error) {
	if prefix == "" {
		return 0, errors.New("prefix cannot be empty")
	}
	v, err := c.client.Incr(ctx, c.key(prefix)).Result()
	if err != nil {
		if strings.Contains(err.Error(), "overflow") {
			return 0, fmt.Errorf("%w: %s", ref.ErrCounterExhausted, prefix)
		}
		return 0, redisUnavailable(fmt.Errorf("redis incr %s: %w", c.key(prefix), err), prefix)
	}
	return v, nil
}

// Current returns the last value handed out for prefix, or 0 when the key does not exist.
func (c *RedisRefCounter) Current(ctx context.Context, prefix string) (int64, error) {
	v, err := c.client.Get(ctx, c.key(prefix)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, redisUnavailable(fmt.Errorf("redis get %s: %w", c.key(prefix), err), prefix)
	}
	return v, nil
}

// syncAtLeastScript raises KEYS[1] to ARGV[1] when it is lower and returns the resulting value.
var syncAtLeastScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if current < floor then
  redis.call('SET', KEYS[1], ARGV[1])
  return ARGV[1]
end
return tostring(current)
`)

// SyncAtLeast raises the counter for prefix to floor when it is lower, so values already issued
// by another backend are never handed out again. It never lowers the counter.
func (c *RedisRefCounter) SyncAtLeast(ctx context.Context, prefix string, floor int64) (int64, error) {
	if floor < 0 {
		return 0, fmt.Errorf("floor must be non-negative, got %d", floor)
	}
	v, err := syncAtLeastScript.Run(ctx, c.client, []string{c.key(prefix)}, floor).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis sync %s: %w", c.key(prefix), err)
	}
	return v, nil
}

// Ping reports whether Redis is reachable.
func (c *RedisRefCounter) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func redisUnavailable(err error, prefix string) error {
	return apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "Reference counter for %s is unavailable.", prefix)
}
