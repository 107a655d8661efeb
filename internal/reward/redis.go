package reward

import (
	"context"
	"fmt"

	"agora/internal/observability"

	"github.com/redis/go-redis/v9"
)

const balanceKeyPrefix = "rewards:balance:"

// RedisSink stores balances as Redis integer keys, credited via INCRBY.
type RedisSink struct {
	rdb *redis.Client
}

// NewRedisSink returns a sink backed by the given Redis client.
func NewRedisSink(rdb *redis.Client) *RedisSink {
	return &RedisSink{rdb: rdb}
}

// BalanceKey derives the Redis key holding an identity's balance.
func BalanceKey(identity string) string {
	return balanceKeyPrefix + identity
}

// Credit atomically adds amount to the identity's balance.
func (s *RedisSink) Credit(ctx context.Context, identity string, amount int64) error {
	if s.rdb == nil {
		return fmt.Errorf("reward sink: redis client is nil")
	}
	ctx, span := observability.TraceRedisOperation(ctx, "incrby")
	defer span.End()

	if err := s.rdb.IncrBy(ctx, BalanceKey(identity), amount).Err(); err != nil {
		observability.RedisErrors.WithLabelValues("incrby").Inc()
		return fmt.Errorf("reward credit for %s: %w", identity, err)
	}
	return nil
}

// Balance returns the identity's current balance (zero if never credited).
func (s *RedisSink) Balance(ctx context.Context, identity string) (int64, error) {
	if s.rdb == nil {
		return 0, fmt.Errorf("reward sink: redis client is nil")
	}
	ctx, span := observability.TraceRedisOperation(ctx, "get")
	defer span.End()

	val, err := s.rdb.Get(ctx, BalanceKey(identity)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reward balance for %s: %w", identity, err)
	}
	return val, nil
}
