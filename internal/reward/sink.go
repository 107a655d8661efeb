// Package reward provides the token ledger credited when posts are liked.
package reward

import (
	"context"
	"sync"
)

// RewardDecimals is the token's decimal precision.
const RewardDecimals = 8

// DefaultLikeReward is the amount credited to a post's author per like:
// 10 whole token units scaled by the token's decimal precision.
const DefaultLikeReward = int64(10 * 1e8)

// Sink is the external ledger crediting token balances.
// Credit must either fully apply or return an error; the engine treats a
// failed credit as grounds to abort the whole reaction.
type Sink interface {
	Credit(ctx context.Context, identity string, amount int64) error
	Balance(ctx context.Context, identity string) (int64, error)
}

// MemorySink keeps balances in process memory. It backs tests and
// deployments that run without Redis.
type MemorySink struct {
	mu       sync.Mutex
	balances map[string]int64
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{balances: make(map[string]int64)}
}

// Credit adds amount to the identity's balance.
func (s *MemorySink) Credit(_ context.Context, identity string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[identity] += amount
	return nil
}

// Balance returns the identity's current balance (zero if never credited).
func (s *MemorySink) Balance(_ context.Context, identity string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[identity], nil
}
