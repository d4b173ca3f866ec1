package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayTTL = 24 * time.Hour

// ReplayGuard provides checkout replay protection backed by Redis.
// Key format: checkout:idem:<idempotency_key>
type ReplayGuard struct {
	client *redis.Client
}

// NewReplayGuard creates a ReplayGuard wrapping the given Redis client.
func NewReplayGuard(client *redis.Client) *ReplayGuard {
	return &ReplayGuard{client: client}
}

// Claim atomically marks the key as seen and reports whether this call
// was the first to do so. A false return means an earlier submission
// already claimed it; the key expires after replayTTL.
func (g *ReplayGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(key), "1", replayTTL).Result()
	if err != nil {
		return false, fmt.Errorf("replay claim: %w", err)
	}
	return ok, nil
}

func (g *ReplayGuard) key(idempotencyKey string) string {
	return fmt.Sprintf("checkout:idem:%s", idempotencyKey)
}
