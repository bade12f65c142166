package counter

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	deliveredKey = "push:counters:delivered"
	failedKey    = "push:counters:failed"
	prunedKey    = "push:counters:pruned"

	counterTTL = 90 * 24 * time.Hour
)

// DeliveryCounter keeps per-day delivery totals in Redis hashes keyed by date.
// All writes are best effort; a Redis outage never affects delivery itself.
type DeliveryCounter struct {
	client *redis.Client
}

// NewDeliveryCounter creates a counter on an injected Redis client. A nil
// client yields a counter whose methods are no-ops.
func NewDeliveryCounter(client *redis.Client) *DeliveryCounter {
	return &DeliveryCounter{client: client}
}

// AddDelivered increments the delivered total for today.
func (dc *DeliveryCounter) AddDelivered(ctx context.Context, n int) {
	dc.incr(ctx, deliveredKey, n)
}

// AddFailed increments the failed total for today.
func (dc *DeliveryCounter) AddFailed(ctx context.Context, n int) {
	dc.incr(ctx, failedKey, n)
}

// AddPruned increments the pruned-endpoint total for today.
func (dc *DeliveryCounter) AddPruned(ctx context.Context, n int) {
	dc.incr(ctx, prunedKey, n)
}

func (dc *DeliveryCounter) incr(ctx context.Context, key string, n int) {
	if dc == nil || dc.client == nil || n <= 0 {
		return
	}
	field := time.Now().UTC().Format("2006-01-02")
	if err := dc.client.HIncrBy(ctx, key, field, int64(n)).Err(); err != nil {
		log.Printf("counter: failed to increment %s: %v", key, err)
		return
	}
	dc.client.Expire(ctx, key, counterTTL)
}
