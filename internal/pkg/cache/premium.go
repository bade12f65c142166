package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/portalestiba/notifier/app/models"
	"github.com/redis/go-redis/v9"
)

const premiumTTL = 5 * time.Minute

// PremiumCache caches entitlement lookups by chapa. All operations are
// best-effort: a cache failure only costs a DB read.
type PremiumCache struct {
	client *redis.Client
}

// NewPremiumCache creates a premium cache on top of a Redis client.
func NewPremiumCache(client *redis.Client) *PremiumCache {
	return &PremiumCache{client: client}
}

func premiumKey(chapa string) string {
	return "premium:" + chapa
}

func (c *PremiumCache) Get(ctx context.Context, chapa string) (*models.Entitlement, bool) {
	raw, err := c.client.Get(ctx, premiumKey(chapa)).Bytes()
	if err != nil {
		return nil, false
	}
	var ent models.Entitlement
	if err := json.Unmarshal(raw, &ent); err != nil {
		return nil, false
	}
	return &ent, true
}

func (c *PremiumCache) Set(ctx context.Context, chapa string, ent *models.Entitlement) {
	raw, err := json.Marshal(ent)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, premiumKey(chapa), raw, premiumTTL).Err(); err != nil {
		log.Printf("cache: failed to store premium state for chapa %s: %v", chapa, err)
	}
}

func (c *PremiumCache) Invalidate(ctx context.Context, chapa string) {
	if err := c.client.Del(ctx, premiumKey(chapa)).Err(); err != nil {
		log.Printf("cache: failed to invalidate premium state for chapa %s: %v", chapa, err)
	}
}
