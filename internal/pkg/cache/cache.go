package cache

import (
	"context"
	"fmt"
	"log"

	"github.com/portalestiba/notifier/internal/pkg/env"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to the Redis cache server. A failed ping is logged but
// not fatal; the premium cache degrades to direct DB reads.
func NewClient() *redis.Client {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       0,
	})

	if pong, err := client.Ping(context.Background()).Result(); err != nil {
		log.Printf("Warning: could not connect to cache: %v", err)
	} else {
		log.Printf("Connected to cache: %s", pong)
	}
	return client
}
