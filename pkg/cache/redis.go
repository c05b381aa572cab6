// Package cache keeps single-car lookups in Redis. A nil *CarCache is never
// handed to the services; when Redis is not configured or unreachable the
// caller runs without a cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"carrent/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "carrent:car"

// Config holds Redis connection details.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings Redis. It returns nil when Addr is empty
// or the server does not answer within two seconds.
func NewRedisClient(cfg Config) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis at %s unreachable, car cache disabled: %v", cfg.Addr, err)
		_ = client.Close()
		return nil
	}
	return client
}

// CarCache stores cars as JSON under carrent:car:<id>.
type CarCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCarCache(client *redis.Client, ttl time.Duration) *CarCache {
	return &CarCache{client: client, ttl: ttl}
}

// Key returns the Redis key of a car.
func Key(id uint) string {
	return fmt.Sprintf("%s:%d", keyPrefix, id)
}

// Get returns the cached car. Misses and Redis errors both report false.
func (c *CarCache) Get(ctx context.Context, id uint) (*models.Car, bool) {
	raw, err := c.client.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("car cache get %d: %v", id, err)
		}
		return nil, false
	}
	var car models.Car
	if err := json.Unmarshal(raw, &car); err != nil {
		log.Printf("car cache decode %d: %v", id, err)
		return nil, false
	}
	return &car, true
}

func (c *CarCache) Set(ctx context.Context, car *models.Car) {
	raw, err := json.Marshal(car)
	if err != nil {
		log.Printf("car cache encode %d: %v", car.ID, err)
		return
	}
	if err := c.client.Set(ctx, Key(car.ID), raw, c.ttl).Err(); err != nil {
		log.Printf("car cache set %d: %v", car.ID, err)
	}
}

func (c *CarCache) Invalidate(ctx context.Context, id uint) {
	if err := c.client.Del(ctx, Key(id)).Err(); err != nil {
		log.Printf("car cache invalidate %d: %v", id, err)
	}
}
