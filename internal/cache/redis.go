package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
)

const (
	defaultTTL = 10 * time.Minute
	keyPrefix  = "rec:"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// NewFromURL parses a redis:// URL and returns a cache bound to it.
func NewFromURL(url string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewCache(redis.NewClient(opts), ttl), nil
}

// buildKey hashes the cleaned query so equivalent raw queries share an entry.
func buildKey(cleaned string, topN int) string {
	sum := sha256.Sum256([]byte(cleaned))
	return fmt.Sprintf("%sq:%s:n:%d", keyPrefix, hex.EncodeToString(sum[:]), topN)
}

// Get recommendations from cache. found is false on a miss.
func (c *Cache) Get(ctx context.Context, cleaned string, topN int) ([]domain.Recommendation, bool, error) {
	key := buildKey(cleaned, topN)
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get recommendations from cache: %w", err)
	}

	recs := []domain.Recommendation{}
	if err := json.Unmarshal([]byte(val), &recs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal recommendations %s: %w", key, err)
	}
	return recs, true, nil
}

// Store recommendations in cache
func (c *Cache) Set(ctx context.Context, cleaned string, topN int, recs []domain.Recommendation) error {
	key := buildKey(cleaned, topN)
	val, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set recommendations in cache: %w", err)
	}
	return nil
}

// ClearAll drops every cached recommendation: used when a new model is loaded.
func (c *Cache) ClearAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
