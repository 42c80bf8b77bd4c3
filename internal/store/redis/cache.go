package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bookmarks-api/internal/domain"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store"
)

// DefaultCacheTTL bounds how long a row can be served after an out-of-band change.
const DefaultCacheTTL = 10 * time.Minute

var _ store.Cache = (*Cache)(nil)

// Cache stores unsanitized bookmark rows as JSON, keyed by id.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a bookmark cache. A non-positive ttl uses DefaultCacheTTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached row. ok is false on a miss.
func (c *Cache) Get(ctx context.Context, id int64) (b domain.Bookmark, ok bool, err error) {
	data, err := c.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Bookmark{}, false, nil
		}
		return domain.Bookmark{}, false, fmt.Errorf("failed to get cached bookmark: %w", err)
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return domain.Bookmark{}, false, fmt.Errorf("failed to unmarshal cached bookmark: %w", err)
	}
	return b, true, nil
}

// Set caches b under its id.
func (c *Cache) Set(ctx context.Context, b domain.Bookmark) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}
	if err := c.client.Set(ctx, BookmarkKey(b.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache bookmark: %w", err)
	}
	return nil
}

// Invalidate drops the cached row for id.
func (c *Cache) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, BookmarkKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached bookmark: %w", err)
	}
	return nil
}

// Flush removes every cached bookmark.
func (c *Cache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefixBookmark+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
