package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// UnreadCachePrefix is the key prefix for per-user unread counters
	UnreadCachePrefix = "notif:unread:"

	// UnreadCacheTTL bounds staleness; an expired counter is rebuilt from
	// the database on the next read
	UnreadCacheTTL = 7 * 24 * time.Hour
)

// UnreadCache tracks per-user unread notification counters.
// The counter is a fast-path badge value; the notifications table remains the
// source of truth and repopulates the counter on a miss.
type UnreadCache interface {
	// Increment bumps the user's unread counter and refreshes its TTL.
	Increment(ctx context.Context, userID int64) error

	// Get returns the cached counter. found=false means the key is absent
	// (expired or never set) and the caller should fall back to the DB.
	Get(ctx context.Context, userID int64) (count int, found bool, err error)

	// Set overwrites the counter, used when rebuilding from the DB.
	Set(ctx context.Context, userID int64, count int) error

	// Reset clears the counter to zero after notifications are marked read.
	Reset(ctx context.Context, userID int64) error
}

// RedisUnreadCache implements UnreadCache on plain Redis counters.
type RedisUnreadCache struct {
	client *redis.Client
}

// NewUnreadCache creates an UnreadCache backed by Redis.
func NewUnreadCache(client *redis.Client) UnreadCache {
	return &RedisUnreadCache{client: client}
}

func unreadKey(userID int64) string {
	return fmt.Sprintf("%s%d", UnreadCachePrefix, userID)
}

// Increment bumps the counter with a pipeline: INCR + EXPIRE.
func (c *RedisUnreadCache) Increment(ctx context.Context, userID int64) error {
	key := unreadKey(userID)

	pipe := c.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, UnreadCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[UnreadCache] Increment FAILED: user=%d err=%v", userID, err)
		return fmt.Errorf("increment unread counter: %w", err)
	}
	return nil
}

func (c *RedisUnreadCache) Get(ctx context.Context, userID int64) (int, bool, error) {
	count, err := c.client.Get(ctx, unreadKey(userID)).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get unread counter: %w", err)
	}
	return count, true, nil
}

func (c *RedisUnreadCache) Set(ctx context.Context, userID int64, count int) error {
	err := c.client.Set(ctx, unreadKey(userID), count, UnreadCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("set unread counter: %w", err)
	}
	return nil
}

func (c *RedisUnreadCache) Reset(ctx context.Context, userID int64) error {
	err := c.client.Set(ctx, unreadKey(userID), 0, UnreadCacheTTL).Err()
	if err != nil {
		log.Printf("[UnreadCache] Reset FAILED: user=%d err=%v", userID, err)
		return fmt.Errorf("reset unread counter: %w", err)
	}
	return nil
}
