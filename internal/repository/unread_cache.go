package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const unreadTTL = 60 * time.Second

type unreadRedisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewUnreadCache caches unread counts in Redis. Entries are short
// lived and invalidated on every append and mark-read, so a stale
// count survives at most one TTL after a missed invalidation.
func NewUnreadCache(rdb *redis.Client, prefix string) UnreadCache {
	return &unreadRedisCache{rdb: rdb, prefix: prefix}
}

func (c *unreadRedisCache) key(userID string) string {
	return fmt.Sprintf("%s:unread:%s", c.prefix, userID)
}

func (c *unreadRedisCache) Get(ctx context.Context, userID string) (int64, bool) {
	val, err := c.rdb.Get(ctx, c.key(userID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *unreadRedisCache) Set(ctx context.Context, userID string, count int64) {
	_ = c.rdb.Set(ctx, c.key(userID), count, unreadTTL).Err()
}

func (c *unreadRedisCache) Invalidate(ctx context.Context, userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.key(id))
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}
