package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"social-go/internal/feedtypes"

	"github.com/redis/go-redis/v9"
)

// redisUnreadCache 是 feedtypes.UnreadCache 接口的 Redis 实现。
type redisUnreadCache struct {
	client *redis.Client
}

// NewRedisUnreadCache 创建一个新的 redisUnreadCache 实例。
func NewRedisUnreadCache(client *redis.Client) feedtypes.UnreadCache {
	return &redisUnreadCache{client: client}
}

const unreadKeyPrefix = "notif:unread:"

func unreadKey(userID uint) string {
	return unreadKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// Get 返回缓存的未读计数。key 不存在时返回 found=false，由调用方回源数据库。
func (r *redisUnreadCache) Get(ctx context.Context, userID uint) (int64, bool, error) {
	val, err := r.client.Get(ctx, unreadKey(userID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("读取未读计数缓存失败 for user %d: %w", userID, err)
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// 缓存内容损坏，按未命中处理
		return 0, false, nil
	}
	return count, true, nil
}

// Set 写入未读计数并设置过期时间。TTL 保证失效丢失时缓存最终自愈。
func (r *redisUnreadCache) Set(ctx context.Context, userID uint, count int64, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	err := r.client.Set(ctx, unreadKey(userID), strconv.FormatInt(count, 10), ttl).Err()
	if err != nil {
		return fmt.Errorf("写入未读计数缓存失败 for user %d: %w", userID, err)
	}
	return nil
}

// Invalidate 删除用户的未读计数缓存。通知写入和批量已读后都必须调用。
func (r *redisUnreadCache) Invalidate(ctx context.Context, userID uint) error {
	err := r.client.Del(ctx, unreadKey(userID)).Err()
	if err != nil {
		return fmt.Errorf("删除未读计数缓存失败 for user %d: %w", userID, err)
	}
	return nil
}
