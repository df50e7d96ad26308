package feedtypes

import (
	"context"
	"time"
)

// UnreadCache caches per-user unread notification counts.
// 接口放在 feedtypes 中，Redis 实现在 internal/redis。
// The cache is advisory: a miss or an error falls back to the store, and
// every write to a user's notifications must invalidate their entry.
type UnreadCache interface {
	// Get returns the cached count and whether an entry was present.
	Get(ctx context.Context, userID uint) (int64, bool, error)
	// Set stores the count with the given TTL.
	Set(ctx context.Context, userID uint, count int64, ttl time.Duration) error
	// Invalidate removes the user's entry.
	Invalidate(ctx context.Context, userID uint) error
}
