// Package cache holds the persisted relationship cache shared by every
// surface that renders follow state.
package cache

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"skillsync/logging"
)

// FollowCache stores "does viewer follow subject" facts keyed per signed-in
// viewer. Entries are advisory: they survive navigation and reload, are
// never expired, and are always subject to reconciliation on next use.
type FollowCache struct {
	rdb *redis.Client
}

// NewFollowCache wraps a redis client. A nil client disables the cache:
// every lookup reports unknown and writes become no-ops.
func NewFollowCache(rdb *redis.Client) *FollowCache {
	return &FollowCache{rdb: rdb}
}

func followKey(viewerID, subjectID string) string {
	return "follow:" + viewerID + ":" + subjectID
}

// Get returns the cached follow state and whether an entry exists at all.
func (c *FollowCache) Get(ctx context.Context, viewerID, subjectID string) (following bool, known bool) {
	if c.rdb == nil {
		return false, false
	}
	s, err := c.rdb.Get(ctx, followKey(viewerID, subjectID)).Result()
	if err == redis.Nil {
		return false, false
	}
	if err != nil {
		logging.Logger.Warn("follow cache read failed, treating as unknown",
			slog.String("viewer", viewerID),
			slog.String("subject", subjectID),
			slog.String("error", err.Error()))
		return false, false
	}
	return s == "1", true
}

// Set writes the follow state through to the persistent store immediately.
// Entries carry no TTL; overwrites and reconciliation are the only way they
// change.
func (c *FollowCache) Set(ctx context.Context, viewerID, subjectID string, following bool) error {
	if c.rdb == nil {
		return nil
	}
	v := "0"
	if following {
		v = "1"
	}
	return c.rdb.Set(ctx, followKey(viewerID, subjectID), v, 0).Err()
}

// Delete removes a single cached entry, returning it to unknown.
func (c *FollowCache) Delete(ctx context.Context, viewerID, subjectID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, followKey(viewerID, subjectID)).Err()
}

// ResetViewer clears every entry belonging to a viewer. Invoked on logout.
func (c *FollowCache) ResetViewer(ctx context.Context, viewerID string) error {
	if c.rdb == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, "follow:"+viewerID+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
