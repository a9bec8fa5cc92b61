package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"skillsync/logging"
)

// Connect opens the redis connection backing the relationship cache. When
// the server is unreachable it returns nil, which NewFollowCache treats as
// "cache disabled": lookups report unknown and writes are no-ops, so the
// core keeps working without persistence.
func Connect(addr string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logging.Logger.Warn("redis unreachable, relationship cache disabled",
			slog.String("addr", addr),
			slog.String("error", err.Error()))
		return nil
	}
	return rdb
}
