package common

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/go-redis/redis/v8"

	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/common/logger"
)

// RDB is the shared Redis client, valid only when IsRedisEnabled returns
// true. Left nil in the default single-process SQLite deployment.
var RDB redis.Cmdable

var redisEnabled atomic.Bool

func IsRedisEnabled() bool {
	return redisEnabled.Load()
}

// InitRedisClient connects RDB when config.RedisConnString is set. Call
// once at startup, after config is loaded and before any cache-backed
// repository is constructed. A no-op, not an error, when Redis isn't
// configured — this gateway runs single-process by default.
func InitRedisClient() error {
	if config.RedisConnString == "" {
		logger.Logger.Info("REDIS_CONN_STRING not set, candidate cache stays in-process")
		return nil
	}

	opt, err := redis.ParseURL(config.RedisConnString)
	if err != nil {
		return errors.Wrap(err, "parse REDIS_CONN_STRING")
	}
	RDB = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := RDB.Ping(ctx).Result(); err != nil {
		return errors.Wrap(err, "redis ping")
	}

	redisEnabled.Store(true)
	logger.Logger.Info("redis candidate cache enabled", zap.String("addr", opt.Addr))
	return nil
}
