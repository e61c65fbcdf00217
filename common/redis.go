package common

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prismstudio/director-core/common/config"
	"github.com/prismstudio/director-core/common/logger"
)

var RDB *redis.Client
var RedisEnabled = true

// InitRedisClient initializes the optional Redis backend for the entitlement
// cache. Without REDIS_CONN_STRING everything falls back to in-process memory.
func InitRedisClient() (err error) {
	if config.RedisConnString == "" {
		RedisEnabled = false
		logger.SysLog("REDIS_CONN_STRING not set, Redis is not enabled")
		return nil
	}
	logger.SysLog("Redis is enabled")
	opt, err := redis.ParseURL(config.RedisConnString)
	if err != nil {
		logger.FatalLog("failed to parse Redis connection string: " + err.Error())
	}
	RDB = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = RDB.Ping(ctx).Result()
	if err != nil {
		logger.FatalLog("Redis ping test failed: " + err.Error())
	}
	return err
}

func RedisSet(key string, value string, expiration time.Duration) error {
	ctx := context.Background()
	return RDB.Set(ctx, key, value, expiration).Err()
}

func RedisGet(key string) (string, error) {
	ctx := context.Background()
	return RDB.Get(ctx, key).Result()
}

func RedisDel(key string) error {
	ctx := context.Background()
	return RDB.Del(ctx, key).Err()
}
