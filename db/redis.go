package db

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"blogforge/config"
)

var (
	redisOnce   sync.Once
	redisClient *redis.Client
)

// InitRedis initializes the global Redis client backing the recency index.
func InitRedis(ctx context.Context) error {
	var initErr error
	redisOnce.Do(func() {
		cfg := config.GetConfig()
		addr := cfg.Redis.Addr
		if addr == "" {
			addr = "localhost:6379"
		}

		cl := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := cl.Ping(ctx).Err(); err != nil {
			initErr = err
			return
		}
		redisClient = cl
		log.Println("Redis connected")
	})
	return initErr
}

func Redis() *redis.Client { return redisClient }
