package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/afi-risk/pkg/common/config"
	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
)

var (
	redisClient *redis.Client
	redisErr    error
	redisOnce   sync.Once
)

// GetRedis connects to the configured Redis. Callers fall back to in-process
// state when it returns an error.
func GetRedis(cfg *config.Config) (*redis.Client, error) {
	redisOnce.Do(func() {
		if cfg.RedisHost == "" {
			redisErr = fmt.Errorf("redis not configured")
			return
		}
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			logger.Log.WithError(err).Error("Failed to connect to Redis")
			client.Close()
			redisErr = fmt.Errorf("pinging redis: %w", err)
			return
		}
		logger.Log.Info("Connected to Redis")
		redisClient = client
	})

	return redisClient, redisErr
}

func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}
