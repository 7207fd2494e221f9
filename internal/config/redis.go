package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis returns nil when REDIS_ADDR is not configured.
func ConnectRedis(ctx context.Context, env Env) (*redis.Client, error) {
	if env.RedisAddr == "" {
		slog.Warn("REDIS_ADDR not set, visitor counters disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     env.RedisAddr,
		Password: env.RedisPassword,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	slog.Info("connected to Redis", "addr", env.RedisAddr)
	return client, nil
}
