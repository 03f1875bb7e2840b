package inits

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func Redis(conn string) (*redis.Client, error) {
	opts, err := redis.ParseURL(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis connection string: %w", err)
	}

	rdb := redis.NewClient(opts)

	// 启动时确认连接可用
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}
