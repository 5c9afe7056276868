package database

import (
	"context"
	"fmt"
	"procomp-service/config"
	"time"

	"github.com/redis/go-redis/v9"
)

// 連線檢查的預設上限，DialTimeout 未設定時使用
const defaultRedisPingTimeout = 5 * time.Second

func InitRedis(config *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(redisOptions(config))

	timeout := config.DialTimeout
	if timeout <= 0 {
		timeout = defaultRedisPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s:%s: %w", config.Host, config.Port, err)
	}

	return rdb, nil
}

func redisOptions(config *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Host, config.Port),
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}
