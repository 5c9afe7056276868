package testutil

import (
	"context"
	"fmt"
	"log"
	"procomp-service/config"
	"procomp-service/internal/database"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SetupDatabase 連線測試資料庫並套用 schema
func SetupDatabase() (*pgxpool.Pool, func(), error) {
	cfg := config.LoadTestConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize test database: %v", err)
	}

	if err := database.Migrate(context.Background(), pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to migrate test database: %v", err)
	}

	log.Println("Test database connected successfully")

	cleanup := func() {
		pool.Close()
		log.Println("Test database closed")
	}
	return pool, cleanup, nil
}

// NewMiniRedis 啟動記憶體 Redis，測試結束自動關閉
func NewMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}
