package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdentifierReservationTTL 保留期限，足夠覆蓋發送報價的整個流程
const IdentifierReservationTTL = 24 * time.Hour

type IdentifierRegistry interface {
	// 保留：SETNX，已被佔用時回傳 false
	Reserve(ctx context.Context, identifier string, ticketID int) (bool, error)
	// 釋放：只刪除自己持有的保留 (使用Lua腳本確保原子性)
	Release(ctx context.Context, identifier string, ticketID int) error
}

type RedisIdentifierRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdentifierRegistry(client *redis.Client) IdentifierRegistry {
	return &RedisIdentifierRegistry{
		client: client,
		ttl:    IdentifierReservationTTL,
	}
}

func (r *RedisIdentifierRegistry) getKey(identifier string) string {
	return fmt.Sprintf("quote:identifier:%s", identifier)
}

func (r *RedisIdentifierRegistry) Reserve(ctx context.Context, identifier string, ticketID int) (bool, error) {
	return r.client.SetNX(ctx, r.getKey(identifier), ticketID, r.ttl).Result()
}

func (r *RedisIdentifierRegistry) Release(ctx context.Context, identifier string, ticketID int) error {
	script := `
		-- 只有持有者可以釋放
		if redis.call('GET', KEYS[1]) == ARGV[1] then
			return redis.call('DEL', KEYS[1])
		end
		return 0
	`

	return r.client.Eval(ctx, script, []string{r.getKey(identifier)}, strconv.Itoa(ticketID)).Err()
}
