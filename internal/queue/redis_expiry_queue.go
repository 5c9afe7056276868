package queue

import (
	"context"
	"fmt"
	"procomp-service/pkg/logger"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const ExpiryKey = "quotes:expiry"

// RedisExpiryQueueConfig 可注入的設定；零值時使用預設。
type RedisExpiryQueueConfig struct {
	Key        string        // sorted set key
	RetryDelay time.Duration // Nack(requeue) 後延遲多久再次到期
}

func defaultRedisExpiryConfig() RedisExpiryQueueConfig {
	return RedisExpiryQueueConfig{
		Key:        ExpiryKey,
		RetryDelay: 30 * time.Second,
	}
}

// RedisExpiryQueue 以 sorted set 保存到期時間 (score = unix ms)，重啟後仍存在
type RedisExpiryQueue struct {
	client *redis.Client
	cfg    RedisExpiryQueueConfig
}

// NewRedisExpiryQueue 建立 Redis 版 ExpiryQueue。config 可為 nil。
func NewRedisExpiryQueue(client *redis.Client, config *RedisExpiryQueueConfig) ExpiryQueue {
	cfg := defaultRedisExpiryConfig()
	if config != nil {
		if config.Key != "" {
			cfg.Key = config.Key
		}
		if config.RetryDelay > 0 {
			cfg.RetryDelay = config.RetryDelay
		}
	}
	return &RedisExpiryQueue{
		client: client,
		cfg:    cfg,
	}
}

func (q *RedisExpiryQueue) Schedule(ctx context.Context, ticketID int, dueAt time.Time) error {
	err := q.client.ZAdd(ctx, q.cfg.Key, redis.Z{
		Score:  float64(dueAt.UnixMilli()),
		Member: strconv.Itoa(ticketID),
	}).Err()
	if err != nil {
		return fmt.Errorf("zadd: %w", err)
	}
	return nil
}

/*
領取已到期項目 (使用Lua腳本確保原子性)
 1. ZRANGEBYSCORE 取出 score <= now 的項目
 2. ZREM 移除，多個 sweeper 不會領到同一筆
*/
func (q *RedisExpiryQueue) ClaimDue(ctx context.Context, now time.Time, limit int) ([]Delivery, error) {
	script := `
		local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'WITHSCORES', 'LIMIT', 0, tonumber(ARGV[2]))
		for i = 1, #due, 2 do
			redis.call('ZREM', KEYS[1], due[i])
		end
		return due
	`

	if limit <= 0 {
		limit = 100
	}

	result, err := q.client.Eval(ctx, script, []string{q.cfg.Key}, now.UnixMilli(), limit).Result()
	if err != nil {
		return nil, fmt.Errorf("claim due: %w", err)
	}

	raw, ok := result.([]interface{})
	if !ok {
		return nil, fmt.Errorf("claim due: unexpected result %T", result)
	}

	out := make([]Delivery, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		d := q.newDelivery(ctx, raw[i], raw[i+1])
		if d != nil {
			out = append(out, *d)
		}
	}

	return out, nil
}

func (q *RedisExpiryQueue) Remove(ctx context.Context, ticketID int) error {
	return q.client.ZRem(ctx, q.cfg.Key, strconv.Itoa(ticketID)).Err()
}

// newDelivery 從 sorted set 成員組裝 Delivery（含 Ack/Nack）
func (q *RedisExpiryQueue) newDelivery(ctx context.Context, member, score interface{}) *Delivery {
	memberStr, _ := member.(string)
	ticketID, err := strconv.Atoi(memberStr)
	if err != nil {
		logger.WithComponent("mq").Warn("invalid expiry member", zap.Any("member", member))
		return nil
	}

	scoreStr, _ := score.(string)
	ms, err := strconv.ParseFloat(scoreStr, 64)
	if err != nil {
		logger.WithComponent("mq").Warn("invalid expiry score", zap.Int("ticket_id", ticketID), zap.Any("score", score))
		return nil
	}

	entry := ExpiryEntry{TicketID: ticketID, DueAt: time.UnixMilli(int64(ms))}
	return &Delivery{
		Data: entry,
		Ack:  func() { /* ZREM 已在領取時完成 */ },
		Nack: func(requeue bool) {
			if !requeue {
				return
			}
			retryAt := time.Now().Add(q.cfg.RetryDelay)
			if err := q.Schedule(ctx, ticketID, retryAt); err != nil {
				logger.WithComponent("mq").Error("requeue expiry failed", zap.Int("ticket_id", ticketID), zap.Error(err))
				return
			}
			logger.WithComponent("mq").Info("expiry nack(requeue), will retry", zap.Int("ticket_id", ticketID), zap.Duration("retry_delay", q.cfg.RetryDelay))
		},
	}
}
