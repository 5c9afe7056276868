package queue

import (
	"context"
	"sort"
	"sync"
	"time"
)

// ExpiryEntry 一筆待到期的報價
type ExpiryEntry struct {
	TicketID int
	DueAt    time.Time
}

type Delivery struct {
	Data ExpiryEntry
	Ack  func()
	Nack func(requeue bool)
}

type ExpiryQueue interface {
	// 排程：記錄報價到期時間，同一 ticket 重複排程會覆蓋
	Schedule(ctx context.Context, ticketID int, dueAt time.Time) error
	// 領取：原子地取出已到期的項目，Nack(true) 會延遲後重新排入
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]Delivery, error)
	// 移除：報價已被處理時取消排程
	Remove(ctx context.Context, ticketID int) error
}

// MemoryExpiryQueue 記憶體版，用於單機與測試
type MemoryExpiryQueue struct {
	mu         sync.Mutex
	due        map[int]time.Time
	retryDelay time.Duration
}

func NewMemoryExpiryQueue(retryDelay time.Duration) *MemoryExpiryQueue {
	return &MemoryExpiryQueue{
		due:        make(map[int]time.Time),
		retryDelay: retryDelay,
	}
}

func (q *MemoryExpiryQueue) Schedule(ctx context.Context, ticketID int, dueAt time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.due[ticketID] = dueAt
	return nil
}

func (q *MemoryExpiryQueue) ClaimDue(ctx context.Context, now time.Time, limit int) ([]Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := make([]ExpiryEntry, 0)
	for id, at := range q.due {
		if !at.After(now) {
			entries = append(entries, ExpiryEntry{TicketID: id, DueAt: at})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].DueAt.Before(entries[j].DueAt) })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]Delivery, 0, len(entries))
	for _, e := range entries {
		delete(q.due, e.TicketID)
		entry := e
		out = append(out, Delivery{
			Data: entry,
			Ack:  func() { /* 已在領取時移除 */ },
			Nack: func(requeue bool) {
				if requeue {
					_ = q.Schedule(ctx, entry.TicketID, now.Add(q.retryDelay))
				}
			},
		})
	}

	return out, nil
}

func (q *MemoryExpiryQueue) Remove(ctx context.Context, ticketID int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.due, ticketID)
	return nil
}

// Len 目前排程中的數量
func (q *MemoryExpiryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.due)
}
