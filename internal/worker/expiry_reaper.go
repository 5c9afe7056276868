package worker

import (
	"context"
	"fmt"
	"procomp-service/internal/queue"
	apperrors "procomp-service/pkg/app_errors"
	"procomp-service/pkg/logger"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepBatchSize = 100

// Expirer 把逾期的報價轉為 closed；force=false 時由實作檢查期限
type Expirer interface {
	Reject(ctx context.Context, ticketID int, force bool) (bool, error)
}

// ExpiredLister 資料庫端的補償查詢，用於重啟後對帳
type ExpiredLister interface {
	ListExpiredTicketIDs(ctx context.Context, sentBefore time.Time, limit int) ([]int, error)
}

type ExpiryReaper struct {
	queue    queue.ExpiryQueue
	lister   ExpiredLister
	window   time.Duration
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	timers  map[int]*time.Timer
	expirer Expirer
	ctx     context.Context
	cron    *cron.Cron
}

func NewExpiryReaper(q queue.ExpiryQueue, lister ExpiredLister, window, interval time.Duration) *ExpiryReaper {
	return &ExpiryReaper{
		queue:    q,
		lister:   lister,
		window:   window,
		interval: interval,
		now:      time.Now,
		timers:   make(map[int]*time.Timer),
		ctx:      context.Background(),
	}
}

// WithClock 替換時鐘 (測試用)
func (r *ExpiryReaper) WithClock(now func() time.Time) *ExpiryReaper {
	r.now = now
	return r
}

// Arm 寫入持久排程並啟動單次計時器。
// 持久排程失敗時計時器仍會啟動，並回傳 schedule 階段的錯誤。
func (r *ExpiryReaper) Arm(ctx context.Context, ticketID int, dueAt time.Time) error {
	var scheduleErr error
	if err := r.queue.Schedule(ctx, ticketID, dueAt); err != nil {
		scheduleErr = apperrors.NewDependencyError(apperrors.StageSchedule, ticketID, err)
	}

	delay := dueAt.Sub(r.now())
	if delay < 0 {
		delay = 0
	}

	r.mu.Lock()
	if old, ok := r.timers[ticketID]; ok {
		old.Stop()
	}
	r.timers[ticketID] = time.AfterFunc(delay, func() { r.fire(ticketID) })
	r.mu.Unlock()

	return scheduleErr
}

// Disarm 報價已被接受或關閉時取消計時器與排程
func (r *ExpiryReaper) Disarm(ctx context.Context, ticketID int) error {
	r.mu.Lock()
	if t, ok := r.timers[ticketID]; ok {
		t.Stop()
		delete(r.timers, ticketID)
	}
	r.mu.Unlock()

	return r.queue.Remove(ctx, ticketID)
}

// fire 計時器到期；提早觸發時 Reject 不做任何事，由定期掃描收尾
func (r *ExpiryReaper) fire(ticketID int) {
	r.mu.Lock()
	delete(r.timers, ticketID)
	expirer := r.expirer
	ctx := r.ctx
	r.mu.Unlock()

	if expirer == nil {
		return
	}

	transitioned, err := expirer.Reject(ctx, ticketID, false)
	if err != nil {
		logger.WithComponent("reaper").Error("timer reject failed", zap.Int("ticket_id", ticketID), zap.Error(err))
		return
	}
	if !transitioned {
		logger.WithComponent("reaper").Debug("timer fired, nothing to expire", zap.Int("ticket_id", ticketID))
		return
	}

	logger.WithComponent("reaper").Info("quote expired", zap.Int("ticket_id", ticketID), zap.String("source", "timer"))
	if err := r.queue.Remove(ctx, ticketID); err != nil {
		logger.WithComponent("reaper").Warn("remove expiry entry failed", zap.Int("ticket_id", ticketID), zap.Error(err))
	}
}

// Start 綁定 Expirer，立即對帳一次，再以 cron 定期掃描
func (r *ExpiryReaper) Start(ctx context.Context, expirer Expirer) error {
	r.mu.Lock()
	r.expirer = expirer
	r.ctx = ctx
	r.mu.Unlock()

	if _, err := r.Sweep(ctx, expirer); err != nil {
		logger.WithComponent("reaper").Error("initial sweep failed", zap.Error(err))
	}

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", r.interval), func() {
		if _, err := r.Sweep(ctx, expirer); err != nil {
			logger.WithComponent("reaper").Error("sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// Stop 停止 cron 並取消所有未觸發的計時器。持久排程保留。
func (r *ExpiryReaper) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
	r.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Sweep 處理所有已到期的項目，回傳成功關閉的數量
//  1. 從持久排程領取到期項目
//  2. 從資料庫補撈超過期限仍為 sent 的項目
func (r *ExpiryReaper) Sweep(ctx context.Context, expirer Expirer) (int, error) {
	now := r.now()
	closed := 0

	deliveries, claimErr := r.queue.ClaimDue(ctx, now, sweepBatchSize)
	if claimErr != nil {
		logger.WithComponent("reaper").Error("claim due failed", zap.Error(claimErr))
	}
	for _, d := range deliveries {
		transitioned, err := expirer.Reject(ctx, d.Data.TicketID, false)
		if err != nil {
			logger.WithComponent("reaper").Error("sweep reject failed", zap.Int("ticket_id", d.Data.TicketID), zap.Error(err))
			d.Nack(true)
			continue
		}
		d.Ack()
		if transitioned {
			closed++
			logger.WithComponent("reaper").Info("quote expired", zap.Int("ticket_id", d.Data.TicketID), zap.String("source", "schedule"))
		}
	}

	if r.lister == nil {
		return closed, nil
	}

	ids, listErr := r.lister.ListExpiredTicketIDs(ctx, now.Add(-r.window), sweepBatchSize)
	if listErr != nil {
		return closed, fmt.Errorf("list expired: %w", listErr)
	}
	for _, id := range ids {
		transitioned, err := expirer.Reject(ctx, id, false)
		if err != nil {
			logger.WithComponent("reaper").Error("reconcile reject failed", zap.Int("ticket_id", id), zap.Error(err))
			continue
		}
		if transitioned {
			closed++
			logger.WithComponent("reaper").Info("quote expired", zap.Int("ticket_id", id), zap.String("source", "reconcile"))
		}
	}

	return closed, claimErr
}
