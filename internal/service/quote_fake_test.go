package service_test

import (
	"context"
	"procomp-service/internal/model"
	"procomp-service/internal/pricing"
	apperrors "procomp-service/pkg/app_errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// memQuotes 記憶體版 QuoteRepository，TransitionLatest 與資料庫一樣是單一 CAS
type memQuotes struct {
	mu      sync.Mutex
	nextID  int
	items   map[int][]*model.QuoteItem
	views   map[int]model.CompletionView
	pending []int
}

func newMemQuotes() *memQuotes {
	return &memQuotes{items: make(map[int][]*model.QuoteItem), views: make(map[int]model.CompletionView)}
}

func (m *memQuotes) seed(ticketID int, identifier string, state model.QuoteState, createdAt time.Time, in pricing.Inputs) *model.QuoteItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	item := &model.QuoteItem{
		ID:           m.nextID,
		TicketID:     ticketID,
		Identifier:   identifier,
		State:        state,
		LaborHours:   in.LaborHours,
		LaborRate:    in.LaborRate,
		MaterialCost: in.MaterialCost,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	m.items[ticketID] = append(m.items[ticketID], item)
	return item
}

func (m *memQuotes) latest(ticketID int) *model.QuoteItem {
	list := m.items[ticketID]
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1]
}

func (m *memQuotes) stateOf(ticketID int) model.QuoteState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l := m.latest(ticketID); l != nil {
		return l.State
	}
	return ""
}

func (m *memQuotes) setState(ticketID int, identifier string, state model.QuoteState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items[ticketID] {
		if item.Identifier == identifier {
			item.State = state
		}
	}
}

func (m *memQuotes) stateOfIdentifier(ticketID int, identifier string) model.QuoteState {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items[ticketID] {
		if item.Identifier == identifier {
			return item.State
		}
	}
	return ""
}

func (m *memQuotes) count(ticketID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items[ticketID])
}

func (m *memQuotes) Create(ctx context.Context, tx pgx.Tx, item *model.QuoteItem) (*model.QuoteItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l := m.latest(item.TicketID); l != nil && l.State.IsLive() {
		return nil, apperrors.ErrQuoteActive
	}
	m.nextID++
	cp := *item
	cp.ID = m.nextID
	cp.UpdatedAt = cp.CreatedAt
	m.items[item.TicketID] = append(m.items[item.TicketID], &cp)
	m.pending = append(m.pending, cp.ID)
	return &cp, nil
}

// rollback 移除交易中新增的項目
func (m *memQuotes) rollback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.pending {
		for ticketID, list := range m.items {
			kept := list[:0]
			for _, item := range list {
				if item.ID != id {
					kept = append(kept, item)
				}
			}
			m.items[ticketID] = kept
		}
	}
	m.pending = nil
}

func (m *memQuotes) commit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
}

// memTransactor 一次只跑一個交易，如同唯一索引讓第二筆寫入等待；
// fn 或 Err 失敗時回滾 Create
type memTransactor struct {
	mu     sync.Mutex
	quotes *memQuotes
	Calls  int
	Err    error
}

func (t *memTransactor) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Calls++
	err := fn(nil)
	if err == nil {
		err = t.Err
	}
	if err != nil {
		t.quotes.rollback()
		return err
	}
	t.quotes.commit()
	return nil
}

// interleavedQuotes 在 FindLatestByTicketID 讀完之後執行一次 afterRead，
// 模擬讀取與更新之間的並行寫入
type interleavedQuotes struct {
	*memQuotes
	once      sync.Once
	afterRead func()
}

func (q *interleavedQuotes) FindLatestByTicketID(ctx context.Context, ticketID int) (*model.QuoteItem, error) {
	item, err := q.memQuotes.FindLatestByTicketID(ctx, ticketID)
	q.once.Do(q.afterRead)
	return item, err
}

func (m *memQuotes) FindLatestByTicketID(ctx context.Context, ticketID int) (*model.QuoteItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.latest(ticketID)
	if l == nil {
		return nil, apperrors.ErrQuoteNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memQuotes) FindCompletionView(ctx context.Context, ticketID int) (*model.CompletionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.latest(ticketID)
	if l == nil {
		return nil, apperrors.ErrQuoteNotFound
	}
	view := m.views[ticketID]
	view.Item = *l
	return &view, nil
}

func (m *memQuotes) ListTasks(ctx context.Context) ([]*model.TaskRow, error) {
	return []*model.TaskRow{}, nil
}

func (m *memQuotes) ListExpiredTicketIDs(ctx context.Context, sentBefore time.Time, limit int) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0)
	for ticketID := range m.items {
		l := m.latest(ticketID)
		if l.State == model.QuoteStateSent && !l.CreatedAt.After(sentBefore) && len(ids) < limit {
			ids = append(ids, ticketID)
		}
	}
	return ids, nil
}

func (m *memQuotes) TransitionLatest(ctx context.Context, ticketID int, identifier string, createdBefore time.Time, from, to model.QuoteState, at time.Time) (*model.QuoteItem, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.latest(ticketID)
	if l == nil || l.State != from || (identifier != "" && l.Identifier != identifier) {
		return nil, false, nil
	}
	if !createdBefore.IsZero() && l.CreatedAt.After(createdBefore) {
		return nil, false, nil
	}
	l.State = to
	l.UpdatedAt = at
	if to == model.QuoteStateProcess {
		received := at
		l.ReceivedAt = &received
	}
	cp := *l
	return &cp, true, nil
}

func (m *memQuotes) CloseProcessed(ctx context.Context, tx pgx.Tx, itemID int, totals pricing.Breakdown, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, list := range m.items {
		for _, item := range list {
			if item.ID == itemID && item.State == model.QuoteStateProcess {
				item.State = model.QuoteStateClosed
				item.NetTotal = totals.Net
				item.GrossTotal = totals.Gross
				item.UpdatedAt = at
				return true, nil
			}
		}
	}
	return false, nil
}
