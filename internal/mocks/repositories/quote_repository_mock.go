package repositories

import (
	"context"
	"procomp-service/internal/model"
	"procomp-service/internal/pricing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type QuoteRepositoryMock struct {
	mock.Mock
}

func NewQuoteRepositoryMock() *QuoteRepositoryMock {
	return &QuoteRepositoryMock{}
}

func (m *QuoteRepositoryMock) Create(ctx context.Context, tx pgx.Tx, item *model.QuoteItem) (*model.QuoteItem, error) {
	args := m.Called(ctx, tx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuoteItem), args.Error(1)
}

func (m *QuoteRepositoryMock) FindLatestByTicketID(ctx context.Context, ticketID int) (*model.QuoteItem, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuoteItem), args.Error(1)
}

func (m *QuoteRepositoryMock) FindCompletionView(ctx context.Context, ticketID int) (*model.CompletionView, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompletionView), args.Error(1)
}

func (m *QuoteRepositoryMock) ListTasks(ctx context.Context) ([]*model.TaskRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TaskRow), args.Error(1)
}

func (m *QuoteRepositoryMock) ListExpiredTicketIDs(ctx context.Context, sentBefore time.Time, limit int) ([]int, error) {
	args := m.Called(ctx, sentBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *QuoteRepositoryMock) TransitionLatest(ctx context.Context, ticketID int, identifier string, createdBefore time.Time, from, to model.QuoteState, at time.Time) (*model.QuoteItem, bool, error) {
	args := m.Called(ctx, ticketID, identifier, createdBefore, from, to, at)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.QuoteItem), args.Bool(1), args.Error(2)
}

func (m *QuoteRepositoryMock) CloseProcessed(ctx context.Context, tx pgx.Tx, itemID int, totals pricing.Breakdown, at time.Time) (bool, error) {
	args := m.Called(ctx, tx, itemID, totals, at)
	return args.Bool(0), args.Error(1)
}
