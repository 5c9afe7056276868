package repositories

import (
	"context"
	"procomp-service/internal/model"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type OperatorRepositoryMock struct {
	mock.Mock
}

func NewOperatorRepositoryMock() *OperatorRepositoryMock {
	return &OperatorRepositoryMock{}
}

func (m *OperatorRepositoryMock) FindByID(ctx context.Context, id int) (*model.Operator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Operator), args.Error(1)
}

func (m *OperatorRepositoryMock) FindByEmail(ctx context.Context, email string) (*model.Operator, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Operator), args.Error(1)
}

type BillingRepositoryMock struct {
	mock.Mock
}

func NewBillingRepositoryMock() *BillingRepositoryMock {
	return &BillingRepositoryMock{}
}

func (m *BillingRepositoryMock) FindByIdentifier(ctx context.Context, identifier string) (*model.BillingRecord, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BillingRecord), args.Error(1)
}

func (m *BillingRepositoryMock) Archive(ctx context.Context, tx pgx.Tx, rec *model.BillingRecord) (bool, error) {
	args := m.Called(ctx, tx, rec)
	return args.Bool(0), args.Error(1)
}

type OrderRepositoryMock struct {
	mock.Mock
}

func NewOrderRepositoryMock() *OrderRepositoryMock {
	return &OrderRepositoryMock{}
}

func (m *OrderRepositoryMock) List(ctx context.Context) ([]*model.AdminOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AdminOrder), args.Error(1)
}

func (m *OrderRepositoryMock) UpsertStatus(ctx context.Context, ticketID int, status model.OrderStatus, note string, at time.Time) error {
	args := m.Called(ctx, ticketID, status, note, at)
	return args.Error(0)
}

func (m *OrderRepositoryMock) Stats(ctx context.Context) (*model.OrderStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderStats), args.Error(1)
}

type CatalogRepositoryMock struct {
	mock.Mock
}

func NewCatalogRepositoryMock() *CatalogRepositoryMock {
	return &CatalogRepositoryMock{}
}

func (m *CatalogRepositoryMock) ListSettlements(ctx context.Context) ([]*model.Settlement, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Settlement), args.Error(1)
}

func (m *CatalogRepositoryMock) ListCategories(ctx context.Context) ([]*model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Category), args.Error(1)
}

// TransactorMock 直接以 nil tx 執行 fn；可用 Err 模擬 commit 失敗
type TransactorMock struct {
	Calls int
	Err   error
}

func (m *TransactorMock) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.Calls++
	if err := fn(nil); err != nil {
		return err
	}
	return m.Err
}
