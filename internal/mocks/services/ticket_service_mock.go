package services

import (
	"context"
	"procomp-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type TicketServiceMock struct {
	mock.Mock
}

func NewTicketServiceMock() *TicketServiceMock {
	return &TicketServiceMock{}
}

func (m *TicketServiceMock) Create(ctx context.Context, userID int, req model.CreateTicketRequest) (*model.ServiceTicket, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ServiceTicket), args.Error(1)
}

func (m *TicketServiceMock) ListByUser(ctx context.Context, userID int) ([]*model.ServiceTicket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ServiceTicket), args.Error(1)
}

func (m *TicketServiceMock) Delete(ctx context.Context, userID int, ticketID int) error {
	args := m.Called(ctx, userID, ticketID)
	return args.Error(0)
}

type CatalogServiceMock struct {
	mock.Mock
}

func NewCatalogServiceMock() *CatalogServiceMock {
	return &CatalogServiceMock{}
}

func (m *CatalogServiceMock) Settlements(ctx context.Context) ([]*model.Settlement, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Settlement), args.Error(1)
}

func (m *CatalogServiceMock) Categories(ctx context.Context) ([]*model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Category), args.Error(1)
}
