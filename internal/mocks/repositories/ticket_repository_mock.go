package repositories

import (
	"context"
	"procomp-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type TicketRepositoryMock struct {
	mock.Mock
}

func NewTicketRepositoryMock() *TicketRepositoryMock {
	return &TicketRepositoryMock{}
}

func (m *TicketRepositoryMock) Create(ctx context.Context, ticket *model.ServiceTicket) (*model.ServiceTicket, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ServiceTicket), args.Error(1)
}

func (m *TicketRepositoryMock) FindByID(ctx context.Context, id int) (*model.ServiceTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ServiceTicket), args.Error(1)
}

func (m *TicketRepositoryMock) ListByUserID(ctx context.Context, userID int) ([]*model.ServiceTicket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ServiceTicket), args.Error(1)
}

func (m *TicketRepositoryMock) DeleteOwned(ctx context.Context, id int, userID int) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
