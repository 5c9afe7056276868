package services

import (
	"context"
	"procomp-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type AdminServiceMock struct {
	mock.Mock
}

func NewAdminServiceMock() *AdminServiceMock {
	return &AdminServiceMock{}
}

func (m *AdminServiceMock) ListOrders(ctx context.Context) ([]*model.AdminOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AdminOrder), args.Error(1)
}

func (m *AdminServiceMock) UpdateOrderStatus(ctx context.Context, ticketID int, req model.UpdateOrderStatusRequest) error {
	args := m.Called(ctx, ticketID, req)
	return args.Error(0)
}

func (m *AdminServiceMock) SendMessage(ctx context.Context, req model.SendMessageRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *AdminServiceMock) ListUsers(ctx context.Context) ([]*model.UserSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserSummary), args.Error(1)
}

func (m *AdminServiceMock) SetUserRole(ctx context.Context, userID int, isAdmin bool) error {
	args := m.Called(ctx, userID, isAdmin)
	return args.Error(0)
}

func (m *AdminServiceMock) DeleteUser(ctx context.Context, actorID int, userID int) error {
	args := m.Called(ctx, actorID, userID)
	return args.Error(0)
}

func (m *AdminServiceMock) RunCommand(ctx context.Context, command string) (*model.CommandResult, error) {
	args := m.Called(ctx, command)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommandResult), args.Error(1)
}

func (m *AdminServiceMock) Stats(ctx context.Context) (*model.OrderStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderStats), args.Error(1)
}

func (m *AdminServiceMock) LatestUser(ctx context.Context) (*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
