package services

import (
	"context"
	"procomp-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type QuoteServiceMock struct {
	mock.Mock
}

func NewQuoteServiceMock() *QuoteServiceMock {
	return &QuoteServiceMock{}
}

func (m *QuoteServiceMock) Issue(ctx context.Context, req model.IssueQuoteRequest) (*model.IssueQuoteResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IssueQuoteResponse), args.Error(1)
}

func (m *QuoteServiceMock) Accept(ctx context.Context, ticketID, customerID int, rawToken string) (*model.AcceptResult, error) {
	args := m.Called(ctx, ticketID, customerID, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AcceptResult), args.Error(1)
}

func (m *QuoteServiceMock) Reject(ctx context.Context, ticketID int, force bool) (bool, error) {
	args := m.Called(ctx, ticketID, force)
	return args.Bool(0), args.Error(1)
}

func (m *QuoteServiceMock) Complete(ctx context.Context, ticketID int) (*model.CompleteResult, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompleteResult), args.Error(1)
}

func (m *QuoteServiceMock) ListTasks(ctx context.Context) ([]*model.TaskRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TaskRow), args.Error(1)
}
