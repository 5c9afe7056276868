package services

import (
	"context"
	"procomp-service/internal/cache"
	"procomp-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type AuthServiceMock struct {
	mock.Mock
}

func NewAuthServiceMock() *AuthServiceMock {
	return &AuthServiceMock{}
}

func (m *AuthServiceMock) Register(ctx context.Context, req model.RegisterRequest) (*cache.PendingRegistration, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.PendingRegistration), args.Error(1)
}

func (m *AuthServiceMock) Verify(ctx context.Context, pending *cache.PendingRegistration, req model.VerifyRequest) (*model.User, error) {
	args := m.Called(ctx, pending, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *AuthServiceMock) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginResult), args.Error(1)
}

func (m *AuthServiceMock) Profile(ctx context.Context, sess *cache.Session) (interface{}, error) {
	args := m.Called(ctx, sess)
	return args.Get(0), args.Error(1)
}

func (m *AuthServiceMock) UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) error {
	args := m.Called(ctx, userID, req)
	return args.Error(0)
}

func (m *AuthServiceMock) IsAdmin(ctx context.Context, sess *cache.Session) (bool, error) {
	args := m.Called(ctx, sess)
	return args.Bool(0), args.Error(1)
}
