package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"procomp-service/internal/mailer"
	infraMocks "procomp-service/internal/mocks/infra"
	repoMocks "procomp-service/internal/mocks/repositories"
	"procomp-service/internal/model"
	"procomp-service/internal/service"
	apperrors "procomp-service/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	orders     *repoMocks.OrderRepositoryMock
	users      *repoMocks.UserRepositoryMock
	transactor *repoMocks.TransactorMock
	mailer     *infraMocks.MailerMock
	service    *service.AdminServiceImpl
}

func setupAdmin() *adminFixture {
	f := &adminFixture{
		orders:     repoMocks.NewOrderRepositoryMock(),
		users:      repoMocks.NewUserRepositoryMock(),
		transactor: &repoMocks.TransactorMock{},
		mailer:     infraMocks.NewMailerMock(),
	}
	f.service = service.NewAdminService(f.orders, f.users, f.transactor, f.mailer)
	return f
}

func TestAdminService_UpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := setupAdmin()
		f.orders.On("UpsertStatus", ctx, 42, model.OrderStatusAccepted, "rendben", mock.Anything).Return(nil).Once()

		err := f.service.UpdateOrderStatus(ctx, 42, model.UpdateOrderStatusRequest{Status: model.OrderStatusAccepted, Note: " rendben "})

		require.NoError(t, err)
		f.orders.AssertExpectations(t)
	})

	t.Run("Failed - invalid status", func(t *testing.T) {
		f := setupAdmin()

		err := f.service.UpdateOrderStatus(ctx, 42, model.UpdateOrderStatusRequest{Status: "done"})

		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})
}

func TestAdminService_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := setupAdmin()
		f.users.On("FindByID", ctx, 5).Return(&model.User{ID: 5, Name: "Kiss Anna", Email: "anna@example.hu"}, nil).Once()
		f.mailer.On("Send", ctx, mock.MatchedBy(func(msg mailer.Message) bool {
			return msg.To == "anna@example.hu" &&
				msg.Subject == "PROCOMP üzenet" &&
				strings.Contains(msg.HTML, "Kedves Kiss Anna") &&
				strings.Contains(msg.HTML, "első sor<br>második")
		})).Return(nil).Once()

		err := f.service.SendMessage(ctx, model.SendMessageRequest{UserID: 5, Message: "első sor\nmásodik"})

		require.NoError(t, err)
		f.mailer.AssertExpectations(t)
	})

	t.Run("Failed - unknown user", func(t *testing.T) {
		f := setupAdmin()
		f.users.On("FindByID", ctx, 5).Return(nil, apperrors.ErrUserNotFound).Once()

		err := f.service.SendMessage(ctx, model.SendMessageRequest{UserID: 5, Message: "hello"})

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestAdminService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := setupAdmin()
		f.users.On("DeleteCascade", ctx, mock.Anything, 5).Return(nil).Once()

		err := f.service.DeleteUser(ctx, 1, 5)

		require.NoError(t, err)
		assert.Equal(t, 1, f.transactor.Calls)
		f.users.AssertExpectations(t)
	})

	t.Run("Failed - own account", func(t *testing.T) {
		f := setupAdmin()

		err := f.service.DeleteUser(ctx, 5, 5)

		assert.ErrorIs(t, err, apperrors.ErrSelfDelete)
		assert.Equal(t, 0, f.transactor.Calls)
	})

	t.Run("Operator actor may delete any customer", func(t *testing.T) {
		f := setupAdmin()
		f.users.On("DeleteCascade", ctx, mock.Anything, 5).Return(nil).Once()

		require.NoError(t, f.service.DeleteUser(ctx, 0, 5))
	})

	t.Run("Failed - not found", func(t *testing.T) {
		f := setupAdmin()
		f.users.On("DeleteCascade", ctx, mock.Anything, 5).Return(apperrors.ErrUserNotFound).Once()

		err := f.service.DeleteUser(ctx, 1, 5)

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestAdminService_RunCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("stats", func(t *testing.T) {
		f := setupAdmin()
		f.orders.On("Stats", ctx).Return(&model.OrderStats{Total: 4, Pending: 2, Accepted: 1, Rejected: 1}, nil).Once()

		result, err := f.service.RunCommand(ctx, "  STATS ")

		require.NoError(t, err)
		assert.Equal(t, "Összes rendelés: 4\nFüggőben: 2\nElfogadva: 1\nElutasítva: 1", result.Output)
	})

	t.Run("latest user", func(t *testing.T) {
		f := setupAdmin()
		f.users.On("FindLatest", ctx).Return(&model.User{Email: "anna@example.hu"}, nil).Once()

		result, err := f.service.RunCommand(ctx, "latest user")

		require.NoError(t, err)
		assert.Equal(t, "Legutóbbi felhasználó: anna@example.hu (anna@example.hu)", result.Output)
	})

	t.Run("latest user without users", func(t *testing.T) {
		f := setupAdmin()
		f.users.On("FindLatest", ctx).Return(nil, apperrors.ErrUserNotFound).Once()

		result, err := f.service.RunCommand(ctx, "latest user")

		require.NoError(t, err)
		assert.Equal(t, "Még nincs regisztrált felhasználó.", result.Output)
	})

	t.Run("unknown", func(t *testing.T) {
		f := setupAdmin()

		result, err := f.service.RunCommand(ctx, "reboot")

		require.NoError(t, err)
		assert.Contains(t, result.Output, "Ismeretlen parancs")
	})

	t.Run("stats failure", func(t *testing.T) {
		f := setupAdmin()
		f.orders.On("Stats", ctx).Return(nil, errors.New("db down")).Once()

		_, err := f.service.RunCommand(ctx, "stats")

		assert.Error(t, err)
	})
}
