package service_test

import (
	"context"
	"testing"
	"time"

	repoMocks "procomp-service/internal/mocks/repositories"
	"procomp-service/internal/model"
	"procomp-service/internal/service"
	apperrors "procomp-service/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTicketService_Create(t *testing.T) {
	ctx := context.Background()
	repo := repoMocks.NewTicketRepositoryMock()
	svc := service.NewTicketService(repo)

	repo.On("Create", ctx, mock.MatchedBy(func(tk *model.ServiceTicket) bool {
		return tk.UserID == 7 && tk.ShippingMethod == "Futár" && tk.Description == "Nem kapcsol be"
	})).Return(&model.ServiceTicket{ID: 42, UserID: 7}, nil).Once()

	ticket, err := svc.Create(ctx, 7, model.CreateTicketRequest{
		ShippingMethod: "Futár",
		PaymentMethod:  "Utánvét",
		Description:    "Nem kapcsol be",
	})

	require.NoError(t, err)
	assert.Equal(t, 42, ticket.ID)
	repo.AssertExpectations(t)
}

func TestTicketService_Delete(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		repo := repoMocks.NewTicketRepositoryMock()
		svc := service.NewTicketService(repo).WithClock(func() time.Time { return now })
		repo.On("FindByID", ctx, 42).Return(&model.ServiceTicket{ID: 42, UserID: 7, CreatedAt: now.Add(-2 * time.Hour)}, nil).Once()
		repo.On("DeleteOwned", ctx, 42, 7).Return(nil).Once()

		err := svc.Delete(ctx, 7, 42)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Failed - older than two hours", func(t *testing.T) {
		repo := repoMocks.NewTicketRepositoryMock()
		svc := service.NewTicketService(repo).WithClock(func() time.Time { return now })
		repo.On("FindByID", ctx, 42).Return(&model.ServiceTicket{ID: 42, UserID: 7, CreatedAt: now.Add(-2*time.Hour - time.Second)}, nil).Once()

		err := svc.Delete(ctx, 7, 42)

		assert.ErrorIs(t, err, apperrors.ErrOrderLocked)
		repo.AssertNotCalled(t, "DeleteOwned", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - someone else's ticket", func(t *testing.T) {
		repo := repoMocks.NewTicketRepositoryMock()
		svc := service.NewTicketService(repo).WithClock(func() time.Time { return now })
		repo.On("FindByID", ctx, 42).Return(&model.ServiceTicket{ID: 42, UserID: 8, CreatedAt: now}, nil).Once()

		err := svc.Delete(ctx, 7, 42)

		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}
