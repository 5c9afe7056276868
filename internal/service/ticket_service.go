package service

import (
	"context"
	"procomp-service/internal/model"
	"procomp-service/internal/repository"
	apperrors "procomp-service/pkg/app_errors"
	"time"
)

// TicketService 客戶自己的送修單
type TicketService interface {
	Create(ctx context.Context, userID int, req model.CreateTicketRequest) (*model.ServiceTicket, error)
	ListByUser(ctx context.Context, userID int) ([]*model.ServiceTicket, error)
	// 只能刪除自己的送修單，且只在建立後 2 小時內
	Delete(ctx context.Context, userID int, ticketID int) error
}

type TicketServiceImpl struct {
	repo repository.TicketRepository
	now  func() time.Time
}

func NewTicketService(repo repository.TicketRepository) *TicketServiceImpl {
	return &TicketServiceImpl{repo: repo, now: time.Now}
}

// WithClock 替換時鐘 (測試用)
func (s *TicketServiceImpl) WithClock(now func() time.Time) *TicketServiceImpl {
	s.now = now
	return s
}

func (s *TicketServiceImpl) Create(ctx context.Context, userID int, req model.CreateTicketRequest) (*model.ServiceTicket, error) {
	return s.repo.Create(ctx, &model.ServiceTicket{
		UserID:         userID,
		ShippingMethod: req.ShippingMethod,
		PaymentMethod:  req.PaymentMethod,
		Description:    req.Description,
	})
}

func (s *TicketServiceImpl) ListByUser(ctx context.Context, userID int) ([]*model.ServiceTicket, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *TicketServiceImpl) Delete(ctx context.Context, userID int, ticketID int) error {
	ticket, err := s.repo.FindByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.UserID != userID {
		return apperrors.ErrTicketNotFound
	}
	if !ticket.IsDeletable(s.now()) {
		return apperrors.ErrOrderLocked
	}

	return s.repo.DeleteOwned(ctx, ticketID, userID)
}
