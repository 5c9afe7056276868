package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"procomp-service/internal/mailer"
	"procomp-service/internal/model"
	"procomp-service/internal/repository"
	apperrors "procomp-service/pkg/app_errors"
	"procomp-service/pkg/logger"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	CommandStats      = "stats"
	CommandLatestUser = "latest user"
)

type AdminService interface {
	ListOrders(ctx context.Context) ([]*model.AdminOrder, error)
	UpdateOrderStatus(ctx context.Context, ticketID int, req model.UpdateOrderStatusRequest) error
	SendMessage(ctx context.Context, req model.SendMessageRequest) error
	ListUsers(ctx context.Context) ([]*model.UserSummary, error)
	SetUserRole(ctx context.Context, userID int, isAdmin bool) error
	// actorID 為 0 代表操作者不是客戶帳號
	DeleteUser(ctx context.Context, actorID int, userID int) error
	RunCommand(ctx context.Context, command string) (*model.CommandResult, error)
	Stats(ctx context.Context) (*model.OrderStats, error)
	LatestUser(ctx context.Context) (*model.User, error)
}

type AdminServiceImpl struct {
	orders     repository.OrderRepository
	users      repository.UserRepository
	transactor repository.Transactor
	mailer     mailer.Mailer
	now        func() time.Time
}

func NewAdminService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	transactor repository.Transactor,
	m mailer.Mailer,
) *AdminServiceImpl {
	return &AdminServiceImpl{
		orders:     orders,
		users:      users,
		transactor: transactor,
		mailer:     m,
		now:        time.Now,
	}
}

func (s *AdminServiceImpl) ListOrders(ctx context.Context) ([]*model.AdminOrder, error) {
	return s.orders.List(ctx)
}

func (s *AdminServiceImpl) UpdateOrderStatus(ctx context.Context, ticketID int, req model.UpdateOrderStatusRequest) error {
	if !req.Status.IsValid() {
		return apperrors.ErrInvalidStatus
	}
	return s.orders.UpsertStatus(ctx, ticketID, req.Status, strings.TrimSpace(req.Note), s.now())
}

func (s *AdminServiceImpl) SendMessage(ctx context.Context, req model.SendMessageRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.NewValidationError("message", "is required")
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		return err
	}

	subject := req.Subject
	if subject == "" {
		subject = "PROCOMP üzenet"
	}
	name := user.Name
	if name == "" {
		name = "Ügyfelünk"
	}
	body := strings.ReplaceAll(html.EscapeString(req.Message), "\n", "<br>")

	err = s.mailer.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: subject,
		HTML:    fmt.Sprintf("<p>Kedves %s,</p><p>%s</p><p>Üdvözlettel:<br>PROCOMP csapat</p>", html.EscapeString(name), body),
	})
	if err != nil {
		return apperrors.NewDependencyError(apperrors.StageNotify, 0, err)
	}
	return nil
}

func (s *AdminServiceImpl) ListUsers(ctx context.Context) ([]*model.UserSummary, error) {
	return s.users.List(ctx)
}

func (s *AdminServiceImpl) SetUserRole(ctx context.Context, userID int, isAdmin bool) error {
	if err := s.users.SetAdmin(ctx, userID, isAdmin); err != nil {
		return err
	}
	logger.WithComponent("service").Info("user role updated", zap.Int("user_id", userID), zap.Bool("is_admin", isAdmin))
	return nil
}

func (s *AdminServiceImpl) DeleteUser(ctx context.Context, actorID int, userID int) error {
	if actorID != 0 && actorID == userID {
		return apperrors.ErrSelfDelete
	}

	err := s.transactor.WithTx(ctx, func(tx pgx.Tx) error {
		return s.users.DeleteCascade(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	logger.WithComponent("service").Info("user deleted", zap.Int("user_id", userID))
	return nil
}

func (s *AdminServiceImpl) Stats(ctx context.Context) (*model.OrderStats, error) {
	return s.orders.Stats(ctx)
}

func (s *AdminServiceImpl) LatestUser(ctx context.Context) (*model.User, error) {
	return s.users.FindLatest(ctx)
}

func (s *AdminServiceImpl) RunCommand(ctx context.Context, command string) (*model.CommandResult, error) {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "":
		return nil, apperrors.NewValidationError("command", "is required")

	case CommandStats:
		stats, err := s.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return &model.CommandResult{Output: FormatStats(stats)}, nil

	case CommandLatestUser:
		user, err := s.LatestUser(ctx)
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return &model.CommandResult{Output: "Még nincs regisztrált felhasználó."}, nil
		}
		if err != nil {
			return nil, err
		}
		return &model.CommandResult{Output: FormatLatestUser(user)}, nil

	default:
		return &model.CommandResult{Output: "Ismeretlen parancs. Használd: stats, latest user"}, nil
	}
}

func FormatStats(stats *model.OrderStats) string {
	return fmt.Sprintf("Összes rendelés: %d\nFüggőben: %d\nElfogadva: %d\nElutasítva: %d",
		stats.Total, stats.Pending, stats.Accepted, stats.Rejected)
}

func FormatLatestUser(user *model.User) string {
	name := user.Name
	if name == "" {
		name = user.Email
	}
	return fmt.Sprintf("Legutóbbi felhasználó: %s (%s)", name, user.Email)
}
