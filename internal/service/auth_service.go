package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"procomp-service/internal/cache"
	"procomp-service/internal/mailer"
	"procomp-service/internal/model"
	"procomp-service/internal/repository"
	apperrors "procomp-service/pkg/app_errors"
	"procomp-service/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	// 註冊第一步：寄出驗證碼，回傳待驗證資料 (存入 session)
	Register(ctx context.Context, req model.RegisterRequest) (*cache.PendingRegistration, error)
	// 註冊第二步：比對驗證碼並建立用戶
	Verify(ctx context.Context, pending *cache.PendingRegistration, req model.VerifyRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error)
	Profile(ctx context.Context, sess *cache.Session) (interface{}, error)
	UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) error
	// IsAdmin 重新檢查客戶帳號的管理員旗標
	IsAdmin(ctx context.Context, sess *cache.Session) (bool, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	operators repository.OperatorRepository
	mailer    mailer.Mailer
	cost      int
}

func NewAuthService(users repository.UserRepository, operators repository.OperatorRepository, m mailer.Mailer) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:     users,
		operators: operators,
		mailer:    m,
		cost:      bcrypt.DefaultCost,
	}
}

// WithCost 調整 bcrypt 成本 (測試用 bcrypt.MinCost)
func (s *AuthServiceImpl) WithCost(cost int) *AuthServiceImpl {
	s.cost = cost
	return s
}

func (s *AuthServiceImpl) Register(ctx context.Context, req model.RegisterRequest) (*cache.PendingRegistration, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := verificationCode()
	if err != nil {
		return nil, err
	}

	err = s.mailer.Send(ctx, mailer.Message{
		To:      email,
		Subject: "Regisztráció megerősítése",
		HTML:    fmt.Sprintf("<h3>Megerősítő kód:</h3><p><b>%s</b></p>", code),
	})
	if err != nil {
		return nil, apperrors.NewDependencyError(apperrors.StageNotify, 0, err)
	}

	return &cache.PendingRegistration{
		Email:        email,
		PasswordHash: string(hash),
		Code:         code,
	}, nil
}

func (s *AuthServiceImpl) Verify(ctx context.Context, pending *cache.PendingRegistration, req model.VerifyRequest) (*model.User, error) {
	if pending == nil || pending.Email == "" {
		return nil, apperrors.ErrInvalidVerificationCode
	}
	if subtle.ConstantTimeCompare([]byte(pending.Code), []byte(strings.TrimSpace(req.Code))) != 1 {
		return nil, apperrors.ErrInvalidVerificationCode
	}

	settlementID := req.SettlementID
	user, err := s.users.Create(ctx, &model.User{
		Name:         req.Name,
		Login:        req.Login,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Phone:        req.Phone,
		Address:      req.Address,
		SettlementID: &settlementID,
	})
	if err != nil {
		return nil, err
	}

	logger.WithComponent("service").Info("user registered", zap.Int("user_id", user.ID))
	return user, nil
}

// Login 先查客戶，再查員工；兩者都以 bcrypt 比對
func (s *AuthServiceImpl) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}
	if user != nil && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) == nil {
		return &model.LoginResult{UserID: user.ID, Email: user.Email, Role: model.RoleUser}, nil
	}

	op, err := s.operators.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrOperatorNotFound) {
		return nil, err
	}
	if op != nil && bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)) == nil {
		return &model.LoginResult{UserID: op.ID, Email: op.Email, Role: op.Role(), Operator: true}, nil
	}

	return nil, apperrors.ErrInvalidCredentials
}

func (s *AuthServiceImpl) Profile(ctx context.Context, sess *cache.Session) (interface{}, error) {
	if !sess.IsAuthenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	if sess.Operator {
		op, err := s.operators.FindByID(ctx, sess.UserID)
		if err != nil {
			return nil, err
		}
		return op, nil
	}

	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) error {
	return s.users.UpdateProfile(ctx, userID, req)
}

func (s *AuthServiceImpl) IsAdmin(ctx context.Context, sess *cache.Session) (bool, error) {
	if !sess.IsAuthenticated() {
		return false, apperrors.ErrUnauthorized
	}
	if sess.Operator {
		return sess.Role == model.RoleAdmin, nil
	}

	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, apperrors.ErrUnauthorized
		}
		return false, err
	}
	return user.IsAdmin, nil
}

// verificationCode 6 位數字驗證碼
func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
