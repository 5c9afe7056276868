package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"procomp-service/internal/model"
	apperrors "procomp-service/pkg/app_errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PendingRegistration 註冊第一步暫存的資料，只保存 bcrypt 雜湊
type PendingRegistration struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Code         string `json:"code"`
}

// Session 會話內容
type Session struct {
	ID           string               `json:"-"`
	UserID       int                  `json:"user_id,omitempty"`
	Email        string               `json:"email,omitempty"`
	Role         model.Role           `json:"role,omitempty"`
	Operator     bool                 `json:"operator,omitempty"`
	Registration *PendingRegistration `json:"registration,omitempty"`
}

// IsAuthenticated 是否已登入
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != 0 && s.Role != ""
}

type SessionStore interface {
	Create(ctx context.Context, sess *Session) (string, error)
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Destroy(ctx context.Context, id string) error
}

type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisSessionStore) getKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisSessionStore) Create(ctx context.Context, sess *Session) (string, error) {
	sess.ID = uuid.NewString()
	if err := s.Save(ctx, sess); err != nil {
		return "", err
	}
	return sess.ID, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, apperrors.ErrSessionNotFound
	}

	raw, err := s.client.Get(ctx, s.getKey(id)).Bytes()
	if err == redis.Nil {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", id, err)
	}
	sess.ID = id

	return &sess, nil
}

// Save 寫回會話並刷新 TTL (rolling expiry)
func (s *RedisSessionStore) Save(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		return apperrors.ErrSessionNotFound
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.getKey(sess.ID), raw, s.ttl).Err()
}

func (s *RedisSessionStore) Destroy(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.getKey(id)).Err()
}
