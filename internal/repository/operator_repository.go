package repository

import (
	"context"
	"procomp-service/internal/model"
	apperrors "procomp-service/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OperatorRepository interface {
	FindByID(ctx context.Context, id int) (*model.Operator, error)
	FindByEmail(ctx context.Context, email string) (*model.Operator, error)
}

type OperatorRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewOperatorRepository(pool *pgxpool.Pool) OperatorRepository {
	return &OperatorRepositoryImpl{
		pool: pool,
	}
}

func (r *OperatorRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Operator, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *OperatorRepositoryImpl) FindByEmail(ctx context.Context, email string) (*model.Operator, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

func (r *OperatorRepositoryImpl) findOne(ctx context.Context, where string, arg interface{}) (*model.Operator, error) {
	query := `
		SELECT id, login, name, email, password_hash, is_admin
		FROM operators
		` + where + `
		LIMIT 1
	`

	var op model.Operator
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&op.ID,
		&op.Login,
		&op.Name,
		&op.Email,
		&op.PasswordHash,
		&op.IsAdmin,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOperatorNotFound
		}
		return nil, err
	}

	return &op, nil
}
