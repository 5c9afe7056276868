package repository

import (
	"context"
	"errors"
	"fmt"
	"procomp-service/internal/model"
	apperrors "procomp-service/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	List(ctx context.Context) ([]*model.UserSummary, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindLatest(ctx context.Context) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int, params model.UpdateProfileRequest) error
	SetAdmin(ctx context.Context, id int, isAdmin bool) error

	// Transaction methods
	DeleteCascade(ctx context.Context, tx pgx.Tx, id int) error
}

type UserRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &UserRepositoryImpl{
		pool: pool,
	}
}

const userColumns = `
	u.id, u.name, u.login, u.email, u.password_hash, u.phone, u.address,
	u.settlement_id, u.company_name, u.tax_number, u.billing_address, u.is_admin, u.created_at`

func scanUser(row pgx.Row, user *model.User) error {
	return row.Scan(
		&user.ID,
		&user.Name,
		&user.Login,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.Address,
		&user.SettlementID,
		&user.CompanyName,
		&user.TaxNumber,
		&user.BillingAddress,
		&user.IsAdmin,
		&user.CreatedAt,
	)
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (name, login, email, password_hash, phone, address, settlement_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_admin, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		user.Name, user.Login, user.Email, user.PasswordHash, user.Phone, user.Address, user.SettlementID,
	).Scan(
		&user.ID,
		&user.IsAdmin,
		&user.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context) ([]*model.UserSummary, error) {
	query := `
		SELECT id, name, email, phone, is_admin
		FROM users
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*model.UserSummary, 0)
	for rows.Next() {
		var user model.UserSummary
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Phone,
			&user.IsAdmin,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `,
		       s.id, s.name, s.postal_code, s.county
		FROM users u
		LEFT JOIN settlements s ON s.id = u.settlement_id
		WHERE u.id = $1
	`

	var user model.User
	var sID *int
	var sName, sPostal, sCounty *string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Login,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.Address,
		&user.SettlementID,
		&user.CompanyName,
		&user.TaxNumber,
		&user.BillingAddress,
		&user.IsAdmin,
		&user.CreatedAt,
		&sID,
		&sName,
		&sPostal,
		&sCounty,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if sID != nil {
		user.Settlement = &model.Settlement{ID: *sID, Name: deref(sName), PostalCode: deref(sPostal), County: deref(sCounty)}
	}

	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE u.email = $1
		LIMIT 1
	`

	var user model.User
	if err := scanUser(r.pool.QueryRow(ctx, query, email), &user); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepositoryImpl) FindLatest(ctx context.Context) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		ORDER BY u.id DESC
		LIMIT 1
	`

	var user model.User
	if err := scanUser(r.pool.QueryRow(ctx, query), &user); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepositoryImpl) UpdateProfile(ctx context.Context, id int, params model.UpdateProfileRequest) error {
	query := `
		UPDATE users
		SET login = $1, phone = $2, address = $3, company_name = $4, tax_number = $5, billing_address = $6
		WHERE id = $7
	`

	result, err := r.pool.Exec(ctx, query,
		params.Login, params.Phone, params.Address, params.CompanyName, params.TaxNumber, params.BillingAddress, id,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func (r *UserRepositoryImpl) SetAdmin(ctx context.Context, id int, isAdmin bool) error {
	result, err := r.pool.Exec(ctx, `UPDATE users SET is_admin = $1 WHERE id = $2`, isAdmin, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// DeleteCascade removes a customer with its tickets, items and admin statuses.
// Archived billing rows are kept.
func (r *UserRepositoryImpl) DeleteCascade(ctx context.Context, tx pgx.Tx, id int) error {
	statements := []string{
		`DELETE FROM admin_order_status WHERE ticket_id IN (SELECT id FROM service_tickets WHERE user_id = $1)`,
		`DELETE FROM service_ticket_items WHERE ticket_id IN (SELECT id FROM service_tickets WHERE user_id = $1)`,
		`DELETE FROM service_tickets WHERE user_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}

	result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
