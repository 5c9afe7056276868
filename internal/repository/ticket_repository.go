package repository

import (
	"context"
	"fmt"
	"procomp-service/internal/model"
	apperrors "procomp-service/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *model.ServiceTicket) (*model.ServiceTicket, error)
	FindByID(ctx context.Context, id int) (*model.ServiceTicket, error)
	ListByUserID(ctx context.Context, userID int) ([]*model.ServiceTicket, error)
	DeleteOwned(ctx context.Context, id int, userID int) error
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, ticket *model.ServiceTicket) (*model.ServiceTicket, error) {
	query := `
		INSERT INTO service_tickets (user_id, shipping_method, payment_method, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, shipping_method, payment_method, description, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		ticket.UserID, ticket.ShippingMethod, ticket.PaymentMethod, ticket.Description,
	).Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.ShippingMethod,
		&ticket.PaymentMethod,
		&ticket.Description,
		&ticket.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) FindByID(ctx context.Context, id int) (*model.ServiceTicket, error) {
	query := `
		SELECT id, user_id, shipping_method, payment_method, description, created_at
		FROM service_tickets
		WHERE id = $1
	`

	var ticket model.ServiceTicket
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.ShippingMethod,
		&ticket.PaymentMethod,
		&ticket.Description,
		&ticket.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return &ticket, nil
}

func (r *TicketRepositoryImpl) ListByUserID(ctx context.Context, userID int) ([]*model.ServiceTicket, error) {
	query := `
		SELECT id, user_id, shipping_method, payment_method, description, created_at
		FROM service_tickets
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.ServiceTicket, 0)

	for rows.Next() {
		var ticket model.ServiceTicket
		err := rows.Scan(
			&ticket.ID,
			&ticket.UserID,
			&ticket.ShippingMethod,
			&ticket.PaymentMethod,
			&ticket.Description,
			&ticket.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

// DeleteOwned 只刪除屬於該客戶的送修單
func (r *TicketRepositoryImpl) DeleteOwned(ctx context.Context, id int, userID int) error {
	query := `
		DELETE FROM service_tickets
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}
