package repository

import (
	"context"
	"fmt"
	"procomp-service/internal/model"
	apperrors "procomp-service/pkg/app_errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository 後台審核視圖：送修單 + admin_order_status
type OrderRepository interface {
	List(ctx context.Context) ([]*model.AdminOrder, error)
	UpsertStatus(ctx context.Context, ticketID int, status model.OrderStatus, note string, at time.Time) error
	Stats(ctx context.Context) (*model.OrderStats, error)
}

type OrderRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &OrderRepositoryImpl{
		pool: pool,
	}
}

func (r *OrderRepositoryImpl) List(ctx context.Context) ([]*model.AdminOrder, error) {
	query := `
		SELECT k.id, k.user_id, k.shipping_method, k.payment_method, k.description, k.created_at,
		       u.name, u.email,
		       COALESCE(s.status, 'pending'), s.note, s.updated_at
		FROM service_tickets k
		JOIN users u ON u.id = k.user_id
		LEFT JOIN admin_order_status s ON s.ticket_id = k.id
		ORDER BY k.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*model.AdminOrder, 0)

	for rows.Next() {
		var order model.AdminOrder
		err := rows.Scan(
			&order.TicketID,
			&order.UserID,
			&order.ShippingMethod,
			&order.PaymentMethod,
			&order.Description,
			&order.CreatedAt,
			&order.CustomerName,
			&order.CustomerEmail,
			&order.Status,
			&order.Note,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepositoryImpl) UpsertStatus(ctx context.Context, ticketID int, status model.OrderStatus, note string, at time.Time) error {
	if !status.IsValid() {
		return apperrors.ErrInvalidStatus
	}

	query := `
		INSERT INTO admin_order_status (ticket_id, status, note, updated_at)
		SELECT id, $2, NULLIF($3, ''), $4 FROM service_tickets WHERE id = $1
		ON CONFLICT (ticket_id)
		DO UPDATE SET status = EXCLUDED.status, note = EXCLUDED.note, updated_at = EXCLUDED.updated_at
	`

	result, err := r.pool.Exec(ctx, query, ticketID, status, note, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}

func (r *OrderRepositoryImpl) Stats(ctx context.Context) (*model.OrderStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE COALESCE(s.status, 'pending') = 'pending'),
		       COUNT(*) FILTER (WHERE s.status = 'accepted'),
		       COUNT(*) FILTER (WHERE s.status = 'rejected')
		FROM service_tickets k
		LEFT JOIN admin_order_status s ON s.ticket_id = k.id
	`

	var stats model.OrderStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Accepted,
		&stats.Rejected,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
