package repository

import (
	"context"
	"errors"
	"fmt"
	"procomp-service/internal/model"
	"procomp-service/internal/pricing"
	apperrors "procomp-service/pkg/app_errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuoteRepository interface {
	FindLatestByTicketID(ctx context.Context, ticketID int) (*model.QuoteItem, error)
	FindCompletionView(ctx context.Context, ticketID int) (*model.CompletionView, error)
	ListTasks(ctx context.Context) ([]*model.TaskRow, error)
	ListExpiredTicketIDs(ctx context.Context, sentBefore time.Time, limit int) ([]int, error)

	// TransitionLatest moves the latest item of a ticket from `from` to `to`
	// in a single conditional UPDATE. A non-empty identifier additionally pins
	// the item, and a non-zero createdBefore only matches items created at or
	// before it. It reports false when the item was not in `from` (or does not
	// exist).
	TransitionLatest(ctx context.Context, ticketID int, identifier string, createdBefore time.Time, from, to model.QuoteState, at time.Time) (*model.QuoteItem, bool, error)

	// Transaction methods
	// Create inserts a sent item; a second live item for the ticket waits on the
	// partial unique index and fails with ErrQuoteActive.
	Create(ctx context.Context, tx pgx.Tx, item *model.QuoteItem) (*model.QuoteItem, error)
	CloseProcessed(ctx context.Context, tx pgx.Tx, itemID int, totals pricing.Breakdown, at time.Time) (bool, error)
}

type QuoteRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewQuoteRepository(pool *pgxpool.Pool) QuoteRepository {
	return &QuoteRepositoryImpl{
		pool: pool,
	}
}

const quoteColumns = `
	id, ticket_id, category_id, operator_id, name, identifier, state,
	labor_hours, labor_rate, material_cost, net_total, gross_total,
	created_at, received_at, scheduled_delivery_at, updated_at`

func scanQuote(row pgx.Row, item *model.QuoteItem) error {
	return row.Scan(
		&item.ID,
		&item.TicketID,
		&item.CategoryID,
		&item.OperatorID,
		&item.Name,
		&item.Identifier,
		&item.State,
		&item.LaborHours,
		&item.LaborRate,
		&item.MaterialCost,
		&item.NetTotal,
		&item.GrossTotal,
		&item.CreatedAt,
		&item.ReceivedAt,
		&item.ScheduledDeliveryAt,
		&item.UpdatedAt,
	)
}

func (r *QuoteRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, item *model.QuoteItem) (*model.QuoteItem, error) {
	query := `
		INSERT INTO service_ticket_items (
			ticket_id, category_id, operator_id, name, identifier, state,
			labor_hours, labor_rate, material_cost, net_total, gross_total,
			created_at, scheduled_delivery_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $12)
		RETURNING ` + quoteColumns

	created := &model.QuoteItem{}
	err := scanQuote(tx.QueryRow(ctx, query,
		item.TicketID, item.CategoryID, item.OperatorID, item.Name, item.Identifier, item.State,
		item.LaborHours, item.LaborRate, item.MaterialCost, item.NetTotal, item.GrossTotal,
		item.CreatedAt, item.ScheduledDeliveryAt,
	), created)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "uq_ticket_items_live" {
				return nil, apperrors.ErrQuoteActive
			}
		}
		return nil, fmt.Errorf("failed to create quote item: %w", err)
	}

	return created, nil
}

func (r *QuoteRepositoryImpl) FindLatestByTicketID(ctx context.Context, ticketID int) (*model.QuoteItem, error) {
	query := `
		SELECT ` + quoteColumns + `
		FROM service_ticket_items
		WHERE ticket_id = $1
		ORDER BY id DESC
		LIMIT 1
	`

	var item model.QuoteItem
	err := scanQuote(r.pool.QueryRow(ctx, query, ticketID), &item)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrQuoteNotFound
		}
		return nil, err
	}

	return &item, nil
}

func (r *QuoteRepositoryImpl) FindCompletionView(ctx context.Context, ticketID int) (*model.CompletionView, error) {
	query := `
		SELECT t.id, t.ticket_id, t.category_id, t.operator_id, t.name, t.identifier, t.state,
		       t.labor_hours, t.labor_rate, t.material_cost, t.net_total, t.gross_total,
		       t.created_at, t.received_at, t.scheduled_delivery_at, t.updated_at,
		       k.user_id, u.name, u.email, u.phone, k.shipping_method, k.payment_method
		FROM service_ticket_items t
		JOIN service_tickets k ON k.id = t.ticket_id
		JOIN users u ON u.id = k.user_id
		WHERE t.ticket_id = $1
		ORDER BY t.id DESC
		LIMIT 1
	`

	var v model.CompletionView
	err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&v.Item.ID,
		&v.Item.TicketID,
		&v.Item.CategoryID,
		&v.Item.OperatorID,
		&v.Item.Name,
		&v.Item.Identifier,
		&v.Item.State,
		&v.Item.LaborHours,
		&v.Item.LaborRate,
		&v.Item.MaterialCost,
		&v.Item.NetTotal,
		&v.Item.GrossTotal,
		&v.Item.CreatedAt,
		&v.Item.ReceivedAt,
		&v.Item.ScheduledDeliveryAt,
		&v.Item.UpdatedAt,
		&v.CustomerID,
		&v.CustomerName,
		&v.CustomerEmail,
		&v.CustomerPhone,
		&v.ShippingMethod,
		&v.PaymentMethod,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrQuoteNotFound
		}
		return nil, err
	}

	return &v, nil
}

func (r *QuoteRepositoryImpl) ListTasks(ctx context.Context) ([]*model.TaskRow, error) {
	query := `
		SELECT k.id, k.user_id, k.shipping_method, k.payment_method, k.description, k.created_at,
		       t.id, t.name, t.state, t.labor_hours, t.labor_rate, t.material_cost, t.gross_total, t.identifier,
		       u.name, u.email
		FROM service_tickets k
		LEFT JOIN service_ticket_items t ON k.id = t.ticket_id
		JOIN users u ON k.user_id = u.id
		ORDER BY k.created_at DESC, t.id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*model.TaskRow, 0)

	for rows.Next() {
		var task model.TaskRow
		err := rows.Scan(
			&task.TicketID,
			&task.UserID,
			&task.ShippingMethod,
			&task.PaymentMethod,
			&task.Description,
			&task.CreatedAt,
			&task.ItemID,
			&task.ItemName,
			&task.State,
			&task.LaborHours,
			&task.LaborRate,
			&task.MaterialCost,
			&task.GrossTotal,
			&task.Identifier,
			&task.CustomerName,
			&task.CustomerEmail,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *QuoteRepositoryImpl) ListExpiredTicketIDs(ctx context.Context, sentBefore time.Time, limit int) ([]int, error) {
	query := `
		SELECT ticket_id
		FROM service_ticket_items
		WHERE state = $1 AND created_at <= $2
		ORDER BY created_at
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, model.QuoteStateSent, sentBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *QuoteRepositoryImpl) TransitionLatest(
	ctx context.Context,
	ticketID int,
	identifier string,
	createdBefore time.Time,
	from, to model.QuoteState,
	at time.Time,
) (*model.QuoteItem, bool, error) {
	if !from.CanTransitionTo(to) {
		return nil, false, apperrors.ErrInvalidInput
	}

	// WHERE state = $2 is re-evaluated after the row lock, so concurrent
	// callers cannot both win.
	query := `
		UPDATE service_ticket_items
		SET state = $3::varchar,
		    updated_at = $4,
		    received_at = CASE WHEN $3::varchar = 'process' THEN $4 ELSE received_at END
		WHERE id = (
			SELECT id FROM service_ticket_items
			WHERE ticket_id = $1
			ORDER BY id DESC
			LIMIT 1
		)
		AND state = $2
		AND ($5::varchar = '' OR identifier = $5::varchar)
		AND ($6::timestamptz IS NULL OR created_at <= $6::timestamptz)
		RETURNING ` + quoteColumns

	var cutoff *time.Time
	if !createdBefore.IsZero() {
		c := createdBefore.UTC()
		cutoff = &c
	}

	var item model.QuoteItem
	err := scanQuote(r.pool.QueryRow(ctx, query, ticketID, from, to, at.UTC(), identifier, cutoff), &item)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to transition quote: %w", err)
	}

	return &item, true, nil
}

func (r *QuoteRepositoryImpl) CloseProcessed(ctx context.Context, tx pgx.Tx, itemID int, totals pricing.Breakdown, at time.Time) (bool, error) {
	query := `
		UPDATE service_ticket_items
		SET state = $2, net_total = $3, gross_total = $4, updated_at = $5
		WHERE id = $1 AND state = $6
	`

	result, err := tx.Exec(ctx, query,
		itemID, model.QuoteStateClosed, totals.Net, totals.Gross, at.UTC(), model.QuoteStateProcess,
	)
	if err != nil {
		return false, fmt.Errorf("failed to close quote: %w", err)
	}

	return result.RowsAffected() == 1, nil
}
