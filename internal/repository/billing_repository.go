package repository

import (
	"context"
	"fmt"
	"procomp-service/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BillingRepository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*model.BillingRecord, error)

	// Transaction methods
	Archive(ctx context.Context, tx pgx.Tx, rec *model.BillingRecord) (bool, error)
}

type BillingRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewBillingRepository(pool *pgxpool.Pool) BillingRepository {
	return &BillingRepositoryImpl{
		pool: pool,
	}
}

// Archive 以 identifier 為冪等鍵寫入；重複寫入回傳 false
func (r *BillingRepositoryImpl) Archive(ctx context.Context, tx pgx.Tx, rec *model.BillingRecord) (bool, error) {
	query := `
		INSERT INTO billing_archive (
			ticket_id, identifier, payment_method, shipping_method,
			delivery_date, gross_total, phone, archived_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (identifier) DO NOTHING
	`

	result, err := tx.Exec(ctx, query,
		rec.TicketID, rec.Identifier, rec.PaymentMethod, rec.ShippingMethod,
		rec.DeliveryDate, rec.GrossTotal, rec.Phone, rec.ArchivedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to archive billing record: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *BillingRepositoryImpl) FindByIdentifier(ctx context.Context, identifier string) (*model.BillingRecord, error) {
	query := `
		SELECT id, ticket_id, identifier, payment_method, shipping_method,
		       delivery_date, gross_total, phone, archived_at
		FROM billing_archive
		WHERE identifier = $1
	`

	var rec model.BillingRecord
	err := r.pool.QueryRow(ctx, query, identifier).Scan(
		&rec.ID,
		&rec.TicketID,
		&rec.Identifier,
		&rec.PaymentMethod,
		&rec.ShippingMethod,
		&rec.DeliveryDate,
		&rec.GrossTotal,
		&rec.Phone,
		&rec.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}
