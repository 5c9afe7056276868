package repository

import (
	"context"
	"procomp-service/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepository interface {
	ListSettlements(ctx context.Context) ([]*model.Settlement, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
}

type CatalogRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &CatalogRepositoryImpl{
		pool: pool,
	}
}

func (r *CatalogRepositoryImpl) ListSettlements(ctx context.Context) ([]*model.Settlement, error) {
	query := `
		SELECT id, name, postal_code, county
		FROM settlements
		ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settlements := make([]*model.Settlement, 0)
	for rows.Next() {
		var s model.Settlement
		if err := rows.Scan(&s.ID, &s.Name, &s.PostalCode, &s.County); err != nil {
			return nil, err
		}
		settlements = append(settlements, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return settlements, nil
}

func (r *CatalogRepositoryImpl) ListCategories(ctx context.Context) ([]*model.Category, error) {
	query := `
		SELECT id, name
		FROM categories
		ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}
