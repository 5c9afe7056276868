package service

import (
	"context"
	"procomp-service/internal/model"
	"procomp-service/internal/repository"
)

type CatalogService interface {
	Settlements(ctx context.Context) ([]*model.Settlement, error)
	Categories(ctx context.Context) ([]*model.Category, error)
}

type CatalogServiceImpl struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &CatalogServiceImpl{repo: repo}
}

func (s *CatalogServiceImpl) Settlements(ctx context.Context) ([]*model.Settlement, error) {
	return s.repo.ListSettlements(ctx)
}

func (s *CatalogServiceImpl) Categories(ctx context.Context) ([]*model.Category, error) {
	return s.repo.ListCategories(ctx)
}
