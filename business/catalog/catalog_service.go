package catalog

import (
	"context"
	"errors"
	"fmt"

	"recohub/domain"
)

type Repository interface {
	Upsert(ctx context.Context, item *domain.CatalogItem) error
	FindByProductID(ctx context.Context, tenantID, productID string) (domain.CatalogItem, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Upsert creates or replaces the product record for (tenant, product).
func (s *Service) Upsert(ctx context.Context, item *domain.CatalogItem) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if item.TenantID == "" || item.ProductID == "" || item.Name == "" {
		return errors.New("tenant_id, product_id and name are required")
	}

	if err := s.repo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("failed to upsert catalog item: %w", err)
	}

	return nil
}

func (s *Service) GetByProductID(ctx context.Context, tenantID, productID string) (domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogItem{}, fmt.Errorf("context error: %w", err)
	}

	return s.repo.FindByProductID(ctx, tenantID, productID)
}
