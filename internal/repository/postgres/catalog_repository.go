package postgres

import (
	"context"
	"errors"
	"fmt"

	"recohub/business/recommendation"
	"recohub/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository struct {
	DB *gorm.DB
}

var _ recommendation.CatalogRepository = (*CatalogRepository)(nil)

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

// Upsert creates or replaces the row keyed by (tenant_id, product_id).
func (r *CatalogRepository) Upsert(ctx context.Context, item *domain.CatalogItem) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name",
				"category",
				"price",
				"image_url",
				"attributes",
				"available",
				"updated_at",
			}),
		},
	).Create(item).Error
	if err != nil {
		return fmt.Errorf("failed to upsert catalog item: %w", err)
	}

	return nil
}

func (r *CatalogRepository) FindByProductID(ctx context.Context, tenantID, productID string) (domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogItem{}, fmt.Errorf("context error: %w", err)
	}

	var item domain.CatalogItem
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CatalogItem{}, errors.New("catalog item not found")
		}
		return domain.CatalogItem{}, fmt.Errorf("failed to find catalog item: %w", err)
	}

	return item, nil
}

func (r *CatalogRepository) FindByProductIDs(ctx context.Context, tenantID string, productIDs []string, availableOnly bool) ([]domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(productIDs) == 0 {
		return []domain.CatalogItem{}, nil
	}

	q := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND product_id IN ?", tenantID, productIDs)
	if availableOnly {
		q = q.Where("available = true")
	}

	var items []domain.CatalogItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find catalog items: %w", err)
	}

	return items, nil
}

// FindByCategories returns available items in the given categories.
func (r *CatalogRepository) FindByCategories(ctx context.Context, tenantID string, categories []string, limit int) ([]domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(categories) == 0 {
		return []domain.CatalogItem{}, nil
	}

	q := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND category IN ? AND available = true", tenantID, categories).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var items []domain.CatalogItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find catalog items by category: %w", err)
	}

	return items, nil
}

// FindRecent returns the newest available items for a tenant.
func (r *CatalogRepository) FindRecent(ctx context.Context, tenantID string, limit int) ([]domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND available = true", tenantID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var items []domain.CatalogItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find recent catalog items: %w", err)
	}

	return items, nil
}
