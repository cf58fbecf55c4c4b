package postgres

import (
	"context"
	"errors"
	"fmt"

	"recohub/business/recommendation"
	"recohub/domain"

	"gorm.io/gorm"
)

type TenantRepository struct {
	DB *gorm.DB
}

var _ recommendation.TenantConfigRepository = (*TenantRepository)(nil)

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{DB: db}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(tenant).Error; err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

// FindByAPIKeyPrefix resolves the tenant owning a presented API key; the
// caller still has to verify the key against the stored hash.
func (r *TenantRepository) FindByAPIKeyPrefix(ctx context.Context, prefix string) (domain.Tenant, error) {
	if err := ctx.Err(); err != nil {
		return domain.Tenant{}, fmt.Errorf("context error: %w", err)
	}

	var tenant domain.Tenant
	err := r.DB.WithContext(ctx).
		Where("api_key_prefix = ?", prefix).
		First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Tenant{}, errors.New("tenant not found")
		}
		return domain.Tenant{}, fmt.Errorf("failed to find tenant: %w", err)
	}

	return tenant, nil
}

func (r *TenantRepository) GetDefaultStrategy(ctx context.Context, tenantID string) (domain.Strategy, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("context error: %w", err)
	}

	var tenant domain.Tenant
	err := r.DB.WithContext(ctx).
		Select("default_strategy").
		Where("id = ?", tenantID).
		First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load tenant config: %w", err)
	}

	if tenant.DefaultStrategy == "" {
		return "", false, nil
	}

	return tenant.DefaultStrategy, true, nil
}
