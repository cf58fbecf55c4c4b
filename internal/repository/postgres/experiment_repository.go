package postgres

import (
	"context"
	"errors"
	"fmt"

	"recohub/business/experiment"
	"recohub/domain"

	"gorm.io/gorm"
)

type ExperimentRepository struct {
	DB *gorm.DB
}

var _ experiment.Repository = (*ExperimentRepository)(nil)
var _ experiment.ResultsRepository = (*ExperimentRepository)(nil)

func NewExperimentRepository(db *gorm.DB) *ExperimentRepository {
	return &ExperimentRepository{DB: db}
}

func (r *ExperimentRepository) Create(ctx context.Context, exp *domain.Experiment) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(exp).Error; err != nil {
		return fmt.Errorf("failed to create experiment: %w", err)
	}

	return nil
}

func (r *ExperimentRepository) FindByID(ctx context.Context, tenantID, id string) (domain.Experiment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Experiment{}, fmt.Errorf("context error: %w", err)
	}

	var exp domain.Experiment
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&exp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Experiment{}, experiment.ErrNotFound
		}
		return domain.Experiment{}, fmt.Errorf("failed to find experiment: %w", err)
	}

	return exp, nil
}

func (r *ExperimentRepository) FindByTenant(ctx context.Context, tenantID string) ([]domain.Experiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var exps []domain.Experiment
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&exps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}

	return exps, nil
}

// FindRunning returns the running experiment for (tenant, placement), or nil.
// At most one can exist per the activation guard.
func (r *ExperimentRepository) FindRunning(ctx context.Context, tenantID, placementID string) (*domain.Experiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var exp domain.Experiment
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND placement_id = ? AND status = ?", tenantID, placementID, domain.ExperimentRunning).
		First(&exp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find running experiment: %w", err)
	}

	return &exp, nil
}

func (r *ExperimentRepository) Update(ctx context.Context, exp *domain.Experiment) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.Experiment{}).
		Where("tenant_id = ? AND id = ?", exp.TenantID, exp.ID).
		Updates(map[string]interface{}{
			"status":       exp.Status,
			"started_at":   exp.StartedAt,
			"completed_at": exp.CompletedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update experiment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return experiment.ErrNotFound
	}

	return nil
}

func (r *ExperimentRepository) Delete(ctx context.Context, tenantID, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&domain.Experiment{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete experiment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return experiment.ErrNotFound
	}

	return nil
}

// GetResults loads the per-variant counter rows for an experiment.
func (r *ExperimentRepository) GetResults(ctx context.Context, experimentID string) ([]domain.ExperimentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.ExperimentResult
	err := r.DB.WithContext(ctx).
		Where("experiment_id = ?", experimentID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load experiment results: %w", err)
	}

	return rows, nil
}
