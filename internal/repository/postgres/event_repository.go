package postgres

import (
	"context"
	"fmt"

	"recohub/business/recommendation"
	"recohub/domain"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

var _ recommendation.EventRepository = (*EventRepository)(nil)

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	return nil
}

// FindEvents returns tenant-scoped events matching the filter, newest first.
func (r *EventRepository) FindEvents(ctx context.Context, filter recommendation.EventFilter) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Where("tenant_id = ?", filter.TenantID)

	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if len(filter.UserIDs) > 0 {
		q = q.Where("user_id IN ?", filter.UserIDs)
	}
	if len(filter.ProductIDs) > 0 {
		q = q.Where("product_id IN ?", filter.ProductIDs)
	}
	if len(filter.EventTypes) > 0 {
		q = q.Where("event_type IN ?", filter.EventTypes)
	}
	if !filter.Since.IsZero() {
		q = q.Where("created_at >= ?", filter.Since)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var events []domain.Event
	if err := q.Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}

	return events, nil
}

func (r *EventRepository) CountUserEvents(ctx context.Context, tenantID, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).
		Model(&domain.Event{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}

	return count, nil
}
