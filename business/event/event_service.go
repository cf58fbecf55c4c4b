package event

import (
	"context"
	"errors"
	"fmt"

	"recohub/domain"

	"github.com/google/uuid"
)

// Repository persists behavioral events. Events are append-only.
type Repository interface {
	Create(ctx context.Context, event *domain.Event) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Ingest validates and stores one event. Missing IDs are minted server-side
// so clients without idempotency needs can stay simple.
func (s *Service) Ingest(ctx context.Context, ev *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if ev.TenantID == "" || ev.UserID == "" || ev.ProductID == "" {
		return errors.New("tenant_id, user_id and product_id are required")
	}
	if !domain.IsValidEventType(ev.EventType) {
		return fmt.Errorf("unknown event type: %s", ev.EventType)
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	if err := s.repo.Create(ctx, ev); err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	return nil
}
