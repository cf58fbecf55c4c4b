package tenant

import (
	"context"
	"errors"
	"fmt"

	"recohub/domain"
	"recohub/pkg/logger"
	"recohub/pkg/utils"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Onboarded is the one-time registration result. The plaintext API key is
// returned here and never again; only its hash is stored.
type Onboarded struct {
	Tenant domain.Tenant `json:"tenant"`
	APIKey string        `json:"api_key"`
}

// Onboard registers a tenant and issues its API key.
func (s *Service) Onboard(ctx context.Context, name string, defaultStrategy domain.Strategy) (*Onboarded, error) {
	if name == "" {
		return nil, errors.New("tenant name is required")
	}
	if defaultStrategy != "" && !defaultStrategy.Valid() {
		return nil, errors.New("unknown default strategy")
	}

	key, prefix := utils.GenerateAPIKey()
	hash, err := utils.HashAPIKey(key)
	if err != nil {
		return nil, fmt.Errorf("hash api key: %w", err)
	}

	t := domain.Tenant{
		ID:              uuid.NewString(),
		Name:            name,
		APIKeyPrefix:    prefix,
		APIKeyHash:      hash,
		DefaultStrategy: defaultStrategy,
	}

	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}

	logger.Info("tenant onboarded", "tenant_id", t.ID, "name", t.Name)

	return &Onboarded{Tenant: t, APIKey: key}, nil
}
