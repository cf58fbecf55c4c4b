package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recohub/domain"
	"recohub/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("experiment not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPlacementBusy     = errors.New("another experiment is already running for this placement")
	ErrExperimentActive  = errors.New("cannot delete a running or paused experiment")
	ErrResultsIncomplete = errors.New("experiment results are incomplete")
)

// Repository persists experiment definitions.
type Repository interface {
	Create(ctx context.Context, exp *domain.Experiment) error
	FindByID(ctx context.Context, tenantID, id string) (domain.Experiment, error)
	FindByTenant(ctx context.Context, tenantID string) ([]domain.Experiment, error)
	FindRunning(ctx context.Context, tenantID, placementID string) (*domain.Experiment, error)
	Update(ctx context.Context, exp *domain.Experiment) error
	Delete(ctx context.Context, tenantID, id string) error
}

// ResultsRepository reads the per-variant counters maintained by the external
// aggregation job.
type ResultsRepository interface {
	GetResults(ctx context.Context, experimentID string) ([]domain.ExperimentResult, error)
}

type CreateRequest struct {
	TenantID        string          `validate:"required"`
	Name            string          `validate:"required"`
	ControlStrategy domain.Strategy `validate:"required"`
	VariantStrategy domain.Strategy `validate:"required"`
	TrafficSplit    int             `validate:"required,gte=1,lte=99"`
	Metric          string          `validate:"required,oneof=ctr conversion_rate revenue_per_visitor"`
	PlacementID     string
}

// VariantSummary is one side of the results readout.
type VariantSummary struct {
	Strategy           domain.Strategy `json:"strategy"`
	Impressions        int64           `json:"impressions"`
	Clicks             int64           `json:"clicks"`
	Conversions        int64           `json:"conversions"`
	Revenue            float64         `json:"revenue"`
	SampleSize         int64           `json:"sample_size"`
	MetricValue        float64         `json:"metric_value"`
	ConfidenceInterval [2]float64      `json:"confidence_interval"`
}

type Duration struct {
	StartedAt *time.Time `json:"started_at,omitempty"`
	Days      int        `json:"days"`
}

type ResultsResponse struct {
	ExperimentID   string         `json:"experiment_id"`
	ExperimentName string         `json:"experiment_name"`
	Status         string         `json:"status"`
	Metric         string         `json:"metric"`
	Control        VariantSummary `json:"control"`
	Variant        VariantSummary `json:"variant"`
	Lift           float64        `json:"lift"`
	PValue         float64        `json:"p_value"`
	IsSignificant  bool           `json:"is_significant"`
	Duration       Duration       `json:"duration"`
}

type Service struct {
	repo     Repository
	results  ResultsRepository
	validate *validator.Validate
}

func NewService(repo Repository, results ResultsRepository, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		results:  results,
		validate: validate,
	}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (domain.Experiment, error) {
	if err := s.validate.Struct(&req); err != nil {
		return domain.Experiment{}, err
	}
	if !req.ControlStrategy.Valid() || !req.VariantStrategy.Valid() {
		return domain.Experiment{}, errors.New("unknown strategy")
	}

	exp := domain.Experiment{
		ID:              uuid.NewString(),
		TenantID:        req.TenantID,
		Name:            req.Name,
		ControlStrategy: req.ControlStrategy,
		VariantStrategy: req.VariantStrategy,
		TrafficSplit:    req.TrafficSplit,
		Metric:          req.Metric,
		PlacementID:     req.PlacementID,
		Status:          domain.ExperimentDraft,
	}

	if err := s.repo.Create(ctx, &exp); err != nil {
		return domain.Experiment{}, fmt.Errorf("create experiment: %w", err)
	}

	logger.Info("experiment created",
		"experiment_id", exp.ID, "tenant_id", exp.TenantID, "name", exp.Name)

	return exp, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (domain.Experiment, error) {
	return s.repo.FindByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID string) ([]domain.Experiment, error) {
	return s.repo.FindByTenant(ctx, tenantID)
}

// UpdateStatus moves an experiment through its state machine. Activation is
// rejected while another experiment is running on the same placement.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, id, newStatus string) (domain.Experiment, error) {
	exp, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return domain.Experiment{}, err
	}

	if !domain.CanTransition(exp.Status, newStatus) {
		return domain.Experiment{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, exp.Status, newStatus)
	}

	now := time.Now()

	if newStatus == domain.ExperimentRunning {
		running, err := s.repo.FindRunning(ctx, tenantID, exp.PlacementID)
		if err != nil {
			return domain.Experiment{}, fmt.Errorf("check running experiments: %w", err)
		}
		if running != nil && running.ID != exp.ID {
			return domain.Experiment{}, ErrPlacementBusy
		}
		if exp.StartedAt == nil {
			exp.StartedAt = &now
		}
	}

	if newStatus == domain.ExperimentCompleted {
		exp.CompletedAt = &now
	}

	exp.Status = newStatus

	if err := s.repo.Update(ctx, &exp); err != nil {
		return domain.Experiment{}, fmt.Errorf("update experiment: %w", err)
	}

	logger.Info("experiment status changed",
		"experiment_id", exp.ID, "tenant_id", tenantID, "status", newStatus)

	return exp, nil
}

// Delete removes an experiment definition. Running and paused experiments
// must be completed first.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	exp, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if exp.Status == domain.ExperimentRunning || exp.Status == domain.ExperimentPaused {
		return ErrExperimentActive
	}

	return s.repo.Delete(ctx, tenantID, id)
}

// GetResults assembles the statistical readout from the aggregated counters.
func (s *Service) GetResults(ctx context.Context, tenantID, id string) (*ResultsResponse, error) {
	exp, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.results.GetResults(ctx, exp.ID)
	if err != nil {
		return nil, fmt.Errorf("load experiment results: %w", err)
	}

	var control, variant *domain.ExperimentResult
	for i := range rows {
		switch rows[i].Variant {
		case domain.VariantControl:
			control = &rows[i]
		case domain.VariantVariant:
			variant = &rows[i]
		}
	}
	if control == nil || variant == nil {
		return nil, ErrResultsIncomplete
	}

	cmp := Compare(exp.Metric, toStats(control), toStats(variant))

	days := 0
	if exp.StartedAt != nil {
		end := time.Now()
		if exp.CompletedAt != nil {
			end = *exp.CompletedAt
		}
		days = int(end.Sub(*exp.StartedAt).Hours() / 24)
	}

	return &ResultsResponse{
		ExperimentID:   exp.ID,
		ExperimentName: exp.Name,
		Status:         exp.Status,
		Metric:         exp.Metric,
		Control:        toSummary(exp.ControlStrategy, control, cmp.ControlValue, cmp.ControlCI),
		Variant:        toSummary(exp.VariantStrategy, variant, cmp.VariantValue, cmp.VariantCI),
		Lift:           cmp.Lift,
		PValue:         cmp.PValue,
		IsSignificant:  cmp.IsSignificant,
		Duration: Duration{
			StartedAt: exp.StartedAt,
			Days:      days,
		},
	}, nil
}

func toStats(r *domain.ExperimentResult) VariantStats {
	return VariantStats{
		Impressions: r.Impressions,
		Clicks:      r.Clicks,
		Conversions: r.Conversions,
		Revenue:     r.Revenue,
		SampleSize:  r.SampleSize,
	}
}

func toSummary(strategy domain.Strategy, r *domain.ExperimentResult, value float64, ci [2]float64) VariantSummary {
	return VariantSummary{
		Strategy:           strategy,
		Impressions:        r.Impressions,
		Clicks:             r.Clicks,
		Conversions:        r.Conversions,
		Revenue:            r.Revenue,
		SampleSize:         r.SampleSize,
		MetricValue:        value,
		ConfidenceInterval: ci,
	}
}
