package experiment

import (
	"context"
	"errors"
	"testing"

	"recohub/domain"

	"github.com/go-playground/validator/v10"
)

// in-memory Repository + ResultsRepository fake
type fakeRepo struct {
	experiments map[string]domain.Experiment
	results     map[string][]domain.ExperimentResult
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		experiments: make(map[string]domain.Experiment),
		results:     make(map[string][]domain.ExperimentResult),
	}
}

func (f *fakeRepo) Create(_ context.Context, exp *domain.Experiment) error {
	f.experiments[exp.ID] = *exp
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, tenantID, id string) (domain.Experiment, error) {
	exp, ok := f.experiments[id]
	if !ok || exp.TenantID != tenantID {
		return domain.Experiment{}, ErrNotFound
	}
	return exp, nil
}

func (f *fakeRepo) FindByTenant(_ context.Context, tenantID string) ([]domain.Experiment, error) {
	var out []domain.Experiment
	for _, exp := range f.experiments {
		if exp.TenantID == tenantID {
			out = append(out, exp)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindRunning(_ context.Context, tenantID, placementID string) (*domain.Experiment, error) {
	for _, exp := range f.experiments {
		if exp.TenantID == tenantID && exp.PlacementID == placementID && exp.Status == domain.ExperimentRunning {
			found := exp
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Update(_ context.Context, exp *domain.Experiment) error {
	if _, ok := f.experiments[exp.ID]; !ok {
		return ErrNotFound
	}
	f.experiments[exp.ID] = *exp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, tenantID, id string) error {
	exp, ok := f.experiments[id]
	if !ok || exp.TenantID != tenantID {
		return ErrNotFound
	}
	delete(f.experiments, id)
	return nil
}

func (f *fakeRepo) GetResults(_ context.Context, experimentID string) ([]domain.ExperimentResult, error) {
	return f.results[experimentID], nil
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, repo, validator.New())
}

func createDraft(t *testing.T, svc *Service, placementID string) domain.Experiment {
	t.Helper()

	exp, err := svc.Create(context.Background(), CreateRequest{
		TenantID:        "tenant-1",
		Name:            "homepage strategy test",
		ControlStrategy: domain.StrategyTrending,
		VariantStrategy: domain.StrategyCollaborative,
		TrafficSplit:    50,
		Metric:          domain.MetricCTR,
		PlacementID:     placementID,
	})
	if err != nil {
		t.Fatalf("create experiment: %v", err)
	}
	if exp.Status != domain.ExperimentDraft {
		t.Fatalf("new experiment status = %s, want draft", exp.Status)
	}
	return exp
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newFakeRepo())

	cases := []CreateRequest{
		{TenantID: "t", Name: "x", ControlStrategy: "trending", VariantStrategy: "collaborative", TrafficSplit: 0, Metric: "ctr"},
		{TenantID: "t", Name: "x", ControlStrategy: "trending", VariantStrategy: "collaborative", TrafficSplit: 100, Metric: "ctr"},
		{TenantID: "t", Name: "x", ControlStrategy: "trending", VariantStrategy: "collaborative", TrafficSplit: 50, Metric: "bounce_rate"},
		{TenantID: "t", Name: "x", ControlStrategy: "trending", VariantStrategy: "popular", TrafficSplit: 50, Metric: "ctr"},
	}
	for i, req := range cases {
		if _, err := svc.Create(context.Background(), req); err == nil {
			t.Errorf("case %d: invalid request accepted", i)
		}
	}
}

func TestStatusTransitions(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()
	exp := createDraft(t, svc, "homepage")

	// draft cannot pause or complete directly
	for _, target := range []string{domain.ExperimentPaused, domain.ExperimentCompleted} {
		if _, err := svc.UpdateStatus(ctx, "tenant-1", exp.ID, target); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("draft -> %s: err = %v, want ErrInvalidTransition", target, err)
		}
	}

	running, err := svc.UpdateStatus(ctx, "tenant-1", exp.ID, domain.ExperimentRunning)
	if err != nil {
		t.Fatalf("draft -> running: %v", err)
	}
	if running.StartedAt == nil {
		t.Error("running experiment missing started_at")
	}

	paused, err := svc.UpdateStatus(ctx, "tenant-1", exp.ID, domain.ExperimentPaused)
	if err != nil {
		t.Fatalf("running -> paused: %v", err)
	}

	// resuming keeps the original start time
	resumed, err := svc.UpdateStatus(ctx, "tenant-1", exp.ID, domain.ExperimentRunning)
	if err != nil {
		t.Fatalf("paused -> running: %v", err)
	}
	if resumed.StartedAt == nil || !resumed.StartedAt.Equal(*paused.StartedAt) {
		t.Errorf("resume changed started_at: %v vs %v", resumed.StartedAt, paused.StartedAt)
	}

	completed, err := svc.UpdateStatus(ctx, "tenant-1", exp.ID, domain.ExperimentCompleted)
	if err != nil {
		t.Fatalf("running -> completed: %v", err)
	}
	if completed.CompletedAt == nil {
		t.Error("completed experiment missing completed_at")
	}

	// completed is terminal
	for _, target := range []string{domain.ExperimentRunning, domain.ExperimentPaused, domain.ExperimentDraft} {
		if _, err := svc.UpdateStatus(ctx, "tenant-1", exp.ID, target); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("completed -> %s: err = %v, want ErrInvalidTransition", target, err)
		}
	}
}

func TestPlacementExclusivity(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	first := createDraft(t, svc, "homepage")
	second := createDraft(t, svc, "homepage")
	other := createDraft(t, svc, "product_page")

	if _, err := svc.UpdateStatus(ctx, "tenant-1", first.ID, domain.ExperimentRunning); err != nil {
		t.Fatalf("start first: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, "tenant-1", second.ID, domain.ExperimentRunning); !errors.Is(err, ErrPlacementBusy) {
		t.Errorf("second experiment on same placement: err = %v, want ErrPlacementBusy", err)
	}

	// a different placement is unaffected
	if _, err := svc.UpdateStatus(ctx, "tenant-1", other.ID, domain.ExperimentRunning); err != nil {
		t.Errorf("start on free placement: %v", err)
	}

	// pausing the first frees the placement
	if _, err := svc.UpdateStatus(ctx, "tenant-1", first.ID, domain.ExperimentPaused); err != nil {
		t.Fatalf("pause first: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "tenant-1", second.ID, domain.ExperimentRunning); err != nil {
		t.Errorf("start second after pause: %v", err)
	}
}

func TestDeleteGuard(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	exp := createDraft(t, svc, "homepage")

	if _, err := svc.UpdateStatus(ctx, "tenant-1", exp.ID, domain.ExperimentRunning); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Delete(ctx, "tenant-1", exp.ID); !errors.Is(err, ErrExperimentActive) {
		t.Errorf("delete running: err = %v, want ErrExperimentActive", err)
	}

	if _, err := svc.UpdateStatus(ctx, "tenant-1", exp.ID, domain.ExperimentPaused); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := svc.Delete(ctx, "tenant-1", exp.ID); !errors.Is(err, ErrExperimentActive) {
		t.Errorf("delete paused: err = %v, want ErrExperimentActive", err)
	}

	if _, err := svc.UpdateStatus(ctx, "tenant-1", exp.ID, domain.ExperimentCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := svc.Delete(ctx, "tenant-1", exp.ID); err != nil {
		t.Errorf("delete completed: %v", err)
	}
	if _, ok := repo.experiments[exp.ID]; ok {
		t.Error("experiment still present after delete")
	}
}

func TestTenantIsolation(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()
	exp := createDraft(t, svc, "homepage")

	if _, err := svc.Get(ctx, "tenant-2", exp.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant get: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.UpdateStatus(ctx, "tenant-2", exp.ID, domain.ExperimentRunning); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant status change: err = %v, want ErrNotFound", err)
	}
}

func TestGetResults(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	exp := createDraft(t, svc, "homepage")
	if _, err := svc.UpdateStatus(ctx, "tenant-1", exp.ID, domain.ExperimentRunning); err != nil {
		t.Fatalf("start: %v", err)
	}

	// only the control row exists yet
	repo.results[exp.ID] = []domain.ExperimentResult{
		{ExperimentID: exp.ID, Variant: domain.VariantControl, Impressions: 10000, Clicks: 800, SampleSize: 10000},
	}
	if _, err := svc.GetResults(ctx, "tenant-1", exp.ID); !errors.Is(err, ErrResultsIncomplete) {
		t.Fatalf("partial results: err = %v, want ErrResultsIncomplete", err)
	}

	repo.results[exp.ID] = append(repo.results[exp.ID], domain.ExperimentResult{
		ExperimentID: exp.ID, Variant: domain.VariantVariant, Impressions: 10000, Clicks: 960, SampleSize: 10000,
	})

	res, err := svc.GetResults(ctx, "tenant-1", exp.ID)
	if err != nil {
		t.Fatalf("get results: %v", err)
	}

	if res.Control.MetricValue != 0.08 || res.Variant.MetricValue != 0.096 {
		t.Errorf("metric values = %v / %v, want 0.08 / 0.096", res.Control.MetricValue, res.Variant.MetricValue)
	}
	if res.Lift != 0.2 {
		t.Errorf("lift = %v, want 0.2", res.Lift)
	}
	if !res.IsSignificant {
		t.Errorf("p-value = %v, expected significance", res.PValue)
	}
	if res.Control.Strategy != domain.StrategyTrending || res.Variant.Strategy != domain.StrategyCollaborative {
		t.Errorf("strategies = %s / %s", res.Control.Strategy, res.Variant.Strategy)
	}
	if res.Duration.StartedAt == nil {
		t.Error("duration missing started_at")
	}
	if res.Duration.Days != 0 {
		t.Errorf("duration days = %d, want 0 for a fresh experiment", res.Duration.Days)
	}
}
