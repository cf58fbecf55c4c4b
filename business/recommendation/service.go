package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"recohub/business/experiment"
	"recohub/domain"
	"recohub/pkg/logger"
	"recohub/pkg/metrics"
)

const (
	defaultLimit       = 8
	maxLimit           = 50
	coldStartMinEvents = 5

	cacheWriteTimeout = 2 * time.Second
)

// TenantConfigRepository resolves the tenant's configured default strategy.
type TenantConfigRepository interface {
	GetDefaultStrategy(ctx context.Context, tenantID string) (domain.Strategy, bool, error)
}

// ExperimentRepository resolves the running experiment for a placement, if any.
type ExperimentRepository interface {
	FindRunning(ctx context.Context, tenantID, placementID string) (*domain.Experiment, error)
}

type Request struct {
	TenantID    string
	UserID      string
	Limit       int
	Strategy    domain.Strategy
	ProductID   string
	PlacementID string

	// Exclude lists product IDs the client never wants back, e.g. items
	// already in the cart.
	Exclude []string
}

type Response struct {
	Data []domain.EnrichedRecommendation `json:"data"`
	Meta domain.RecommendationMeta       `json:"meta"`
}

type Service struct {
	events      EventRepository
	catalog     CatalogRepository
	tenants     TenantConfigRepository
	experiments ExperimentRepository
	cache       ResultCache
	registry    Registry
}

func NewService(
	events EventRepository,
	catalog CatalogRepository,
	tenants TenantConfigRepository,
	experiments ExperimentRepository,
	cache ResultCache,
	registry Registry,
) *Service {
	return &Service{
		events:      events,
		catalog:     catalog,
		tenants:     tenants,
		experiments: experiments,
		cache:       cache,
		registry:    registry,
	}
}

// GetRecommendations resolves the effective strategy (experiment > explicit
// request > tenant default > trending), applies the cold-start override,
// consults the cache and executes the strategy's fallback chain, then returns
// catalog-enriched results with provenance metadata. It always produces a
// result for validated input; not-enough-data conditions degrade to trending.
func (s *Service) GetRecommendations(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}

	meta := domain.RecommendationMeta{}
	strategy := s.resolveStrategy(ctx, req, &meta)

	// Cold start is evaluated after resolution, never before: an experiment
	// assignment still happened (and was recorded) even when this override
	// discards its strategy choice.
	if strategy != domain.StrategyTrending {
		count, err := s.events.CountUserEvents(ctx, req.TenantID, req.UserID)
		if err != nil || count < coldStartMinEvents {
			if err != nil {
				logger.Warn("cold-start check failed, serving trending",
					"tenant_id", req.TenantID, "user_id", req.UserID, "error", err)
			}
			strategy = domain.StrategyTrending
			meta.IsFallback = true
		}
	}

	// FBT without a product context never silently ignores the parameter
	if strategy == domain.StrategyFBT && req.ProductID == "" {
		strategy = domain.StrategyTrending
		meta.IsFallback = true
	}

	meta.Strategy = strategy

	// exclusion lists are not part of the key scheme, so requests carrying
	// one bypass the cache entirely
	useCache := s.cache != nil && len(req.Exclude) == 0

	key := cacheKey(strategy, req.TenantID, req.UserID, req.ProductID)
	if useCache {
		if payload, ok := s.cache.Get(ctx, key); ok {
			var items []domain.RecommendationItem
			if err := json.Unmarshal(payload, &items); err == nil {
				meta.Cached = true
				metrics.RecommendRequests.WithLabelValues(string(strategy), "true").Inc()
				return s.enrich(ctx, req.TenantID, items, meta)
			}
			// corrupt payload degrades to a miss
		}
	}

	items, executed, err := s.runWithFallback(ctx, strategy, req, &meta)
	if err != nil {
		return nil, err
	}

	if useCache && len(items) > 0 {
		s.writeCache(executed, req, items)
	}

	metrics.RecommendRequests.WithLabelValues(string(meta.Strategy), "false").Inc()

	return s.enrich(ctx, req.TenantID, items, meta)
}

// resolveStrategy applies the resolution order: running experiment on the
// placement, then explicit request, then tenant default, then trending.
func (s *Service) resolveStrategy(ctx context.Context, req Request, meta *domain.RecommendationMeta) domain.Strategy {
	if req.PlacementID != "" && req.Strategy == "" {
		exp, err := s.experiments.FindRunning(ctx, req.TenantID, req.PlacementID)
		if err != nil {
			logger.Warn("experiment lookup failed",
				"tenant_id", req.TenantID, "placement_id", req.PlacementID, "error", err)
		}
		if exp != nil {
			assignment := experiment.Assign(req.UserID, exp.ID, exp.TrafficSplit)

			meta.ExperimentID = exp.ID
			meta.Variant = assignment.Variant

			metrics.ExperimentAssignments.WithLabelValues(exp.ID, assignment.Variant).Inc()
			logger.Debug("experiment assignment",
				"experiment_id", exp.ID,
				"user_id", req.UserID,
				"variant", assignment.Variant,
				"bucket", strconv.Itoa(assignment.Bucket),
			)

			if assignment.Variant == domain.VariantControl {
				return exp.ControlStrategy
			}
			return exp.VariantStrategy
		}
	}

	if req.Strategy != "" {
		return req.Strategy
	}

	if def, ok, err := s.tenants.GetDefaultStrategy(ctx, req.TenantID); err == nil && ok && def.Valid() {
		return def
	}

	return domain.StrategyTrending
}

// runWithFallback walks the strategy's chain sequentially, stopping at the
// first non-empty result. Fallback attempts are never run speculatively in
// parallel; each one costs store reads that a hit makes unnecessary.
func (s *Service) runWithFallback(ctx context.Context, strategy domain.Strategy, req Request, meta *domain.RecommendationMeta) ([]domain.RecommendationItem, domain.Strategy, error) {
	in := StrategyInput{
		TenantID:  req.TenantID,
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Limit:     req.Limit,
	}
	if len(req.Exclude) > 0 {
		in.Exclude = make(map[string]struct{}, len(req.Exclude))
		for _, pid := range req.Exclude {
			in.Exclude[pid] = struct{}{}
		}
	}

	chain := FallbackChain(strategy)
	var lastErr error

	for _, attempt := range chain {
		runner, ok := s.registry.Get(attempt)
		if !ok {
			continue
		}

		items, err := runner.Run(ctx, in)
		if err != nil {
			lastErr = err
			logger.Error("strategy execution failed",
				"strategy", string(attempt), "tenant_id", req.TenantID, "error", err)
			continue
		}
		if len(items) == 0 {
			continue
		}

		if attempt != strategy {
			meta.IsFallback = true
			meta.Strategy = attempt
			metrics.StrategyFallbacks.WithLabelValues(string(strategy), string(attempt)).Inc()
		}

		return items, attempt, nil
	}

	// every attempt came back empty; trending on an empty catalog does that
	if lastErr != nil {
		return nil, strategy, fmt.Errorf("all strategies failed: %w", lastErr)
	}

	return []domain.RecommendationItem{}, strategy, nil
}

// writeCache stores the raw (un-enriched) result under the executed
// strategy's key, fire-and-forget: the response never blocks on it.
func (s *Service) writeCache(executed domain.Strategy, req Request, items []domain.RecommendationItem) {
	payload, err := json.Marshal(items)
	if err != nil {
		return
	}

	key := cacheKey(executed, req.TenantID, req.UserID, req.ProductID)
	ttl := cacheTTL(executed)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()
		s.cache.Set(ctx, key, payload, ttl)
	}()
}

// enrich attaches catalog display fields with one batched lookup, preserving
// the strategy-assigned order and scores. A missing catalog row keeps its
// item with empty display fields rather than failing the request.
func (s *Service) enrich(ctx context.Context, tenantID string, items []domain.RecommendationItem, meta domain.RecommendationMeta) (*Response, error) {
	enriched := make([]domain.EnrichedRecommendation, 0, len(items))

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	byID := make(map[string]domain.CatalogItem, len(ids))
	if len(ids) > 0 {
		rows, err := s.catalog.FindByProductIDs(ctx, tenantID, ids, false)
		if err != nil {
			logger.Warn("catalog enrichment failed, serving bare items", "error", err)
		} else {
			for _, row := range rows {
				byID[row.ProductID] = row
			}
		}
	}

	for _, it := range items {
		e := domain.EnrichedRecommendation{
			ProductID: it.ProductID,
			Score:     it.Score,
			Reason:    it.Reason,
		}
		if row, ok := byID[it.ProductID]; ok {
			e.Name = row.Name
			e.ImageURL = row.ImageURL
			e.Price = row.Price
		}
		enriched = append(enriched, e)
	}

	return &Response{Data: enriched, Meta: meta}, nil
}
