package recommendation

import (
	"context"
	"sort"
	"time"

	"recohub/domain"
)

// ---- Repository interfaces ----

// EventFilter narrows an event-store read. TenantID is always required; the
// remaining fields are optional conjunctive filters.
type EventFilter struct {
	TenantID   string
	UserID     string
	UserIDs    []string
	ProductIDs []string
	EventTypes []string
	Since      time.Time
	Limit      int
}

type EventRepository interface {
	FindEvents(ctx context.Context, filter EventFilter) ([]domain.Event, error)
	CountUserEvents(ctx context.Context, tenantID, userID string) (int64, error)
}

type CatalogRepository interface {
	FindByProductIDs(ctx context.Context, tenantID string, productIDs []string, availableOnly bool) ([]domain.CatalogItem, error)
	FindByCategories(ctx context.Context, tenantID string, categories []string, limit int) ([]domain.CatalogItem, error)
	FindRecent(ctx context.Context, tenantID string, limit int) ([]domain.CatalogItem, error)
}

// ---- Strategy contract ----

// StrategyInput is the uniform input every ranking strategy accepts.
// ProductID is only meaningful for frequently-bought-together.
type StrategyInput struct {
	TenantID  string
	UserID    string
	ProductID string
	Limit     int
	Exclude   map[string]struct{}
}

func (in StrategyInput) excluded(productID string) bool {
	_, ok := in.Exclude[productID]
	return ok
}

// StrategyRunner produces a ranked list for one strategy. An empty result is
// not an error; it signals the caller to walk the fallback chain.
type StrategyRunner interface {
	Name() domain.Strategy
	Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationItem, error)
}

type Registry map[domain.Strategy]StrategyRunner

func NewRegistry(runners ...StrategyRunner) Registry {
	reg := make(Registry, len(runners))
	for _, r := range runners {
		reg[r.Name()] = r
	}
	return reg
}

func (r Registry) Get(s domain.Strategy) (StrategyRunner, bool) {
	runner, ok := r[s]
	return runner, ok
}

// fallbackChains lists the ordered attempts per requested strategy, evaluated
// lazily: the first non-empty result wins. Trending is the terminal fallback
// everywhere because it is the only non-personalized strategy.
var fallbackChains = map[domain.Strategy][]domain.Strategy{
	domain.StrategyCollaborative: {domain.StrategyCollaborative, domain.StrategyContentBased, domain.StrategyTrending},
	domain.StrategyContentBased:  {domain.StrategyContentBased, domain.StrategyTrending},
	domain.StrategyFBT:           {domain.StrategyFBT, domain.StrategyTrending},
	domain.StrategyTrending:      {domain.StrategyTrending},
}

func FallbackChain(s domain.Strategy) []domain.Strategy {
	if chain, ok := fallbackChains[s]; ok {
		return chain
	}
	return []domain.Strategy{domain.StrategyTrending}
}

// ---- Shared scoring helpers ----

// rankByScore normalizes scores by the observed maximum (top item scores 1.0),
// sorts descending and truncates. Ties break on product ID so that cached and
// fresh computations agree byte for byte.
func rankByScore(scores map[string]float64, limit int, reason string) []domain.RecommendationItem {
	if len(scores) == 0 {
		return []domain.RecommendationItem{}
	}

	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore == 0 {
		return []domain.RecommendationItem{}
	}

	items := make([]domain.RecommendationItem, 0, len(scores))
	for pid, s := range scores {
		items = append(items, domain.RecommendationItem{
			ProductID: pid,
			Score:     s / maxScore,
			Reason:    reason,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Score == items[j].Score {
			return items[i].ProductID < items[j].ProductID
		}
		return items[i].Score > items[j].Score
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items
}

// availableSet resolves which of the candidate products are recommendable.
// The availability filter runs post-scoring so it never distorts ranking.
func availableSet(ctx context.Context, catalog CatalogRepository, tenantID string, productIDs []string) (map[string]struct{}, error) {
	if len(productIDs) == 0 {
		return map[string]struct{}{}, nil
	}

	items, err := catalog.FindByProductIDs(ctx, tenantID, productIDs, true)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it.ProductID] = struct{}{}
	}

	return set, nil
}

func keysOf(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
