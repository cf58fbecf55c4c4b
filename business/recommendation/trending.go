package recommendation

import (
	"context"
	"fmt"
	"time"

	"recohub/domain"
)

const (
	trendingWindow    = 24 * time.Hour
	maxTrendingEvents = 5000
)

// TrendingStrategy scores products by weighted event velocity over the last
// 24 hours. It is the only strategy that ignores the user entirely, which is
// what makes it the terminal fallback for everything else.
type TrendingStrategy struct {
	events  EventRepository
	catalog CatalogRepository
}

func NewTrendingStrategy(events EventRepository, catalog CatalogRepository) *TrendingStrategy {
	return &TrendingStrategy{events: events, catalog: catalog}
}

func (s *TrendingStrategy) Name() domain.Strategy {
	return domain.StrategyTrending
}

func (s *TrendingStrategy) Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	evts, err := s.events.FindEvents(ctx, EventFilter{
		TenantID: in.TenantID,
		Since:    time.Now().Add(-trendingWindow),
		Limit:    maxTrendingEvents,
	})
	if err != nil {
		return nil, fmt.Errorf("load trending events: %w", err)
	}

	scores := make(map[string]float64)
	for _, ev := range evts {
		if in.excluded(ev.ProductID) {
			continue
		}
		if w := eventWeight(ev.EventType); w > 0 {
			scores[ev.ProductID] += w
		}
	}

	if len(scores) == 0 {
		return s.recentCatalogFallback(ctx, in)
	}

	avail, err := availableSet(ctx, s.catalog, in.TenantID, keysOf(scores))
	if err != nil {
		return nil, fmt.Errorf("filter trending availability: %w", err)
	}
	for pid := range scores {
		if _, ok := avail[pid]; !ok {
			delete(scores, pid)
		}
	}

	return rankByScore(scores, in.Limit, "Trending now"), nil
}

// recentCatalogFallback serves the newest available items with a linearly
// decaying score when the event window is empty (fresh tenants).
func (s *TrendingStrategy) recentCatalogFallback(ctx context.Context, in StrategyInput) ([]domain.RecommendationItem, error) {
	rows, err := s.catalog.FindRecent(ctx, in.TenantID, in.Limit+len(in.Exclude))
	if err != nil {
		return nil, fmt.Errorf("load recent catalog items: %w", err)
	}

	kept := make([]domain.CatalogItem, 0, len(rows))
	for _, it := range rows {
		if in.excluded(it.ProductID) {
			continue
		}
		kept = append(kept, it)
		if in.Limit > 0 && len(kept) == in.Limit {
			break
		}
	}

	items := make([]domain.RecommendationItem, 0, len(kept))
	for i, it := range kept {
		items = append(items, domain.RecommendationItem{
			ProductID: it.ProductID,
			Score:     1 - float64(i)/float64(len(kept)),
			Reason:    "Recently added",
		})
	}

	return items, nil
}
