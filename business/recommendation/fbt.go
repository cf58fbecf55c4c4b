package recommendation

import (
	"context"
	"fmt"
	"time"

	"recohub/domain"
)

const (
	fbtWindow       = 7 * 24 * time.Hour
	fbtMaxPurchases = 2000
)

// FBTStrategy ranks products by purchase co-occurrence with a context product
// over the last 7 days. It requires a product context; the orchestrator falls
// back to trending when none is supplied.
type FBTStrategy struct {
	events  EventRepository
	catalog CatalogRepository
}

func NewFBTStrategy(events EventRepository, catalog CatalogRepository) *FBTStrategy {
	return &FBTStrategy{events: events, catalog: catalog}
}

func (s *FBTStrategy) Name() domain.Strategy {
	return domain.StrategyFBT
}

func (s *FBTStrategy) Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if in.ProductID == "" {
		return []domain.RecommendationItem{}, nil
	}

	since := time.Now().Add(-fbtWindow)

	purchases, err := s.events.FindEvents(ctx, EventFilter{
		TenantID:   in.TenantID,
		ProductIDs: []string{in.ProductID},
		EventTypes: []string{domain.EventPurchase},
		Since:      since,
		Limit:      fbtMaxPurchases,
	})
	if err != nil {
		return nil, fmt.Errorf("load context purchases: %w", err)
	}
	if len(purchases) == 0 {
		return []domain.RecommendationItem{}, nil
	}

	buyers := make(map[string]struct{}, len(purchases))
	for _, ev := range purchases {
		buyers[ev.UserID] = struct{}{}
	}

	coPurchases, err := s.events.FindEvents(ctx, EventFilter{
		TenantID:   in.TenantID,
		UserIDs:    setKeys(buyers),
		EventTypes: []string{domain.EventPurchase},
		Since:      since,
		Limit:      fbtMaxPurchases,
	})
	if err != nil {
		return nil, fmt.Errorf("load co-purchases: %w", err)
	}

	counts := make(map[string]float64)
	for _, ev := range coPurchases {
		if ev.ProductID == in.ProductID {
			continue
		}
		if in.excluded(ev.ProductID) {
			continue
		}
		counts[ev.ProductID]++
	}
	if len(counts) == 0 {
		return []domain.RecommendationItem{}, nil
	}

	avail, err := availableSet(ctx, s.catalog, in.TenantID, keysOf(counts))
	if err != nil {
		return nil, fmt.Errorf("filter co-purchase availability: %w", err)
	}
	for pid := range counts {
		if _, ok := avail[pid]; !ok {
			delete(counts, pid)
		}
	}

	return rankByScore(counts, in.Limit, "Frequently bought together"), nil
}
