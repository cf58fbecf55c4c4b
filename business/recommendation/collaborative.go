package recommendation

import (
	"context"
	"fmt"
	"sort"

	"recohub/domain"
)

const (
	collabMinUserEvents = 5
	collabMaxNeighbors  = 20

	// scan bounds so an adversarial tenant cannot trigger unbounded reads
	collabMaxUserHistory  = 500
	collabMaxNeighborScan = 2000
)

// CollaborativeStrategy ranks products that behaviorally similar users
// interacted with. Users below the history threshold get an empty result,
// which the orchestrator turns into a fallback.
type CollaborativeStrategy struct {
	events  EventRepository
	catalog CatalogRepository
}

func NewCollaborativeStrategy(events EventRepository, catalog CatalogRepository) *CollaborativeStrategy {
	return &CollaborativeStrategy{events: events, catalog: catalog}
}

func (s *CollaborativeStrategy) Name() domain.Strategy {
	return domain.StrategyCollaborative
}

func (s *CollaborativeStrategy) Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	userEvents, err := s.events.FindEvents(ctx, EventFilter{
		TenantID: in.TenantID,
		UserID:   in.UserID,
		Limit:    collabMaxUserHistory,
	})
	if err != nil {
		return nil, fmt.Errorf("load user history: %w", err)
	}
	if len(userEvents) < collabMinUserEvents {
		return []domain.RecommendationItem{}, nil
	}

	ownProducts := make(map[string]struct{}, len(userEvents))
	for _, ev := range userEvents {
		ownProducts[ev.ProductID] = struct{}{}
	}

	// events by other users on the products this user touched
	peerEvents, err := s.events.FindEvents(ctx, EventFilter{
		TenantID:   in.TenantID,
		ProductIDs: setKeys(ownProducts),
		Limit:      collabMaxNeighborScan,
	})
	if err != nil {
		return nil, fmt.Errorf("load neighbor events: %w", err)
	}

	// overlap = number of distinct shared products per neighbor
	overlapProducts := make(map[string]map[string]struct{})
	for _, ev := range peerEvents {
		if ev.UserID == in.UserID {
			continue
		}
		if overlapProducts[ev.UserID] == nil {
			overlapProducts[ev.UserID] = make(map[string]struct{})
		}
		overlapProducts[ev.UserID][ev.ProductID] = struct{}{}
	}
	if len(overlapProducts) == 0 {
		return []domain.RecommendationItem{}, nil
	}

	type neighbor struct {
		userID  string
		overlap int
	}
	neighbors := make([]neighbor, 0, len(overlapProducts))
	for uid, prods := range overlapProducts {
		neighbors = append(neighbors, neighbor{userID: uid, overlap: len(prods)})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].overlap == neighbors[j].overlap {
			return neighbors[i].userID < neighbors[j].userID
		}
		return neighbors[i].overlap > neighbors[j].overlap
	})
	if len(neighbors) > collabMaxNeighbors {
		neighbors = neighbors[:collabMaxNeighbors]
	}

	maxOverlap := float64(neighbors[0].overlap)
	neighborWeight := make(map[string]float64, len(neighbors))
	neighborIDs := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		neighborWeight[n.userID] = float64(n.overlap) / maxOverlap
		neighborIDs = append(neighborIDs, n.userID)
	}

	// neighbors' further interactions become the candidate pool
	candidateEvents, err := s.events.FindEvents(ctx, EventFilter{
		TenantID: in.TenantID,
		UserIDs:  neighborIDs,
		Limit:    collabMaxNeighborScan,
	})
	if err != nil {
		return nil, fmt.Errorf("load candidate events: %w", err)
	}

	scores := make(map[string]float64)
	for _, ev := range candidateEvents {
		if _, own := ownProducts[ev.ProductID]; own {
			continue
		}
		if in.excluded(ev.ProductID) {
			continue
		}
		w := eventWeight(ev.EventType)
		if w == 0 {
			continue
		}
		scores[ev.ProductID] += neighborWeight[ev.UserID] * w
	}
	if len(scores) == 0 {
		return []domain.RecommendationItem{}, nil
	}

	avail, err := availableSet(ctx, s.catalog, in.TenantID, keysOf(scores))
	if err != nil {
		return nil, fmt.Errorf("filter collaborative availability: %w", err)
	}
	for pid := range scores {
		if _, ok := avail[pid]; !ok {
			delete(scores, pid)
		}
	}

	return rankByScore(scores, in.Limit, "People with similar taste also liked this"), nil
}

func setKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
