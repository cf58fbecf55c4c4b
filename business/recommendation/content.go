package recommendation

import (
	"context"
	"fmt"
	"math"
	"sort"

	"recohub/domain"
)

const (
	contentRecentEvents  = 50
	contentTopCategories = 5
	contentOverfetch     = 5

	categoryBonus  = 0.4
	priceBonus     = 0.3
	attributeBonus = 0.3
)

// ContentStrategy builds a preference profile from the user's recent history
// (category histogram, price range, attribute pairs) and scores candidates
// from the preferred categories against it.
type ContentStrategy struct {
	events  EventRepository
	catalog CatalogRepository
}

func NewContentStrategy(events EventRepository, catalog CatalogRepository) *ContentStrategy {
	return &ContentStrategy{events: events, catalog: catalog}
}

func (s *ContentStrategy) Name() domain.Strategy {
	return domain.StrategyContentBased
}

type preferenceProfile struct {
	categoryCount map[string]int
	totalWithCat  int
	priceMin      float64
	priceMax      float64
	hasPrice      bool
	attributes    map[string]struct{} // "key=value" pairs
}

func (s *ContentStrategy) Run(ctx context.Context, in StrategyInput) ([]domain.RecommendationItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	userEvents, err := s.events.FindEvents(ctx, EventFilter{
		TenantID: in.TenantID,
		UserID:   in.UserID,
		Limit:    contentRecentEvents,
	})
	if err != nil {
		return nil, fmt.Errorf("load user history: %w", err)
	}
	if len(userEvents) == 0 {
		return []domain.RecommendationItem{}, nil
	}

	interacted := make(map[string]struct{}, len(userEvents))
	for _, ev := range userEvents {
		interacted[ev.ProductID] = struct{}{}
	}

	// profile uses the full catalog rows of interacted items, available or not
	interactedItems, err := s.catalog.FindByProductIDs(ctx, in.TenantID, setKeys(interacted), false)
	if err != nil {
		return nil, fmt.Errorf("load interacted items: %w", err)
	}
	if len(interactedItems) == 0 {
		return []domain.RecommendationItem{}, nil
	}

	profile := buildProfile(interactedItems)

	topCats := topCategories(profile.categoryCount, contentTopCategories)
	if len(topCats) == 0 {
		return []domain.RecommendationItem{}, nil
	}

	candidates, err := s.catalog.FindByCategories(ctx, in.TenantID, topCats, in.Limit*contentOverfetch)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	scores := make(map[string]float64)
	for _, item := range candidates {
		if _, own := interacted[item.ProductID]; own {
			continue
		}
		if in.excluded(item.ProductID) {
			continue
		}
		if score := profile.score(item); score > 0 {
			scores[item.ProductID] = score
		}
	}

	return rankByScore(scores, in.Limit, "Matches your preferences"), nil
}

func buildProfile(items []domain.CatalogItem) preferenceProfile {
	p := preferenceProfile{
		categoryCount: make(map[string]int),
		attributes:    make(map[string]struct{}),
	}

	for _, it := range items {
		if it.Category != "" {
			p.categoryCount[it.Category]++
			p.totalWithCat++
		}
		if it.Price > 0 {
			if !p.hasPrice || it.Price < p.priceMin {
				p.priceMin = it.Price
			}
			if !p.hasPrice || it.Price > p.priceMax {
				p.priceMax = it.Price
			}
			p.hasPrice = true
		}
		for k, v := range it.Attributes {
			p.attributes[fmt.Sprintf("%s=%v", k, v)] = struct{}{}
		}
	}

	return p
}

// score sums three independent bonuses capped so the theoretical maximum is 1.0:
// category frequency share (0.4), inverse distance from the midpoint of the
// observed price range (0.3), and shared attribute fraction (0.3).
func (p preferenceProfile) score(item domain.CatalogItem) float64 {
	score := 0.0

	if p.totalWithCat > 0 && item.Category != "" {
		share := float64(p.categoryCount[item.Category]) / float64(p.totalWithCat)
		score += categoryBonus * share
	}

	if p.hasPrice && item.Price > 0 {
		mid := (p.priceMin + p.priceMax) / 2
		halfRange := (p.priceMax - p.priceMin) / 2
		if halfRange == 0 {
			if item.Price == mid {
				score += priceBonus
			}
		} else {
			dist := math.Abs(item.Price-mid) / halfRange
			if dist < 1 {
				score += priceBonus * (1 - dist)
			}
		}
	}

	if len(p.attributes) > 0 && len(item.Attributes) > 0 {
		shared := 0
		for k, v := range item.Attributes {
			if _, ok := p.attributes[fmt.Sprintf("%s=%v", k, v)]; ok {
				shared++
			}
		}
		score += attributeBonus * float64(shared) / float64(len(p.attributes))
	}

	return score
}

func topCategories(counts map[string]int, n int) []string {
	cats := make([]string, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if counts[cats[i]] == counts[cats[j]] {
			return cats[i] < cats[j]
		}
		return counts[cats[i]] > counts[cats[j]]
	})
	if len(cats) > n {
		cats = cats[:n]
	}
	return cats
}
