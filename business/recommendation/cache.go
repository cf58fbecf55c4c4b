package recommendation

import (
	"context"
	"fmt"
	"time"

	"recohub/domain"
)

// ResultCache is an optional accelerator. Implementations must never surface
// backend errors: a failed lookup reads as a miss and a failed write is a
// no-op. A nil cache is valid and means "always miss".
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration)
}

// Trending is tenant-global and FBT narrowly product-scoped, so both tolerate
// longer staleness than per-user personalized results.
const (
	trendingTTL     = 15 * time.Minute
	fbtTTL          = 30 * time.Minute
	personalizedTTL = 5 * time.Minute
)

func cacheKey(strategy domain.Strategy, tenantID, userID, productID string) string {
	switch strategy {
	case domain.StrategyTrending:
		return fmt.Sprintf("reco:%s:trending", tenantID)
	case domain.StrategyFBT:
		return fmt.Sprintf("reco:%s:fbt:%s", tenantID, productID)
	default:
		return fmt.Sprintf("reco:%s:%s:%s", tenantID, userID, strategy)
	}
}

func cacheTTL(strategy domain.Strategy) time.Duration {
	switch strategy {
	case domain.StrategyTrending:
		return trendingTTL
	case domain.StrategyFBT:
		return fbtTTL
	default:
		return personalizedTTL
	}
}
