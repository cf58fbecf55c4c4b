package domain

// Strategy identifies one of the ranking algorithms.
type Strategy string

const (
	StrategyTrending      Strategy = "trending"
	StrategyCollaborative Strategy = "collaborative"
	StrategyContentBased  Strategy = "content_based"
	StrategyFBT           Strategy = "frequently_bought_together"
)

var validStrategies = map[Strategy]bool{
	StrategyTrending:      true,
	StrategyCollaborative: true,
	StrategyContentBased:  true,
	StrategyFBT:           true,
}

func (s Strategy) Valid() bool {
	return validStrategies[s]
}

// RecommendationItem is the raw per-request strategy output. Scores are
// normalized to [0,1]; the top item of a non-empty result always scores 1.0.
type RecommendationItem struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
}

// EnrichedRecommendation carries catalog display fields on top of the raw
// item. A product missing from the catalog keeps empty display fields rather
// than failing the request.
type EnrichedRecommendation struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
	Name      string  `json:"name,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	Price     float64 `json:"price,omitempty"`
}

// RecommendationMeta is the provenance block returned with every response.
type RecommendationMeta struct {
	Strategy     Strategy `json:"strategy"`
	IsFallback   bool     `json:"is_fallback"`
	ExperimentID string   `json:"experiment_id,omitempty"`
	Variant      string   `json:"variant,omitempty"`
	Cached       bool     `json:"cached"`
}
