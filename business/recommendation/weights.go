package recommendation

import "recohub/domain"

// Fixed per-event-type weights shared by trending and collaborative scoring.
// Unweighted event types contribute zero signal.
var eventWeights = map[string]float64{
	domain.EventProductViewed:         1,
	domain.EventProductClicked:        2,
	domain.EventAddToCart:             3,
	domain.EventRemoveFromCart:        0,
	domain.EventPurchase:              5,
	domain.EventRecommendationClicked: 2,
	domain.EventRecommendationImpress: 0,
}

func eventWeight(eventType string) float64 {
	return eventWeights[eventType]
}
