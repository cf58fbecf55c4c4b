package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Behavioral event types. Events are immutable facts; retention and
// compaction are handled outside this service.
const (
	EventProductViewed         = "product_viewed"
	EventProductClicked        = "product_clicked"
	EventAddToCart             = "add_to_cart"
	EventRemoveFromCart        = "remove_from_cart"
	EventPurchase              = "purchase"
	EventRecommendationClicked = "recommendation_clicked"
	EventRecommendationImpress = "recommendation_impressed"
)

var validEventTypes = map[string]bool{
	EventProductViewed:         true,
	EventProductClicked:        true,
	EventAddToCart:             true,
	EventRemoveFromCart:        true,
	EventPurchase:              true,
	EventRecommendationClicked: true,
	EventRecommendationImpress: true,
}

func IsValidEventType(t string) bool {
	return validEventTypes[t]
}

type Event struct {
	ID        string            `gorm:"column:id;primaryKey" json:"id"`
	TenantID  string            `gorm:"column:tenant_id;not null;index:idx_events_tenant_created" json:"tenant_id"`
	EventType string            `gorm:"column:event_type;not null" json:"event_type"`
	UserID    string            `gorm:"column:user_id;not null;index:idx_events_tenant_user" json:"user_id"`
	ProductID string            `gorm:"column:product_id;not null;index:idx_events_tenant_product" json:"product_id"`
	SessionID string            `gorm:"column:session_id" json:"session_id,omitempty"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime;index:idx_events_tenant_created" json:"created_at"`
	Metadata  datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
}

func (Event) TableName() string {
	return "events"
}
