package domain

import "time"

// Tenant is an isolated customer account. API keys are stored bcrypt-hashed;
// the plaintext prefix allows a single indexed lookup before the hash check.
type Tenant struct {
	ID              string    `gorm:"column:id;primaryKey" json:"id"`
	Name            string    `gorm:"column:name;type:text;not null" json:"name"`
	APIKeyPrefix    string    `gorm:"column:api_key_prefix;uniqueIndex" json:"-"`
	APIKeyHash      string    `gorm:"column:api_key_hash" json:"-"`
	DefaultStrategy Strategy  `gorm:"column:default_strategy" json:"default_strategy,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}
