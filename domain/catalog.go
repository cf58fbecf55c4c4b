package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CatalogItem is a tenant-scoped product record. Strategies score over the
// full catalog and drop unavailable items post-scoring, so availability never
// distorts the ranking signal itself.
type CatalogItem struct {
	ID         uint64            `gorm:"primaryKey;autoIncrement" json:"-"`
	TenantID   string            `gorm:"column:tenant_id;not null;uniqueIndex:uq_catalog_tenant_product" json:"tenant_id"`
	ProductID  string            `gorm:"column:product_id;not null;uniqueIndex:uq_catalog_tenant_product" json:"product_id"`
	Name       string            `gorm:"column:name;type:text" json:"name"`
	Category   string            `gorm:"column:category;type:text" json:"category,omitempty"`
	Price      float64           `gorm:"column:price;type:numeric" json:"price"`
	ImageURL   string            `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	Attributes datatypes.JSONMap `gorm:"column:attributes;type:jsonb" json:"attributes,omitempty"`
	Available  bool              `gorm:"column:available;default:true" json:"available"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CatalogItem) TableName() string {
	return "catalog_items"
}
