package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem persists one product line inside a CartRecord. Prices are minor
// currency units snapshotted from the catalog at add time.
type CartItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID         uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	VendorEmail    string    `gorm:"column:vendor_email;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitPriceMinor int64     `gorm:"column:unit_price_minor;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// LineSubtotalMinor is quantity times unit price in minor units.
func (i CartItem) LineSubtotalMinor() int64 {
	return int64(i.Quantity) * i.UnitPriceMinor
}
