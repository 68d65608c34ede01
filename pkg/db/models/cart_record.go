package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sokoplace/sokoplace-backend/pkg/enums"
)

// CartRecord is the buyer's working cart. One active record per buyer; it is
// flipped to converted when the order materializes.
type CartRecord struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	BuyerUserID uuid.UUID        `gorm:"column:buyer_user_id;type:uuid;not null;index"`
	Status      enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	Items       []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	ConvertedAt *time.Time       `gorm:"column:converted_at"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// SubtotalMinor sums line subtotals in minor currency units.
func (c CartRecord) SubtotalMinor() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.LineSubtotalMinor()
	}
	return total
}
