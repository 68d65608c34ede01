package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sokoplace/sokoplace-backend/pkg/db/models"
	"github.com/sokoplace/sokoplace-backend/pkg/enums"
)

// Repository encapsulates cart persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindActiveByBuyer returns the buyer's active cart with its items preloaded.
func (r *Repository) FindActiveByBuyer(ctx context.Context, buyerUserID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("buyer_user_id = ? AND status = ?", buyerUserID, enums.CartStatusActive).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a fresh active cart for the buyer.
func (r *Repository) Create(ctx context.Context, buyerUserID uuid.UUID) (*models.CartRecord, error) {
	record := &models.CartRecord{
		ID:          uuid.New(),
		BuyerUserID: buyerUserID,
		Status:      enums.CartStatusActive,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// FindOrCreateActive returns the buyer's active cart, creating one if absent.
func (r *Repository) FindOrCreateActive(ctx context.Context, buyerUserID uuid.UUID) (*models.CartRecord, error) {
	record, err := r.FindActiveByBuyer(ctx, buyerUserID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return r.Create(ctx, buyerUserID)
}

// UpsertItem inserts the item or, when the product is already in the cart,
// replaces its quantity and price snapshot.
func (r *Repository) UpsertItem(ctx context.Context, cartID uuid.UUID, item models.CartItem) (*models.CartItem, error) {
	var existing models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, item.ProductID).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		item.ID = uuid.New()
		item.CartID = cartID
		if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	}

	existing.Quantity = item.Quantity
	existing.UnitPriceMinor = item.UnitPriceMinor
	existing.ProductName = item.ProductName
	existing.VendorEmail = item.VendorEmail
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// RemoveItem deletes one product line from the cart.
func (r *Repository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

// ClearItems deletes every line in the cart.
func (r *Repository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

// MarkConverted flips the cart out of active status once its order exists.
func (r *Repository) MarkConverted(ctx context.Context, cartID uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ? AND status = ?", cartID, enums.CartStatusActive).
		Updates(map[string]any{
			"status":       enums.CartStatusConverted,
			"converted_at": now,
		}).Error
}
