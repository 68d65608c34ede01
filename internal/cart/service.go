package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sokoplace/sokoplace-backend/pkg/db"
	"github.com/sokoplace/sokoplace-backend/pkg/db/models"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

// AddItemInput carries one product line to place in the buyer's cart. The
// price is snapshotted here; later catalog changes do not retouch the cart.
type AddItemInput struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	VendorEmail    string    `json:"vendor_email"`
	Quantity       int       `json:"quantity"`
	UnitPriceMinor int64     `json:"unit_price_minor"`
}

// Service defines cart operations for the buyer surface.
type Service interface {
	// GetActive returns the buyer's active cart, creating an empty one if needed.
	GetActive(ctx context.Context, buyerUserID uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, buyerUserID uuid.UUID, input AddItemInput) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, buyerUserID, productID uuid.UUID) (*models.CartRecord, error)
	Clear(ctx context.Context, buyerUserID uuid.UUID) error
	// Convert flips the buyer's active cart to converted after its order has
	// materialized. Converting when no active cart exists is a no-op.
	Convert(ctx context.Context, buyerUserID uuid.UUID) error
}

type service struct {
	client *db.Client
	repo   *Repository
}

// NewService wires the cart service with its persistence dependencies.
func NewService(client *db.Client, repo *Repository) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db client is required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repository is required")
	}
	return &service{client: client, repo: repo}, nil
}

func (s *service) GetActive(ctx context.Context, buyerUserID uuid.UUID) (*models.CartRecord, error) {
	if buyerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	record, err := s.repo.FindOrCreateActive(ctx, buyerUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return record, nil
}

func (s *service) AddItem(ctx context.Context, buyerUserID uuid.UUID, input AddItemInput) (*models.CartRecord, error) {
	if buyerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.UnitPriceMinor < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindOrCreateActive(ctx, buyerUserID)
		if err != nil {
			return err
		}
		_, err = repo.UpsertItem(ctx, record.ID, models.CartItem{
			ProductID:      input.ProductID,
			ProductName:    input.ProductName,
			VendorEmail:    input.VendorEmail,
			Quantity:       input.Quantity,
			UnitPriceMinor: input.UnitPriceMinor,
		})
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding cart item")
	}
	return s.GetActive(ctx, buyerUserID)
}

func (s *service) RemoveItem(ctx context.Context, buyerUserID, productID uuid.UUID) (*models.CartRecord, error) {
	if buyerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	record, err := s.repo.FindActiveByBuyer(ctx, buyerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if err := s.repo.RemoveItem(ctx, record.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart item")
	}
	return s.GetActive(ctx, buyerUserID)
}

func (s *service) Clear(ctx context.Context, buyerUserID uuid.UUID) error {
	if buyerUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	record, err := s.repo.FindActiveByBuyer(ctx, buyerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if err := s.repo.ClearItems(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
	}
	return nil
}

func (s *service) Convert(ctx context.Context, buyerUserID uuid.UUID) error {
	if buyerUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	record, err := s.repo.FindActiveByBuyer(ctx, buyerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if err := s.repo.MarkConverted(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "converting cart")
	}
	return nil
}
