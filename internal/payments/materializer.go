package payments

import (
	"context"

	"github.com/google/uuid"

	"github.com/sokoplace/sokoplace-backend/internal/commerce"
	"github.com/sokoplace/sokoplace-backend/pkg/db/models"
	"github.com/sokoplace/sokoplace-backend/pkg/enums"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

// OrderCreator is the commerce surface the materializer writes through.
type OrderCreator interface {
	CreateOrder(ctx context.Context, input commerce.CreateOrderInput) (*commerce.Order, error)
}

// MaterializeInput carries everything needed to turn a settled payment into
// an order at the commerce service.
type MaterializeInput struct {
	BuyerUserID    uuid.UUID
	BuyerEmail     string
	Reference      string
	AmountMinor    int64
	ContactPhone   string
	Address        string
	DeliveryMethod enums.DeliveryMethod
	Cart           *models.CartRecord
}

// Materializer issues the single order-creation call for a settled payment.
// It never retries on its own; the engine owns the once-per-reference rule.
type Materializer struct {
	orders OrderCreator
}

func NewMaterializer(orders OrderCreator) (*Materializer, error) {
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order creator is required")
	}
	return &Materializer{orders: orders}, nil
}

func (m *Materializer) Materialize(ctx context.Context, input MaterializeInput) (*commerce.Order, error) {
	if input.Reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	if input.Cart == nil || len(input.Cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart has no items to materialize")
	}

	lines := make([]commerce.CreateItemLine, 0, len(input.Cart.Items))
	for _, item := range input.Cart.Items {
		lines = append(lines, commerce.CreateItemLine{
			ProductID:      item.ProductID.String(),
			ProductName:    item.ProductName,
			VendorEmail:    item.VendorEmail,
			Quantity:       item.Quantity,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}

	return m.orders.CreateOrder(ctx, commerce.CreateOrderInput{
		BuyerUserID: input.BuyerUserID.String(),
		BuyerEmail:  input.BuyerEmail,
		Reference:   input.Reference,
		AmountMinor: input.AmountMinor,
		Phone:       input.ContactPhone,
		Address:     input.Address,
		Method:      input.DeliveryMethod.String(),
		Items:       lines,
	})
}
