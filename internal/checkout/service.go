package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sokoplace/sokoplace-backend/internal/cart"
	"github.com/sokoplace/sokoplace-backend/internal/gateway"
	"github.com/sokoplace/sokoplace-backend/internal/ledger"
	"github.com/sokoplace/sokoplace-backend/pkg/config"
	"github.com/sokoplace/sokoplace-backend/pkg/enums"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

// PaymentInitializer starts a hosted payment session at the gateway.
type PaymentInitializer interface {
	Initialize(ctx context.Context, input gateway.InitializeInput) (*gateway.InitializeResult, error)
}

// BeginInput is a buyer's checkout submission.
type BeginInput struct {
	BuyerUserID     uuid.UUID
	BuyerEmail      string
	DeliveryMethod  enums.DeliveryMethod
	DeliveryAddress string
	ContactPhone    string
	CouponCode      string
}

// Session is the assembled purchase intent handed back to the buyer.
type Session struct {
	Reference        string               `json:"reference"`
	AuthorizationURL string               `json:"authorization_url"`
	DeliveryMethod   enums.DeliveryMethod `json:"delivery_method"`
	DeliveryAddress  string               `json:"delivery_address"`
	ContactPhone     string               `json:"contact_phone"`
	Subtotal         decimal.Decimal      `json:"subtotal"`
	DeliveryFee      decimal.Decimal      `json:"delivery_fee"`
	Discount         decimal.Decimal      `json:"discount"`
	GrandTotal       decimal.Decimal      `json:"grand_total"`
}

// Service assembles checkout sessions: validates the submission, computes the
// grand total, records it as the expected amount and opens a gateway session.
type Service interface {
	Begin(ctx context.Context, input BeginInput) (*Session, error)
}

type service struct {
	carts       cart.Service
	ledger      ledger.Service
	initializer PaymentInitializer
	cfg         config.CheckoutConfig
	callbackURL string
	newRef      func() string
}

// NewService wires the checkout session builder.
func NewService(carts cart.Service, ledgerSvc ledger.Service, initializer PaymentInitializer, cfg config.CheckoutConfig, callbackURL string) (Service, error) {
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart service is required")
	}
	if ledgerSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger service is required")
	}
	if initializer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment initializer is required")
	}
	return &service{
		carts:       carts,
		ledger:      ledgerSvc,
		initializer: initializer,
		cfg:         cfg,
		callbackURL: callbackURL,
		newRef:      newReference,
	}, nil
}

func newReference() string {
	return "SOKO-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}

func (s *service) Begin(ctx context.Context, input BeginInput) (*Session, error) {
	if input.BuyerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if strings.TrimSpace(input.BuyerEmail) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer email is required")
	}

	phone, err := NormalizePhone(input.ContactPhone)
	if err != nil {
		return nil, err
	}
	address, err := ResolveAddress(input.DeliveryMethod, input.DeliveryAddress, s.cfg.PickupAddress)
	if err != nil {
		return nil, err
	}

	record, err := s.carts.GetActive(ctx, input.BuyerUserID)
	if err != nil {
		return nil, err
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	subtotal := decimal.NewFromInt(record.SubtotalMinor()).Div(decimal.NewFromInt(100))
	discount, err := CouponDiscount(input.CouponCode, subtotal)
	if err != nil {
		return nil, err
	}

	deliveryFee := decimal.Zero
	if input.DeliveryMethod == enums.DeliveryMethodDelivery {
		deliveryFee = decimal.NewFromInt(s.cfg.DeliveryFee)
	}
	grandTotal := subtotal.Add(deliveryFee).Sub(discount)
	if grandTotal.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	// The expected amount and the delivery selection go on record before the
	// gateway is contacted; the payment callback materializes from this entry,
	// not from anything the client resupplies later. If the gateway call then
	// fails the entry stays behind; it is harmless and will be overwritten by
	// a retry or expire on its own.
	if err := s.ledger.Record(ctx, input.BuyerUserID.String(), ledger.Entry{
		Amount:         grandTotal,
		ContactPhone:   phone,
		Address:        address,
		DeliveryMethod: input.DeliveryMethod.String(),
	}); err != nil {
		return nil, err
	}

	reference := s.newRef()
	result, err := s.initializer.Initialize(ctx, gateway.InitializeInput{
		Email:     input.BuyerEmail,
		Amount:    grandTotal,
		Reference: reference,
		Callback:  s.callbackURL,
		Metadata: map[string]string{
			"buyer_user_id":   input.BuyerUserID.String(),
			"delivery_method": input.DeliveryMethod.String(),
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("opening payment session %s", reference))
	}

	return &Session{
		Reference:        result.Reference,
		AuthorizationURL: result.AuthorizationURL,
		DeliveryMethod:   input.DeliveryMethod,
		DeliveryAddress:  address,
		ContactPhone:     phone,
		Subtotal:         subtotal,
		DeliveryFee:      deliveryFee,
		Discount:         discount,
		GrandTotal:       grandTotal,
	}, nil
}
