package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sokoplace/sokoplace-backend/internal/cart"
	"github.com/sokoplace/sokoplace-backend/internal/gateway"
	"github.com/sokoplace/sokoplace-backend/internal/ledger"
	"github.com/sokoplace/sokoplace-backend/pkg/config"
	"github.com/sokoplace/sokoplace-backend/pkg/db/models"
	"github.com/sokoplace/sokoplace-backend/pkg/enums"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

type fakeCartService struct {
	record *models.CartRecord
	err    error
}

func (f *fakeCartService) GetActive(context.Context, uuid.UUID) (*models.CartRecord, error) {
	return f.record, f.err
}
func (f *fakeCartService) AddItem(context.Context, uuid.UUID, cart.AddItemInput) (*models.CartRecord, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCartService) RemoveItem(context.Context, uuid.UUID, uuid.UUID) (*models.CartRecord, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCartService) Clear(context.Context, uuid.UUID) error   { return nil }
func (f *fakeCartService) Convert(context.Context, uuid.UUID) error { return nil }

type fakeInitializer struct {
	calls  int
	input  gateway.InitializeInput
	result *gateway.InitializeResult
	err    error
}

func (f *fakeInitializer) Initialize(_ context.Context, input gateway.InitializeInput) (*gateway.InitializeResult, error) {
	f.calls++
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &gateway.InitializeResult{
		AuthorizationURL: "https://pay.example.com/session",
		Reference:        input.Reference,
	}, nil
}

func cartWithSubtotalMinor(buyer uuid.UUID, subtotalMinor int64) *models.CartRecord {
	return &models.CartRecord{
		ID:          uuid.New(),
		BuyerUserID: buyer,
		Status:      enums.CartStatusActive,
		Items: []models.CartItem{
			{
				ID:             uuid.New(),
				ProductID:      uuid.New(),
				ProductName:    "Solar Lantern",
				VendorEmail:    "vendor@sokoplace.test",
				Quantity:       1,
				UnitPriceMinor: subtotalMinor,
			},
		},
	}
}

func newCheckoutService(t *testing.T, carts cart.Service, init *fakeInitializer) (Service, ledger.Service) {
	t.Helper()
	ledgerSvc, err := ledger.NewService(ledger.NewMemoryStore(time.Hour), 24*time.Hour)
	if err != nil {
		t.Fatalf("ledger.NewService returned error: %v", err)
	}
	svc, err := NewService(carts, ledgerSvc, init, config.CheckoutConfig{
		DeliveryFee:   1000,
		PickupAddress: "Sokoplace Pickup Center",
	}, "https://app.sokoplace.test/payments/callback")
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc, ledgerSvc
}

func validInput(buyer uuid.UUID) BeginInput {
	return BeginInput{
		BuyerUserID:     buyer,
		BuyerEmail:      "buyer@sokoplace.test",
		DeliveryMethod:  enums.DeliveryMethodDelivery,
		DeliveryAddress: "14 Marina Road, Lagos",
		ContactPhone:    "0803 555 0147",
	}
}

func TestBeginComputesTotals(t *testing.T) {
	buyer := uuid.New()
	init := &fakeInitializer{}
	svc, ledgerSvc := newCheckoutService(t, &fakeCartService{record: cartWithSubtotalMinor(buyer, 500000)}, init)

	session, err := svc.Begin(context.Background(), validInput(buyer))
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}

	// Subtotal 5000 plus delivery fee 1000.
	if !session.GrandTotal.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("expected grand total 6000, got %s", session.GrandTotal)
	}
	if !session.Subtotal.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected subtotal 5000, got %s", session.Subtotal)
	}
	if session.ContactPhone != "08035550147" {
		t.Errorf("expected normalized phone, got %q", session.ContactPhone)
	}

	// The grand total and the delivery selection are on record; the payment
	// callback materializes the order from this entry.
	entry, err := ledgerSvc.Read(context.Background(), buyer.String())
	if err != nil {
		t.Fatalf("ledger Read returned error: %v", err)
	}
	if entry == nil || !entry.Amount.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("expected ledger entry of 6000, got %+v", entry)
	}
	if entry.ContactPhone != "08035550147" {
		t.Errorf("expected recorded phone 08035550147, got %q", entry.ContactPhone)
	}
	if entry.Address != "14 Marina Road, Lagos" {
		t.Errorf("expected recorded address, got %q", entry.Address)
	}
	if entry.DeliveryMethod != enums.DeliveryMethodDelivery.String() {
		t.Errorf("expected recorded method delivery, got %q", entry.DeliveryMethod)
	}

	if !init.input.Amount.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("expected gateway amount 6000, got %s", init.input.Amount)
	}
}

func TestBeginPhoneValidation(t *testing.T) {
	buyer := uuid.New()
	valid := []string{
		"08035550147",
		"0803-555-0147",
		"(080) 3555 0147",
		"0 8 0 3 5 5 5 0 1 4 7",
	}
	invalid := []string{
		"",
		"12345",
		"080355501478",   // 12 digits
		"+2348035550147", // 13 digits after stripping
		"no digits here",
	}

	for _, phone := range valid {
		init := &fakeInitializer{}
		svc, _ := newCheckoutService(t, &fakeCartService{record: cartWithSubtotalMinor(buyer, 100000)}, init)
		input := validInput(buyer)
		input.ContactPhone = phone
		if _, err := svc.Begin(context.Background(), input); err != nil {
			t.Errorf("phone %q: expected success, got %v", phone, err)
		}
	}

	for _, phone := range invalid {
		init := &fakeInitializer{}
		svc, _ := newCheckoutService(t, &fakeCartService{record: cartWithSubtotalMinor(buyer, 100000)}, init)
		input := validInput(buyer)
		input.ContactPhone = phone
		_, err := svc.Begin(context.Background(), input)
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Errorf("phone %q: expected validation error, got %v", phone, err)
		}
		if init.calls != 0 {
			t.Errorf("phone %q: gateway should not be called", phone)
		}
	}
}

func TestBeginPickupFixesAddress(t *testing.T) {
	buyer := uuid.New()
	init := &fakeInitializer{}
	svc, _ := newCheckoutService(t, &fakeCartService{record: cartWithSubtotalMinor(buyer, 100000)}, init)

	input := validInput(buyer)
	input.DeliveryMethod = enums.DeliveryMethodPickup
	input.DeliveryAddress = "buyer typed something here"

	session, err := svc.Begin(context.Background(), input)
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if session.DeliveryAddress != "Sokoplace Pickup Center" {
		t.Errorf("expected pickup address constant, got %q", session.DeliveryAddress)
	}
	// Pickup carries no delivery fee.
	if !session.DeliveryFee.IsZero() {
		t.Errorf("expected zero delivery fee for pickup, got %s", session.DeliveryFee)
	}
}

func TestBeginDeliveryRequiresAddress(t *testing.T) {
	buyer := uuid.New()
	init := &fakeInitializer{}
	svc, _ := newCheckoutService(t, &fakeCartService{record: cartWithSubtotalMinor(buyer, 100000)}, init)

	input := validInput(buyer)
	input.DeliveryAddress = "   "

	_, err := svc.Begin(context.Background(), input)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBeginCoupons(t *testing.T) {
	buyer := uuid.New()

	tests := []struct {
		name    string
		code    string
		want    decimal.Decimal
		wantErr bool
	}{
		{"no coupon", "", decimal.NewFromInt(6000), false},
		{"ten percent", "SOKO10", decimal.NewFromInt(5500), false},
		{"twenty percent", "SOKO20", decimal.NewFromInt(5000), false},
		{"case insensitive", "soko20", decimal.NewFromInt(5000), false},
		{"mixed case", "Soko10", decimal.NewFromInt(5500), false},
		{"unknown coupon", "SOKO50", decimal.Decimal{}, true},
		{"near miss", "SOKO10X", decimal.Decimal{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			init := &fakeInitializer{}
			svc, _ := newCheckoutService(t, &fakeCartService{record: cartWithSubtotalMinor(buyer, 500000)}, init)
			input := validInput(buyer)
			input.CouponCode = tc.code

			session, err := svc.Begin(context.Background(), input)
			if tc.wantErr {
				if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
					t.Fatalf("expected validation error, got %v", err)
				}
				if init.calls != 0 {
					t.Error("gateway should not be called for an invalid coupon")
				}
				return
			}
			if err != nil {
				t.Fatalf("Begin returned error: %v", err)
			}
			if !session.GrandTotal.Equal(tc.want) {
				t.Errorf("expected grand total %s, got %s", tc.want, session.GrandTotal)
			}
		})
	}
}

func TestBeginEmptyCart(t *testing.T) {
	buyer := uuid.New()
	init := &fakeInitializer{}
	empty := &models.CartRecord{ID: uuid.New(), BuyerUserID: buyer, Status: enums.CartStatusActive}
	svc, _ := newCheckoutService(t, &fakeCartService{record: empty}, init)

	_, err := svc.Begin(context.Background(), validInput(buyer))
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestBeginGatewayFailureLeavesLedger(t *testing.T) {
	buyer := uuid.New()
	init := &fakeInitializer{err: errors.New("connection refused")}
	svc, ledgerSvc := newCheckoutService(t, &fakeCartService{record: cartWithSubtotalMinor(buyer, 500000)}, init)

	_, err := svc.Begin(context.Background(), validInput(buyer))
	if err == nil {
		t.Fatal("expected error when gateway is down")
	}

	// The recorded amount stays put; a retry overwrites it and expiry
	// cleans it up otherwise.
	entry, readErr := ledgerSvc.Read(context.Background(), buyer.String())
	if readErr != nil {
		t.Fatalf("ledger Read returned error: %v", readErr)
	}
	if entry == nil || !entry.Amount.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("expected ledger entry to survive gateway failure, got %+v", entry)
	}
}
