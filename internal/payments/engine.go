package payments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sokoplace/sokoplace-backend/internal/cart"
	"github.com/sokoplace/sokoplace-backend/internal/checkout"
	"github.com/sokoplace/sokoplace-backend/internal/gateway"
	"github.com/sokoplace/sokoplace-backend/internal/ledger"
	"github.com/sokoplace/sokoplace-backend/pkg/enums"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
	"github.com/sokoplace/sokoplace-backend/pkg/logger"
	"github.com/sokoplace/sokoplace-backend/pkg/metrics"
)

// amountTolerance absorbs rounding differences between the gateway's settled
// figure and the recorded expected amount.
var amountTolerance = decimal.NewFromFloat(0.01)

// PaymentVerifier fetches the gateway's settled view of a transaction.
type PaymentVerifier interface {
	Verify(ctx context.Context, reference string) (*gateway.VerifyResult, error)
}

// VerifyInput identifies the payment to settle. The delivery fields are a
// fallback for callbacks whose recorded purchase intent has expired; when an
// intent is on record its delivery selection wins over anything here.
type VerifyInput struct {
	BuyerUserID    uuid.UUID
	BuyerEmail     string
	Reference      string
	ContactPhone   string
	Address        string
	DeliveryMethod string
}

// VerifyResult reports the outcome of one verification attempt.
type VerifyResult struct {
	Reference   string `json:"reference"`
	OrderNumber string `json:"order_number,omitempty"`
	// AlreadyProcessed marks a duplicate callback that was absorbed as a
	// no-op success rather than re-materializing the order.
	AlreadyProcessed bool `json:"already_processed"`
	// Reconciled is false when no expected amount was on record and the
	// payment settled on the gateway's word alone.
	Reconciled bool `json:"reconciled"`
}

// Engine settles payment references: verify at the gateway, reconcile against
// the expected amount, then materialize the order exactly once per reference.
type Engine interface {
	VerifyAndMaterialize(ctx context.Context, input VerifyInput) (*VerifyResult, error)
}

type engine struct {
	guard        *ReferenceGuard
	verifier     PaymentVerifier
	ledger       ledger.Service
	carts        cart.Service
	materializer *Materializer
	logg         *logger.Logger
	metrics      *metrics.PaymentMetrics
}

// NewEngine wires the verification engine.
func NewEngine(
	guard *ReferenceGuard,
	verifier PaymentVerifier,
	ledgerSvc ledger.Service,
	carts cart.Service,
	materializer *Materializer,
	logg *logger.Logger,
	paymentMetrics *metrics.PaymentMetrics,
) (Engine, error) {
	if guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reference guard is required")
	}
	if verifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment verifier is required")
	}
	if ledgerSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger service is required")
	}
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart service is required")
	}
	if materializer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "materializer is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &engine{
		guard:        guard,
		verifier:     verifier,
		ledger:       ledgerSvc,
		carts:        carts,
		materializer: materializer,
		logg:         logg,
		metrics:      paymentMetrics,
	}, nil
}

func (e *engine) VerifyAndMaterialize(ctx context.Context, input VerifyInput) (*VerifyResult, error) {
	if input.BuyerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	fallbackPhone := strings.TrimSpace(input.ContactPhone)
	if fallbackPhone != "" {
		normalized, err := checkout.NormalizePhone(fallbackPhone)
		if err != nil {
			return nil, err
		}
		fallbackPhone = normalized
	}

	ctx = e.logg.WithReference(ctx, reference)
	started := time.Now()

	// The mark is taken before any side effect so a concurrent duplicate
	// callback cannot race past the gateway call.
	already, err := e.guard.CheckAndMark(ctx, reference)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking reference idempotency")
	}
	if already {
		e.logg.Info(ctx, "duplicate payment callback absorbed")
		e.observe(started, "duplicate")
		return &VerifyResult{Reference: reference, AlreadyProcessed: true}, nil
	}

	verified, err := e.verifier.Verify(ctx, reference)
	if err != nil {
		e.release(ctx, reference)
		e.observe(started, "verify_failed")
		return nil, recodeAuthFailure(err)
	}
	if !verified.Succeeded() {
		e.release(ctx, reference)
		e.observe(started, "not_settled")
		return nil, pkgerrors.New(pkgerrors.CodeVerification, "payment not settled").
			WithDetails(map[string]any{"gateway_status": verified.Status})
	}

	result := &VerifyResult{Reference: reference}

	entry, err := e.ledger.Read(ctx, input.BuyerUserID.String())
	if err != nil {
		e.release(ctx, reference)
		e.observe(started, "ledger_error")
		return nil, err
	}
	if entry != nil {
		diff := verified.Amount.Sub(entry.Amount).Abs()
		if diff.GreaterThan(amountTolerance) {
			e.release(ctx, reference)
			e.metrics.IncMismatch()
			e.observe(started, "mismatch")
			mismatchCtx := e.logg.WithFields(ctx, map[string]any{
				"expected": entry.Amount.String(),
				"settled":  verified.Amount.String(),
			})
			e.logg.Warn(mismatchCtx, "settled amount does not match expected amount")
			return nil, pkgerrors.New(pkgerrors.CodePaymentMismatch, "payment amount does not match the expected total").
				WithDetails(map[string]any{
					"expected": entry.Amount.String(),
					"settled":  verified.Amount.String(),
				})
		}
		result.Reconciled = true
	} else {
		// No expected amount on record: a stale callback or an expired
		// entry. The settled payment still materializes, unreconciled.
		e.logg.Warn(ctx, "no expected amount on record; settling without reconciliation")
	}

	record, err := e.carts.GetActive(ctx, input.BuyerUserID)
	if err != nil {
		e.release(ctx, reference)
		e.observe(started, "cart_error")
		return nil, err
	}
	if len(record.Items) == 0 {
		if entry == nil {
			// Nothing left to materialize and nothing to reconcile:
			// the stale-callback no-op path. The mark stays so further
			// duplicates short-circuit earlier.
			e.logg.Info(ctx, "stale payment callback with no cart and no expected amount")
			e.observe(started, "stale")
			result.AlreadyProcessed = true
			return result, nil
		}
		e.release(ctx, reference)
		e.observe(started, "empty_cart")
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no cart items to materialize")
	}

	// The recorded intent owns the delivery selection. The resupplied
	// fields only apply when the entry has expired out from under a
	// settled payment.
	contactPhone := fallbackPhone
	address := strings.TrimSpace(input.Address)
	method := deliveryMethodOrDefault(input.DeliveryMethod)
	if entry != nil {
		contactPhone = entry.ContactPhone
		address = entry.Address
		method = deliveryMethodOrDefault(entry.DeliveryMethod)
	}

	order, err := e.materializer.Materialize(ctx, MaterializeInput{
		BuyerUserID:    input.BuyerUserID,
		BuyerEmail:     input.BuyerEmail,
		Reference:      reference,
		AmountMinor:    verified.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		ContactPhone:   contactPhone,
		Address:        address,
		DeliveryMethod: method,
		Cart:           record,
	})
	if err != nil {
		// Ledger and cart stay intact: the buyer paid and the paper trail
		// for manual reconciliation must survive.
		e.release(ctx, reference)
		e.observe(started, "materialize_failed")
		e.logg.Error(ctx, "order materialization failed after settled payment", err)
		return nil, recodeAuthFailure(err)
	}

	if err := e.ledger.Clear(ctx, input.BuyerUserID.String()); err != nil {
		e.logg.Error(ctx, "clearing expected amount after materialization", err)
	}
	if err := e.carts.Convert(ctx, input.BuyerUserID); err != nil {
		e.logg.Error(ctx, "converting cart after materialization", err)
	}

	e.metrics.IncMaterialized()
	e.observe(started, "success")
	successCtx := e.logg.WithField(ctx, "order_number", order.OrderNumber)
	e.logg.Info(successCtx, "payment settled and order materialized")

	result.OrderNumber = order.OrderNumber
	return result, nil
}

func (e *engine) release(ctx context.Context, reference string) {
	if err := e.guard.Release(ctx, reference); err != nil {
		e.logg.Error(ctx, "releasing reference idempotency mark", err)
	}
}

func (e *engine) observe(started time.Time, outcome string) {
	e.metrics.IncVerification(outcome)
	e.metrics.ObserveVerifyDuration(outcome, time.Since(started))
}

func deliveryMethodOrDefault(raw string) enums.DeliveryMethod {
	if parsed, err := enums.ParseDeliveryMethod(raw); err == nil {
		return parsed
	}
	return enums.DeliveryMethodDelivery
}

// recodeAuthFailure maps failures whose text points at an authentication
// problem onto the unauthorized code so the edge can send the buyer to
// re-authenticate instead of showing a dead-end error.
func recodeAuthFailure(err error) error {
	if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeUnauthorized {
		return err
	}
	lower := strings.ToLower(err.Error())
	for _, hint := range []string{"unauthorized", "unauthenticated", "authentication", "session expired", "token expired", "not logged in"} {
		if strings.Contains(lower, hint) {
			return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "authentication required")
		}
	}
	return err
}
