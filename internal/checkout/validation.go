package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sokoplace/sokoplace-backend/pkg/enums"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

const contactPhoneDigits = 11

// couponDiscounts is the recognized coupon set. Codes are matched
// case-insensitively and apply a flat percentage off the cart subtotal.
var couponDiscounts = map[string]decimal.Decimal{
	"SOKO10":    decimal.NewFromFloat(0.10),
	"SOKO20":    decimal.NewFromFloat(0.20),
	"WELCOME10": decimal.NewFromFloat(0.10),
}

// NormalizePhone strips every non-digit character and requires the remainder
// to be exactly eleven digits, the national mobile format.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	normalized := digits.String()
	if len(normalized) != contactPhoneDigits {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid phone number").
			WithDetails(map[string]any{"field": "contact_phone"})
	}
	return normalized, nil
}

// ResolveAddress applies the delivery-method rules: pickup always uses the
// pickup-center address, delivery requires the buyer to supply one.
func ResolveAddress(method enums.DeliveryMethod, address, pickupAddress string) (string, error) {
	switch method {
	case enums.DeliveryMethodPickup:
		return pickupAddress, nil
	case enums.DeliveryMethodDelivery:
		trimmed := strings.TrimSpace(address)
		if trimmed == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required").
				WithDetails(map[string]any{"field": "delivery_address"})
		}
		return trimmed, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method").
			WithDetails(map[string]any{"field": "delivery_method"})
	}
}

// CouponDiscount resolves a coupon code to the discount it takes off the
// subtotal. An empty code means no discount; an unrecognized one is rejected
// without touching the total.
func CouponDiscount(code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	for known, rate := range couponDiscounts {
		if strings.EqualFold(trimmed, known) {
			return subtotal.Mul(rate), nil
		}
	}
	return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon").
		WithDetails(map[string]any{"field": "coupon_code"})
}
