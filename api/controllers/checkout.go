package controllers

import (
	"net/http"

	"github.com/sokoplace/sokoplace-backend/api/responses"
	"github.com/sokoplace/sokoplace-backend/api/validators"
	checkoutsvc "github.com/sokoplace/sokoplace-backend/internal/checkout"
	"github.com/sokoplace/sokoplace-backend/pkg/enums"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
	"github.com/sokoplace/sokoplace-backend/pkg/logger"
)

// CheckoutBegin submits the buyer's active cart and opens a payment session.
func CheckoutBegin(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		buyerID, buyerEmail, err := buyerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParseDeliveryMethod(payload.DeliveryMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown delivery method").
				WithDetails(map[string]any{"field": "delivery_method"}))
			return
		}

		session, err := svc.Begin(r.Context(), checkoutsvc.BeginInput{
			BuyerUserID:     buyerID,
			BuyerEmail:      buyerEmail,
			DeliveryMethod:  method,
			DeliveryAddress: validators.SanitizeString(payload.DeliveryAddress, 500),
			ContactPhone:    payload.ContactPhone,
			CouponCode:      validators.SanitizeString(payload.CouponCode, 40),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

type checkoutRequest struct {
	DeliveryMethod  string `json:"delivery_method" validate:"required"`
	DeliveryAddress string `json:"delivery_address,omitempty" validate:"omitempty,max=500"`
	ContactPhone    string `json:"contact_phone" validate:"required"`
	CouponCode      string `json:"coupon_code,omitempty" validate:"omitempty,max=40"`
}
