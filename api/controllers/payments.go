package controllers

import (
	"net/http"

	"github.com/sokoplace/sokoplace-backend/api/responses"
	"github.com/sokoplace/sokoplace-backend/api/validators"
	"github.com/sokoplace/sokoplace-backend/internal/payments"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
	"github.com/sokoplace/sokoplace-backend/pkg/logger"
)

// PaymentCallback handles the gateway's redirect back after a hosted payment.
// Only the reference arrives as a query parameter; the engine materializes
// from the delivery selection recorded at checkout.
func PaymentCallback(eng payments.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if eng == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment engine unavailable"))
			return
		}

		buyerID, buyerEmail, err := buyerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reference, err := validators.RequireQuery(r, "reference")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := eng.VerifyAndMaterialize(r.Context(), payments.VerifyInput{
			BuyerUserID: buyerID,
			BuyerEmail:  buyerEmail,
			Reference:   reference,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PaymentVerify settles a payment reference. The delivery fields are only a
// fallback for an expired checkout intent; the engine normalizes the phone
// and prefers whatever was recorded at checkout.
func PaymentVerify(eng payments.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if eng == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment engine unavailable"))
			return
		}

		buyerID, buyerEmail, err := buyerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentVerifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := eng.VerifyAndMaterialize(r.Context(), payments.VerifyInput{
			BuyerUserID:    buyerID,
			BuyerEmail:     buyerEmail,
			Reference:      payload.Reference,
			ContactPhone:   payload.ContactPhone,
			Address:        validators.SanitizeString(payload.Address, 500),
			DeliveryMethod: payload.DeliveryMethod,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type paymentVerifyRequest struct {
	Reference      string `json:"reference" validate:"required"`
	ContactPhone   string `json:"contact_phone,omitempty"`
	Address        string `json:"address,omitempty" validate:"omitempty,max=500"`
	DeliveryMethod string `json:"delivery_method,omitempty"`
}
