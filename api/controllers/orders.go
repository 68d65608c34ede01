package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokoplace/sokoplace-backend/api/responses"
	"github.com/sokoplace/sokoplace-backend/api/validators"
	ordersvc "github.com/sokoplace/sokoplace-backend/internal/orders"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
	"github.com/sokoplace/sokoplace-backend/pkg/logger"
)

// OrderList returns the buyer's orders with their allowed actions attached.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		buyerID, _, err := buyerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.ListForBuyer(r.Context(), buyerID.String())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// OrderMarkDelivered acknowledges a vendor handoff on a pending delivery.
func OrderMarkDelivered(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return orderTransitionHandler(svc, logg, func(r *http.Request, orderNumber string) (*ordersvc.View, error) {
		return svc.MarkDelivered(r.Context(), orderNumber)
	})
}

// OrderMarkReceived confirms the buyer received a shipped order.
func OrderMarkReceived(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return orderTransitionHandler(svc, logg, func(r *http.Request, orderNumber string) (*ordersvc.View, error) {
		return svc.MarkReceived(r.Context(), orderNumber)
	})
}

func orderTransitionHandler(svc ordersvc.Service, logg *logger.Logger, apply func(*http.Request, string) (*ordersvc.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		if _, _, err := buyerFromRequest(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderNumber := chi.URLParam(r, "orderNumber")
		if orderNumber == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}

		view, err := apply(r, orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// OrderDeclineAndDispute declines one item and files a dispute for it.
func OrderDeclineAndDispute(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		buyerID, _, err := buyerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderNumber := chi.URLParam(r, "orderNumber")
		itemID := chi.URLParam(r, "itemId")
		if orderNumber == "" || itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number and item id are required"))
			return
		}

		var payload declineDisputeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DeclineAndDispute(
			r.Context(),
			buyerID.String(),
			orderNumber,
			itemID,
			validators.SanitizeString(payload.Reason, 1000),
			validators.SanitizeString(payload.EvidenceImage, 500),
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type declineDisputeRequest struct {
	Reason        string `json:"reason" validate:"required,max=1000"`
	EvidenceImage string `json:"evidence_image" validate:"omitempty,url,max=500"`
}
