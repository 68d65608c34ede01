package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokoplace/sokoplace-backend/api/responses"
	"github.com/sokoplace/sokoplace-backend/api/validators"
	disputesvc "github.com/sokoplace/sokoplace-backend/internal/disputes"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
	"github.com/sokoplace/sokoplace-backend/pkg/logger"
)

// DisputeList returns the buyer's disputes with their allowed actions.
func DisputeList(svc disputesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispute service unavailable"))
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

// DisputeFile opens a dispute against one order item.
func DisputeFile(svc disputesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispute service unavailable"))
			return
		}
		buyerID, _, err := buyerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload disputeFileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.File(r.Context(), disputesvc.FileInput{
			BuyerUserID:   buyerID.String(),
			OrderNumber:   payload.OrderNumber,
			OrderItemID:   payload.OrderItemID,
			Reason:        validators.SanitizeString(payload.Reason, 1000),
			EvidenceImage: payload.EvidenceImage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// DisputeAcceptResolution confirms the proposed resolution and closes the dispute.
func DisputeAcceptResolution(svc disputesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispute service unavailable"))
			return
		}
		if _, _, err := buyerFromRequest(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		disputeID := chi.URLParam(r, "disputeId")
		if disputeID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "dispute id is required"))
			return
		}

		view, err := svc.AcceptResolution(r.Context(), disputeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DisputeRequestReturn initiates a return for the disputed item.
func DisputeRequestReturn(svc disputesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispute service unavailable"))
			return
		}
		if _, _, err := buyerFromRequest(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		disputeID := chi.URLParam(r, "disputeId")
		if disputeID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "dispute id is required"))
			return
		}

		request, err := svc.RequestReturn(r.Context(), disputeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

type disputeFileRequest struct {
	OrderNumber   string `json:"order_number" validate:"required"`
	OrderItemID   string `json:"order_item_id" validate:"required"`
	Reason        string `json:"reason" validate:"required,max=1000"`
	EvidenceImage string `json:"evidence_image" validate:"omitempty,url,max=500"`
}
