package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sokoplace/sokoplace-backend/api/responses"
	"github.com/sokoplace/sokoplace-backend/api/validators"
	cartsvc "github.com/sokoplace/sokoplace-backend/internal/cart"
	"github.com/sokoplace/sokoplace-backend/pkg/db/models"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
	"github.com/sokoplace/sokoplace-backend/pkg/logger"
)

// CartFetch returns the buyer's active cart, creating one when none exists.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		buyerID, _, err := buyerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetActive(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		buyerID, _, err := buyerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartAddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.AddItem(r.Context(), buyerID, cartsvc.AddItemInput{
			ProductID:      payload.ProductID,
			ProductName:    validators.SanitizeString(payload.ProductName, 255),
			VendorEmail:    validators.SanitizeString(payload.VendorEmail, 255),
			Quantity:       payload.Quantity,
			UnitPriceMinor: payload.UnitPriceMinor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(record))
	}
}

func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		buyerID, _, err := buyerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed product id"))
			return
		}

		record, err := svc.RemoveItem(r.Context(), buyerID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		buyerID, _, err := buyerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), buyerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

type cartAddItemRequest struct {
	ProductID      uuid.UUID `json:"product_id" validate:"required"`
	ProductName    string    `json:"product_name" validate:"required,max=255"`
	VendorEmail    string    `json:"vendor_email" validate:"required,email"`
	Quantity       int       `json:"quantity" validate:"required,min=1"`
	UnitPriceMinor int64     `json:"unit_price_minor" validate:"required,min=1"`
}

type cartResponse struct {
	CartID        uuid.UUID          `json:"cart_id"`
	Status        string             `json:"status"`
	Items         []cartItemResponse `json:"items"`
	SubtotalMinor int64              `json:"subtotal_minor"`
}

type cartItemResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	VendorEmail    string    `json:"vendor_email"`
	Quantity       int       `json:"quantity"`
	UnitPriceMinor int64     `json:"unit_price_minor"`
	SubtotalMinor  int64     `json:"subtotal_minor"`
}

func newCartResponse(record *models.CartRecord) cartResponse {
	if record == nil {
		return cartResponse{Items: []cartItemResponse{}}
	}
	items := make([]cartItemResponse, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, cartItemResponse{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			VendorEmail:    item.VendorEmail,
			Quantity:       item.Quantity,
			UnitPriceMinor: item.UnitPriceMinor,
			SubtotalMinor:  item.LineSubtotalMinor(),
		})
	}
	return cartResponse{
		CartID:        record.ID,
		Status:        string(record.Status),
		Items:         items,
		SubtotalMinor: record.SubtotalMinor(),
	}
}
