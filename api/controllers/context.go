package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sokoplace/sokoplace-backend/api/middleware"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

// buyerFromRequest resolves the authenticated buyer's identity from the
// request context seeded by the auth middleware.
func buyerFromRequest(r *http.Request) (uuid.UUID, string, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "malformed user id")
	}
	return userID, middleware.UserEmailFromContext(r.Context()), nil
}
