package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

// RequireQuery returns the trimmed value of a query parameter or a
// validation error naming the missing field.
func RequireQuery(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}
