package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/scry-review/internal/domain"
)

// maxListLimit caps the limit query parameter.
const maxListLimit = 10000

// getPathUUID parses the chi path parameter paramName as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidFormat)
	}
	return id, nil
}

// getPathCode returns the card code path parameter, upper-cased.
func getPathCode(r *http.Request) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	if code == "" {
		return "", domain.NewValidationError("code", "is required", domain.ErrCardCodeEmpty)
	}
	if len(code) != domain.CodeLength {
		return "", domain.NewValidationError("code", "has invalid format", domain.ErrInvalidCode)
	}
	return code, nil
}

// parseLimit reads the limit query parameter, returning def when absent.
func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxListLimit {
		return 0, domain.NewValidationError("limit", "must be between 1 and 10000", domain.ErrInvalidFormat)
	}
	return n, nil
}
