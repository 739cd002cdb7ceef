package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/ankigen/internal/domain"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// getPathIndex extracts a non-negative integer path parameter.
func getPathIndex(r *http.Request, paramName string) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, paramName))
	if err != nil || index < 0 {
		return 0, domain.NewValidationError(paramName, "must be a non-negative integer", domain.ErrValidation)
	}
	return index, nil
}
