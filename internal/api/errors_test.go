package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/ankigen/internal/api/shared"
	"github.com/phrazzld/ankigen/internal/document"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/extract"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/platform/logger"
	"github.com/phrazzld/ankigen/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genErr(kind error) error {
	return &generation.GenerationError{Kind: kind, Err: errors.New("provider said no")}
}

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing credential", genErr(generation.ErrMissingCredential), http.StatusServiceUnavailable},
		{"rate limited", genErr(generation.ErrRateLimited), http.StatusTooManyRequests},
		{"payload too large", genErr(generation.ErrPayloadTooLarge), http.StatusRequestEntityTooLarge},
		{"upload too large", ErrUploadTooLarge, http.StatusRequestEntityTooLarge},
		{"model rejected mime", genErr(generation.ErrUnsupportedMIME), http.StatusUnsupportedMediaType},
		{"unsupported upload", fmt.Errorf("%w: text/plain", domain.ErrUnsupportedFileType), http.StatusUnsupportedMediaType},
		{"malformed output", genErr(generation.ErrMalformedOutput), http.StatusBadGateway},
		{"generation failed", genErr(generation.ErrGenerationFailed), http.StatusBadGateway},
		{"corrupt document", &extract.ExtractionError{Format: "docx", Message: "bad"}, http.StatusUnprocessableEntity},
		{"encoding failed", document.ErrEncodingFailed, http.StatusUnprocessableEntity},
		{"session not found", service.ErrSessionNotFound, http.StatusNotFound},
		{"card out of range", domain.ErrCardIndexOutOfRange, http.StatusNotFound},
		{"in progress", domain.ErrGenerationInProgress, http.StatusConflict},
		{"no document", domain.ErrNoDocument, http.StatusBadRequest},
		{"validation", domain.NewValidationError("count", "must not be negative", domain.ErrValidation), http.StatusBadRequest},
		{"invalid id", domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID), http.StatusBadRequest},
		{"invalid style", domain.ErrInvalidCardStyle, http.StatusBadRequest},
		{"kind mismatch", domain.ErrCardKindMismatch, http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"invalid json", fmt.Errorf("%w: unexpected EOF", shared.ErrInvalidJSON), http.StatusBadRequest},
		{"unknown", errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestMapErrorToStatusCode_ValidatorErrors(t *testing.T) {
	err := validator.New().Struct(&GenerateRequest{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(err))
	assert.Equal(t, "Invalid style: required field", GetSafeErrorMessage(err))
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"upload too large", ErrUploadTooLarge, "The document is too large to upload."},
		{"invalid id", domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID), "Invalid session ID"},
		{"validation", domain.NewValidationError("index", "must be a non-negative integer", domain.ErrValidation),
			"Invalid index: must be a non-negative integer"},
		{"empty body", shared.ErrEmptyBody, "Request body is required"},
		{"invalid json", fmt.Errorf("%w: bad", shared.ErrInvalidJSON), "Invalid request format"},
		{"no document", domain.ErrNoDocument, service.MsgNoDocument},
		{"unsupported", domain.ErrUnsupportedFileType, service.MsgUnsupportedFileType},
		{"generation", genErr(generation.ErrMalformedOutput), "The AI returned an invalid format. Please try again."},
		{"unknown", errors.New("pq: connection refused at 10.0.0.3"), service.MsgUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	ctx, logs := logger.NewLogCaptureContext(t)
	ctx = shared.SetTraceID(ctx)
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/x", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	HandleAPIError(rec, req, errors.New("secret internal detail"), "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret internal detail")
	assert.Contains(t, rec.Body.String(), service.MsgUnknown)
	assert.Contains(t, rec.Body.String(), `"trace_id":"`+shared.GetTraceID(ctx)+`"`)
	assert.True(t, logs.HasEntry(t, "API error response", map[string]any{
		"status_code": float64(http.StatusInternalServerError),
	}))
}

func TestHandleAPIError_MessageOverride(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	HandleAPIError(rec, req, domain.ErrNoDocument, "Choose a file first")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Choose a file first")
}
