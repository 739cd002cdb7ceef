package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/ankigen/internal/api/shared"
	"github.com/phrazzld/ankigen/internal/document"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/extract"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/service"
)

// ErrUploadTooLarge is returned when an upload exceeds the configured limit.
var ErrUploadTooLarge = errors.New("upload exceeds the size limit")

// MapErrorToStatusCode maps internal errors to HTTP status codes. Generation
// failures are checked first: their error chain also carries the provider's
// underlying cause.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, generation.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.Is(err, generation.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, generation.ErrPayloadTooLarge), errors.Is(err, ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, generation.ErrUnsupportedMIME), errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, generation.ErrMalformedOutput), errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway

	case errors.Is(err, extract.ErrCorruptDocument), errors.Is(err, document.ErrEncodingFailed):
		return http.StatusUnprocessableEntity

	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, domain.ErrCardIndexOutOfRange):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrGenerationInProgress):
		return http.StatusConflict

	case errors.Is(err, domain.ErrNoDocument),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidCardStyle),
		errors.Is(err, domain.ErrCardKindMismatch),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, shared.ErrInvalidJSON),
		isValidationErrors(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message shown to the client for err.
// Internal details are never included.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, ErrUploadTooLarge):
		return "The document is too large to upload."
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid session ID"
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	case isValidationErrors(err):
		return SanitizeValidationError(err)
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, shared.ErrInvalidJSON):
		return "Invalid request format"
	}
	return service.UserMessage(err)
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted detail. A non-empty message overrides the derived one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), message, err)
}

// SanitizeValidationError turns validator errors into a message naming the
// first invalid field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Validation error"
	}
	first := fieldErrs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(first.Field()), getValidationTagMessage(first.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

func isValidationErrors(err error) bool {
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}
