package gemini

import (
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/phrazzld/ankigen/internal/generation"
)

// providerName labels errors and log lines from this package.
const providerName = "gemini"

// ErrContentBlocked is returned when the model refuses to answer because of
// its safety filters.
var ErrContentBlocked = errors.New("content blocked by safety filters")

// convertError maps SDK errors onto generation.ProviderError so that
// classification can use the HTTP status. Other errors pass through.
func convertError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fromAPIError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fromAPIError(*apiErrPtr)
	}
	return fmt.Errorf("gemini request failed: %w", err)
}

func fromAPIError(e genai.APIError) *generation.ProviderError {
	return &generation.ProviderError{
		Provider:   providerName,
		StatusCode: e.Code,
		Status:     e.Status,
		Message:    e.Message,
	}
}
