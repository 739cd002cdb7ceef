package generation

import (
	"errors"
	"net/http"
	"strings"
)

var kinds = []error{
	ErrMissingCredential,
	ErrRateLimited,
	ErrPayloadTooLarge,
	ErrUnsupportedMIME,
	ErrMalformedOutput,
	ErrGenerationFailed,
}

// indicators are matched case-insensitively against the error text, in order,
// when no structured status is available.
var indicators = []struct {
	kind       error
	substrings []string
}{
	{ErrRateLimited, []string{"429", "rate limit", "quota", "resource exhausted", "resource_exhausted"}},
	{ErrPayloadTooLarge, []string{"413", "too large", "payload too large", "request entity too large", "exceeds the maximum"}},
	{ErrUnsupportedMIME, []string{"mime", "unsupported file"}},
	{ErrMalformedOutput, []string{"json", "invalid format"}},
}

// Classify reduces any error to a *GenerationError. Errors that already carry
// a kind keep it. Provider errors are classified by status code, and anything
// else by indicative substrings in its message. Unrecognized errors become
// ErrGenerationFailed.
func Classify(err error) *GenerationError {
	if err == nil {
		return nil
	}

	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return &GenerationError{Kind: kind, Err: err}
		}
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		if kind := kindForStatus(provErr); kind != nil {
			return &GenerationError{Kind: kind, Err: err}
		}
	}

	msg := strings.ToLower(err.Error())
	for _, ind := range indicators {
		for _, s := range ind.substrings {
			if strings.Contains(msg, s) {
				return &GenerationError{Kind: ind.kind, Err: err}
			}
		}
	}

	return &GenerationError{Kind: ErrGenerationFailed, Err: err}
}

func kindForStatus(e *ProviderError) error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusRequestEntityTooLarge:
		return ErrPayloadTooLarge
	case http.StatusUnsupportedMediaType:
		return ErrUnsupportedMIME
	}
	if strings.EqualFold(e.Status, "RESOURCE_EXHAUSTED") {
		return ErrRateLimited
	}
	return nil
}
