package generation

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by a Generator wraps exactly one of
// these through a *GenerationError.
var (
	// ErrMissingCredential is returned before any network call when no API
	// key is configured.
	ErrMissingCredential = errors.New("language model API key is not configured")

	ErrRateLimited      = errors.New("language model rate limit exceeded")
	ErrPayloadTooLarge  = errors.New("document too large for language model")
	ErrUnsupportedMIME  = errors.New("language model rejected the file type")
	ErrMalformedOutput  = errors.New("malformed output from language model")
	ErrGenerationFailed = errors.New("failed to generate cards")
)

var userMessages = map[error]string{
	ErrMissingCredential: "The AI service is not configured. Please set an API key and try again.",
	ErrRateLimited:       "The AI service is receiving too many requests. Please wait a moment and try again.",
	ErrPayloadTooLarge:   "The document is too large to process. Please try a smaller file.",
	ErrUnsupportedMIME:   "The AI model could not process this file type. Please try a PDF, DOCX, or PPTX.",
	ErrMalformedOutput:   "The AI returned an invalid format. Please try again.",
	ErrGenerationFailed:  "Failed to generate cards. The model may be unable to process this document.",
}

// GenerationError is the single failure surfaced for a generation call.
type GenerationError struct {
	// Kind is one of the package's failure sentinels.
	Kind error
	// Err is the underlying cause. It may be nil.
	Err error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *GenerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// UserMessage returns the human-readable message for this failure.
func (e *GenerationError) UserMessage() string {
	if msg, ok := userMessages[e.Kind]; ok {
		return msg
	}
	return userMessages[ErrGenerationFailed]
}

// UserMessage returns the user-facing message for any error produced by this
// package, classifying it first if needed.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return Classify(err).UserMessage()
}

// ProviderError is the provider-neutral form of an error reported by a model
// API. Adapters convert their SDK's error type into it so that classification
// can use the HTTP status instead of guessing from text.
type ProviderError struct {
	Provider   string
	StatusCode int
	// Status is the provider's symbolic status, e.g. RESOURCE_EXHAUSTED.
	Status  string
	Message string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	switch {
	case e.Status != "":
		return fmt.Sprintf("%s API error %d %s: %s", e.Provider, e.StatusCode, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Message)
	}
}
