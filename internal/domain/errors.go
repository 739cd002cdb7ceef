// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidCardStyle is returned when a card style is not one of the supported styles.
	ErrInvalidCardStyle = errors.New("invalid card style")

	// ErrCardIndexOutOfRange is returned when an edit or delete targets a position
	// that does not exist in the deck.
	ErrCardIndexOutOfRange = errors.New("card index out of range")

	// ErrCardKindMismatch is returned when a card of one variant is placed in a
	// deck of another style (e.g. a basic card in a cloze deck).
	ErrCardKindMismatch = errors.New("card kind does not match deck style")

	// ErrUnsupportedFileType is returned for uploads whose MIME type is not
	// PDF, DOCX or PPTX. It is raised before any extraction or network call.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrNoDocument is returned when generation is requested for a session
	// without a pending document.
	ErrNoDocument = errors.New("no document uploaded")

	// ErrGenerationInProgress is returned when a second generation is requested
	// while one is still outstanding for the same session.
	ErrGenerationInProgress = errors.New("generation already in progress")

	// ErrEmptyDocument is returned when a document input carries no payload.
	ErrEmptyDocument = errors.New("document input is empty")
)

// ValidationError describes a failed validation on a single field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// Unwrap returns the underlying sentinel so errors.Is works on it.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError wrapping the given sentinel.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
