package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/ankigen/internal/document"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/extract"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/store"
)

// ErrSessionNotFound indicates that the session does not exist or has expired.
// API layer should map this to HTTP 404 Not Found.
var ErrSessionNotFound = errors.New("session not found")

// User-facing messages for failures outside the generation package.
const (
	MsgUnsupportedFileType = "Unsupported file type. Please upload a PDF, DOCX, or PPTX."
	MsgNoDocument          = "Please upload a document first."
	MsgEncodingFailed      = "Failed to parse file data."
	MsgUnknown             = "An unknown error occurred. Please try again."
)

// SessionServiceError wraps unexpected errors from the session service with context.
type SessionServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for SessionServiceError.
func (e *SessionServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("session service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SessionServiceError) Unwrap() error {
	return e.Err
}

// NewSessionServiceError wraps err for the given operation. Store not-found
// errors become ErrSessionNotFound; errors callers are expected to handle
// (domain, extraction and generation failures) are returned unchanged.
func NewSessionServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if store.IsNotFoundError(err) || errors.Is(err, ErrSessionNotFound) {
		return ErrSessionNotFound
	}
	if isExpected(err) {
		return err
	}
	return &SessionServiceError{Operation: operation, Message: message, Err: err}
}

func isExpected(err error) bool {
	var genErr *generation.GenerationError
	var extractErr *extract.ExtractionError
	var validationErr *domain.ValidationError
	return errors.As(err, &genErr) ||
		errors.As(err, &extractErr) ||
		errors.As(err, &validationErr) ||
		errors.Is(err, domain.ErrUnsupportedFileType) ||
		errors.Is(err, domain.ErrNoDocument) ||
		errors.Is(err, domain.ErrGenerationInProgress) ||
		errors.Is(err, domain.ErrCardIndexOutOfRange) ||
		errors.Is(err, domain.ErrCardKindMismatch) ||
		errors.Is(err, domain.ErrInvalidCardStyle) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, document.ErrEncodingFailed)
}

// UserMessage returns the single message shown to the user for err. Internal
// details never leak: unknown errors get a generic message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var genErr *generation.GenerationError
	var extractErr *extract.ExtractionError
	switch {
	case errors.As(err, &genErr):
		return genErr.UserMessage()
	case errors.As(err, &extractErr):
		return extractErr.UserMessage()
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return MsgUnsupportedFileType
	case errors.Is(err, domain.ErrNoDocument):
		return MsgNoDocument
	case errors.Is(err, document.ErrEncodingFailed):
		return MsgEncodingFailed
	case errors.Is(err, domain.ErrGenerationInProgress):
		return "Cards are already being generated for this document. Please wait."
	case errors.Is(err, ErrSessionNotFound), store.IsNotFoundError(err):
		return "Session not found. Please start over."
	case errors.Is(err, domain.ErrCardIndexOutOfRange):
		return "Card not found."
	case errors.Is(err, domain.ErrCardKindMismatch):
		return "Card does not match the selected card type."
	case errors.Is(err, domain.ErrInvalidCardStyle):
		return "Invalid card type. Choose basic, basic_reversed or cloze."
	}
	return MsgUnknown
}
