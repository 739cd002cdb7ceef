package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/ankigen/internal/domain"
)

// MutateFn changes a session in place. Returning an error aborts the update
// and leaves the stored session untouched.
type MutateFn func(s *domain.Session) error

// SessionStore persists sessions. Implementations hand out copies: a session
// returned by the store may be modified freely without affecting stored state.
type SessionStore interface {
	// Create saves a new session.
	// Returns ErrSessionExists if a session with the same ID is already stored.
	Create(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by ID.
	// Returns ErrSessionNotFound if the session does not exist or has expired.
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// Update applies fn to the stored session as a single atomic
	// read-modify-write and returns the updated copy.
	// Returns ErrSessionNotFound if the session does not exist.
	Update(ctx context.Context, id uuid.UUID, fn MutateFn) (*domain.Session, error)

	// ClaimGeneration marks the session as generating for the given style and
	// clears its previous cards and error. Exactly one of several concurrent
	// callers succeeds; the others get domain.ErrGenerationInProgress.
	// Returns domain.ErrNoDocument if no document is pending.
	ClaimGeneration(ctx context.Context, id uuid.UUID, style domain.CardStyle) (*domain.Session, error)

	// Delete removes a session.
	// Returns ErrSessionNotFound if the session does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
