package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/store"
)

// MockSessionStore implements store.SessionStore for testing. Each method
// calls its function field when set and Delegate otherwise. Without either,
// Create succeeds and every other method reports store.ErrSessionNotFound.
type MockSessionStore struct {
	CreateFn          func(ctx context.Context, session *domain.Session) error
	GetFn             func(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	UpdateFn          func(ctx context.Context, id uuid.UUID, fn store.MutateFn) (*domain.Session, error)
	ClaimGenerationFn func(ctx context.Context, id uuid.UUID, style domain.CardStyle) (*domain.Session, error)
	DeleteFn          func(ctx context.Context, id uuid.UUID) error

	// Delegate handles calls whose function field is nil.
	Delegate store.SessionStore
}

var _ store.SessionStore = (*MockSessionStore)(nil)

// Create implements store.SessionStore.
func (m *MockSessionStore) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, session)
	}
	if m.Delegate != nil {
		return m.Delegate.Create(ctx, session)
	}
	return nil
}

// Get implements store.SessionStore.
func (m *MockSessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	if m.Delegate != nil {
		return m.Delegate.Get(ctx, id)
	}
	return nil, store.ErrSessionNotFound
}

// Update implements store.SessionStore.
func (m *MockSessionStore) Update(ctx context.Context, id uuid.UUID, fn store.MutateFn) (*domain.Session, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, fn)
	}
	if m.Delegate != nil {
		return m.Delegate.Update(ctx, id, fn)
	}
	return nil, store.ErrSessionNotFound
}

// ClaimGeneration implements store.SessionStore.
func (m *MockSessionStore) ClaimGeneration(
	ctx context.Context,
	id uuid.UUID,
	style domain.CardStyle,
) (*domain.Session, error) {
	if m.ClaimGenerationFn != nil {
		return m.ClaimGenerationFn(ctx, id, style)
	}
	if m.Delegate != nil {
		return m.Delegate.ClaimGeneration(ctx, id, style)
	}
	return nil, store.ErrSessionNotFound
}

// Delete implements store.SessionStore.
func (m *MockSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if m.Delegate != nil {
		return m.Delegate.Delete(ctx, id)
	}
	return store.ErrSessionNotFound
}
