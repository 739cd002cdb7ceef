package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/platform/logger"
	"github.com/phrazzld/ankigen/internal/store"
)

// SessionStore keeps sessions in a go-cache instance. Every write refreshes
// the session's expiration. Stored values are private copies.
type SessionStore struct {
	mu     sync.Mutex
	cache  *cache.Cache
	logger *slog.Logger
}

// NewSessionStore creates a store whose sessions expire ttl after their last
// write. Expired entries are purged every ttl/2.
func NewSessionStore(ttl time.Duration, logger *slog.Logger) *SessionStore {
	if ttl <= 0 {
		panic("session ttl must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		cache:  cache.New(ttl, ttl/2),
		logger: logger.With(slog.String("component", "memory_session_store")),
	}
}

var _ store.SessionStore = (*SessionStore)(nil)

// Create implements store.SessionStore.Create.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return store.NewStoreError("session", "create", "invalid session", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cache.Add(session.ID.String(), session.Clone(), cache.DefaultExpiration); err != nil {
		return store.ErrSessionExists
	}
	log.Debug("session created",
		slog.String("session_id", session.ID.String()),
		slog.Int("session_count", s.Len()))
	return nil
}

// Get implements store.SessionStore.Get.
func (s *SessionStore) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// Update implements store.SessionStore.Update. fn runs on a copy under the
// store lock; the copy replaces the stored session only if fn succeeds.
func (s *SessionStore) Update(ctx context.Context, id uuid.UUID, fn store.MutateFn) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(id)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	if err := updated.Validate(); err != nil {
		return nil, store.NewStoreError("session", "update", "invalid session", err)
	}

	s.cache.Set(id.String(), updated, cache.DefaultExpiration)
	logger.FromContextOrDefault(ctx, s.logger).Debug("session updated",
		slog.String("session_id", id.String()))
	return updated.Clone(), nil
}

// ClaimGeneration implements store.SessionStore.ClaimGeneration.
func (s *SessionStore) ClaimGeneration(
	ctx context.Context,
	id uuid.UUID,
	style domain.CardStyle,
) (*domain.Session, error) {
	return s.Update(ctx, id, func(session *domain.Session) error {
		return session.BeginGeneration(style)
	})
}

// Delete implements store.SessionStore.Delete.
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.load(id); err != nil {
		return err
	}
	s.cache.Delete(id.String())
	logger.FromContextOrDefault(ctx, s.logger).Debug("session deleted",
		slog.String("session_id", id.String()),
		slog.Int("session_count", s.Len()))
	return nil
}

// Len returns the number of cached sessions, including expired ones that
// have not been purged yet.
func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}

func (s *SessionStore) load(id uuid.UUID) (*domain.Session, error) {
	value, found := s.cache.Get(id.String())
	if !found {
		return nil, store.ErrSessionNotFound
	}
	return value.(*domain.Session), nil
}
