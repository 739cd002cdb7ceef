package memory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/platform/logger"
	"github.com/phrazzld/ankigen/internal/platform/memory"
	"github.com/phrazzld/ankigen/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionWithDocument(t *testing.T) *domain.Session {
	t.Helper()
	session := domain.NewSession()
	session.AttachDocument("notes.docx", domain.NewTextDocument("Mitochondria produce ATP."))
	return session
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewSessionStore(time.Hour, nil)

	session := sessionWithDocument(t)
	require.NoError(t, s.Create(ctx, session))

	got, err := s.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "notes.docx", got.FileName)
	require.NotNil(t, got.Document)
	assert.Equal(t, "Mitochondria produce ATP.", got.Document.Text)
}

func TestCreateDuplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewSessionStore(time.Hour, nil)

	session := domain.NewSession()
	require.NoError(t, s.Create(ctx, session))
	err := s.Create(ctx, session)
	assert.ErrorIs(t, err, store.ErrSessionExists)
}

func TestCreateInvalidSession(t *testing.T) {
	t.Parallel()
	s := memory.NewSessionStore(time.Hour, nil)

	err := s.Create(context.Background(), &domain.Session{Deck: domain.Deck{Style: domain.CardStyleBasic}})
	assert.ErrorIs(t, err, domain.ErrSessionIDEmpty)
}

func TestGetMissing(t *testing.T) {
	t.Parallel()
	s := memory.NewSessionStore(time.Hour, nil)

	_, err := s.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestReturnedSessionsAreCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewSessionStore(time.Hour, nil)

	session := sessionWithDocument(t)
	require.NoError(t, s.Create(ctx, session))
	session.FileName = "changed after create"

	got, err := s.Get(ctx, session.ID)
	require.NoError(t, err)
	got.Document.Text = "changed after get"

	again, err := s.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes.docx", again.FileName)
	assert.Equal(t, "Mitochondria produce ATP.", again.Document.Text)
}

func TestUpdateAppliesMutation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewSessionStore(time.Hour, nil)

	session := domain.NewSession()
	require.NoError(t, s.Create(ctx, session))

	updated, err := s.Update(ctx, session.ID, func(sess *domain.Session) error {
		sess.CompleteGeneration(domain.NewDeck(domain.CardStyleBasic, []domain.Card{
			domain.NewBasicCard("Q", "A"),
		}))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Deck.Len())

	got, err := s.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Deck.Len())
}

func TestUpdateErrorLeavesSessionUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewSessionStore(time.Hour, nil)

	session := sessionWithDocument(t)
	require.NoError(t, s.Create(ctx, session))

	rejected := errors.New("rejected")
	_, err := s.Update(ctx, session.ID, func(sess *domain.Session) error {
		sess.FileName = "half-applied.pdf"
		return rejected
	})
	assert.ErrorIs(t, err, rejected)

	got, err := s.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes.docx", got.FileName)
}

func TestUpdateMissing(t *testing.T) {
	t.Parallel()
	s := memory.NewSessionStore(time.Hour, nil)

	_, err := s.Update(context.Background(), uuid.New(), func(*domain.Session) error { return nil })
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestClaimGenerationWithoutDocument(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewSessionStore(time.Hour, nil)

	session := domain.NewSession()
	require.NoError(t, s.Create(ctx, session))

	_, err := s.ClaimGeneration(ctx, session.ID, domain.CardStyleCloze)
	assert.ErrorIs(t, err, domain.ErrNoDocument)
}

func TestClaimGenerationIsExclusive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewSessionStore(time.Hour, nil)

	session := sessionWithDocument(t)
	require.NoError(t, s.Create(ctx, session))

	const callers = 16
	var (
		wg         sync.WaitGroup
		claimed    atomic.Int32
		inProgress atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ClaimGeneration(ctx, session.ID, domain.CardStyleCloze)
			switch {
			case err == nil:
				claimed.Add(1)
			case errors.Is(err, domain.ErrGenerationInProgress):
				inProgress.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), claimed.Load())
	assert.Equal(t, int32(callers-1), inProgress.Load())

	got, err := s.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, got.Generating)
	assert.Equal(t, domain.CardStyleCloze, got.Deck.Style)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewSessionStore(time.Hour, nil)

	session := domain.NewSession()
	require.NoError(t, s.Create(ctx, session))
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, session.ID))
	assert.ErrorIs(t, s.Delete(ctx, session.ID), store.ErrSessionNotFound)

	_, err := s.Get(ctx, session.ID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionsExpire(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewSessionStore(50*time.Millisecond, nil)

	session := domain.NewSession()
	require.NoError(t, s.Create(ctx, session))

	assert.Eventually(t, func() bool {
		_, err := s.Get(ctx, session.ID)
		return errors.Is(err, store.ErrSessionNotFound)
	}, time.Second, 10*time.Millisecond)
}

func TestCreateAndDeleteLogSessionCount(t *testing.T) {
	t.Parallel()
	ctx, logs := logger.NewLogCaptureContext(t)
	s := memory.NewSessionStore(time.Hour, nil)

	first, second := domain.NewSession(), domain.NewSession()
	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, second))
	require.NoError(t, s.Delete(ctx, first.ID))

	assert.True(t, logs.HasEntry(t, "session created", map[string]any{
		"session_id":    second.ID.String(),
		"session_count": float64(2),
	}))
	assert.True(t, logs.HasEntry(t, "session deleted", map[string]any{
		"session_id":    first.ID.String(),
		"session_count": float64(1),
	}))
}
