package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ankigen/internal/document"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/extract"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/mocks"
	"github.com/phrazzld/ankigen/internal/platform/memory"
	"github.com/phrazzld/ankigen/internal/service"
	"github.com/phrazzld/ankigen/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       service.SessionService
	store     *memory.SessionStore
	encoder   *mocks.MockEncoder
	generator *mocks.MockGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     memory.NewSessionStore(time.Hour, nil),
		encoder:   &mocks.MockEncoder{Input: domain.NewTextDocument("Here is the document content to analyze:\n\nCells")},
		generator: &mocks.MockGenerator{},
	}
	svc, err := service.NewSessionService(f.store, f.encoder, f.generator, nil)
	require.NoError(t, err)
	f.svc = svc
	return f
}

// withDocument creates a session and attaches the encoder's default input.
func (f *fixture) withDocument(t *testing.T, name string) *domain.Session {
	t.Helper()
	ctx := context.Background()
	session, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)
	session, err = f.svc.UploadDocument(ctx, session.ID, domain.Upload{
		Name:     name,
		MIMEType: domain.MIMETypeDOCX,
		Data:     []byte("docx bytes"),
	})
	require.NoError(t, err)
	return session
}

func TestNewSessionServiceRequiresDependencies(t *testing.T) {
	t.Parallel()
	st := memory.NewSessionStore(time.Hour, nil)

	_, err := service.NewSessionService(nil, &mocks.MockEncoder{}, &mocks.MockGenerator{}, nil)
	assert.Error(t, err)
	_, err = service.NewSessionService(st, nil, &mocks.MockGenerator{}, nil)
	assert.Error(t, err)
	_, err = service.NewSessionService(st, &mocks.MockEncoder{}, nil, nil)
	assert.Error(t, err)
}

func TestCreateGetDeleteSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, session.ID)

	got, err := f.svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	require.NoError(t, f.svc.DeleteSession(ctx, session.ID))
	_, err = f.svc.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.DeleteSession(ctx, session.ID), service.ErrSessionNotFound)
}

func TestUploadDocumentAttachesInput(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	session := f.withDocument(t, "biology.docx")
	assert.Equal(t, "biology.docx", session.FileName)
	require.NotNil(t, session.Document)
	assert.Equal(t, domain.DocumentKindText, session.Document.Kind)
	assert.Empty(t, session.LastError)
}

func TestUploadUnsupportedKeepsPreviousSelection(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session := f.withDocument(t, "biology.docx")
	f.generator.Cards = []domain.Card{domain.NewBasicCard("Q", "A")}
	_, err := f.svc.Generate(ctx, session.ID, service.GenerateRequest{Style: domain.CardStyleBasic})
	require.NoError(t, err)

	encodeCalls := 0
	f.encoder.EncodeFn = func(context.Context, domain.Upload) (domain.DocumentInput, error) {
		encodeCalls++
		return domain.NewTextDocument("should not be used"), nil
	}
	_, err = f.svc.UploadDocument(ctx, session.ID, domain.Upload{Name: "photo.png", MIMEType: "image/png", Data: []byte{0x89}})
	require.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	assert.Equal(t, service.MsgUnsupportedFileType, service.UserMessage(err))
	assert.Zero(t, encodeCalls, "unsupported uploads never reach the encoder")

	got, err := f.svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "biology.docx", got.FileName)
	assert.Equal(t, 1, got.Deck.Len(), "cards from the previous document are kept")
	assert.Equal(t, service.MsgUnsupportedFileType, got.LastError)
}

func TestUploadExtractionFailureIsVisible(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)

	f.encoder.Err = &extract.ExtractionError{
		Format:  "docx",
		Message: "Failed to process the DOCX file. It might be corrupted.",
		Err:     errors.New("zip: not a valid zip file"),
	}
	_, err = f.svc.UploadDocument(ctx, session.ID, domain.Upload{Name: "broken.docx", MIMEType: domain.MIMETypeDOCX})
	require.ErrorIs(t, err, extract.ErrCorruptDocument)

	got, err := f.svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Document)
	assert.Equal(t, "Failed to process the DOCX file. It might be corrupted.", got.LastError)
}

func TestNewUploadClearsCardsAndError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session := f.withDocument(t, "first.docx")
	f.generator.Cards = []domain.Card{domain.NewBasicCard("Q", "A")}
	_, err := f.svc.Generate(ctx, session.ID, service.GenerateRequest{Style: domain.CardStyleBasic})
	require.NoError(t, err)

	updated, err := f.svc.UploadDocument(ctx, session.ID, domain.Upload{Name: "second.pdf", MIMEType: domain.MIMETypePDF})
	require.NoError(t, err)
	assert.Equal(t, "second.pdf", updated.FileName)
	assert.Zero(t, updated.Deck.Len())
	assert.Empty(t, updated.LastError)
}

func TestUploadUnknownSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.UploadDocument(context.Background(), uuid.New(), domain.Upload{Name: "a.pdf"})
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestGenerateStoresCardsAndDiscardsDocument(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session := f.withDocument(t, "notes.docx")
	f.generator.Cards = []domain.Card{
		domain.NewClozeCard("The {{c1::mitochondria}} is the powerhouse of the cell."),
		domain.NewClozeCard("{{c1::Ribosomes}} build proteins."),
	}

	got, err := f.svc.Generate(ctx, session.ID, service.GenerateRequest{
		Style:        domain.CardStyleCloze,
		Count:        10,
		Instructions: "Focus on organelles",
	})
	require.NoError(t, err)
	assert.False(t, got.Generating)
	assert.Nil(t, got.Document)
	assert.Equal(t, domain.CardStyleCloze, got.Deck.Style)
	assert.Equal(t, 2, got.Deck.Len())

	calls := f.generator.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, domain.CardStyleCloze, calls[0].Style)
	assert.Equal(t, generation.Options{Count: 10, Instructions: "Focus on organelles"}, calls[0].Options)
	assert.Equal(t, f.encoder.Input, calls[0].Input)

	_, err = f.svc.Generate(ctx, session.ID, service.GenerateRequest{Style: domain.CardStyleCloze})
	assert.ErrorIs(t, err, domain.ErrNoDocument, "the document input is consumed by a successful generation")
}

func TestGenerateWithoutDocument(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.Generate(ctx, session.ID, service.GenerateRequest{Style: domain.CardStyleBasic})
	require.ErrorIs(t, err, domain.ErrNoDocument)
	assert.Equal(t, "Please upload a document first.", service.UserMessage(err))
	assert.Empty(t, f.generator.Calls())

	got, err := f.svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Please upload a document first.", got.LastError)
}

func TestGenerateRejectsInvalidRequest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	session := f.withDocument(t, "notes.docx")

	_, err := f.svc.Generate(context.Background(), session.ID, service.GenerateRequest{Style: "flip"})
	assert.ErrorIs(t, err, domain.ErrInvalidCardStyle)

	_, err = f.svc.Generate(context.Background(), session.ID, service.GenerateRequest{
		Style: domain.CardStyleBasic,
		Count: -1,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.generator.Calls())
}

func TestGenerateFailureRecordsSingleMessage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session := f.withDocument(t, "notes.docx")
	f.generator.Err = &generation.GenerationError{
		Kind: generation.ErrRateLimited,
		Err:  errors.New("gemini API error 429 RESOURCE_EXHAUSTED: quota"),
	}

	_, err := f.svc.Generate(ctx, session.ID, service.GenerateRequest{Style: domain.CardStyleBasic})
	require.ErrorIs(t, err, generation.ErrRateLimited)

	got, err := f.svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, got.Generating)
	assert.Zero(t, got.Deck.Len(), "no partial cards accompany an error")
	assert.NotNil(t, got.Document, "the document stays available for a retry")
	assert.Equal(t, f.generator.Err.(*generation.GenerationError).UserMessage(), got.LastError)
	assert.NotContains(t, got.LastError, "429")
}

func TestGenerateClearsPreviousResultBeforeCalling(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session := f.withDocument(t, "notes.docx")
	f.generator.GenerateCardsFn = func(
		ctx context.Context, _ domain.DocumentInput, _ domain.CardStyle, _ generation.Options,
	) ([]domain.Card, error) {
		inFlight, err := f.svc.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.True(t, inFlight.Generating)
		assert.Zero(t, inFlight.Deck.Len())
		assert.Empty(t, inFlight.LastError)
		return []domain.Card{domain.NewBasicCard("A", "B")}, nil
	}

	got, err := f.svc.Generate(ctx, session.ID, service.GenerateRequest{Style: domain.CardStyleBasicReversed})
	require.NoError(t, err)
	assert.False(t, got.Generating)
}

func TestGenerateRejectsConcurrentRequest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session := f.withDocument(t, "notes.docx")
	started := make(chan struct{})
	release := make(chan struct{})
	f.generator.GenerateCardsFn = func(
		context.Context, domain.DocumentInput, domain.CardStyle, generation.Options,
	) ([]domain.Card, error) {
		close(started)
		<-release
		return []domain.Card{domain.NewBasicCard("Q", "A")}, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = f.svc.Generate(ctx, session.ID, service.GenerateRequest{Style: domain.CardStyleBasic})
	}()

	<-started
	_, err := f.svc.Generate(ctx, session.ID, service.GenerateRequest{Style: domain.CardStyleBasic})
	assert.ErrorIs(t, err, domain.ErrGenerationInProgress)

	_, err = f.svc.UploadDocument(ctx, session.ID, domain.Upload{Name: "other.docx"})
	assert.ErrorIs(t, err, domain.ErrGenerationInProgress)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Len(t, f.generator.Calls(), 1)
}

func TestGeneratePanicClearsLoadingFlag(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session := f.withDocument(t, "notes.docx")
	f.generator.GenerateCardsFn = func(
		context.Context, domain.DocumentInput, domain.CardStyle, generation.Options,
	) ([]domain.Card, error) {
		panic("provider exploded")
	}

	assert.PanicsWithValue(t, "provider exploded", func() {
		_, _ = f.svc.Generate(ctx, session.ID, service.GenerateRequest{Style: domain.CardStyleBasic})
	})

	got, err := f.svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, got.Generating)
	assert.NotEmpty(t, got.LastError)
}

func TestGenerateCancelledContextStillClearsFlag(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	session := f.withDocument(t, "notes.docx")
	ctx, cancel := context.WithCancel(context.Background())
	f.generator.GenerateCardsFn = func(
		ctx context.Context, _ domain.DocumentInput, _ domain.CardStyle, _ generation.Options,
	) ([]domain.Card, error) {
		cancel()
		return nil, &generation.GenerationError{Kind: generation.ErrGenerationFailed, Err: ctx.Err()}
	}

	_, err := f.svc.Generate(ctx, session.ID, service.GenerateRequest{Style: domain.CardStyleBasic})
	require.Error(t, err)

	got, err := f.svc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.False(t, got.Generating)
}

func TestGenerateUnknownSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Generate(context.Background(), uuid.New(), service.GenerateRequest{Style: domain.CardStyleBasic})
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestEditingCards(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session := f.withDocument(t, "lecture.pptx")
	f.generator.Cards = []domain.Card{
		domain.NewBasicCard("Q1", "A1"),
		domain.NewBasicCard("Q2", "A2"),
		domain.NewBasicCard("Q3", "A3"),
	}
	_, err := f.svc.Generate(ctx, session.ID, service.GenerateRequest{Style: domain.CardStyleBasic})
	require.NoError(t, err)

	updated, err := f.svc.UpdateCard(ctx, session.ID, 1, domain.NewBasicCard("Q2 edited", "A2 edited"))
	require.NoError(t, err)
	assert.Equal(t, "Q2 edited", updated.Deck.Cards[1].Front)

	_, err = f.svc.UpdateCard(ctx, session.ID, 1, domain.NewClozeCard("{{c1::x}}"))
	assert.ErrorIs(t, err, domain.ErrCardKindMismatch)

	_, err = f.svc.UpdateCard(ctx, session.ID, 3, domain.NewBasicCard("Q", "A"))
	assert.ErrorIs(t, err, domain.ErrCardIndexOutOfRange)

	updated, err = f.svc.DeleteCard(ctx, session.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 2, updated.Deck.Len())
	assert.Equal(t, "Q2 edited", updated.Deck.Cards[0].Front)
	assert.Equal(t, "Q3", updated.Deck.Cards[1].Front)

	_, err = f.svc.DeleteCard(ctx, session.ID, 2)
	assert.ErrorIs(t, err, domain.ErrCardIndexOutOfRange)

	export, err := f.svc.Export(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "lecture_anki.txt", export.FileName)
	assert.Equal(t, "Q2 edited\tA2 edited\nQ3\tA3", export.Content)
}

func TestExportEmptySession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)

	export, err := f.svc.Export(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultExportFileName, export.FileName)
	assert.Equal(t, "", export.Content)
}

func TestStoreFailuresAreWrapped(t *testing.T) {
	t.Parallel()
	dbErr := errors.New("connection reset by peer")
	st := &mocks.MockSessionStore{
		CreateFn: func(context.Context, *domain.Session) error { return dbErr },
	}
	svc, err := service.NewSessionService(st, &mocks.MockEncoder{}, &mocks.MockGenerator{}, nil)
	require.NoError(t, err)

	_, err = svc.CreateSession(context.Background())
	require.ErrorIs(t, err, dbErr)

	var svcErr *service.SessionServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "create_session", svcErr.Operation)
	assert.Equal(t, service.MsgUnknown, service.UserMessage(err))
}

func TestGenerateStoreFailureAfterGeneration(t *testing.T) {
	t.Parallel()
	backing := memory.NewSessionStore(time.Hour, nil)
	session := domain.NewSession()
	session.AttachDocument("notes.docx", domain.NewTextDocument("text"))
	require.NoError(t, backing.Create(context.Background(), session))

	saveErr := errors.New("disk full")
	st := &mocks.MockSessionStore{
		Delegate: backing,
		UpdateFn: func(context.Context, uuid.UUID, store.MutateFn) (*domain.Session, error) {
			return nil, saveErr
		},
	}
	gen := &mocks.MockGenerator{Cards: []domain.Card{domain.NewBasicCard("Q", "A")}}
	svc, err := service.NewSessionService(st, &mocks.MockEncoder{}, gen, nil)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), session.ID, service.GenerateRequest{Style: domain.CardStyleBasic})
	assert.ErrorIs(t, err, saveErr)
}

func TestUserMessage(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "unsupported type", err: domain.ErrUnsupportedFileType, want: service.MsgUnsupportedFileType},
		{name: "no document", err: domain.ErrNoDocument, want: service.MsgNoDocument},
		{name: "encoding", err: document.ErrEncodingFailed, want: service.MsgEncodingFailed},
		{
			name: "generation",
			err:  &generation.GenerationError{Kind: generation.ErrMalformedOutput},
			want: "The AI returned an invalid format. Please try again.",
		},
		{name: "unknown", err: errors.New("pq: password authentication failed"), want: service.MsgUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.UserMessage(tt.err))
		})
	}
}

func TestGenerateInvalidInputHasGenerationMessage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := memory.NewSessionStore(time.Hour, nil)
	provider := &mocks.MockProvider{Text: `{"cards":[]}`}
	encoder := &mocks.MockEncoder{Input: domain.NewTextDocument("")}
	svc, err := service.NewSessionService(st, encoder, generation.NewCardGenerator(provider, nil), nil)
	require.NoError(t, err)

	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	_, err = svc.UploadDocument(ctx, session.ID, domain.Upload{Name: "blank.docx", MIMEType: domain.MIMETypeDOCX})
	require.NoError(t, err)

	_, err = svc.Generate(ctx, session.ID, service.GenerateRequest{Style: domain.CardStyleBasic})
	require.ErrorIs(t, err, domain.ErrEmptyDocument)
	require.ErrorIs(t, err, generation.ErrGenerationFailed)
	assert.NotEqual(t, service.MsgUnknown, service.UserMessage(err))
	assert.Empty(t, provider.Requests())

	got, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, got.Generating)
	assert.Equal(t, generation.UserMessage(err), got.LastError)
}
