package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/ankigen/internal/document"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/platform/logger"
	"github.com/phrazzld/ankigen/internal/redact"
	"github.com/phrazzld/ankigen/internal/store"
)

// GenerateRequest holds the user's choices for one generation.
type GenerateRequest struct {
	Style        domain.CardStyle
	Count        int
	Instructions string
}

// ExportFile is the downloadable result of a session.
type ExportFile struct {
	FileName string
	Content  string
}

// SessionService provides the document-to-flashcards workflow.
type SessionService interface {
	// CreateSession starts an empty session.
	CreateSession(ctx context.Context) (*domain.Session, error)

	// GetSession returns the current state of a session.
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// DeleteSession discards a session and everything it holds.
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// UploadDocument encodes the upload and makes it the session's document.
	// On failure the previous document and cards are kept and the failure
	// message is recorded as the session's last error.
	UploadDocument(ctx context.Context, id uuid.UUID, upload domain.Upload) (*domain.Session, error)

	// Generate turns the session's document into cards. At most one call per
	// session runs at a time.
	Generate(ctx context.Context, id uuid.UUID, req GenerateRequest) (*domain.Session, error)

	// UpdateCard replaces the card at index.
	UpdateCard(ctx context.Context, id uuid.UUID, index int, card domain.Card) (*domain.Session, error)

	// DeleteCard removes the card at index; later cards shift down.
	DeleteCard(ctx context.Context, id uuid.UUID, index int) (*domain.Session, error)

	// Export renders the session's deck in Anki's text import format.
	Export(ctx context.Context, id uuid.UUID) (*ExportFile, error)
}

type sessionServiceImpl struct {
	store     store.SessionStore
	encoder   document.Encoder
	generator generation.Generator
	logger    *slog.Logger
}

// NewSessionService creates a SessionService.
// It returns an error if any of the required dependencies are nil.
func NewSessionService(
	sessionStore store.SessionStore,
	encoder document.Encoder,
	generator generation.Generator,
	logger *slog.Logger,
) (SessionService, error) {
	if sessionStore == nil {
		return nil, &SessionServiceError{Operation: "create_service", Message: "session store cannot be nil"}
	}
	if encoder == nil {
		return nil, &SessionServiceError{Operation: "create_service", Message: "encoder cannot be nil"}
	}
	if generator == nil {
		return nil, &SessionServiceError{Operation: "create_service", Message: "generator cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &sessionServiceImpl{
		store:     sessionStore,
		encoder:   encoder,
		generator: generator,
		logger:    logger.With(slog.String("component", "session_service")),
	}, nil
}

// CreateSession implements SessionService.CreateSession.
func (s *sessionServiceImpl) CreateSession(ctx context.Context) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session := domain.NewSession()
	if err := s.store.Create(ctx, session); err != nil {
		log.Error("failed to create session", slog.String("error", redact.Error(err)))
		return nil, NewSessionServiceError("create_session", "failed to save session", err)
	}

	log.Info("session created", slog.String("session_id", session.ID.String()))
	return session, nil
}

// GetSession implements SessionService.GetSession.
func (s *sessionServiceImpl) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, NewSessionServiceError("get_session", "failed to load session", err)
	}
	return session, nil
}

// DeleteSession implements SessionService.DeleteSession.
func (s *sessionServiceImpl) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return NewSessionServiceError("delete_session", "failed to delete session", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("session deleted",
		slog.String("session_id", id.String()))
	return nil
}

// UploadDocument implements SessionService.UploadDocument.
func (s *sessionServiceImpl) UploadDocument(
	ctx context.Context,
	id uuid.UUID,
	upload domain.Upload,
) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("session_id", id.String()),
		slog.String("file_name", upload.Name),
		slog.String("mime_type", upload.MIMEType),
	)

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, NewSessionServiceError("upload_document", "failed to load session", err)
	}
	if current.Generating {
		return nil, domain.ErrGenerationInProgress
	}

	if !domain.IsSupportedMIMEType(upload.MIMEType) {
		log.Info("rejected upload with unsupported type")
		s.recordError(ctx, id, MsgUnsupportedFileType)
		return nil, NewSessionServiceError("upload_document", "unsupported file type",
			fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, upload.MIMEType))
	}

	input, err := s.encoder.Encode(ctx, upload)
	if err != nil {
		log.Warn("document rejected", slog.String("error", redact.Error(err)))
		s.recordError(ctx, id, UserMessage(err))
		return nil, NewSessionServiceError("upload_document", "failed to encode document", err)
	}

	updated, err := s.store.Update(ctx, id, func(session *domain.Session) error {
		if session.Generating {
			return domain.ErrGenerationInProgress
		}
		session.AttachDocument(upload.Name, input)
		return nil
	})
	if err != nil {
		return nil, NewSessionServiceError("upload_document", "failed to save document", err)
	}

	log.Info("document attached",
		slog.String("document_kind", string(input.Kind)),
		slog.Int("size_bytes", len(upload.Data)))
	return updated, nil
}

// Generate implements SessionService.Generate. The session is claimed
// atomically before the model is called; whatever happens afterwards,
// including a panic in the generator, the loading flag is cleared.
func (s *sessionServiceImpl) Generate(
	ctx context.Context,
	id uuid.UUID,
	req GenerateRequest,
) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("session_id", id.String()),
		slog.String("style", string(req.Style)),
	)

	if !req.Style.IsValid() {
		return nil, domain.ErrInvalidCardStyle
	}
	if req.Count < 0 {
		return nil, domain.NewValidationError("count", "must not be negative", domain.ErrValidation)
	}

	claimed, err := s.store.ClaimGeneration(ctx, id, req.Style)
	if err != nil {
		if errors.Is(err, domain.ErrNoDocument) {
			s.recordError(ctx, id, MsgNoDocument)
		}
		return nil, NewSessionServiceError("generate", "failed to claim session", err)
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error("card generation panicked", slog.Any("panic", p))
			_, _ = s.finish(ctx, id, req.Style, nil, &generation.GenerationError{Kind: generation.ErrGenerationFailed})
			panic(p)
		}
	}()

	log.Info("generating cards")
	cards, genErr := s.generator.GenerateCards(ctx, *claimed.Document, req.Style, generation.Options{
		Count:        req.Count,
		Instructions: req.Instructions,
	})
	return s.finish(ctx, id, req.Style, cards, genErr)
}

// finish stores the outcome of a generation and clears the loading flag. It
// runs detached from ctx cancellation so that a disconnected client cannot
// leave the session stuck in the generating state.
func (s *sessionServiceImpl) finish(
	ctx context.Context,
	id uuid.UUID,
	style domain.CardStyle,
	cards []domain.Card,
	genErr error,
) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("session_id", id.String()))
	storeCtx := context.WithoutCancel(ctx)

	if genErr != nil {
		message := UserMessage(genErr)
		if _, err := s.store.Update(storeCtx, id, func(session *domain.Session) error {
			session.FailGeneration(message)
			return nil
		}); err != nil {
			log.Error("failed to record generation failure", slog.String("error", redact.Error(err)))
		}
		log.Warn("card generation failed",
			slog.String("error", redact.Error(genErr)),
			slog.String("user_message", message))
		return nil, NewSessionServiceError("generate", "failed to generate cards", genErr)
	}

	updated, err := s.store.Update(storeCtx, id, func(session *domain.Session) error {
		session.CompleteGeneration(domain.NewDeck(style, cards))
		return nil
	})
	if err != nil {
		log.Error("failed to store generated cards", slog.String("error", redact.Error(err)))
		return nil, NewSessionServiceError("generate", "failed to store cards", err)
	}

	log.Info("cards generated", slog.Int("card_count", len(cards)))
	return updated, nil
}

// recordError stores a user-facing message without touching the document or
// the cards. Failures are logged only; the caller already has an error to report.
func (s *sessionServiceImpl) recordError(ctx context.Context, id uuid.UUID, message string) {
	_, err := s.store.Update(ctx, id, func(session *domain.Session) error {
		session.LastError = message
		return nil
	})
	if err != nil && !store.IsNotFoundError(err) {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to record session error",
			slog.String("session_id", id.String()),
			slog.String("error", redact.Error(err)))
	}
}

// UpdateCard implements SessionService.UpdateCard.
func (s *sessionServiceImpl) UpdateCard(
	ctx context.Context,
	id uuid.UUID,
	index int,
	card domain.Card,
) (*domain.Session, error) {
	updated, err := s.store.Update(ctx, id, func(session *domain.Session) error {
		return session.Deck.Replace(index, card)
	})
	if err != nil {
		return nil, NewSessionServiceError("update_card", "failed to update card", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("card updated",
		slog.String("session_id", id.String()),
		slog.Int("index", index))
	return updated, nil
}

// DeleteCard implements SessionService.DeleteCard.
func (s *sessionServiceImpl) DeleteCard(ctx context.Context, id uuid.UUID, index int) (*domain.Session, error) {
	updated, err := s.store.Update(ctx, id, func(session *domain.Session) error {
		return session.Deck.Remove(index)
	})
	if err != nil {
		return nil, NewSessionServiceError("delete_card", "failed to delete card", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("card deleted",
		slog.String("session_id", id.String()),
		slog.Int("index", index),
		slog.Int("remaining", updated.Deck.Len()))
	return updated, nil
}

// Export implements SessionService.Export.
func (s *sessionServiceImpl) Export(ctx context.Context, id uuid.UUID) (*ExportFile, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, NewSessionServiceError("export", "failed to load session", err)
	}
	return &ExportFile{
		FileName: domain.ExportFileName(session.FileName),
		Content:  session.Deck.Serialize(),
	}, nil
}
