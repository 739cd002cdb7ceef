package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/platform/logger"
	"github.com/phrazzld/ankigen/internal/store"
)

const sessionColumns = `id, file_name, document, deck, generating, last_error, created_at, updated_at`

// SessionStore implements store.SessionStore on a sessions table.
type SessionStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSessionStore creates a PostgreSQL session store. The schema must have
// been created with Migrate. If logger is nil, a default logger will be used.
func NewSessionStore(db *sql.DB, logger *slog.Logger) *SessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*SessionStore)(nil)

// Create implements store.SessionStore.Create.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return store.NewStoreError("session", "create", "invalid session", err)
	}

	row, err := encodeSession(session)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, file_name, document, deck, generating, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID, session.FileName, row.document, row.deck,
		session.Generating, session.LastError, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrSessionExists
		}
		log.Error("failed to create session",
			slog.String("session_id", session.ID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("session", "create", "insert failed", MapError(err))
	}

	log.Debug("session created", slog.String("session_id", session.ID.String()))
	return nil
}

// Get implements store.SessionStore.Get.
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.get(ctx, s.db, id, false)
}

// Update implements store.SessionStore.Update. The row is locked with
// SELECT ... FOR UPDATE for the duration of fn.
func (s *SessionStore) Update(ctx context.Context, id uuid.UUID, fn store.MutateFn) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Session
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		session, err := s.get(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
		if err := session.Validate(); err != nil {
			return store.NewStoreError("session", "update", "invalid session", err)
		}
		if err := s.save(ctx, tx, session); err != nil {
			return err
		}
		updated = session
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("session updated", slog.String("session_id", id.String()))
	return updated, nil
}

// ClaimGeneration implements store.SessionStore.ClaimGeneration with a
// single conditional UPDATE, so concurrent claims are serialized by the
// database.
func (s *SessionStore) ClaimGeneration(
	ctx context.Context,
	id uuid.UUID,
	style domain.CardStyle,
) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := json.Marshal(domain.Deck{Style: style})
	if err != nil {
		return nil, fmt.Errorf("failed to encode deck: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE sessions
		SET generating = TRUE, last_error = '', deck = $2, updated_at = $3
		WHERE id = $1 AND NOT generating AND document IS NOT NULL
		RETURNING `+sessionColumns,
		id, string(deck), time.Now().UTC(),
	)
	session, err := scanSession(row)
	if err == nil {
		log.Debug("generation claimed",
			slog.String("session_id", id.String()),
			slog.String("style", string(style)))
		return session, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to claim generation",
			slog.String("session_id", id.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("session", "claim", "update failed", MapError(err))
	}

	return nil, s.claimFailure(ctx, id)
}

// claimFailure explains why the conditional claim matched no row.
func (s *SessionStore) claimFailure(ctx context.Context, id uuid.UUID) error {
	var generating, hasDocument bool
	err := s.db.QueryRowContext(ctx,
		`SELECT generating, document IS NOT NULL FROM sessions WHERE id = $1`, id,
	).Scan(&generating, &hasDocument)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrSessionNotFound
	case err != nil:
		return store.NewStoreError("session", "claim", "lookup failed", MapError(err))
	case generating:
		return domain.ErrGenerationInProgress
	case !hasDocument:
		return domain.ErrNoDocument
	default:
		// The session changed between the two statements.
		return domain.ErrGenerationInProgress
	}
}

// Delete implements store.SessionStore.Delete.
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("session", "delete", "delete failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrSessionNotFound); err != nil {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("session deleted",
		slog.String("session_id", id.String()))
	return nil
}

// PurgeExpired deletes sessions that have not been written for longer than
// ttl and returns how many were removed.
func (s *SessionStore) PurgeExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, store.NewStoreError("session", "purge", "delete failed", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Info("purged expired sessions",
			slog.Int64("count", n))
	}
	return n, nil
}

func (s *SessionStore) get(ctx context.Context, db store.DBTX, id uuid.UUID, forUpdate bool) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	session, err := scanSession(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSessionNotFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load session",
			slog.String("session_id", id.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("session", "get", "query failed", MapError(err))
	}
	return session, nil
}

func (s *SessionStore) save(ctx context.Context, db store.DBTX, session *domain.Session) error {
	row, err := encodeSession(session)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE sessions
		SET file_name = $2, document = $3, deck = $4, generating = $5, last_error = $6, updated_at = $7
		WHERE id = $1`,
		session.ID, session.FileName, row.document, row.deck,
		session.Generating, session.LastError, session.UpdatedAt,
	)
	if err != nil {
		return store.NewStoreError("session", "update", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrSessionNotFound)
}

type sessionRow struct {
	document sql.NullString
	deck     string
}

func encodeSession(session *domain.Session) (sessionRow, error) {
	var row sessionRow
	if session.Document != nil {
		doc, err := json.Marshal(session.Document)
		if err != nil {
			return row, fmt.Errorf("failed to encode document: %w", err)
		}
		row.document = sql.NullString{String: string(doc), Valid: true}
	}
	deck, err := json.Marshal(session.Deck)
	if err != nil {
		return row, fmt.Errorf("failed to encode deck: %w", err)
	}
	row.deck = string(deck)
	return row, nil
}

func scanSession(row *sql.Row) (*domain.Session, error) {
	var (
		session  domain.Session
		document []byte
		deck     []byte
	)
	err := row.Scan(
		&session.ID,
		&session.FileName,
		&document,
		&deck,
		&session.Generating,
		&session.LastError,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(document) > 0 {
		var doc domain.DocumentInput
		if err := json.Unmarshal(document, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		session.Document = &doc
	}
	if err := json.Unmarshal(deck, &session.Deck); err != nil {
		return nil, fmt.Errorf("failed to decode deck: %w", err)
	}
	return &session, nil
}
