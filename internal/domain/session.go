package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSessionIDEmpty is returned when a session ID is empty or nil.
var ErrSessionIDEmpty = errors.New("session ID cannot be empty")

// Session is the request-scoped state of one upload-and-generate workflow:
// the selected file, the cards generated from it, the loading flag and the
// last user-facing error. At most one generation is in flight per session.
type Session struct {
	ID         uuid.UUID      `json:"id"`
	FileName   string         `json:"file_name,omitempty"`
	Document   *DocumentInput `json:"document,omitempty"`
	Deck       Deck           `json:"deck"`
	Generating bool           `json:"generating"`
	LastError  string         `json:"last_error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewSession creates an empty session with a fresh ID.
func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		Deck:      Deck{Style: CardStyleBasic},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks if the Session has valid data.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}
	if !s.Deck.Style.IsValid() {
		return ErrInvalidCardStyle
	}
	if s.Document != nil {
		if err := s.Document.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AttachDocument replaces the selected file. Previously generated cards and
// errors belong to the old file and are cleared.
func (s *Session) AttachDocument(fileName string, input DocumentInput) {
	doc := input
	s.FileName = fileName
	s.Document = &doc
	s.Deck.Clear()
	s.LastError = ""
	s.touch()
}

// BeginGeneration marks the session as loading and clears the previous result
// so that no stale cards are shown alongside the new request.
func (s *Session) BeginGeneration(style CardStyle) error {
	if s.Generating {
		return ErrGenerationInProgress
	}
	if s.Document == nil {
		return ErrNoDocument
	}
	s.Generating = true
	s.LastError = ""
	s.Deck = Deck{Style: style}
	s.touch()
	return nil
}

// CompleteGeneration stores the generated cards and discards the consumed
// document input.
func (s *Session) CompleteGeneration(deck Deck) {
	s.Deck = deck
	s.Document = nil
	s.Generating = false
	s.LastError = ""
	s.touch()
}

// FailGeneration records the user-facing message of a failed generation.
// No partial cards are kept.
func (s *Session) FailGeneration(message string) {
	s.Deck.Clear()
	s.Generating = false
	s.LastError = message
	s.touch()
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	clone := *s
	if s.Document != nil {
		doc := *s.Document
		clone.Document = &doc
	}
	clone.Deck = NewDeck(s.Deck.Style, s.Deck.Cards)
	return &clone
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
