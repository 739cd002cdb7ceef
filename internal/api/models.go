package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ankigen/internal/domain"
)

// GenerateRequest defines the payload for the generate endpoint.
type GenerateRequest struct {
	// Style is a card style value (basic, basic_reversed, cloze) or its display label.
	Style string `json:"style" validate:"required"`

	// Count is the approximate number of cards wanted; zero lets the model decide.
	Count int `json:"count,omitempty" validate:"gte=0,lte=500"`

	// Instructions are appended to the prompt verbatim.
	Instructions string `json:"instructions,omitempty" validate:"max=4000"`
}

// CardRequest defines the payload for replacing a card. Front and Back are
// used by basic decks, Text by cloze decks.
type CardRequest struct {
	Front string `json:"front,omitempty" validate:"max=10000"`
	Back  string `json:"back,omitempty"  validate:"max=10000"`
	Text  string `json:"text,omitempty"  validate:"max=10000"`
}

// CardResponse is one card as shown to the client.
type CardResponse struct {
	Kind  domain.CardKind `json:"kind"`
	Front string          `json:"front,omitempty"`
	Back  string          `json:"back,omitempty"`
	Text  string          `json:"text,omitempty"`
}

// SessionResponse is the state of a session as shown to the client. The
// document payload itself is never echoed back.
type SessionResponse struct {
	ID           uuid.UUID           `json:"id"`
	FileName     string              `json:"file_name,omitempty"`
	HasDocument  bool                `json:"has_document"`
	DocumentKind domain.DocumentKind `json:"document_kind,omitempty"`
	Generating   bool                `json:"generating"`
	Error        string              `json:"error,omitempty"`
	Style        domain.CardStyle    `json:"style"`
	StyleLabel   string              `json:"style_label"`
	Cards        []CardResponse      `json:"cards"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func newSessionResponse(s *domain.Session) SessionResponse {
	resp := SessionResponse{
		ID:          s.ID,
		FileName:    s.FileName,
		HasDocument: s.Document != nil,
		Generating:  s.Generating,
		Error:       s.LastError,
		Style:       s.Deck.Style,
		StyleLabel:  s.Deck.Style.Label(),
		Cards:       make([]CardResponse, 0, len(s.Deck.Cards)),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.Document != nil {
		resp.DocumentKind = s.Document.Kind
	}
	for _, c := range s.Deck.Cards {
		resp.Cards = append(resp.Cards, CardResponse{Kind: c.Kind, Front: c.Front, Back: c.Back, Text: c.Text})
	}
	return resp
}

// toCard builds a card of the variant the deck style expects.
func (r CardRequest) toCard(style domain.CardStyle) domain.Card {
	if style.CardKind() == domain.CardKindCloze {
		return domain.NewClozeCard(r.Text)
	}
	return domain.NewBasicCard(r.Front, r.Back)
}
