package domain

import (
	"fmt"
	"strings"
)

// CardStyle is the flashcard style requested by the user. It determines both
// the instructions sent to the model and the shape of the cards it returns.
type CardStyle string

// Supported card styles.
const (
	CardStyleBasic         CardStyle = "basic"
	CardStyleBasicReversed CardStyle = "basic_reversed"
	CardStyleCloze         CardStyle = "cloze"
)

// styleLabels maps the human readable labels shown to users onto styles.
var styleLabels = map[string]CardStyle{
	"basic":                     CardStyleBasic,
	"basic (and reversed card)": CardStyleBasicReversed,
	"basic + reversed":          CardStyleBasicReversed,
	"basic-reversed":            CardStyleBasicReversed,
	"cloze deletion":            CardStyleCloze,
}

// ParseCardStyle converts a style name or label into a CardStyle.
// Matching is case-insensitive and surrounding whitespace is ignored.
func ParseCardStyle(s string) (CardStyle, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	style := CardStyle(normalized)
	if style.IsValid() {
		return style, nil
	}
	if labelled, ok := styleLabels[normalized]; ok {
		return labelled, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCardStyle, s)
}

// IsValid reports whether the style is one of the supported styles.
func (s CardStyle) IsValid() bool {
	switch s {
	case CardStyleBasic, CardStyleBasicReversed, CardStyleCloze:
		return true
	default:
		return false
	}
}

// CardKind returns the card variant produced for this style.
func (s CardStyle) CardKind() CardKind {
	if s == CardStyleCloze {
		return CardKindCloze
	}
	return CardKindBasic
}

// Label returns the display label for the style.
func (s CardStyle) Label() string {
	switch s {
	case CardStyleBasic:
		return "Basic"
	case CardStyleBasicReversed:
		return "Basic (and reversed card)"
	case CardStyleCloze:
		return "Cloze Deletion"
	default:
		return string(s)
	}
}

// CardKind discriminates the two flashcard variants.
type CardKind string

// Card variants.
const (
	CardKindBasic CardKind = "basic"
	CardKindCloze CardKind = "cloze"
)

// Card is a single flashcard. Kind is assigned when the card is created and
// decides which fields are meaningful: Front/Back for basic cards, Text for
// cloze cards.
type Card struct {
	Kind  CardKind `json:"kind"`
	Front string   `json:"front,omitempty"`
	Back  string   `json:"back,omitempty"`
	Text  string   `json:"text,omitempty"`
}

// NewBasicCard creates a front/back card.
func NewBasicCard(front, back string) Card {
	return Card{Kind: CardKindBasic, Front: front, Back: back}
}

// NewClozeCard creates a cloze deletion card. The text is expected to carry
// inline occlusion markers such as {{c1::hidden}}.
func NewClozeCard(text string) Card {
	return Card{Kind: CardKindCloze, Text: text}
}

// Validate checks that the card's kind is known.
func (c Card) Validate() error {
	switch c.Kind {
	case CardKindBasic, CardKindCloze:
		return nil
	default:
		return NewValidationError("kind", "must be basic or cloze", ErrValidation)
	}
}
