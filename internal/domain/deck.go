package domain

import "fmt"

// Deck is the ordered list of generated cards together with the style they
// were generated for. The style travels with the list so that serialization
// never has to guess the card variant.
type Deck struct {
	Style CardStyle `json:"style"`
	Cards []Card    `json:"cards"`
}

// NewDeck creates a deck for the given style, copying the cards.
func NewDeck(style CardStyle, cards []Card) Deck {
	copied := make([]Card, len(cards))
	copy(copied, cards)
	return Deck{Style: style, Cards: copied}
}

// Len returns the number of cards in the deck.
func (d *Deck) Len() int {
	return len(d.Cards)
}

// Replace overwrites the card at index i. The replacement must be of the
// variant the deck's style produces.
func (d *Deck) Replace(i int, card Card) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if card.Kind != d.Style.CardKind() {
		return fmt.Errorf("%w: deck style %s expects %s cards, got %s",
			ErrCardKindMismatch, d.Style, d.Style.CardKind(), card.Kind)
	}
	d.Cards[i] = card
	return nil
}

// Remove deletes the card at index i. Later cards shift down by one and keep
// their relative order.
func (d *Deck) Remove(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.Cards = append(d.Cards[:i:i], d.Cards[i+1:]...)
	return nil
}

// Clear drops all cards but keeps the style.
func (d *Deck) Clear() {
	d.Cards = nil
}

func (d *Deck) checkIndex(i int) error {
	if i < 0 || i >= len(d.Cards) {
		return fmt.Errorf("%w: index %d, deck has %d cards", ErrCardIndexOutOfRange, i, len(d.Cards))
	}
	return nil
}
