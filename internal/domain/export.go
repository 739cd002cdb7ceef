package domain

import "strings"

// DefaultExportFileName is used when the source document's name is unknown.
const DefaultExportFileName = "anki_cards.txt"

// Serialize renders the deck in Anki's plain-text import format: one card per
// line, fields separated by a single tab, no header row. Cloze cards are
// written as their raw text. For the basic-and-reversed style the forward
// block is followed by a second block with front and back swapped.
// An empty deck serializes to the empty string.
func (d *Deck) Serialize() string {
	if len(d.Cards) == 0 {
		return ""
	}

	if d.Style == CardStyleCloze {
		lines := make([]string, 0, len(d.Cards))
		for _, card := range d.Cards {
			lines = append(lines, card.Text)
		}
		return strings.Join(lines, "\n")
	}

	forward := make([]string, 0, len(d.Cards))
	for _, card := range d.Cards {
		forward = append(forward, card.Front+"\t"+card.Back)
	}
	content := strings.Join(forward, "\n")

	if d.Style == CardStyleBasicReversed {
		reversed := make([]string, 0, len(d.Cards))
		for _, card := range d.Cards {
			reversed = append(reversed, card.Back+"\t"+card.Front)
		}
		content += "\n" + strings.Join(reversed, "\n")
	}

	return content
}

// ExportFileName derives the download file name from the source document's
// name: "<basename>_anki.txt", where basename drops the last extension. A
// leading dot is not treated as an extension separator.
func ExportFileName(sourceName string) string {
	if sourceName == "" {
		return DefaultExportFileName
	}
	base := sourceName
	if dot := strings.LastIndex(sourceName, "."); dot > 0 {
		base = sourceName[:dot]
	}
	return base + "_anki.txt"
}
