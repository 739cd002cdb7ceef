package generation

import (
	"fmt"
	"strings"

	"github.com/phrazzld/ankigen/internal/domain"
)

// SystemInstruction frames the model for every request.
const SystemInstruction = "You are an expert learning assistant. Your task is to analyze documents and " +
	"create high-quality, concise flashcards in a structured JSON format, suitable for importing into Anki."

const (
	clozeInstruction = "Based on the provided document, identify key sentences and facts. " +
		"Convert them into Cloze Deletion Anki flashcards. " +
		"The cloze deletion should hide the most critical part of the sentence. " +
		"Format the output with the cloze syntax {{c1::text to hide}}. " +
		"For example, 'The powerhouse of the cell is the {{c1::mitochondria}}.'"

	basicInstruction = "Based on the provided document, extract the most important key concepts, definitions, and facts. " +
		"Generate a list of Basic Anki flashcards. " +
		"Each flashcard should have a 'front' (a question or a term) and a 'back' (the answer or definition). " +
		"Ensure the cards are atomic and test a single piece of information."
)

// Options are the optional user hints for a generation request.
type Options struct {
	// Count is the approximate number of cards wanted. Zero lets the model decide.
	Count int
	// Instructions is free text appended to the prompt verbatim.
	Instructions string
}

// Prompt is the instruction and output schema for one request.
type Prompt struct {
	Instruction string
	Schema      *Schema
}

// SelectPrompt returns the instruction and schema for style with the optional
// hints appended as extra lines.
func SelectPrompt(style domain.CardStyle, opts Options) Prompt {
	base := basicInstruction
	if style.CardKind() == domain.CardKindCloze {
		base = clozeInstruction
	}

	lines := []string{base}
	if opts.Count > 0 {
		lines = append(lines, fmt.Sprintf("Generate approximately %d flashcards.", opts.Count))
	}
	if strings.TrimSpace(opts.Instructions) != "" {
		lines = append(lines, "Additional instructions from the user: "+opts.Instructions)
	}

	return Prompt{
		Instruction: strings.Join(lines, "\n\n"),
		Schema:      CardSchema(style),
	}
}
