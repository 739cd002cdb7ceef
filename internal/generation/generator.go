package generation

import (
	"context"
	"log/slog"

	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/platform/logger"
	"github.com/phrazzld/ankigen/internal/redact"
)

// Generator creates flashcards from a document.
type Generator interface {
	// GenerateCards issues one model request and returns the parsed cards, all
	// of the style's kind. Failures are *GenerationError values.
	GenerateCards(
		ctx context.Context,
		input domain.DocumentInput,
		style domain.CardStyle,
		opts Options,
	) ([]domain.Card, error)
}

// Request is everything a Provider needs for one model call.
type Request struct {
	Document          domain.DocumentInput
	SystemInstruction string
	Prompt            string
	Schema            *Schema
	// SchemaName identifies the schema to providers that require a name.
	SchemaName string
}

// Provider performs a single structured-output call against a model API and
// returns the raw response text. Implementations must not retry, and must
// return ErrMissingCredential without a network call when unconfigured.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// CardGenerator implements Generator on top of a Provider.
type CardGenerator struct {
	provider Provider
	logger   *slog.Logger
}

var _ Generator = (*CardGenerator)(nil)

// NewCardGenerator creates a generator. If logger is nil, the default logger
// is used.
func NewCardGenerator(provider Provider, logger *slog.Logger) *CardGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardGenerator{
		provider: provider,
		logger: logger.With(
			slog.String("component", "card_generator"),
			slog.String("provider", provider.Name()),
		),
	}
}

// GenerateCards implements Generator.
func (g *CardGenerator) GenerateCards(
	ctx context.Context,
	input domain.DocumentInput,
	style domain.CardStyle,
	opts Options,
) ([]domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if !style.IsValid() {
		return nil, Classify(domain.NewValidationError("style", "unknown card style", domain.ErrInvalidCardStyle))
	}
	if err := input.Validate(); err != nil {
		log.Warn("refusing to send invalid document input", slog.String("error", err.Error()))
		return nil, Classify(err)
	}

	prompt := SelectPrompt(style, opts)
	log.Debug("requesting cards from language model",
		slog.String("style", string(style)),
		slog.String("document_kind", string(input.Kind)),
		slog.Int("requested_count", opts.Count),
		slog.Bool("has_instructions", opts.Instructions != ""))

	text, err := g.provider.Generate(ctx, Request{
		Document:          input,
		SystemInstruction: SystemInstruction,
		Prompt:            prompt.Instruction,
		Schema:            prompt.Schema,
		SchemaName:        "anki_cards",
	})
	if err != nil {
		genErr := Classify(err)
		log.Warn("language model request failed",
			slog.String("kind", genErr.Kind.Error()),
			slog.String("error", redact.Error(err)))
		return nil, genErr
	}

	cards, err := ParseResult(text, style)
	if err != nil {
		genErr := Classify(err)
		log.Warn("language model returned malformed output",
			slog.String("error", err.Error()),
			slog.Int("response_length", len(text)))
		return nil, genErr
	}

	log.Info("generated cards",
		slog.String("style", string(style)),
		slog.Int("card_count", len(cards)))
	return cards, nil
}
