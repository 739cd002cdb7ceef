package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/phrazzld/ankigen/internal/config"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/platform/logger"
)

const providerName = "openai"

// ErrRefused is returned when the model declines to answer or its output is
// withheld by the content filter.
var ErrRefused = errors.New("model refused the request")

// Provider calls the chat completions endpoint.
type Provider struct {
	client      *openai.Client
	model       string
	temperature float64
	logger      *slog.Logger
}

var _ generation.Provider = (*Provider)(nil)

// NewProvider creates an OpenAI provider from configuration. SDK retries are
// disabled. Without an API key every Generate call fails with
// generation.ErrMissingCredential.
func NewProvider(cfg config.LLMConfig, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger.With(slog.String("component", "openai_provider"), slog.String("model", cfg.Model)),
	}

	if cfg.APIKey == "" {
		p.logger.Warn("no API key configured, generation requests will fail")
		return p
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	p.client = &client
	return p
}

// Name implements generation.Provider.
func (p *Provider) Name() string { return providerName }

// Generate sends one chat completion request and returns the message content.
func (p *Provider) Generate(ctx context.Context, req generation.Request) (string, error) {
	if p.client == nil {
		return "", generation.ErrMissingCredential
	}
	log := logger.FromContextOrDefault(ctx, p.logger)

	docPart, err := documentPart(req.Document)
	if err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemInstruction != "" {
		messages = append(messages, openai.SystemMessage(req.SystemInstruction))
	}
	messages = append(messages, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		docPart,
		openai.TextContentPart(req.Prompt),
	}))

	schemaName := req.SchemaName
	if schemaName == "" {
		schemaName = "cards"
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    messages,
		Temperature: openai.Float(p.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName,
					Schema: jsonSchema(req.Schema),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	log.Debug("calling openai chat completions")
	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", convertError(err)
	}

	if len(completion.Choices) == 0 {
		return "", nil
	}
	choice := completion.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("%w: %s", ErrRefused, choice.Message.Refusal)
	}
	if choice.FinishReason == "content_filter" {
		return "", fmt.Errorf("%w: content filtered", ErrRefused)
	}

	log.Debug("openai response received", slog.Int("response_length", len(choice.Message.Content)))
	return choice.Message.Content, nil
}

func documentPart(doc domain.DocumentInput) (openai.ChatCompletionContentPartUnionParam, error) {
	switch doc.Kind {
	case domain.DocumentKindInline:
		return openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
			FileData: openai.String("data:" + doc.MIMEType + ";base64," + doc.Data),
			Filename: openai.String("document.pdf"),
		}), nil
	case domain.DocumentKindText:
		return openai.TextContentPart(doc.Text), nil
	default:
		return openai.ChatCompletionContentPartUnionParam{}, fmt.Errorf("unknown document kind %q", doc.Kind)
	}
}

// convertError maps SDK errors onto generation.ProviderError.
func convertError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &generation.ProviderError{
			Provider:   providerName,
			StatusCode: apiErr.StatusCode,
			Status:     apiErr.Code,
			Message:    apiErr.Message,
		}
	}
	return fmt.Errorf("openai request failed: %w", err)
}
