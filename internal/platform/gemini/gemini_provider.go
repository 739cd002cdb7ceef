package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/phrazzld/ankigen/internal/config"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/platform/logger"
)

// responseMIMEType asks the model for raw JSON output.
const responseMIMEType = "application/json"

// Provider calls the Gemini generateContent endpoint.
type Provider struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

var _ generation.Provider = (*Provider)(nil)

// NewProvider creates a Gemini provider from configuration. A missing API key
// is not an error here: the provider is created without a client and every
// Generate call fails with generation.ErrMissingCredential.
func NewProvider(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		logger:      logger.With(slog.String("component", "gemini_provider"), slog.String("model", cfg.Model)),
	}

	if cfg.APIKey == "" {
		p.logger.Warn("no API key configured, generation requests will fail")
		return p, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client
	return p, nil
}

// Name implements generation.Provider.
func (p *Provider) Name() string { return providerName }

// Generate sends one generateContent request and returns the response text.
func (p *Provider) Generate(ctx context.Context, req generation.Request) (string, error) {
	if p.client == nil {
		return "", generation.ErrMissingCredential
	}
	log := logger.FromContextOrDefault(ctx, p.logger)

	parts, err := documentParts(req.Document)
	if err != nil {
		return "", err
	}
	parts = append(parts, &genai.Part{Text: req.Prompt})

	temperature := p.temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: responseMIMEType,
		ResponseSchema:   toSchema(req.Schema),
	}
	if req.SystemInstruction != "" {
		genConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}

	log.Debug("calling gemini generateContent", slog.Int("parts", len(parts)))
	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{{Role: genai.RoleUser, Parts: parts}}, genConfig)
	if err != nil {
		return "", convertError(err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	log.Debug("gemini response received", slog.Int("response_length", len(text)))
	return text, nil
}
