// Package llm selects the language model provider named in configuration.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/ankigen/internal/config"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/platform/gemini"
	"github.com/phrazzld/ankigen/internal/platform/openai"
)

// Provider names accepted in configuration.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewProvider returns the provider configured in cfg.Provider.
func NewProvider(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Provider, error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		p, err := gemini.NewProvider(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderOpenAI:
		return openai.NewProvider(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// NewGenerator wires the configured provider into a card generator.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*generation.CardGenerator, error) {
	provider, err := NewProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("language model provider initialized",
			slog.String("provider", provider.Name()),
			slog.String("model", cfg.Model))
	}
	return generation.NewCardGenerator(provider, logger), nil
}
